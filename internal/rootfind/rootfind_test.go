package rootfind

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/vankampen/internal/numfield"
	"github.com/cwbudde/vankampen/internal/upoly"
)

func ratPoly(coeffs ...int64) upoly.Poly {
	c := make([]numfield.Scalar, len(coeffs))
	for i, v := range coeffs {
		c[i] = numfield.NewInt(v)
	}
	return upoly.New(c)
}

func TestNewtonRootConvergesToKnownRoot(t *testing.T) {
	// p(x) = x^2 - 2, root at sqrt(2).
	p := ratPoly(-2, 0, 1)
	z, errBound, err := NewtonRoot(p, complex(1.0, 0), 1e-9, DefaultNewtonLimit)
	if err != nil {
		t.Fatalf("NewtonRoot: %v", err)
	}
	got := z.Complex128()
	want := complex(math.Sqrt2, 0)
	if cmplx.Abs(got-want) > 1e-6 {
		t.Fatalf("NewtonRoot = %v, want close to %v", got, want)
	}
	if errBound <= 0 || errBound > 1e-9 {
		t.Fatalf("errBound = %v, want in (0, 1e-9]", errBound)
	}
}

func TestSeparateRootsInitialGuessOnQuadratic(t *testing.T) {
	// p(x) = (x-1)(x-2) = x^2 -3x+2.
	p := ratPoly(2, -3, 1)
	guesses := []complex128{complex(0.9, 0), complex(2.1, 0)}
	roots, err := SeparateRootsInitialGuess(p, guesses, 100)
	if err != nil {
		t.Fatalf("SeparateRootsInitialGuess: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("len(roots) = %d, want 2", len(roots))
	}
	sum := roots[0].Complex128() + roots[1].Complex128()
	if cmplx.Abs(sum-3) > 1e-6 {
		t.Fatalf("roots sum = %v, want 3", sum)
	}
}

func TestSeparateRootsBootstraps(t *testing.T) {
	// p(x) = x^3 - 6x^2 + 11x - 6 = (x-1)(x-2)(x-3).
	p := ratPoly(-6, 11, -6, 1)
	roots, err := SeparateRoots(p, 100)
	if err != nil {
		t.Fatalf("SeparateRoots: %v", err)
	}
	if len(roots) != 3 {
		t.Fatalf("len(roots) = %d, want 3", len(roots))
	}
	seen := map[int]bool{}
	for _, r := range roots {
		v := r.Complex128()
		for _, want := range []float64{1, 2, 3} {
			if cmplx.Abs(v-complex(want, 0)) < 1e-6 {
				seen[int(want)] = true
			}
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected to find all three roots {1,2,3}, found %v", seen)
	}
}

func TestSeparateRootsFailsOnRepeatedRoot(t *testing.T) {
	// p(x) = (x-1)^2 has a repeated root; SeparateRootsInitialGuess
	// should fail to certify disjoint disks around two distinct
	// guesses that both converge to the same point.
	p := ratPoly(1, -2, 1)
	_, err := SeparateRootsInitialGuess(p, []complex128{complex(0.9, 0.01), complex(1.1, -0.01)}, 100)
	if err != ErrRootsNotSeparated {
		t.Fatalf("expected ErrRootsNotSeparated, got %v", err)
	}
}
