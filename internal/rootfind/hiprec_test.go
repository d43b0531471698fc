package rootfind

import (
	"math/cmplx"
	"testing"
)

func TestApComplexRoundTripsFloat64(t *testing.T) {
	z := complex(1.5, -2.25)
	got := apToComplex(apFromComplex(z))
	if cmplx.Abs(got-z) > 1e-12 {
		t.Fatalf("round trip = %v, want %v", got, z)
	}
}

func TestHiPrecBootstrapFindsKnownRoots(t *testing.T) {
	// (x-1)(x-2)(x-3) = x^3 - 6x^2 + 11x - 6, ascending order.
	coeffs := []complex128{-6, 11, -6, 1}
	guesses, ok := hiPrecBootstrap(coeffs)
	if !ok {
		t.Fatalf("hiPrecBootstrap failed to find seeds")
	}
	if len(guesses) != 3 {
		t.Fatalf("len(guesses) = %d, want 3", len(guesses))
	}
	seen := map[int]bool{}
	for _, g := range guesses {
		for _, want := range []float64{1, 2, 3} {
			if cmplx.Abs(g-complex(want, 0)) < 1e-9 {
				seen[int(want)] = true
			}
		}
	}
	if len(seen) != 3 {
		t.Fatalf("expected to find all three roots {1,2,3}, found %v from %v", seen, guesses)
	}
}
