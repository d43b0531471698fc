package monodromy

import (
	"math"
	"testing"

	"github.com/cwbudde/vankampen/internal/numfield"
	"github.com/cwbudde/vankampen/internal/upoly"
)

// constantCurve returns y^2 - t as a function of the base parameter,
// so its two roots are +sqrt(t) and -sqrt(t): they never collide for
// t in (0,1], giving a clean, always-separable test fixture.
func constantCurve(t numfield.Scalar) upoly.Poly {
	return upoly.New([]numfield.Scalar{t.Neg(), numfield.Zero(), numfield.One()})
}

func TestApproxFollowerTracksStableRoots(t *testing.T) {
	f := NewApproxFollower(8)
	t0 := numfield.NewInt(1)
	t1 := numfield.NewRat(9, 4)
	start := []numfield.Scalar{numfield.NewInt(-1), numfield.NewInt(1)}
	out, err := f.Track(constantCurve, t0, t1, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(out))
	}
	want0, want1 := -1.5, 1.5
	if d := out[0].Complex128() - complex(want0, 0); cabs(d) > 1e-3 {
		t.Fatalf("root0 = %v, want near %v", out[0].Complex128(), want0)
	}
	if d := out[1].Complex128() - complex(want1, 0); cabs(d) > 1e-3 {
		t.Fatalf("root1 = %v, want near %v", out[1].Complex128(), want1)
	}
}

func TestCertifiedFollowerTracksStableRoots(t *testing.T) {
	f := NewCertifiedFollower()
	t0 := numfield.NewInt(1)
	t1 := numfield.NewInt(4)
	start := []numfield.Scalar{numfield.NewInt(-1), numfield.NewInt(1)}
	out, err := f.Track(constantCurve, t0, t1, start)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d := out[0].Complex128() - complex(-2, 0); cabs(d) > 1e-3 {
		t.Fatalf("root0 = %v, want near -2", out[0].Complex128())
	}
	if d := out[1].Complex128() - complex(2, 0); cabs(d) > 1e-3 {
		t.Fatalf("root1 = %v, want near 2", out[1].Complex128())
	}
}

func TestProtectionPolynomialMatchesSquaredDiscriminant(t *testing.T) {
	// y^2 - t has discriminant Res(P,P') = -4t (Sylvester-matrix sign
	// convention); along the segment x(s) = 1+s from t0=1 to t1=2 the
	// squared discriminant is 16*(1+s)^2, so it should quadruple from
	// s=0 (16) to s=1 (64).
	prot := ProtectionPolynomial(constantCurve, numfield.NewInt(1), numfield.NewInt(2), 2)
	at0 := prot.EvalFloat(0)
	at1 := prot.EvalFloat(1)
	if d := at0 - 16; cabsF(d) > 1e-6 {
		t.Fatalf("protection polynomial at s=0 = %v, want 16", at0)
	}
	ratio := at1 / at0
	if d := ratio - 4; cabsF(d) > 1e-6 {
		t.Fatalf("protection polynomial should scale quadratically, ratio=%v", ratio)
	}
}

func cabs(z complex128) float64 {
	return math.Hypot(real(z), imag(z))
}

func cabsF(x float64) float64 {
	return math.Abs(x)
}
