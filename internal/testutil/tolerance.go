package testutil

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cwbudde/vankampen/internal/numfield"
)

// RequireComplexNearlyEqual fails t if got and want differ by more
// than eps in modulus.
func RequireComplexNearlyEqual(t *testing.T, got, want complex128, eps float64) {
	t.Helper()
	if d := cmplx.Abs(got - want); d > eps {
		t.Fatalf("got %v, want %v (diff %v > eps %v)", got, want, d, eps)
	}
}

// RequireFinite fails t if any value is NaN or Inf.
func RequireFinite(t *testing.T, vs []complex128) {
	t.Helper()
	for i, v := range vs {
		if math.IsNaN(real(v)) || math.IsNaN(imag(v)) || math.IsInf(real(v), 0) || math.IsInf(imag(v), 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// RequireDistinct fails t unless every pair in vs is separated by
// more than eps, the precondition SeparateRootsInitialGuess certifies
// and that every end-to-end fixture's sheets must satisfy going in.
func RequireDistinct(t *testing.T, vs []complex128, eps float64) {
	t.Helper()
	for i := range vs {
		for j := i + 1; j < len(vs); j++ {
			if d := cmplx.Abs(vs[i] - vs[j]); d <= eps {
				t.Fatalf("values %d and %d too close: %v, %v (dist %v <= eps %v)", i, j, vs[i], vs[j], d, eps)
			}
		}
	}
}

// ScalarsToComplex converts a slice of certified scalars to
// machine-precision complex128 for comparison in tests.
func ScalarsToComplex(vs []numfield.Scalar) []complex128 {
	out := make([]complex128, len(vs))
	for i, v := range vs {
		out[i] = v.Complex128()
	}
	return out
}
