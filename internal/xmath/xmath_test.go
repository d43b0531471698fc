package xmath

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 1); got != 1 {
		t.Fatalf("Clamp(5,0,1) = %v, want 1", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Fatalf("Clamp(-5,0,1) = %v, want 0", got)
	}
	if got := Clamp(0.5, 0, 1); got != 0.5 {
		t.Fatalf("Clamp(0.5,0,1) = %v, want 0.5", got)
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-15, 0) {
		t.Fatalf("expected nearly-equal values to compare equal")
	}
	if NearlyEqual(1.0, 2.0, 1e-9) {
		t.Fatalf("expected distinct values to compare unequal")
	}
}

func TestEnsureLenComplexReuse(t *testing.T) {
	buf := make([]complex128, 4, 8)
	out := EnsureLenComplex(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}
	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}
}
