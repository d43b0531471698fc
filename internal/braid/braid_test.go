package braid

import "testing"

func TestMulReducesInversePairs(t *testing.T) {
	m := New(3)
	w := m.Gen(1).Mul(m.Gen(-1))
	if !w.IsIdentity() {
		t.Fatalf("expected sigma_1 * sigma_1^-1 to reduce to identity, got %v", w)
	}
}

func TestInverseRoundtrip(t *testing.T) {
	m := New(4)
	w := m.Gen(1).Mul(m.Gen(2)).Mul(m.Gen(-1))
	inv := w.Inverse()
	product := w.Mul(inv)
	if !product.IsIdentity() {
		t.Fatalf("w * w^-1 should be identity, got %v", product)
	}
}

func TestStarBraidReflectionLength(t *testing.T) {
	sb := StarBraid(1, 3, 3)
	want := 3 * (3 - 1) / 2
	if sb.ReflectionLength() != want {
		t.Fatalf("Delta_3 reflection length = %d, want %d", sb.ReflectionLength(), want)
	}
}

func TestEqualDistinguishesDistinctWords(t *testing.T) {
	m := New(3)
	a := m.Gen(1)
	b := m.Gen(2)
	if a.Equal(b) {
		t.Fatalf("distinct generators should not compare equal")
	}
	if !a.Equal(m.Gen(1)) {
		t.Fatalf("identical generators should compare equal")
	}
}
