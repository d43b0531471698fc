package upoly

import (
	"math/big"
	"testing"
)

func rp(vals ...int64) RPoly {
	c := make([]*big.Rat, len(vals))
	for i, v := range vals {
		c[i] = big.NewRat(v, 1)
	}
	return NewR(c)
}

func TestSturmRootCountOnKnownRoots(t *testing.T) {
	// p(x) = (x-1)(x-2)(x-3) = x^3 -6x^2+11x-6, roots at 1,2,3.
	p := rp(-6, 11, -6, 1)
	seq := Sequence(p)

	count := RootCount(seq, big.NewRat(0, 1), big.NewRat(10, 1))
	if count != 3 {
		t.Fatalf("RootCount(0,10) = %d, want 3", count)
	}

	count = RootCount(seq, big.NewRat(0, 1), big.NewRat(2, 1))
	if count != 2 {
		t.Fatalf("RootCount(0,2) = %d, want 2", count)
	}
}

func TestPositiveUntilStaysBelowRoot(t *testing.T) {
	// p(x) = 1 - x, positive on (-inf,1), root at x=1.
	p := rp(1, -1)
	seq := Sequence(p)

	tm := big.NewRat(0, 1)
	hi := big.NewRat(2, 1)
	s, ok := PositiveUntil(seq, tm, hi, 40)
	if !ok {
		t.Fatalf("PositiveUntil failed unexpectedly")
	}
	if s.Cmp(big.NewRat(1, 1)) > 0 {
		t.Fatalf("certified horizon %v exceeds the root at 1", s)
	}
	if s.Cmp(tm) <= 0 {
		t.Fatalf("certified horizon %v did not advance past tm", s)
	}
}

func TestPositiveUntilFailsWhenAlreadyNonPositive(t *testing.T) {
	// p(x) = -1 - x^2 is never positive.
	p := rp(-1, 0, -1)
	seq := Sequence(p)
	_, ok := PositiveUntil(seq, big.NewRat(0, 1), big.NewRat(1, 1), 20)
	if ok {
		t.Fatalf("expected PositiveUntil to fail for a never-positive polynomial")
	}
}
