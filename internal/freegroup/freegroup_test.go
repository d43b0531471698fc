package freegroup

import (
	"testing"

	"github.com/cwbudde/vankampen/internal/braid"
)

func TestHurwitzActSingleGenerator(t *testing.T) {
	f := New(2)
	loops := []Word{f.Gen(1), f.Gen(2)}
	m := braid.New(2)
	out := HurwitzAct(m.Gen(1), loops)
	want := Word{Gens: []int{2}}
	if !sameWord(out[0], want) {
		t.Fatalf("sigma_1 . (x1,x2)[0] = %v, want %v", out[0], want)
	}
	// x2^-1 x1 x2
	want1 := Word{Gens: []int{-2, 1, 2}}
	if !sameWord(out[1], want1) {
		t.Fatalf("sigma_1 . (x1,x2)[1] = %v, want %v", out[1], want1)
	}
}

func TestHurwitzActInverseUndoesAction(t *testing.T) {
	f := New(3)
	loops := []Word{f.Gen(1), f.Gen(2), f.Gen(3)}
	m := braid.New(3)
	b := m.Gen(1).Mul(m.Gen(2))
	fwd := HurwitzAct(b, loops)
	back := HurwitzAct(b.Inverse(), fwd)
	for i := range loops {
		if !sameWord(back[i], loops[i]) {
			t.Fatalf("roundtrip mismatch at %d: got %v want %v", i, back[i], loops[i])
		}
	}
}

func TestVKQuotientIdentityBraidGivesTrivialRelators(t *testing.T) {
	m := braid.New(3)
	p := VKQuotient(3, []braid.Word{m.Identity()})
	simplified := p.Simplify()
	if len(simplified.Relators) != 0 {
		t.Fatalf("identity braid should contribute no relators after simplification, got %v", simplified.Relators)
	}
}

func TestSimplifyEliminatesTrivialGenerator(t *testing.T) {
	p := Presentation{
		Rank: 2,
		Relators: []Word{
			{Gens: []int{1}},
			{Gens: []int{1, 2}},
		},
	}
	s := p.Simplify()
	for _, r := range s.Relators {
		for _, g := range r.Gens {
			if abs(g) == 1 {
				t.Fatalf("generator 1 should have been eliminated, relator %v", r)
			}
		}
	}
}

func TestSimplifyDedupesCyclicRotationsAndInverses(t *testing.T) {
	p := Presentation{
		Rank: 2,
		Relators: []Word{
			{Gens: []int{1, 2, -1, -2}},
			{Gens: []int{2, -1, -2, 1}}, // cyclic rotation of the first
			{Gens: []int{2, 1, -2, -1}}, // inverse of the first
		},
	}
	s := p.Simplify()
	if len(s.Relators) != 1 {
		t.Fatalf("expected duplicates to collapse to one relator, got %v", s.Relators)
	}
}

func sameWord(a, b Word) bool {
	if len(a.Gens) != len(b.Gens) {
		return false
	}
	for i := range a.Gens {
		if a.Gens[i] != b.Gens[i] {
			return false
		}
	}
	return true
}
