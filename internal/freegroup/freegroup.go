// Package freegroup is the free-group/presentation collaborator
// boundary: the Hurwitz action of a braid on an n-tuple of
// free-group elements, and the Van Kampen presentation construction
// (VKQuotient, DBVKQuotient) built from it. A full Tietze
// transformation engine is out of scope; Simplify implements the
// handful of reductions (free/cyclic reduction, duplicate-relator
// removal, trivial-generator elimination) that keep the presentations
// this package produces from growing unreadable.
package freegroup

import (
	"github.com/cwbudde/vankampen/internal/braid"
)

// Fn is the free group of the given rank.
type Fn struct {
	Rank int
}

// Word is an element of a free group, as a reduced sequence of signed
// generators (positive i means x_i, negative -i means x_i^{-1}).
type Word struct {
	Gens []int
}

// New returns the free group on n generators.
func New(n int) Fn { return Fn{Rank: n} }

// Gen returns the length-one word for generator i (1-indexed).
func (f Fn) Gen(i int) Word { return Word{Gens: []int{i}} }

// Identity returns the empty word.
func (f Fn) Identity() Word { return Word{} }

// Mul returns the freely reduced concatenation w*other.
func (w Word) Mul(other Word) Word {
	gens := append(append([]int(nil), w.Gens...), other.Gens...)
	return Word{Gens: reduce(gens)}
}

// Inverse returns w^{-1}.
func (w Word) Inverse() Word {
	out := make([]int, len(w.Gens))
	for i, g := range w.Gens {
		out[len(w.Gens)-1-i] = -g
	}
	return Word{Gens: out}
}

// IsIdentity reports whether w is the empty word.
func (w Word) IsIdentity() bool { return len(w.Gens) == 0 }

func reduce(gens []int) []int {
	stack := make([]int, 0, len(gens))
	for _, g := range gens {
		if len(stack) > 0 && stack[len(stack)-1] == -g {
			stack = stack[:len(stack)-1]
			continue
		}
		stack = append(stack, g)
	}
	return stack
}

// cyclicReduce trims matching inverse pairs from the two ends, as if
// the word were read on a circle (used before taking a canonical form
// for duplicate-relator detection, and to keep relators short).
func cyclicReduce(gens []int) []int {
	g := append([]int(nil), gens...)
	for len(g) >= 2 && g[0] == -g[len(g)-1] {
		g = g[1 : len(g)-1]
	}
	return g
}

// HurwitzAct applies braid word b to the n-tuple loops, one signed
// generator at a time:
//
//	sigma_i:     (..., x_i, x_{i+1}, ...) -> (..., x_{i+1}, x_{i+1}^{-1} x_i x_{i+1}, ...)
//	sigma_i^-1:  (..., x_i, x_{i+1}, ...) -> (..., x_i x_{i+1} x_i^{-1}, x_i, ...)
//
// and returns the resulting n-tuple.
func HurwitzAct(b braid.Word, loops []Word) []Word {
	out := append([]Word(nil), loops...)
	for _, g := range b.Gens {
		i := g
		if i < 0 {
			i = -i
		}
		if i < 1 || i >= len(out) {
			continue
		}
		xi, xi1 := out[i-1], out[i]
		if g > 0 {
			out[i-1] = xi1
			out[i] = xi1.Inverse().Mul(xi).Mul(xi1)
		} else {
			out[i-1] = xi.Mul(xi1).Mul(xi.Inverse())
			out[i] = xi
		}
	}
	return out
}

// Presentation is a finitely presented group: Rank free generators
// modulo Relators (each an element of the free group, implicitly set
// to 1).
type Presentation struct {
	Rank     int
	Relators []Word
}

// VKQuotient builds the Van Kampen presentation of the fundamental
// group from n meridian generators and the list of braid-monodromy
// words attached to the curve's branch points, processed in the order
// the branch points are encountered along the base loop. Each branch
// point b contributes one relator per strand: g_i = (b . g)_i.
func VKQuotient(n int, braids []braid.Word) Presentation {
	f := New(n)
	gens := make([]Word, n)
	for i := range gens {
		gens[i] = f.Gen(i + 1)
	}
	var relators []Word
	for _, b := range braids {
		next := HurwitzAct(b, gens)
		for i := range gens {
			r := gens[i].Mul(next[i].Inverse())
			relators = append(relators, r)
		}
		gens = next
	}
	return Presentation{Rank: n, Relators: relators}
}

// DBVKQuotient is the non-monic variant: when the curve's
// degree in y exceeds the number of finite sheets n, a branch point at
// infinity contributes one extra relator identifying the product of
// all final meridians with the identity (the loop around infinity,
// once every finite branch point's contribution has been accounted
// for, bounds no further topology only when the leading coefficient
// never vanishes; degree > n means it does, and this closes the loop).
func DBVKQuotient(n int, braids []braid.Word, degree int) Presentation {
	f := New(n)
	gens := make([]Word, n)
	for i := range gens {
		gens[i] = f.Gen(i + 1)
	}
	var relators []Word
	for _, b := range braids {
		next := HurwitzAct(b, gens)
		for i := range gens {
			r := gens[i].Mul(next[i].Inverse())
			relators = append(relators, r)
		}
		gens = next
	}
	if degree > n {
		prod := f.Identity()
		for _, g := range gens {
			prod = prod.Mul(g)
		}
		relators = append(relators, prod)
	}
	return Presentation{Rank: n, Relators: relators}
}

// Simplify applies free/cyclic reduction, drops trivial and duplicate
// relators, and eliminates generators that a length-one relator
// forces to the identity, substituting them out of every other
// relator and renumbering the remaining generators 1..Rank in their
// original order. It is a Tietze-lite pass, not a general Tietze transform
// search: it never introduces new generators or relators, only
// removes redundancy that is already syntactically visible.
func (p Presentation) Simplify() Presentation {
	rel := make([]Word, 0, len(p.Relators))
	for _, r := range p.Relators {
		g := cyclicReduce(reduce(r.Gens))
		if len(g) > 0 {
			rel = append(rel, Word{Gens: g})
		}
	}

	killed := map[int]bool{}
	changed := true
	for changed {
		changed = false
		for _, r := range rel {
			if len(r.Gens) == 1 && !killed[abs(r.Gens[0])] {
				killed[abs(r.Gens[0])] = true
				changed = true
			}
		}
		if !changed {
			break
		}
		var next []Word
		for _, r := range rel {
			var out []int
			for _, g := range r.Gens {
				if killed[abs(g)] {
					continue
				}
				out = append(out, g)
			}
			out = cyclicReduce(reduce(out))
			if len(out) > 0 {
				next = append(next, Word{Gens: out})
			}
		}
		rel = next
	}

	rel = dedupeRelators(rel)
	rank := p.Rank
	if len(killed) > 0 {
		renum := make(map[int]int)
		rank = 0
		for g := 1; g <= p.Rank; g++ {
			if !killed[g] {
				rank++
				renum[g] = rank
			}
		}
		for _, r := range rel {
			for i, g := range r.Gens {
				if g < 0 {
					r.Gens[i] = -renum[-g]
				} else {
					r.Gens[i] = renum[g]
				}
			}
		}
	}
	return Presentation{Rank: rank, Relators: rel}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// dedupeRelators removes relators that are equal up to cyclic rotation
// or inversion, keeping canonical-form comparison cheap via a sorted
// string key over all rotations of the word and its inverse.
func dedupeRelators(rel []Word) []Word {
	seen := map[string]bool{}
	var out []Word
	for _, r := range rel {
		key := canonicalKey(r.Gens)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func canonicalKey(gens []int) string {
	variants := [][]int{gens, invertGens(gens)}
	best := ""
	for _, v := range variants {
		for i := range v {
			rot := append(append([]int(nil), v[i:]...), v[:i]...)
			k := intsKey(rot)
			if best == "" || k < best {
				best = k
			}
		}
	}
	return best
}

func invertGens(gens []int) []int {
	out := make([]int, len(gens))
	for i, g := range gens {
		out[len(gens)-1-i] = -g
	}
	return out
}

func intsKey(gens []int) string {
	parts := make([]string, len(gens))
	for i, g := range gens {
		parts[i] = itoa(g)
	}
	return join(parts)
}

func itoa(x int) string {
	if x == 0 {
		return "0"
	}
	neg := x < 0
	if neg {
		x = -x
	}
	var digits []byte
	for x > 0 {
		digits = append([]byte{byte('0' + x%10)}, digits...)
		x /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func join(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out
}
