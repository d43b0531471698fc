// Package lbraid implements the linear braid reconstructor: given two
// n-tuples of distinct complex numbers, it recovers the braid
// generated by the straight-line homotopy between them.
package lbraid

import (
	"errors"
	"math"
	"sort"

	"github.com/cwbudde/vankampen/internal/braid"
)

// ErrSingularMonodromy is returned when, even after lexicographic
// desingularisation, the critical crossing parameters are not simple
// (two independent pairs crossing at exactly the same instant in a
// way the block-star-braid reconstruction cannot resolve).
var ErrSingularMonodromy = errors.New("lbraid: singular monodromy after desingularisation")

const (
	eventTol    = 1e-7
	maxDesing   = 12
	baseTheta   = 1e-3
)

// LBraidToWord returns the braid produced by the straight-line
// homotopy t -> (1-t)v1 + t v2, as an element of the monoid on
// len(v1) strands.
func LBraidToWord(v1, v2 []complex128, mon braid.Monoid) (braid.Word, error) {
	n := len(v1)
	if len(v2) != n {
		return braid.Word{}, errors.New("lbraid: v1 and v2 must have the same length")
	}
	w := mon.Identity()
	if n < 2 {
		return w, nil
	}

	a, b, err := desingularise(v1, v2)
	if err != nil {
		return braid.Word{}, err
	}

	events, err := criticalTimes(a, b)
	if err != nil {
		return braid.Word{}, err
	}

	order := initialOrder(a)
	for _, ev := range events {
		gens, err := applyEvent(a, b, order, ev)
		if err != nil {
			return braid.Word{}, err
		}
		for _, g := range gens {
			w = w.Mul(mon.Gen(g))
		}
	}
	return w, nil
}

// desingularise detects coincident real parts among v1 and, if found,
// rotates both configurations by 1 - i*tan(theta)/2 for successively
// larger small theta until the coincidence is broken.
func desingularise(v1, v2 []complex128) ([]complex128, []complex128, error) {
	if !hasCoincidentRealParts(v1) {
		return v1, v2, nil
	}
	for k := 1; k <= maxDesing; k++ {
		theta := baseTheta * float64(k)
		rot := complex(1, -math.Tan(theta)/2)
		a := rotateAll(v1, rot)
		if !hasCoincidentRealParts(a) {
			b := rotateAll(v2, rot)
			return a, b, nil
		}
	}
	return nil, nil, ErrSingularMonodromy
}

func rotateAll(v []complex128, rot complex128) []complex128 {
	out := make([]complex128, len(v))
	for i, z := range v {
		out[i] = z * rot
	}
	return out
}

func hasCoincidentRealParts(v []complex128) bool {
	for i := range v {
		for j := i + 1; j < len(v); j++ {
			if math.Abs(real(v[i])-real(v[j])) < eventTol {
				return true
			}
		}
	}
	return false
}

type pairCrossing struct {
	t    float64
	i, j int
}

type event struct {
	t       float64
	indices []int
}

// criticalTimes computes, for every pair (i,j), the parameter
// t_ij = (Re v1[j]-Re v1[i]) / ((Re v2[i]-Re v2[j]) - (Re v1[i]-Re v1[j])),
// keeping it when it lies strictly in (0,1) and the real-part order of
// i,j actually swaps between t=0 and t=1. Crossings within eventTol of
// each other are merged into a single combinatorial event (a block).
func criticalTimes(v1, v2 []complex128) ([]event, error) {
	n := len(v1)
	var crossings []pairCrossing
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d0 := real(v1[i]) - real(v1[j])
			d1 := real(v2[i]) - real(v2[j])
			denom := d1 - d0
			if denom == 0 {
				continue
			}
			t := (-d0) / denom
			if t <= 0 || t >= 1 {
				continue
			}
			if (d0 > 0) == (d1 > 0) {
				// order did not actually swap (shouldn't happen given
				// the above, kept as a defensive check).
				continue
			}
			crossings = append(crossings, pairCrossing{t: t, i: i, j: j})
		}
	}
	sort.Slice(crossings, func(a, b int) bool { return crossings[a].t < crossings[b].t })

	var events []event
	used := make(map[int]bool)
	for idx := 0; idx < len(crossings); idx++ {
		if used[idx] {
			continue
		}
		cluster := []pairCrossing{crossings[idx]}
		used[idx] = true
		for k := idx + 1; k < len(crossings); k++ {
			if used[k] {
				continue
			}
			if crossings[k].t-cluster[0].t < eventTol {
				cluster = append(cluster, crossings[k])
				used[k] = true
			}
		}
		idxSet := map[int]bool{}
		for _, c := range cluster {
			idxSet[c.i] = true
			idxSet[c.j] = true
		}
		var indices []int
		for i := range idxSet {
			indices = append(indices, i)
		}
		sort.Ints(indices)
		avgT := 0.0
		for _, c := range cluster {
			avgT += c.t
		}
		avgT /= float64(len(cluster))
		events = append(events, event{t: avgT, indices: indices})
	}
	sort.Slice(events, func(a, b int) bool { return events[a].t < events[b].t })
	return events, nil
}

func initialOrder(v []complex128) []int {
	order := make([]int, len(v))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool { return real(v[order[a]]) < real(v[order[b]]) })
	return order
}

// applyEvent resolves one combinatorial crossing event: it locates the
// contiguous block of positions occupied by the colliding strands in
// the current order, decides the star-braid direction from the
// imaginary-part order, emits the corresponding signed generator
// range, and mutates order in place to reflect the block reversal.
func applyEvent(v1, v2 []complex128, order []int, ev event) ([]int, error) {
	pos := make(map[int]int, len(order))
	for p, idx := range order {
		pos[idx] = p
	}
	minPos, maxPos := len(order), -1
	for _, idx := range ev.indices {
		p := pos[idx]
		if p < minPos {
			minPos = p
		}
		if p > maxPos {
			maxPos = p
		}
	}
	k := maxPos - minPos + 1
	if k != len(ev.indices) {
		return nil, ErrSingularMonodromy
	}

	at := func(z1, z2 complex128, t float64) complex128 {
		return complex(1-t, 0)*z1 + complex(t, 0)*z2
	}
	block := append([]int(nil), order[minPos:maxPos+1]...)
	sort.Slice(block, func(a, b int) bool {
		za := at(v1[block[a]], v2[block[a]], ev.t)
		zb := at(v1[block[b]], v2[block[b]], ev.t)
		return imag(za) > imag(zb)
	})
	frontToBack := block

	preOrder := append([]int(nil), order[minPos:maxPos+1]...) // ascending real part, pre-crossing
	positive := sameOrder(frontToBack, preOrder)

	offset := minPos + 1 // generators are 1-indexed
	sb := braid.StarBraid(offset, k, 0)
	gens := append([]int(nil), sb.Gens...)
	if !positive {
		for i, g := range gens {
			gens[i] = -g
		}
	}

	// Reverse the block in order to reflect the crossing.
	for i, j := minPos, maxPos; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return gens, nil
}

func sameOrder(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
