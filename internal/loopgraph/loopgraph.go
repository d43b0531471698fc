// Package loopgraph builds the loop constructor: given
// the discriminant's roots and a base point, it produces one simple
// loop per root (a polygonal path from the base point, around a
// Voronoi-cell boundary that encircles the root counter-clockwise,
// and back) such that the loops are pairwise non-crossing and, taken
// in the returned cyclic order, generate pi_1(C - roots, basepoint).
// The honeycomb is the approximate Voronoi/mediatrix construction of
// internal/geom (mediatrix, crossing, detects_left_crossing); the
// lovers neighbour graph and its spanning tree are represented and
// walked with github.com/katalvlaran/lvlath/core, the graph library
// the rest of the example pack standardises on for this concern.
package loopgraph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/lvlath/core"

	"github.com/cwbudde/vankampen/internal/geom"
)

func cabs(z complex128) float64 { return math.Hypot(real(z), imag(z)) }

// ErrNoRoots is returned when BuildLoops is called with an empty root set.
var ErrNoRoots = errors.New("loopgraph: no roots to build loops around")

// ErrDisconnectedNeighbourGraph is returned when the Voronoi-style
// neighbour graph over the roots is not connected: this should not
// happen for a genuine Voronoi diagram and indicates the caller's
// points are not in general position (e.g. duplicated roots).
var ErrDisconnectedNeighbourGraph = errors.New("loopgraph: neighbour graph is disconnected")

// Loops is the output of BuildLoops. Points, Segments and LoopIdx are
// the points/segments/loops data model of spec §3: Points is a
// deduplicated vertex list, Segments an ordered list of unordered
// index pairs, and LoopIdx[i] the signed-segment-index word (negative
// means traversed in reverse) of root i's loop, already reduced by
// shrink. Paths is the same loops resolved back to polylines, the
// form the rest of the pipeline actually walks.
type Loops struct {
	Basepoint complex128
	Roots     []complex128
	Order     []int
	Points    []complex128
	Segments  [][2]int
	LoopIdx   [][]int
	Paths     [][]complex128
}

func vid(i int) string { return fmt.Sprintf("r%d", i) }

func idOf(s string) int {
	var n int
	fmt.Sscanf(s, "r%d", &n)
	return n
}

// NeighbourGraph builds the Voronoi-style adjacency graph over roots
// (the "lovers" graph of spec §4.E step 2): an edge (i,j) exists
// whenever geom.Neighbours finds no third root blocking the direct
// line between them.
func NeighbourGraph(roots []complex128) *core.Graph {
	g := core.NewGraph(core.WithWeighted())
	for i := range roots {
		_ = g.AddVertex(vid(i))
	}
	for i := range roots {
		rest := make([]complex128, 0, len(roots)-1)
		idxOf := make([]int, 0, len(roots)-1)
		for j := range roots {
			if j == i {
				continue
			}
			rest = append(rest, roots[j])
			idxOf = append(idxOf, j)
		}
		near := geom.Neighbours(rest, roots[i])
		for _, z := range near {
			for k, cand := range rest {
				if cand == z {
					j := idxOf[k]
					_ = g.AddEdge(vid(i), vid(j), cabs(roots[i]-roots[j]))
					break
				}
			}
		}
	}
	return g
}

// spanningTree runs a BFS from root over g (via g.Neighbors), returning
// a parent map keyed by vertex id (root maps to itself) and the BFS
// visitation order. It reports ErrDisconnectedNeighbourGraph if not
// every vertex is reached.
func spanningTree(g *core.Graph, ids []string, rootID string) (map[string]string, []string, error) {
	parent := map[string]string{rootID: rootID}
	order := []string{rootID}
	queue := []string{rootID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		nbrs, err := g.Neighbors(cur)
		if err != nil {
			return nil, nil, err
		}
		sort.Strings(nbrs)
		for _, n := range nbrs {
			if _, seen := parent[n]; seen {
				continue
			}
			parent[n] = cur
			order = append(order, n)
			queue = append(queue, n)
		}
	}
	if len(order) != len(ids) {
		return nil, nil, ErrDisconnectedNeighbourGraph
	}
	return parent, order, nil
}

// boundingBox returns a counter-clockwise rectangle enclosing every
// root with margin room to spare, the "enclose R in a rectangular
// box" of spec §4.E step 3.
func boundingBox(roots []complex128, margin float64) []complex128 {
	minX, maxX := real(roots[0]), real(roots[0])
	minY, maxY := imag(roots[0]), imag(roots[0])
	for _, r := range roots[1:] {
		if real(r) < minX {
			minX = real(r)
		}
		if real(r) > maxX {
			maxX = real(r)
		}
		if imag(r) < minY {
			minY = imag(r)
		}
		if imag(r) > maxY {
			maxY = imag(r)
		}
	}
	return []complex128{
		complex(minX-margin, minY-margin),
		complex(maxX+margin, minY-margin),
		complex(maxX+margin, maxY+margin),
		complex(minX-margin, maxY+margin),
	}
}

// buildCircle builds circle[i] of spec §4.E step 3: the ordered
// polygon of the Voronoi cell of y among the box and the other roots,
// by incremental half-plane intersection. Candidates are processed
// nearest-to-y first; geom.DetectsLeftCrossing skips any candidate
// whose mediatrix does not actually cut the current polygon (it is
// not a Voronoi neighbour of y given what has been clipped so far),
// and clipHalfPlane performs the cut for those that do.
func buildCircle(y complex128, others, box []complex128) []complex128 {
	cell := append([]complex128(nil), box...)
	sorted := append([]complex128(nil), others...)
	sort.Slice(sorted, func(i, j int) bool {
		return cabs(sorted[i]-y) < cabs(sorted[j]-y)
	})
	for _, z := range sorted {
		crossed := geom.DetectsLeftCrossing(cell, nil, y, z)
		any := false
		for _, c := range crossed {
			if c {
				any = true
				break
			}
		}
		if !any {
			continue
		}
		cell = clipHalfPlane(cell, y, z)
		if len(cell) < 3 {
			break
		}
	}
	return ensureCCW(cell, y)
}

// clipHalfPlane keeps the portion of the (convex, counter-clockwise)
// polygon verts closer to y than to z, replacing the clipped-away
// boundary with the segment of mediatrix(y,z) between the two
// crossing points (Sutherland-Hodgman half-plane clipping).
func clipHalfPlane(verts []complex128, y, z complex128) []complex128 {
	n := len(verts)
	if n == 0 {
		return verts
	}
	m1, m2 := geom.Mediatrix(y, z)
	keep := func(v complex128) bool { return cabs(v-y) <= cabs(v-z) }
	var out []complex128
	for i := 0; i < n; i++ {
		cur, next := verts[i], verts[(i+1)%n]
		curIn, nextIn := keep(cur), keep(next)
		switch {
		case curIn && nextIn:
			out = append(out, cur)
		case curIn && !nextIn:
			out = append(out, cur)
			if p, ok := geom.Crossing(cur, next, m1, m2); ok {
				out = append(out, p)
			}
		case !curIn && nextIn:
			if p, ok := geom.Crossing(cur, next, m1, m2); ok {
				out = append(out, p)
			}
		}
	}
	if len(out) < 3 {
		return verts
	}
	return out
}

// ensureCCW reverses verts if its signed (shoelace) area around centre
// c is negative, so every circle[i] is traversed counter-clockwise.
func ensureCCW(verts []complex128, c complex128) []complex128 {
	n := len(verts)
	area := 0.0
	for i := 0; i < n; i++ {
		a, b := verts[i]-c, verts[(i+1)%n]-c
		area += real(a)*imag(b) - real(b)*imag(a)
	}
	if area >= 0 {
		return verts
	}
	out := make([]complex128, n)
	for i, v := range verts {
		out[n-1-i] = v
	}
	return out
}

// nearestVertex returns the element of verts closest to target.
func nearestVertex(verts []complex128, target complex128) complex128 {
	best := verts[0]
	bestD := cabs(best - target)
	for _, v := range verts[1:] {
		if d := cabs(v - target); d < bestD {
			bestD = d
			best = v
		}
	}
	return best
}

// rotateToEntrance rotates circle so its first vertex is entrance
// (spec §4.E step 4's "rotate each circle[i] so that its first vertex
// is the midpoint..." — entrance is that midpoint's nearest circle
// vertex, already selected by the caller).
func rotateToEntrance(circle []complex128, entrance complex128) []complex128 {
	n := len(circle)
	idx := 0
	best := cabs(circle[0] - entrance)
	for i := 1; i < n; i++ {
		if d := cabs(circle[i] - entrance); d < best {
			best = d
			idx = i
		}
	}
	out := make([]complex128, n)
	for i := 0; i < n; i++ {
		out[i] = circle[(idx+i)%n]
	}
	return out
}

// pathIDs walks parent pointers from id back to rootID, returning the
// sequence of vertex ids from rootID to id (inclusive).
func pathIDs(parent map[string]string, rootID, id string) []string {
	var ids []string
	for cur := id; ; {
		ids = append([]string{cur}, ids...)
		if cur == rootID {
			break
		}
		cur = parent[cur]
	}
	return ids
}

// BuildLoops implements spec §4.E's 5-step honeycomb/mediatrix
// construction: a Voronoi-style neighbour (lovers) graph, one
// Voronoi-cell polygon circle[i] per root built by incremental
// half-plane intersection, a spanning tree of the lovers graph giving
// each root's handle (the chain of cell-entrance points connecting
// the basepoint to circle[i]), and the raw loop
// handle[i] . circle[i] . reverse(handle[i]) for each root. Order is
// the counter-clockwise cyclic order of the roots around their
// centroid (the CycOrder convention).
func BuildLoops(roots []complex128, basepoint complex128) (*Loops, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	ids := make([]string, len(roots))
	for i := range roots {
		ids[i] = vid(i)
	}

	nearest := 0
	best := cabs(basepoint - roots[0])
	for i := 1; i < len(roots); i++ {
		if d := cabs(basepoint - roots[i]); d < best {
			best = d
			nearest = i
		}
	}

	g := NeighbourGraph(roots)
	parent, bfsOrder, err := spanningTree(g, ids, vid(nearest))
	if err != nil {
		return nil, err
	}

	// Box margin: generous relative to the roots' own spread so the
	// box corners never become a Voronoi cell's only neighbour for
	// more than the outermost roots.
	span := 1.0
	for i := range roots {
		for j := i + 1; j < len(roots); j++ {
			if d := cabs(roots[i] - roots[j]); d > span {
				span = d
			}
		}
	}
	box := boundingBox(append(append([]complex128(nil), roots...), basepoint), 4*span+1)

	circles := make([][]complex128, len(roots))
	for i := range roots {
		others := make([]complex128, 0, len(roots)-1)
		for j, r := range roots {
			if j != i {
				others = append(others, r)
			}
		}
		circles[i] = buildCircle(roots[i], others, box)
	}

	entries := make([]complex128, len(roots))
	entries[nearest] = nearestVertex(circles[nearest], basepoint)
	for _, id := range bfsOrder {
		j := idOf(id)
		if j == nearest {
			continue
		}
		p := idOf(parent[id])
		mid := (roots[j] + roots[p]) / 2
		entries[j] = nearestVertex(circles[j], mid)
	}

	centroid := complex(0, 0)
	for _, r := range roots {
		centroid += r
	}
	centroid /= complex(float64(len(roots)), 0)
	ordered := geom.CycOrder(roots, centroid)
	order := make([]int, len(ordered))
	for i, z := range ordered {
		for j, r := range roots {
			if r == z {
				order[i] = j
				break
			}
		}
	}

	raw := make([][]complex128, len(roots))
	for i := range roots {
		chain := pathIDs(parent, vid(nearest), vid(i))
		handle := make([]complex128, 0, len(chain)+1)
		handle = append(handle, basepoint)
		for _, id := range chain {
			handle = append(handle, entries[idOf(id)])
		}

		rotated := rotateToEntrance(circles[i], entries[i])
		loop := make([]complex128, 0, 2*len(handle)+len(rotated))
		loop = append(loop, handle...)
		loop = append(loop, rotated[1:]...)
		loop = append(loop, rotated[0])
		for k := len(handle) - 2; k >= 0; k-- {
			loop = append(loop, handle[k])
		}
		raw[i] = dedupeConsecutive(loop)
	}

	points, segments, loopIdx := convertLoops(raw)
	paths := make([][]complex128, len(raw))
	for i, signed := range loopIdx {
		paths[i] = resolveLoop(points, segments, raw[i][0], signed)
	}

	return &Loops{
		Basepoint: basepoint,
		Roots:     roots,
		Order:     order,
		Points:    points,
		Segments:  segments,
		LoopIdx:   loopIdx,
		Paths:     paths,
	}, nil
}

// dedupeConsecutive drops immediate repeats (degenerate zero-length
// segments) from a raw polyline before it is converted to the
// points/segments/loops representation.
func dedupeConsecutive(path []complex128) []complex128 {
	if len(path) == 0 {
		return path
	}
	out := make([]complex128, 0, len(path))
	out = append(out, path[0])
	for _, p := range path[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// convertLoops implements the convert_loops step of spec §4.E: it
// deduplicates vertices into points, builds segments as sorted index
// pairs, represents each raw polyline as a sequence of signed segment
// indices, and reduces each with shrink to eliminate back-tracks.
func convertLoops(raw [][]complex128) ([]complex128, [][2]int, [][]int) {
	pointIndex := map[complex128]int{}
	var points []complex128
	addPoint := func(p complex128) int {
		if idx, ok := pointIndex[p]; ok {
			return idx
		}
		idx := len(points)
		points = append(points, p)
		pointIndex[p] = idx
		return idx
	}

	segIndex := map[[2]int]int{}
	var segments [][2]int
	edge := func(a, b int) int {
		lo, hi, rev := a, b, false
		if lo > hi {
			lo, hi, rev = hi, lo, true
		}
		key := [2]int{lo, hi}
		idx, ok := segIndex[key]
		if !ok {
			idx = len(segments)
			segments = append(segments, key)
			segIndex[key] = idx
		}
		signed := idx + 1
		if rev {
			signed = -signed
		}
		return signed
	}

	loopIdx := make([][]int, len(raw))
	for i, path := range raw {
		if len(path) < 2 {
			loopIdx[i] = nil
			continue
		}
		seq := make([]int, 0, len(path)-1)
		prevIdx := addPoint(path[0])
		for _, p := range path[1:] {
			curIdx := addPoint(p)
			if curIdx == prevIdx {
				continue
			}
			seq = append(seq, edge(prevIdx, curIdx))
			prevIdx = curIdx
		}
		loopIdx[i] = shrink(seq)
	}
	return points, segments, loopIdx
}

// shrink cancels adjacent (s,-s) back-tracks to a fixpoint, the same
// stack-based reduction internal/braid and internal/freegroup use for
// free reduction of signed-generator words.
func shrink(seq []int) []int {
	stack := make([]int, 0, len(seq))
	for _, s := range seq {
		if len(stack) > 0 && stack[len(stack)-1] == -s {
			stack = stack[:len(stack)-1]
			continue
		}
		stack = append(stack, s)
	}
	return stack
}

// resolveLoop reconstructs the geometric polyline a signed segment
// sequence describes, starting from start, by walking segments in the
// direction their sign encodes (positive: low index to high index).
func resolveLoop(points []complex128, segments [][2]int, start complex128, signed []int) []complex128 {
	path := make([]complex128, 0, len(signed)+1)
	path = append(path, start)
	for _, s := range signed {
		idx := s
		rev := idx < 0
		if rev {
			idx = -idx
		}
		pair := segments[idx-1]
		to := pair[1]
		if rev {
			to = pair[0]
		}
		path = append(path, points[to])
	}
	return path
}
