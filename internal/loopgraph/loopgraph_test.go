package loopgraph

import (
	"math"
	"testing"
)

func TestBuildLoopsCoversEveryRootOnce(t *testing.T) {
	roots := []complex128{complex(-2, 0), complex(0, 0), complex(2, 0), complex(0, 2)}
	base := complex(0, -5)
	loops, err := BuildLoops(roots, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loops.Paths) != len(roots) {
		t.Fatalf("expected %d paths, got %d", len(roots), len(loops.Paths))
	}
	if len(loops.Order) != len(roots) {
		t.Fatalf("expected order to cover all roots, got %v", loops.Order)
	}
	seen := make(map[int]bool)
	for _, idx := range loops.Order {
		seen[idx] = true
	}
	if len(seen) != len(roots) {
		t.Fatalf("order should be a permutation of all roots, got %v", loops.Order)
	}
	for i, p := range loops.Paths {
		if len(p) < 2 || p[0] != base {
			t.Fatalf("path %d should start at the basepoint, got %v", i, p)
		}
		if p[len(p)-1] != base {
			t.Fatalf("path %d should close back at the basepoint, got %v", i, p[len(p)-1])
		}
		for _, v := range p {
			for j, r := range roots {
				if v == r {
					t.Fatalf("path %d passes through root %d (%v): no segment endpoint may equal a root", i, j, r)
				}
			}
		}
	}
}

// TestBuildLoopsWindsOnceAroundItsOwnRootOnly is the topological
// correctness property the loop constructor exists for: each loop
// must have winding number 1 around its own root and 0 around every
// other root, or the braid-monodromy tracked along it cannot recover
// the transposition a simple branch point induces.
func TestBuildLoopsWindsOnceAroundItsOwnRootOnly(t *testing.T) {
	roots := []complex128{complex(-2, 0), complex(0, 0), complex(2, 0), complex(0, 2)}
	base := complex(0, -5)
	loops, err := BuildLoops(roots, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range loops.Paths {
		for j, r := range roots {
			w := windingNumber(p, r)
			want := 0
			if j == i {
				want = 1
			}
			if w != want {
				t.Fatalf("loop %d winds %d times around root %d (%v), want %d", i, w, j, r, want)
			}
		}
	}
}

// windingNumber returns the (rounded) winding number of the closed
// polyline path around c, by summing signed subtended angles between
// consecutive vertices.
func windingNumber(path []complex128, c complex128) int {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i]-c, path[i+1]-c
		total += math.Atan2(real(a)*imag(b)-imag(a)*real(b), real(a)*real(b)+imag(a)*imag(b))
	}
	return int(math.Round(total / (2 * math.Pi)))
}

func TestBuildLoopsRejectsEmptyRoots(t *testing.T) {
	_, err := BuildLoops(nil, complex(0, 0))
	if err != ErrNoRoots {
		t.Fatalf("expected ErrNoRoots, got %v", err)
	}
}

func TestNeighbourGraphIsSymmetric(t *testing.T) {
	roots := []complex128{complex(-1, 0), complex(1, 0), complex(0, 1)}
	g := NeighbourGraph(roots)
	for i := range roots {
		nbrs, err := g.Neighbors(vid(i))
		if err != nil {
			t.Fatalf("Neighbors(%d): %v", i, err)
		}
		for _, n := range nbrs {
			back, err := g.Neighbors(n)
			if err != nil {
				t.Fatalf("Neighbors(%s): %v", n, err)
			}
			found := false
			for _, b := range back {
				if b == vid(i) {
					found = true
				}
			}
			if !found {
				t.Fatalf("edge %d->%s not symmetric", i, n)
			}
		}
	}
}

// TestShrinkCancelsBacktracks checks the shrink fixpoint spec §4.E
// requires of the signed segment-index representation: adjacent
// (s,-s) pairs cancel, including cascading cancellations.
func TestShrinkCancelsBacktracks(t *testing.T) {
	in := []int{1, 2, 3, -3, -2, 4}
	got := shrink(in)
	want := []int{1, 4}
	if len(got) != len(want) {
		t.Fatalf("shrink(%v) = %v, want %v", in, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("shrink(%v) = %v, want %v", in, got, want)
		}
	}
}

// TestShrinkIsIdempotent is spec §8's "Idempotence of shrink" property.
func TestShrinkIsIdempotent(t *testing.T) {
	in := []int{1, 2, -2, 3, -1}
	once := shrink(in)
	twice := shrink(once)
	if len(once) != len(twice) {
		t.Fatalf("shrink not idempotent: %v then %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("shrink not idempotent: %v then %v", once, twice)
		}
	}
}

// TestResolveLoopReproducesConvertedPath exercises the points/segments
// round trip: resolving LoopIdx through Points/Segments must give
// back (a shrink-equivalent form of) the same geometric polyline
// BuildLoops already returns as Paths.
func TestResolveLoopReproducesConvertedPath(t *testing.T) {
	roots := []complex128{complex(-2, 0), complex(2, 0), complex(0, 3)}
	base := complex(0, -5)
	loops, err := BuildLoops(roots, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range roots {
		got := resolveLoop(loops.Points, loops.Segments, loops.Paths[i][0], loops.LoopIdx[i])
		if len(got) != len(loops.Paths[i]) {
			t.Fatalf("loop %d: resolve gave %d points, Paths has %d", i, len(got), len(loops.Paths[i]))
		}
		for k := range got {
			if got[k] != loops.Paths[i][k] {
				t.Fatalf("loop %d point %d: resolve gave %v, Paths has %v", i, k, got[k], loops.Paths[i][k])
			}
		}
	}
}
