package geom

import (
	"math"
	"testing"
)

func TestDistSegEndpointsAndInterior(t *testing.T) {
	a, b := complex(0, 0), complex(4, 0)
	if d := DistSeg(complex(2, 3), a, b); math.Abs(d-3) > 1e-9 {
		t.Fatalf("DistSeg midpoint perpendicular = %v, want 3", d)
	}
	if d := DistSeg(complex(-1, 0), a, b); math.Abs(d-1) > 1e-9 {
		t.Fatalf("DistSeg before start = %v, want 1", d)
	}
	if d := DistSeg(complex(5, 0), a, b); math.Abs(d-1) > 1e-9 {
		t.Fatalf("DistSeg after end = %v, want 1", d)
	}
}

func TestMediatrixEquidistant(t *testing.T) {
	x, y := complex(0, 0), complex(2, 0)
	p1, p2 := Mediatrix(x, y)
	if math.Abs(cabs(p1-x)-cabs(p1-y)) > 1e-9 {
		t.Fatalf("p1 not equidistant from x,y")
	}
	if math.Abs(cabs(p2-x)-cabs(p2-y)) > 1e-9 {
		t.Fatalf("p2 not equidistant from x,y")
	}
}

func TestCrossingOfPerpendicularLines(t *testing.T) {
	p, ok := Crossing(complex(-1, 0), complex(1, 0), complex(0, -1), complex(0, 1))
	if !ok {
		t.Fatalf("expected a crossing")
	}
	if cabs(p-complex(0, 0)) > 1e-9 {
		t.Fatalf("Crossing = %v, want origin", p)
	}
}

func TestCrossingParallelLinesNone(t *testing.T) {
	_, ok := Crossing(complex(0, 0), complex(1, 0), complex(0, 1), complex(1, 1))
	if ok {
		t.Fatalf("expected no crossing for parallel lines")
	}
}

func TestCycOrderStartsJustBelowNegativeImaginaryAxis(t *testing.T) {
	pts := []complex128{complex(1, 0), complex(0, -1), complex(-1, 0), complex(0, 1)}
	ordered := CycOrder(pts, 0)
	if ordered[0] != complex(1, 0) {
		t.Fatalf("CycOrder first point = %v, want 1 (the -i direction itself sorts last)", ordered[0])
	}
}

func TestNeighboursExcludesBlockedPoints(t *testing.T) {
	c := complex(0, 0)
	near := complex(1, 0)
	far := complex(3, 0) // blocked: `near` lies inside disk of diameter [c,far]
	list := []complex128{near, far}
	n := Neighbours(list, c)
	if len(n) != 1 || n[0] != near {
		t.Fatalf("Neighbours = %v, want [%v]", n, near)
	}
}
