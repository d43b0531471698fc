// Package geom provides the planar geometry helpers used
// by the loop constructor: segment distance, mediatrices, line
// crossings, angular sort and Voronoi-style neighbour detection. None
// of these claim certification (only the root finder and the
// certified monodromy follower do); they operate on plain complex128.
package geom

import (
	"math"
	"sort"
)

// DistSeg returns the Euclidean distance from z to the closed segment [a,b].
func DistSeg(z, a, b complex128) float64 {
	d := b - a
	if d == 0 {
		return cabs(z - a)
	}
	t := real(conj(d)*(z-a)) / real(conj(d)*d)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := a + complex(t, 0)*d
	return cabs(z - proj)
}

func conj(z complex128) complex128 { return complex(real(z), -imag(z)) }
func cabs(z complex128) float64    { return math.Hypot(real(z), imag(z)) }

// Mediatrix returns the two endpoints of the perpendicular bisector of
// [x,y], each at distance |x-y| from the midpoint, along the
// perpendicular direction.
func Mediatrix(x, y complex128) (complex128, complex128) {
	mid := (x + y) / 2
	dir := y - x
	perp := complex(0, 1) * dir // rotate by i
	length := cabs(dir)
	if length == 0 {
		return mid, mid
	}
	unit := perp / complex(length, 0)
	p1 := mid + complex(length, 0)*unit
	p2 := mid - complex(length, 0)*unit
	return p1, p2
}

// Crossing returns the intersection point of lines (x1x2) and (y1y2),
// or (0, false) if the lines are parallel or either pair of endpoints
// coincides. Implemented via the standard 2x2 linear solve, which is
// equivalent to (and numerically no worse than) the rotate-by-E(3)
// and rotate-by-i case analysis the original VKCURVE algorithm uses
// to dodge vertical-line degeneracies: working directly with the
// determinant form avoids division by a coordinate difference that
// might be zero without needing the rotation trick at all.
func Crossing(x1, x2, y1, y2 complex128) (complex128, bool) {
	if x1 == x2 || y1 == y2 {
		return 0, false
	}
	d1 := x2 - x1
	d2 := y2 - y1
	denom := real(d1)*imag(d2) - imag(d1)*real(d2)
	if math.Abs(denom) < 1e-14*math.Max(cabs(d1)*cabs(d2), 1) {
		return 0, false
	}
	// Solve x1 + t*d1 = y1 + s*d2 for t.
	rhs := y1 - x1
	t := (real(rhs)*imag(d2) - imag(rhs)*real(d2)) / denom
	return x1 + complex(t, 0)*d1, true
}

// CycOrder returns list sorted counter-clockwise around centre c,
// starting just after the direction -i (i.e. from angle -pi/2 + eps
// going counter-clockwise).
func CycOrder(list []complex128, c complex128) []complex128 {
	out := append([]complex128(nil), list...)
	const eps = 1e-9
	start := -math.Pi/2 + eps
	angle := func(z complex128) float64 {
		a := math.Atan2(imag(z-c), real(z-c))
		a -= start
		for a < 0 {
			a += 2 * math.Pi
		}
		for a >= 2*math.Pi {
			a -= 2 * math.Pi
		}
		return a
	}
	sort.Slice(out, func(i, j int) bool {
		return angle(out[i]) < angle(out[j])
	})
	return out
}

// Neighbours returns the sublist of list of points y such that no
// other point z in list lies in the closed disk of diameter [c, y]
// (i.e. y is a Voronoi-style nearest candidate from c's perspective).
func Neighbours(list []complex128, c complex128) []complex128 {
	var out []complex128
	for _, y := range list {
		if y == c {
			continue
		}
		center := (c + y) / 2
		radius := cabs(y-c) / 2
		blocked := false
		for _, z := range list {
			if z == y || z == c {
				continue
			}
			if cabs(z-center) <= radius+1e-12 {
				blocked = true
				break
			}
		}
		if !blocked {
			out = append(out, y)
		}
	}
	return out
}

// DetectsLeftCrossing reports, for each edge (c[i], c[(i+1)%len(c)])
// of the current Voronoi-polygon vertex sequence c, whether the
// mediatrix of (y, z) crosses that edge and the edge's far endpoint
// c[(i+1)%len(c)] lies strictly on the z side. The witnesses w are
// accepted but not consulted. It returns one boolean per edge of c.
func DetectsLeftCrossing(c []complex128, w []complex128, y, z complex128) []bool {
	n := len(c)
	out := make([]bool, n)
	if n == 0 {
		return out
	}
	m1, m2 := Mediatrix(y, z)
	for i := 0; i < n; i++ {
		a, b := c[i], c[(i+1)%n]
		p, ok := Crossing(a, b, m1, m2)
		if !ok {
			continue
		}
		// p lies on the edge segment iff its projection parameter is in [0,1].
		d := b - a
		if d == 0 {
			continue
		}
		t := real(conj(d)*(p-a)) / real(conj(d)*d)
		if t < -1e-9 || t > 1+1e-9 {
			continue
		}
		// The crossing matters only if the edge's far endpoint is
		// strictly closer to z than to y.
		_ = w
		if cabs(b-z) < cabs(b-y) {
			out[i] = true
		}
	}
	return out
}
