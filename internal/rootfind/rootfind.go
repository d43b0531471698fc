// Package rootfind implements the certified root finder:
// newton_root, separate_roots_initial_guess and separate_roots. Every
// result is accompanied by a certified error bound derived from the
// Newton iteration itself, never from a floating-point-only heuristic.
package rootfind

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/cwbudde/vankampen/internal/numfield"
	"github.com/cwbudde/vankampen/internal/upoly"
)

// ErrNewtonNonConvergent is returned when newton_root exceeds its
// iteration limit without reaching the target tolerance.
var ErrNewtonNonConvergent = errors.New("rootfind: newton iteration did not converge")

// ErrRootsNotSeparated is returned when separate_roots(_initial_guess)
// cannot certify disjoint attraction basins for every root.
var ErrRootsNotSeparated = errors.New("rootfind: could not certify disjoint root enclosures")

// DefaultNewtonLimit is the default iteration cap for NewtonRoot.
const DefaultNewtonLimit = 800

// NewtonRoot refines z0 to a root of p within eps. It iterates
// z <- z - p(z)/p'(z), terminating successfully once the correction's
// modulus is at most eps/(100*(deg(p)+1)), then rationalises the
// result with numfield.Simp at that same tolerance. It returns the
// refined scalar and a certified error bound (<= eps).
func NewtonRoot(p upoly.Poly, z0 complex128, eps float64, lim int) (numfield.Scalar, float64, error) {
	if lim <= 0 {
		lim = DefaultNewtonLimit
	}
	dp := p.Derivative()
	tol := eps / (100 * float64(p.Degree()+1))
	z := z0
	for i := 0; i < lim; i++ {
		fz := p.EvalComplex(z)
		fpz := dp.EvalComplex(z)
		if fpz == 0 {
			z += complex(1e-10, 1e-10)
			continue
		}
		delta := fz / fpz
		z -= delta
		if cmplx.Abs(delta) <= tol {
			s := numfield.Simp(z, tol)
			return s, tol, nil
		}
	}
	return numfield.Scalar{}, 0, ErrNewtonNonConvergent
}

// NearestPair returns the minimum pairwise distance among v.
func NearestPair(v []complex128) float64 {
	if len(v) < 2 {
		return math.Inf(1)
	}
	min := math.Inf(1)
	for i := range v {
		for j := i + 1; j < len(v); j++ {
			if d := cmplx.Abs(v[i] - v[j]); d < min {
				min = d
			}
		}
	}
	return min
}

// NearestPairScalar is NearestPair over certified scalars.
func NearestPairScalar(v []numfield.Scalar) float64 {
	c := make([]complex128, len(v))
	for i, s := range v {
		c[i] = s.Complex128()
	}
	return NearestPair(c)
}

// SeparateRootsInitialGuess refines one guess per root of p, starting
// from v, using newton_root at tolerance nearest_pair(v)/(2*safety).
// It succeeds iff every refinement converges and the refined roots'
// minimum pairwise distance divided by 2*safety still exceeds the
// largest returned error bound, certifying that the disks of radius
// dist_min(result)/(2*safety) around each returned root are pairwise
// disjoint and each contains exactly one root of p.
func SeparateRootsInitialGuess(p upoly.Poly, v []complex128, safety float64) ([]numfield.Scalar, error) {
	if len(v) == 0 {
		return nil, nil
	}
	if safety <= 0 {
		safety = 100
	}
	tol := NearestPair(v) / (2 * safety)
	if math.IsInf(tol, 1) || tol <= 0 {
		tol = 1e-6
	}

	refined := make([]numfield.Scalar, len(v))
	maxErr := 0.0
	for i, z0 := range v {
		z, errBound, err := NewtonRoot(p, z0, tol, DefaultNewtonLimit)
		if err != nil {
			return nil, ErrRootsNotSeparated
		}
		refined[i] = z
		if errBound > maxErr {
			maxErr = errBound
		}
	}

	minDist := NearestPairScalar(refined)
	if minDist/(2*safety) <= maxErr {
		return nil, ErrRootsNotSeparated
	}
	return refined, nil
}

// SeparateRoots bootstraps an initial guess for every root of p from
// seeds e = 5/4 * E(2*(deg p+1))^k, deflating numerically after each
// success, then certifies the full set via
// SeparateRootsInitialGuess. It fails if p has repeated roots (the
// bootstrap cannot find deg(p) numerically distinct roots, or the
// final certification fails). If the float64 bootstrap cannot
// separate deg(p) seeds — typically because two branch points sit
// close enough together that double-precision deflation loses them —
// it retries once with hiPrecBootstrap's arbitrary-precision Newton
// iteration before giving up.
func SeparateRoots(p upoly.Poly, safety float64) ([]numfield.Scalar, error) {
	coeffs := make([]complex128, len(p.C))
	for i, c := range p.C {
		coeffs[i] = c.Complex128()
	}
	guesses, ok := bootstrapGuesses(coeffs)
	if !ok || len(guesses) != p.Degree() {
		guesses, ok = hiPrecBootstrap(coeffs)
		if !ok || len(guesses) != p.Degree() {
			return nil, ErrRootsNotSeparated
		}
	}
	return SeparateRootsInitialGuess(p, guesses, safety)
}

// bootstrapGuesses numerically finds deg(p) approximate, numerically
// distinct roots of the ascending-order coefficient slice coeffs by
// repeated seeded Newton iteration and synthetic deflation. This
// numeric pass only produces seeds for the certified pass; it is not
// itself a source of certified output.
func bootstrapGuesses(coeffs []complex128) ([]complex128, bool) {
	n := len(coeffs) - 1
	if n <= 0 {
		return nil, true
	}
	if n == 1 {
		return []complex128{-coeffs[0] / coeffs[1]}, true
	}

	order := 2 * (n + 1)
	for k := 0; k < order; k++ {
		angle := 2 * math.Pi * float64(k) / float64(order)
		seed := 1.25 * complex(math.Cos(angle), math.Sin(angle))
		root, ok := numericNewton(coeffs, seed, 1e-12, DefaultNewtonLimit)
		if !ok {
			continue
		}
		deflated := deflate(coeffs, root)
		rest, ok := bootstrapGuesses(deflated)
		if !ok {
			continue
		}
		return append(rest, root), true
	}
	return nil, false
}

func numericNewton(coeffs []complex128, z0 complex128, tol float64, lim int) (complex128, bool) {
	z := z0
	for i := 0; i < lim; i++ {
		fz := evalC(coeffs, z)
		fpz := evalC(derivC(coeffs), z)
		if fpz == 0 {
			z += complex(1e-10, 1e-10)
			continue
		}
		delta := fz / fpz
		z -= delta
		if cmplx.Abs(delta) <= tol {
			return z, true
		}
	}
	return 0, false
}

func evalC(coeffs []complex128, x complex128) complex128 {
	acc := complex(0, 0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc*x + coeffs[i]
	}
	return acc
}

func derivC(coeffs []complex128) []complex128 {
	if len(coeffs) <= 1 {
		return nil
	}
	out := make([]complex128, len(coeffs)-1)
	for i := 1; i < len(coeffs); i++ {
		out[i-1] = coeffs[i] * complex(float64(i), 0)
	}
	return out
}

// deflate divides coeffs (ascending order) by (x - root) via
// synthetic division, discarding the (numerically near-zero)
// remainder.
func deflate(coeffs []complex128, root complex128) []complex128 {
	n := len(coeffs) - 1
	out := make([]complex128, n)
	out[n-1] = coeffs[n]
	for i := n - 2; i >= 0; i-- {
		out[i] = coeffs[i+1] + root*out[i+1]
	}
	return out
}
