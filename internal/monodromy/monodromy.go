// Package monodromy implements the two braid-monodromy followers of
// ApproxFollower, a heuristic adaptive-step tracker
// used only when the caller opts into it, and CertifiedFollower, the
// default, which protects every step with a Sturm-sequence proof that
// the tracked roots cannot have collided inside the step.
package monodromy

import (
	"errors"
	"math"
	"math/big"
	"math/cmplx"

	"github.com/cwbudde/vankampen/internal/numfield"
	"github.com/cwbudde/vankampen/internal/rootfind"
	"github.com/cwbudde/vankampen/internal/upoly"
)

// ErrFitAmbiguous is returned when the approximate follower's
// end-of-segment fit against the independently separated target fibre
// fails to be a bijection within tolerance.
var ErrFitAmbiguous = errors.New("monodromy: ambiguous root correspondence across step")

// ErrAdaptiveStepUnderflow is returned when ApproxFollower halves its
// step below MinStep without ever certifying a separating step: the
// segment is too close to a genuine collision for the heuristic
// thresholds to make progress.
var ErrAdaptiveStepUnderflow = errors.New("monodromy: approximate follower step underflowed without a separating advance")

// ErrNonSeparable is returned when the certified follower's protection
// polynomial is non-positive immediately past the current parameter,
// meaning two tracked roots are already colliding and no certified
// step forward exists.
var ErrNonSeparable = errors.New("monodromy: roots are not separable across this segment")

// CurveAt evaluates the defining bivariate curve's fiber over the base
// parameter t, returning the univariate polynomial in y whose roots
// are the n sheets being tracked. Callers supply it so this package
// stays independent of the multivariate curve representation.
type CurveAt func(t numfield.Scalar) upoly.Poly

// Follower tracks the n roots of CurveAt along the segment [t0, t1] of
// the base line, returning the endpoint roots in the same order as
// start (i.e. Track(...)[ ] [i] continues start[i]).
type Follower interface {
	Track(curve CurveAt, t0, t1 numfield.Scalar, start []numfield.Scalar) ([]numfield.Scalar, error)
}

// DefaultAdaptivityFactor is the ADAPTIVITY_FACTOR of spec §4.G: a
// tentative step is rejected once any strand has moved farther than
// dm[i]/DefaultAdaptivityFactor, and a step is accepted-and-doubled
// once every strand moved less than dm[i]/(2*DefaultAdaptivityFactor).
const DefaultAdaptivityFactor = 10

// ApproxFollower tracks roots by adaptive dyadic step subdivision of
// [t0,t1]: each tentative step is accepted only if every strand's
// displacement stays within AdaptivityFactor of the strands'
// separation at the start of the step, rejecting (and halving the
// step) otherwise, and doubling the step after a comfortably small
// advance. At the segment's end the continuation is reconciled with
// an independently separated fibre via fit, a closest-point
// bijection. It is a heuristic: enable it only where the caller has
// independently budgeted for the corresponding loss of certification
// (the MonodromyApprox option).
type ApproxFollower struct {
	AdaptivityFactor float64
	Safety           float64
	NewtonN          int
	// MinStep is the dyadic floor below which a rejected step gives up
	// rather than halving forever (ErrAdaptiveStepUnderflow).
	MinStep float64
}

// NewApproxFollower returns an ApproxFollower with the given
// adaptivity factor (at most as aggressive as DefaultAdaptivityFactor
// when non-positive) and default safety/iteration parameters.
func NewApproxFollower(adaptivityFactor float64) ApproxFollower {
	if adaptivityFactor <= 0 {
		adaptivityFactor = DefaultAdaptivityFactor
	}
	return ApproxFollower{
		AdaptivityFactor: adaptivityFactor,
		Safety:           100,
		NewtonN:          rootfind.DefaultNewtonLimit,
		MinStep:          1.0 / 1024,
	}
}

// Track implements Follower per spec §4.G's adaptive loop.
func (f ApproxFollower) Track(curve CurveAt, t0, t1 numfield.Scalar, start []numfield.Scalar) ([]numfield.Scalar, error) {
	adaptivity := f.AdaptivityFactor
	if adaptivity <= 0 {
		adaptivity = DefaultAdaptivityFactor
	}
	minStep := f.MinStep
	if minStep <= 0 {
		minStep = 1.0 / 1024
	}
	minStepRat := ratFromFloat(minStep)
	safety := f.Safety
	if safety <= 0 {
		safety = 100
	}

	one := big.NewRat(1, 1)
	two := big.NewRat(2, 1)
	total := big.NewRat(0, 1)
	step := big.NewRat(1, 1)
	prevzeros := append([]numfield.Scalar(nil), start...)

	for total.Cmp(one) < 0 {
		if rem := new(big.Rat).Sub(one, total); step.Cmp(rem) > 0 {
			step = rem
		}
		nextFrac := new(big.Rat).Add(total, step)
		next := lerp(t0, t1, nextFrac)
		p := curve(next)

		dm := perStrandMinDist(prevzeros)
		guesses := make([]complex128, len(prevzeros))
		for i, s := range prevzeros {
			guesses[i] = s.Complex128()
		}
		nextzeros, err := rootfind.SeparateRootsInitialGuess(p, guesses, safety)

		reject := err != nil
		if !reject {
			for i := range nextzeros {
				dn := nextzeros[i].Sub(prevzeros[i]).Abs()
				if dm[i] > 0 && dn > dm[i]/adaptivity {
					reject = true
					break
				}
			}
		}
		if reject {
			half := new(big.Rat).Quo(step, two)
			if half.Cmp(minStepRat) < 0 {
				return nil, ErrAdaptiveStepUnderflow
			}
			step = half
			continue
		}

		small := true
		for i := range nextzeros {
			dn := nextzeros[i].Sub(prevzeros[i]).Abs()
			if dm[i] <= 0 || dn >= dm[i]/(2*adaptivity) {
				small = false
				break
			}
		}
		prevzeros = nextzeros
		total = nextFrac
		if small && total.Cmp(one) < 0 {
			step = new(big.Rat).Mul(step, two)
		}
	}

	targetFiber := curve(t1)
	target, err := rootfind.SeparateRoots(targetFiber, safety)
	if err != nil || len(target) != len(prevzeros) {
		// The independent bootstrap can fail to find a clean initial
		// guess set even when the continuation above succeeded (e.g.
		// very close roots); fall back to returning the continued
		// fibre as it stands, without fit and without an independent
		// cross-check.
		return prevzeros, nil
	}
	return fit(prevzeros, target)
}

// fit re-indexes tracked to match target by closest-point bijection,
// failing if the assignment is not bijective within tolerance or any
// pairing's displacement exceeds one tenth of target's minimum
// pairwise distance.
func fit(tracked, target []numfield.Scalar) ([]numfield.Scalar, error) {
	n := len(tracked)
	if len(target) != n {
		return nil, ErrFitAmbiguous
	}
	threshold := rootfind.NearestPairScalar(target) / 10
	used := make([]bool, n)
	out := make([]numfield.Scalar, n)
	for i, tr := range tracked {
		trC := tr.Complex128()
		best := -1
		bestDist := math.Inf(1)
		for j, tg := range target {
			if used[j] {
				continue
			}
			if d := cmplx.Abs(trC - tg.Complex128()); d < bestDist {
				bestDist = d
				best = j
			}
		}
		if best < 0 || bestDist > threshold {
			return nil, ErrFitAmbiguous
		}
		used[best] = true
		out[i] = target[best]
	}
	return out, nil
}

// perStrandMinDist returns, for each strand, its minimum distance to
// any other strand (spec's dm[i]).
func perStrandMinDist(v []numfield.Scalar) []float64 {
	out := make([]float64, len(v))
	for i := range out {
		out[i] = math.Inf(1)
	}
	for i := range v {
		for j := range v {
			if i == j {
				continue
			}
			if d := v[i].Sub(v[j]).Abs(); d < out[i] {
				out[i] = d
			}
		}
	}
	return out
}

func ratFromFloat(x float64) *big.Rat {
	r := new(big.Rat)
	r.SetFloat64(x)
	return r
}

func lerp(a, b numfield.Scalar, frac *big.Rat) numfield.Scalar {
	one := new(big.Rat).Sub(big.NewRat(1, 1), frac)
	fracS := numfield.Scalar{Re: frac, Im: big.NewRat(0, 1)}
	oneS := numfield.Scalar{Re: one, Im: big.NewRat(0, 1)}
	return a.Mul(oneS).Add(b.Mul(fracS))
}

// CertifiedFollower tracks roots with a Sturm-sequence proof, built
// from the protection polynomial protp(t) = Res(P(t,y), P(t,y)') as a
// function of the real segment parameter t in [0,1] (rationalised
// along the way): as long as protp has no root in the open interval
// just covered, the n roots of P(t,*) stay disjoint, so Newton
// continuation from the previous endpoint is certified rather than
// merely plausible. It is the default follower (deliberately out of scope for certification
// excludes heuristic tracking from the default path).
type CertifiedFollower struct {
	Safety  float64
	NewtonN int
}

// NewCertifiedFollower returns a CertifiedFollower with default safety
// and iteration parameters.
func NewCertifiedFollower() CertifiedFollower {
	return CertifiedFollower{Safety: 100, NewtonN: rootfind.DefaultNewtonLimit}
}

// ProtectionPolynomial builds protp as a real polynomial in the local
// segment parameter s in [0,1], where s=0 is t0 and s=1 is t1: it
// samples Res(P(x(s),y), dP/dy(x(s),y)) at enough points along the
// segment x(s) = (1-s)*t0 + s*t1 to interpolate the squared modulus
// |Res|^2 = Re(Res)^2 + Im(Res)^2 exactly over the rationals, which is
// real-valued and vanishes exactly where the segment crosses a
// discriminant root regardless of whether the segment leaves the real
// axis. degBound is taken as a bound on the degree of Res in x, so
// |Res|^2 has degree <= 2*degBound in s and is interpolated through
// 2*degBound+1 equally spaced rational sample points; a Res of higher
// degree is not detected.
func ProtectionPolynomial(curve CurveAt, t0, t1 numfield.Scalar, degBound int) upoly.RPoly {
	if degBound < 1 {
		degBound = 1
	}
	n := 2*degBound + 1
	pts := make([]*big.Rat, n)
	vals := make([]*big.Rat, n)
	for i := 0; i < n; i++ {
		s := big.NewRat(int64(i), int64(n-1))
		pts[i] = s
		x := lerp(t0, t1, s)
		p := curve(x)
		dp := p.Derivative()
		if p.IsZero() || dp.IsZero() {
			vals[i] = big.NewRat(0, 1)
			continue
		}
		res, err := upoly.Resultant(p, dp)
		if err != nil {
			vals[i] = big.NewRat(0, 1)
			continue
		}
		reSq := new(big.Rat).Mul(res.Re, res.Re)
		imSq := new(big.Rat).Mul(res.Im, res.Im)
		vals[i] = new(big.Rat).Add(reSq, imSq)
	}
	return lagrangeInterpolate(pts, vals)
}

// lagrangeInterpolate returns the unique real polynomial of degree
// <= len(pts)-1 through the given points, via divided differences,
// exactly over big.Rat.
func lagrangeInterpolate(pts, vals []*big.Rat) upoly.RPoly {
	n := len(pts)
	coeffs := make([]*big.Rat, n)
	for i := range coeffs {
		coeffs[i] = big.NewRat(0, 1)
	}
	for i := 0; i < n; i++ {
		term := []*big.Rat{big.NewRat(1, 1)}
		denom := big.NewRat(1, 1)
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			term = polyMulLinear(term, pts[j])
			diff := new(big.Rat).Sub(pts[i], pts[j])
			denom.Mul(denom, diff)
		}
		scale := new(big.Rat).Quo(vals[i], denom)
		for k, c := range term {
			coeffs[k] = new(big.Rat).Add(coeffs[k], new(big.Rat).Mul(c, scale))
		}
	}
	return upoly.NewR(coeffs)
}

// polyMulLinear multiplies the ascending-order real polynomial term by
// (x - root).
func polyMulLinear(term []*big.Rat, root *big.Rat) []*big.Rat {
	out := make([]*big.Rat, len(term)+1)
	for i := range out {
		out[i] = big.NewRat(0, 1)
	}
	for i, c := range term {
		out[i+1] = new(big.Rat).Add(out[i+1], c)
		v := new(big.Rat).Mul(c, root)
		out[i] = new(big.Rat).Sub(out[i], v)
	}
	return out
}

// Track implements Follower. It certifies the whole segment at once
// via the Sturm sequence of ProtectionPolynomial, then follows the
// roots through 4*n equal sub-steps (at least 4), re-separating them
// at each with SeparateRootsInitialGuess seeded from the previous
// sub-step; the sub-step count does not adapt to how fast the roots
// move.
func (f CertifiedFollower) Track(curve CurveAt, t0, t1 numfield.Scalar, start []numfield.Scalar) ([]numfield.Scalar, error) {
	n := len(start)
	prot := ProtectionPolynomial(curve, t0, t1, n*(n-1)+1)
	seq := upoly.Sequence(prot)
	zero := big.NewRat(0, 1)
	one := big.NewRat(1, 1)
	s, ok := upoly.PositiveUntil(seq, zero, one, 64)
	if !ok || s.Cmp(one) < 0 {
		return nil, ErrNonSeparable
	}

	safety := f.Safety
	if safety <= 0 {
		safety = 100
	}
	lim := f.NewtonN
	if lim <= 0 {
		lim = rootfind.DefaultNewtonLimit
	}

	steps := 4 * n
	if steps < 4 {
		steps = 4
	}
	cur := append([]numfield.Scalar(nil), start...)
	for k := 1; k <= steps; k++ {
		frac := big.NewRat(int64(k), int64(steps))
		t := lerp(t0, t1, frac)
		p := curve(t)
		guesses := make([]complex128, len(cur))
		for i, s := range cur {
			guesses[i] = s.Complex128()
		}
		refined, err := rootfind.SeparateRootsInitialGuess(p, guesses, safety)
		if err != nil {
			return nil, ErrNonSeparable
		}
		cur = refined
	}
	return cur, nil
}
