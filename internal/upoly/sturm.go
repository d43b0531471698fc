package upoly

import "math/big"

// RPoly is a dense real-coefficient univariate polynomial in ascending
// power order, used for the certified follower's protection
// polynomial protp (a real polynomial in the segment parameter after
// squaring a complex magnitude); no derivative bound is built.
type RPoly struct {
	C []*big.Rat
}

// NewR builds an RPoly, trimming trailing zero coefficients.
func NewR(c []*big.Rat) RPoly {
	n := len(c)
	for n > 0 && c[n-1].Sign() == 0 {
		n--
	}
	return RPoly{C: c[:n]}
}

// Degree returns the degree, or -1 for the zero polynomial.
func (p RPoly) Degree() int { return len(p.C) - 1 }

// Eval evaluates p at x via Horner's method.
func (p RPoly) Eval(x *big.Rat) *big.Rat {
	acc := new(big.Rat)
	for i := len(p.C) - 1; i >= 0; i-- {
		acc.Mul(acc, x)
		acc.Add(acc, p.C[i])
	}
	return acc
}

// EvalFloat evaluates p at a float64 point.
func (p RPoly) EvalFloat(x float64) float64 {
	acc := 0.0
	for i := len(p.C) - 1; i >= 0; i-- {
		acc = acc*x + ratFloat(p.C[i])
	}
	return acc
}

func ratFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}

// Derivative returns dp/dx.
func (p RPoly) Derivative() RPoly {
	if p.Degree() <= 0 {
		return RPoly{}
	}
	out := make([]*big.Rat, p.Degree())
	for i := 1; i < len(p.C); i++ {
		out[i-1] = new(big.Rat).Mul(p.C[i], big.NewRat(int64(i), 1))
	}
	return NewR(out)
}

func (p RPoly) negate() RPoly {
	out := make([]*big.Rat, len(p.C))
	for i, c := range p.C {
		out[i] = new(big.Rat).Neg(c)
	}
	return RPoly{C: out}
}

func remR(a, b RPoly) RPoly {
	rem := RPoly{C: append([]*big.Rat(nil), a.C...)}
	for rem.Degree() >= b.Degree() && !(rem.Degree() < 0) {
		shift := rem.Degree() - b.Degree()
		factor := new(big.Rat).Quo(rem.C[len(rem.C)-1], b.C[len(b.C)-1])
		for i, c := range b.C {
			idx := shift + i
			v := new(big.Rat).Mul(c, factor)
			rem.C[idx] = new(big.Rat).Sub(rem.C[idx], v)
		}
		rem = NewR(rem.C)
	}
	return rem
}

// Sequence builds the Sturm sequence p0=p, p1=p', p_{i+1} = -rem(p_{i-1}, p_i),
// stopping once a remainder is the zero polynomial (or constant).
func Sequence(p RPoly) []RPoly {
	p0 := p
	p1 := p.Derivative()
	seq := []RPoly{p0}
	if p1.Degree() < 0 {
		return seq
	}
	seq = append(seq, p1)
	for {
		prev, cur := seq[len(seq)-2], seq[len(seq)-1]
		if cur.Degree() < 0 {
			break
		}
		r := remR(prev, cur)
		if r.Degree() < 0 {
			break
		}
		seq = append(seq, r.negate())
		if len(seq) > 256 {
			break
		}
	}
	return seq
}

// SignVariations counts the number of sign changes in the Sturm
// sequence evaluated at x, zeros skipped.
func SignVariations(seq []RPoly, x *big.Rat) int {
	var signs []int
	for _, p := range seq {
		v := p.Eval(x)
		s := v.Sign()
		if s != 0 {
			signs = append(signs, s)
		}
	}
	count := 0
	for i := 1; i < len(signs); i++ {
		if signs[i] != signs[i-1] {
			count++
		}
	}
	return count
}

// RootCount returns the number of distinct real roots of seq[0] in
// the half-open interval (a, b], by Sturm's theorem (assumes a and b
// are not themselves roots).
func RootCount(seq []RPoly, a, b *big.Rat) int {
	return SignVariations(seq, a) - SignVariations(seq, b)
}

// PositiveUntil returns the largest dyadic-friendly rational s in
// (tm, hi] such that seq[0] has no root in (tm, s] and is strictly
// positive just above tm — i.e. the certified horizon up to which the
// sign of the protection polynomial established at tm continues to
// hold. It returns (s, true) on success; (tm, false) when seq[0] is
// already non-positive immediately above tm (the NonSeparable
// condition), leaving the caller to surface that as a failure.
func PositiveUntil(seq []RPoly, tm, hi *big.Rat, maxIter int) (*big.Rat, bool) {
	eps := new(big.Rat).SetFrac64(1, 1<<30)
	probe := new(big.Rat).Add(tm, eps)
	if probe.Cmp(hi) > 0 {
		probe = new(big.Rat).Set(hi)
	}
	if seq[0].Eval(probe).Sign() <= 0 {
		return new(big.Rat).Set(tm), false
	}
	if RootCount(seq, tm, hi) == 0 {
		return new(big.Rat).Set(hi), true
	}
	lo := new(big.Rat).Set(tm)
	up := new(big.Rat).Set(hi)
	for i := 0; i < maxIter; i++ {
		mid := new(big.Rat).Add(lo, up)
		mid.Quo(mid, big.NewRat(2, 1))
		if RootCount(seq, tm, mid) == 0 {
			lo = mid
		} else {
			up = mid
		}
	}
	return lo, true
}
