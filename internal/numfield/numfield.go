// Package numfield is the complex-number kernel of the pipeline: exact
// Gaussian-rational scalars, primitive roots of unity with closed-form
// exactness where available, and the simp rationalisation used after
// every Newton step to keep exact arithmetic tractable.
package numfield

import (
	"errors"
	"math"
	"math/big"
	"math/cmplx"
)

// ErrDivideByZero is returned by Div when the divisor is zero.
var ErrDivideByZero = errors.New("numfield: division by zero")

// ErrCoefficientUnsupported is returned when an input coefficient is
// neither rational nor Gaussian-rational.
var ErrCoefficientUnsupported = errors.New("numfield: coefficient is not rational or Gaussian-rational")

// Scalar is an exact element of ℚ(i): a rational real part plus a
// rational imaginary part. Plain rationals are the special case
// Im.Sign() == 0.
type Scalar struct {
	Re *big.Rat
	Im *big.Rat
}

// NewRat builds a real scalar from an int64 numerator/denominator pair.
func NewRat(num, den int64) Scalar {
	return Scalar{Re: big.NewRat(num, den), Im: big.NewRat(0, 1)}
}

// NewInt builds a real integer scalar.
func NewInt(n int64) Scalar {
	return Scalar{Re: big.NewRat(n, 1), Im: big.NewRat(0, 1)}
}

// NewGaussian builds a Gaussian-rational scalar re + im*i.
func NewGaussian(re, im *big.Rat) Scalar {
	return Scalar{Re: new(big.Rat).Set(re), Im: new(big.Rat).Set(im)}
}

// Zero is the additive identity.
func Zero() Scalar { return NewInt(0) }

// One is the multiplicative identity.
func One() Scalar { return NewInt(1) }

// IsZero reports whether s is exactly zero.
func (s Scalar) IsZero() bool {
	return s.Re.Sign() == 0 && s.Im.Sign() == 0
}

// Equal reports exact equality.
func (s Scalar) Equal(t Scalar) bool {
	return s.Re.Cmp(t.Re) == 0 && s.Im.Cmp(t.Im) == 0
}

// Add returns s + t.
func (s Scalar) Add(t Scalar) Scalar {
	return Scalar{
		Re: new(big.Rat).Add(s.Re, t.Re),
		Im: new(big.Rat).Add(s.Im, t.Im),
	}
}

// Sub returns s - t.
func (s Scalar) Sub(t Scalar) Scalar {
	return Scalar{
		Re: new(big.Rat).Sub(s.Re, t.Re),
		Im: new(big.Rat).Sub(s.Im, t.Im),
	}
}

// Neg returns -s.
func (s Scalar) Neg() Scalar {
	return Scalar{Re: new(big.Rat).Neg(s.Re), Im: new(big.Rat).Neg(s.Im)}
}

// Mul returns s * t, using the standard Gaussian product
// (a+bi)(c+di) = (ac-bd) + (ad+bc)i.
func (s Scalar) Mul(t Scalar) Scalar {
	ac := new(big.Rat).Mul(s.Re, t.Re)
	bd := new(big.Rat).Mul(s.Im, t.Im)
	ad := new(big.Rat).Mul(s.Re, t.Im)
	bc := new(big.Rat).Mul(s.Im, t.Re)
	return Scalar{
		Re: new(big.Rat).Sub(ac, bd),
		Im: new(big.Rat).Add(ad, bc),
	}
}

// Conj returns the complex conjugate of s.
func (s Scalar) Conj() Scalar {
	return Scalar{Re: new(big.Rat).Set(s.Re), Im: new(big.Rat).Neg(s.Im)}
}

// Div returns s / t, failing with ErrDivideByZero when t is zero.
func (s Scalar) Div(t Scalar) (Scalar, error) {
	if t.IsZero() {
		return Scalar{}, ErrDivideByZero
	}
	norm := new(big.Rat).Add(new(big.Rat).Mul(t.Re, t.Re), new(big.Rat).Mul(t.Im, t.Im))
	num := s.Mul(t.Conj())
	re := new(big.Rat).Quo(num.Re, norm)
	im := new(big.Rat).Quo(num.Im, norm)
	return Scalar{Re: re, Im: im}, nil
}

// Complex128 returns the machine-precision approximation of s, used
// wherever numeric (as opposed to certified) evaluation suffices.
func (s Scalar) Complex128() complex128 {
	re, _ := s.Re.Float64()
	im, _ := s.Im.Float64()
	return complex(re, im)
}

// Abs returns the numeric modulus of s.
func (s Scalar) Abs() float64 {
	return cmplx.Abs(s.Complex128())
}

// FromComplex128 builds an approximate Scalar by rationalising the
// given float64 parts exactly (no rounding: big.Rat.SetFloat64 is
// exact for any finite float64). Used only to seed iterations; the
// result is not claimed to equal any "true" value until passed
// through Simp with a certified tolerance.
func FromComplex128(z complex128) Scalar {
	re := new(big.Rat).SetFloat64(real(z))
	im := new(big.Rat).SetFloat64(imag(z))
	if re == nil {
		re = big.NewRat(0, 1)
	}
	if im == nil {
		im = big.NewRat(0, 1)
	}
	return Scalar{Re: re, Im: im}
}

// E returns the k-th power of the primitive n-th root of unity,
// exactly for n in {1,2,4} (the only cases with a Gaussian-rational
// value). For n in {3,6} the coordinate sqrt(3)/2 is replaced by a
// continued-fraction rational approximation of its float64 value, and
// for every other n the float64 cosine and sine are rationalised;
// those results are numeric witnesses, not exact roots of unity.
func E(n, k int) Scalar {
	k = ((k % n) + n) % n
	switch n {
	case 1:
		return One()
	case 2:
		if k == 0 {
			return One()
		}
		return NewInt(-1)
	case 3:
		half := big.NewRat(-1, 2)
		// sqrt(3)/2 is irrational: representing it exactly would need
		// an algebraic-number tower, so the imaginary part is the
		// continued-fraction rationalisation of its float64 value
		// (the 1e-30 target is below float64 resolution, so the
		// search runs until the float64 value itself is reached).
		im := ratApprox(math.Sqrt(3)/2, 1e-30)
		switch k {
		case 0:
			return One()
		case 1:
			return Scalar{Re: half, Im: im}
		case 2:
			return Scalar{Re: half, Im: new(big.Rat).Neg(im)}
		}
	case 4:
		switch k {
		case 0:
			return One()
		case 1:
			return Scalar{Re: big.NewRat(0, 1), Im: big.NewRat(1, 1)}
		case 2:
			return NewInt(-1)
		case 3:
			return Scalar{Re: big.NewRat(0, 1), Im: big.NewRat(-1, 1)}
		}
	case 6:
		half := big.NewRat(1, 2)
		im := ratApprox(math.Sqrt(3)/2, 1e-30)
		switch k {
		case 0:
			return One()
		case 1:
			return Scalar{Re: half, Im: im}
		case 2:
			return Scalar{Re: new(big.Rat).Neg(half), Im: im}
		case 3:
			return NewInt(-1)
		case 4:
			return Scalar{Re: new(big.Rat).Neg(half), Im: new(big.Rat).Neg(im)}
		case 5:
			return Scalar{Re: half, Im: new(big.Rat).Neg(im)}
		}
	}
	angle := 2 * math.Pi * float64(k) / float64(n)
	return FromComplex128(complex(math.Cos(angle), math.Sin(angle)))
}

// Simp returns the continued-fraction convergent of t with smallest
// denominator within prec of t (applied independently to the real and
// imaginary parts, each within prec/sqrt(2)), satisfying
// |Simp(t,prec) - t| <= prec.
func Simp(t complex128, prec float64) Scalar {
	if prec <= 0 {
		prec = 1e-15
	}
	p := prec / math.Sqrt2
	return Scalar{
		Re: ratApprox(real(t), p),
		Im: ratApprox(imag(t), p),
	}
}

// ratApprox returns the smallest-denominator rational within eps of x
// via the standard continued-fraction convergent search.
func ratApprox(x, eps float64) *big.Rat {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return big.NewRat(0, 1)
	}
	sign := int64(1)
	if x < 0 {
		sign = -1
		x = -x
	}

	// Continued fraction expansion of x, generating convergents h/k
	// until one lands within eps.
	var h0, h1 = int64(0), int64(1)
	var k0, k1 = int64(1), int64(0)
	rem := x
	for i := 0; i < 64; i++ {
		a := int64(math.Floor(rem))
		h2 := a*h1 + h0
		k2 := a*k1 + k0
		h0, h1 = h1, h2
		k0, k1 = k1, k2
		if k1 != 0 {
			approx := float64(h1) / float64(k1)
			if math.Abs(approx-x) <= eps {
				return big.NewRat(sign*h1, k1)
			}
		}
		frac := rem - math.Floor(rem)
		if frac < 1e-15 {
			break
		}
		rem = 1 / frac
		if math.IsInf(rem, 0) || k1 > (1<<50) {
			break
		}
	}
	return big.NewRat(sign*h1, maxI64(k1, 1))
}

func maxI64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
