package rootfind

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	ap "github.com/lukaszgryglicki/apcomplex"
)

// hiPrecBits is the working precision of the arbitrary-precision
// fallback bootstrap, in bits.
const hiPrecBits = 256

// hiPrecBootstrap re-runs bootstrapGuesses's seeded Newton/deflation
// search at fixed arbitrary precision via apcomplex, for curves whose
// discriminant has roots clustered closely enough that float64
// arithmetic cannot even find deg(p) numerically distinct seeds (the
// certified pass afterwards still needs SeparateRootsInitialGuess to
// succeed; this only widens what counts as a usable starting guess).
func hiPrecBootstrap(coeffs []complex128) ([]complex128, bool) {
	apCoeffs := make([]*ap.Complex, len(coeffs))
	for i, c := range coeffs {
		apCoeffs[i] = apFromComplex(c)
	}
	return hiPrecBootstrapRec(apCoeffs)
}

func hiPrecBootstrapRec(coeffs []*ap.Complex) ([]complex128, bool) {
	n := len(coeffs) - 1
	if n <= 0 {
		return nil, true
	}
	if n == 1 {
		num := ap.New(hiPrecBits).Mul(coeffs[0], ap.MustParse("-1", hiPrecBits))
		root := ap.New(hiPrecBits).Div(num, coeffs[1])
		return []complex128{apToComplex(root)}, true
	}

	order := 2 * (n + 1)
	for k := 0; k < order; k++ {
		angle := 2 * math.Pi * float64(k) / float64(order)
		seed := apFromComplex(1.25 * complex(math.Cos(angle), math.Sin(angle)))
		root, ok := apNewtonRoot(coeffs, seed, DefaultNewtonLimit)
		if !ok {
			continue
		}
		deflated := apDeflate(coeffs, root)
		rest, ok := hiPrecBootstrapRec(deflated)
		if !ok {
			continue
		}
		return append(rest, apToComplex(root)), true
	}
	return nil, false
}

func apNewtonRoot(coeffs []*ap.Complex, z0 *ap.Complex, lim int) (*ap.Complex, bool) {
	deriv := apDerivCoeffs(coeffs)
	z := z0
	for i := 0; i < lim; i++ {
		fz := apEval(coeffs, z)
		fpz := apEval(deriv, z)
		if apAbsFloat(fpz) == 0 {
			z = ap.New(hiPrecBits).Add(z, apFromComplex(complex(1e-10, 1e-10)))
			continue
		}
		delta := ap.New(hiPrecBits).Div(fz, fpz)
		z = ap.New(hiPrecBits).Sub(z, delta)
		if apAbsFloat(delta) <= 1e-40 {
			return z, true
		}
	}
	return nil, false
}

func apEval(coeffs []*ap.Complex, x *ap.Complex) *ap.Complex {
	acc := ap.MustParse("0", hiPrecBits)
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = ap.New(hiPrecBits).Add(ap.New(hiPrecBits).Mul(acc, x), coeffs[i])
	}
	return acc
}

func apDerivCoeffs(coeffs []*ap.Complex) []*ap.Complex {
	if len(coeffs) <= 1 {
		return nil
	}
	out := make([]*ap.Complex, len(coeffs)-1)
	for i := 1; i < len(coeffs); i++ {
		out[i-1] = ap.New(hiPrecBits).Mul(coeffs[i], apFromComplex(complex(float64(i), 0)))
	}
	return out
}

// apDeflate divides coeffs (ascending order) by (x - root) via
// synthetic division, discarding the (now near-zero) remainder.
func apDeflate(coeffs []*ap.Complex, root *ap.Complex) []*ap.Complex {
	n := len(coeffs) - 1
	out := make([]*ap.Complex, n)
	out[n-1] = coeffs[n]
	for i := n - 2; i >= 0; i-- {
		out[i] = ap.New(hiPrecBits).Add(coeffs[i+1], ap.New(hiPrecBits).Mul(root, out[i+1]))
	}
	return out
}

func apFromComplex(z complex128) *ap.Complex {
	s := fmt.Sprintf("%g%+gi", real(z), imag(z))
	return ap.MustParse(s, hiPrecBits)
}

func apToComplex(z *ap.Complex) complex128 {
	re := apParseFloat(z.RealStringFixed(30))
	im := apParseFloat(z.ImagStringFixed(30))
	return complex(re, im)
}

func apAbsFloat(z *ap.Complex) float64 {
	tmp := ap.New(hiPrecBits)
	return apParseFloat(tmp.AbsStringFixed(z, 30))
}

func apParseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(s, "+")), 64)
	return v
}
