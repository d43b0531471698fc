// Package curvealg is the multivariate-polynomial collaborator
// boundary: the operations the pipeline needs on the
// defining bivariate curve P(x,y) — coefficient extraction per fiber,
// partial derivatives, discriminant in y, exact division and
// substitution — behind an interface, plus Native, a minimal dense
// default implementation. A real deployment would swap Native for a
// proper multivariate polynomial library (Gröbner bases, sparse
// representation) without touching any caller.
package curvealg

import (
	"errors"

	"github.com/cwbudde/vankampen/internal/numfield"
	"github.com/cwbudde/vankampen/internal/upoly"
)

// ErrDegenerateCurve is returned when a curve operation is asked to
// act on the zero polynomial, or when a requested fiber has no
// well-defined degree (leading y-coefficient identically zero as a
// polynomial in x).
var ErrDegenerateCurve = errors.New("curvealg: degenerate curve")

// Bivariate is a dense polynomial in x and y, stored as Y[j] = the
// coefficient of y^j, itself a polynomial in x (upoly.Poly over
// numfield.Scalar). This is P(x,y) = sum_j Y[j](x) * y^j.
type Bivariate struct {
	Y []upoly.Poly
}

// New builds a Bivariate from its y-coefficients (ascending degree in y).
func New(y []upoly.Poly) Bivariate {
	n := len(y)
	for n > 0 && y[n-1].IsZero() {
		n--
	}
	return Bivariate{Y: y[:n]}
}

// DegreeY returns the degree in y, or -1 for the zero polynomial.
func (b Bivariate) DegreeY() int { return len(b.Y) - 1 }

// Fiber returns the univariate polynomial in y obtained by
// substituting x = x0, i.e. P(x0, y) as a upoly.Poly in y.
func (b Bivariate) Fiber(x0 numfield.Scalar) upoly.Poly {
	c := make([]numfield.Scalar, len(b.Y))
	for j, yj := range b.Y {
		c[j] = yj.Eval(x0)
	}
	return upoly.New(c)
}

// Algebra is the collaborator-boundary interface: every operation the
// pipeline needs on the defining curve, expressed so a real
// multivariate-polynomial library could satisfy it instead of Native.
type Algebra interface {
	// Coefficients returns the y-coefficients of the curve, each a
	// polynomial in x.
	Coefficients(b Bivariate) []upoly.Poly
	// DerivativeY returns dP/dy.
	DerivativeY(b Bivariate) Bivariate
	// DerivativeX returns dP/dx.
	DerivativeX(b Bivariate) Bivariate
	// Discriminant returns the discriminant of b in y, as a
	// polynomial in x: Res_y(P, dP/dy).
	Discriminant(b Bivariate) (upoly.Poly, error)
	// ExactDiv divides b by d treating both as polynomials in y with
	// coefficients in the field of rational functions of x,
	// failing if the division is not exact coefficientwise after
	// clearing denominators is unnecessary (d's leading y-coefficient
	// must be a nonzero constant in x for this dense representation).
	ExactDiv(b, d Bivariate) (Bivariate, error)
	// Substitute evaluates b's x-variable at the given scalar,
	// returning the resulting fiber.
	Substitute(b Bivariate, x0 numfield.Scalar) upoly.Poly
}

// Native is the minimal concrete default implementation of Algebra
// over dense y-coefficient grids.
type Native struct{}

// Coefficients implements Algebra.
func (Native) Coefficients(b Bivariate) []upoly.Poly {
	return append([]upoly.Poly(nil), b.Y...)
}

// DerivativeY implements Algebra: d/dy sum_j Y[j] y^j = sum_j j*Y[j] y^{j-1}.
func (Native) DerivativeY(b Bivariate) Bivariate {
	if b.DegreeY() <= 0 {
		return Bivariate{}
	}
	out := make([]upoly.Poly, b.DegreeY())
	for j := 1; j <= b.DegreeY(); j++ {
		out[j-1] = b.Y[j].Scale(numfield.NewInt(int64(j)))
	}
	return New(out)
}

// DerivativeX implements Algebra, differentiating each y-coefficient
// with respect to x.
func (Native) DerivativeX(b Bivariate) Bivariate {
	out := make([]upoly.Poly, len(b.Y))
	for j, yj := range b.Y {
		out[j] = yj.Derivative()
	}
	return New(out)
}

// Discriminant would need the Sylvester-matrix resultant of b and
// dP/dy run with upoly.Poly-over-x entries in place of
// numfield.Scalar ones; Native's dense representation has no such
// polynomial-entry determinant, so it refuses outright rather than
// return a partial answer. A caller with a concrete x0 can use
// DiscriminantAt for one fiber; the top-level pipeline instead
// interpolates per-fiber upoly.Resultant values across x.
func (Native) Discriminant(b Bivariate) (upoly.Poly, error) {
	return upoly.Poly{}, ErrDegenerateCurve
}

// DiscriminantAt returns Res(p, p') for the fiber p = P(x0, y) (a
// plain numfield.Scalar, since the fiber is univariate); unlike
// upoly.Poly.Discriminant it is not divided by p's leading
// coefficient. No other package of the module calls it.
func (Native) DiscriminantAt(b Bivariate, x0 numfield.Scalar) (numfield.Scalar, error) {
	p := b.Fiber(x0)
	dp := p.Derivative()
	if p.IsZero() || dp.IsZero() {
		return numfield.Zero(), ErrDegenerateCurve
	}
	return upoly.Resultant(p, dp)
}

// ExactDiv implements Algebra for the case the pipeline needs: divide
// out a known linear-in-y factor (y - r(x)) to deflate a non-monic or
// reducible curve, given as a degree-1 Bivariate.
func (Native) ExactDiv(b, d Bivariate) (Bivariate, error) {
	if d.DegreeY() != 1 {
		return Bivariate{}, errors.New("curvealg: Native.ExactDiv only supports linear-in-y divisors")
	}
	lead := d.Y[1]
	if lead.Degree() != 0 {
		return Bivariate{}, errors.New("curvealg: divisor's leading y-coefficient must be a constant in x")
	}
	leadC := lead.C[0]
	root, err := d.Y[0].Scale(numfield.NewInt(-1)).ExactDiv(lead)
	if err != nil {
		return Bivariate{}, err
	}
	// Synthetic division in y: b(x,y) / (y - root(x)), root given as a
	// upoly.Poly in x (constant-in-x case handles the pipeline's
	// actual usage of deflating by a single finite branch).
	n := b.DegreeY()
	quo := make([]upoly.Poly, n)
	rem := upoly.Poly{}
	for j := n; j >= 1; j-- {
		coeff := b.Y[j]
		if j < n {
			coeff = coeff.Add(rem)
		}
		quo[j-1] = coeff
		rem = coeff.Mul(root)
	}
	remTotal := b.Y[0].Add(rem)
	if !remTotal.IsZero() {
		return Bivariate{}, upoly.ErrInexactDivision
	}
	scaled := make([]upoly.Poly, len(quo))
	for i, q := range quo {
		scaled[i], err = q.ExactDiv(upoly.New([]numfield.Scalar{leadC}))
		if err != nil {
			return Bivariate{}, err
		}
	}
	return New(scaled), nil
}

// Substitute implements Algebra.
func (Native) Substitute(b Bivariate, x0 numfield.Scalar) upoly.Poly {
	return b.Fiber(x0)
}
