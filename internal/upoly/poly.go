// Package upoly is the univariate polynomial kernel:
// evaluation, derivative, gcd, exact division and discriminant over
// the numfield.Scalar field, plus the squarefree-factor contract used
// by the top-level pipeline.
package upoly

import (
	"errors"

	"github.com/cwbudde/vankampen/internal/numfield"
)

// ErrNotSquarefree is returned when a polynomial shares a non-trivial
// factor with its derivative.
var ErrNotSquarefree = errors.New("upoly: polynomial is not squarefree")

// ErrZeroDivisor is returned by ExactDiv/Gcd when the divisor is the
// zero polynomial.
var ErrZeroDivisor = errors.New("upoly: division by the zero polynomial")

// ErrInexactDivision is returned by ExactDiv when the division leaves
// a non-zero remainder.
var ErrInexactDivision = errors.New("upoly: division leaves a non-zero remainder")

// Poly is a dense univariate polynomial, coefficients stored in
// ascending power order: c[0] + c[1]*x + c[2]*x^2 + ...
type Poly struct {
	C []numfield.Scalar
}

// New builds a Poly from ascending-order coefficients, trimming
// trailing zero coefficients.
func New(c []numfield.Scalar) Poly {
	return Poly{C: trim(c)}
}

func trim(c []numfield.Scalar) []numfield.Scalar {
	n := len(c)
	for n > 0 && c[n-1].IsZero() {
		n--
	}
	return c[:n]
}

// Degree returns the polynomial degree, or -1 for the zero polynomial.
func (p Poly) Degree() int {
	return len(p.C) - 1
}

// IsZero reports whether p is the zero polynomial.
func (p Poly) IsZero() bool {
	return len(p.C) == 0
}

// LeadCoeff returns the leading (highest-degree) coefficient.
func (p Poly) LeadCoeff() numfield.Scalar {
	if p.IsZero() {
		return numfield.Zero()
	}
	return p.C[len(p.C)-1]
}

// Eval evaluates p at x using Horner's method, exactly.
func (p Poly) Eval(x numfield.Scalar) numfield.Scalar {
	acc := numfield.Zero()
	for i := len(p.C) - 1; i >= 0; i-- {
		acc = acc.Mul(x).Add(p.C[i])
	}
	return acc
}

// EvalComplex evaluates p numerically at a machine-precision point,
// used by the root finder's iteration (not itself certified).
func (p Poly) EvalComplex(x complex128) complex128 {
	acc := complex(0, 0)
	for i := len(p.C) - 1; i >= 0; i-- {
		acc = acc*x + p.C[i].Complex128()
	}
	return acc
}

// Derivative returns dp/dx.
func (p Poly) Derivative() Poly {
	if p.Degree() <= 0 {
		return Poly{}
	}
	out := make([]numfield.Scalar, p.Degree())
	for i := 1; i < len(p.C); i++ {
		out[i-1] = p.C[i].Mul(numfield.NewInt(int64(i)))
	}
	return New(out)
}

// Add returns p + q.
func (p Poly) Add(q Poly) Poly {
	n := len(p.C)
	if len(q.C) > n {
		n = len(q.C)
	}
	out := make([]numfield.Scalar, n)
	for i := 0; i < n; i++ {
		a, b := numfield.Zero(), numfield.Zero()
		if i < len(p.C) {
			a = p.C[i]
		}
		if i < len(q.C) {
			b = q.C[i]
		}
		out[i] = a.Add(b)
	}
	return New(out)
}

// Sub returns p - q.
func (p Poly) Sub(q Poly) Poly {
	return p.Add(q.Scale(numfield.NewInt(-1)))
}

// Scale returns c*p.
func (p Poly) Scale(c numfield.Scalar) Poly {
	out := make([]numfield.Scalar, len(p.C))
	for i, a := range p.C {
		out[i] = a.Mul(c)
	}
	return New(out)
}

// Mul returns p * q.
func (p Poly) Mul(q Poly) Poly {
	if p.IsZero() || q.IsZero() {
		return Poly{}
	}
	out := make([]numfield.Scalar, len(p.C)+len(q.C)-1)
	for i := range out {
		out[i] = numfield.Zero()
	}
	for i, a := range p.C {
		if a.IsZero() {
			continue
		}
		for j, b := range q.C {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return New(out)
}

// QuoRem returns (quotient, remainder) of p divided by q.
func (p Poly) QuoRem(q Poly) (Poly, Poly, error) {
	if q.IsZero() {
		return Poly{}, Poly{}, ErrZeroDivisor
	}
	rem := Poly{C: append([]numfield.Scalar(nil), p.C...)}
	quoDeg := p.Degree() - q.Degree()
	var quo []numfield.Scalar
	if quoDeg >= 0 {
		quo = make([]numfield.Scalar, quoDeg+1)
		for i := range quo {
			quo[i] = numfield.Zero()
		}
	}
	qLead := q.LeadCoeff()
	for rem.Degree() >= q.Degree() && !rem.IsZero() {
		shift := rem.Degree() - q.Degree()
		rLead := rem.LeadCoeff()
		factor, err := rLead.Div(qLead)
		if err != nil {
			return Poly{}, Poly{}, err
		}
		quo[shift] = factor
		sub := make([]numfield.Scalar, shift+len(q.C))
		for i := range sub {
			sub[i] = numfield.Zero()
		}
		for i, c := range q.C {
			sub[shift+i] = c.Mul(factor)
		}
		rem = rem.Sub(New(sub))
	}
	return New(quo), rem, nil
}

// ExactDiv returns p/q, failing with ErrInexactDivision if the
// remainder is non-zero.
func (p Poly) ExactDiv(q Poly) (Poly, error) {
	quo, rem, err := p.QuoRem(q)
	if err != nil {
		return Poly{}, err
	}
	if !rem.IsZero() {
		return Poly{}, ErrInexactDivision
	}
	return quo, nil
}

// Gcd returns the monic-normalised greatest common divisor of p and q
// via the Euclidean algorithm (exact, over the field ℚ(i)).
func Gcd(p, q Poly) (Poly, error) {
	a, b := p, q
	for !b.IsZero() {
		_, rem, err := a.QuoRem(b)
		if err != nil {
			return Poly{}, err
		}
		a, b = b, rem
	}
	if a.IsZero() {
		return a, nil
	}
	lead := a.LeadCoeff()
	return a.Scale(numfield.One()).normalize(lead), nil
}

func (p Poly) normalize(lead numfield.Scalar) Poly {
	out := make([]numfield.Scalar, len(p.C))
	for i, c := range p.C {
		v, err := c.Div(lead)
		if err != nil {
			v = c
		}
		out[i] = v
	}
	return New(out)
}

// Resultant computes Res(p, q) via the Sylvester-matrix determinant.
// Both inputs are non-zero; degrees are assumed small (the pipeline
// only takes resultants of a fiber P(x0, y) and its y-derivative).
func Resultant(p, q Poly) (numfield.Scalar, error) {
	if p.IsZero() || q.IsZero() {
		return numfield.Zero(), ErrZeroDivisor
	}
	m, n := p.Degree(), q.Degree()
	size := m + n
	if size == 0 {
		return numfield.One(), nil
	}
	mat := make([][]numfield.Scalar, size)
	for i := range mat {
		mat[i] = make([]numfield.Scalar, size)
		for j := range mat[i] {
			mat[i][j] = numfield.Zero()
		}
	}
	// n rows of shifted p (descending-degree convention for the
	// Sylvester matrix: write p's coefficients high-to-low).
	pHi := reverseCoeffs(p)
	qHi := reverseCoeffs(q)
	for i := 0; i < n; i++ {
		for j, c := range pHi {
			mat[i][i+j] = c
		}
	}
	for i := 0; i < m; i++ {
		for j, c := range qHi {
			mat[n+i][i+j] = c
		}
	}
	det, err := determinant(mat)
	if err != nil {
		return numfield.Zero(), err
	}
	return det, nil
}

func reverseCoeffs(p Poly) []numfield.Scalar {
	out := make([]numfield.Scalar, len(p.C))
	for i, c := range p.C {
		out[len(p.C)-1-i] = c
	}
	return out
}

// determinant computes the determinant of a square Scalar matrix via
// Gaussian elimination over the field, taking the first non-zero entry
// of each column as pivot and negating on each row swap.
func determinant(m [][]numfield.Scalar) (numfield.Scalar, error) {
	n := len(m)
	a := make([][]numfield.Scalar, n)
	for i := range a {
		a[i] = append([]numfield.Scalar(nil), m[i]...)
	}
	det := numfield.One()
	for col := 0; col < n; col++ {
		pivot := -1
		for r := col; r < n; r++ {
			if !a[r][col].IsZero() {
				pivot = r
				break
			}
		}
		if pivot == -1 {
			return numfield.Zero(), nil
		}
		if pivot != col {
			a[col], a[pivot] = a[pivot], a[col]
			det = det.Neg()
		}
		det = det.Mul(a[col][col])
		for r := col + 1; r < n; r++ {
			if a[r][col].IsZero() {
				continue
			}
			factor, err := a[r][col].Div(a[col][col])
			if err != nil {
				return numfield.Zero(), err
			}
			for c := col; c < n; c++ {
				a[r][c] = a[r][c].Sub(factor.Mul(a[col][c]))
			}
		}
	}
	return det, nil
}

// Discriminant returns Res(p, p')/lead(p).
func (p Poly) Discriminant() (numfield.Scalar, error) {
	dp := p.Derivative()
	if dp.IsZero() {
		return numfield.Zero(), ErrZeroDivisor
	}
	res, err := Resultant(p, dp)
	if err != nil {
		return numfield.Zero(), err
	}
	return res.Div(p.LeadCoeff())
}

// MakeSquarefree divides p by gcd(p, p'), returning the squarefree
// part. It returns ErrNotSquarefree alongside the reduced polynomial
// when p was not already squarefree, so the caller can warn and
// continue with the returned value.
func MakeSquarefree(p Poly) (Poly, error) {
	dp := p.Derivative()
	if dp.IsZero() {
		return p, nil
	}
	g, err := Gcd(p, dp)
	if err != nil {
		return Poly{}, err
	}
	if g.Degree() <= 0 {
		return p, nil
	}
	reduced, err := p.ExactDiv(g)
	if err != nil {
		return Poly{}, err
	}
	return reduced, ErrNotSquarefree
}
