// Package testutil provides deterministic curve fixtures and
// tolerance helpers shared across the pipeline's package tests:
// DeterministicSine-style fixed fixtures become named
// curvealg.Bivariate curves here, and RequireSliceNearlyEqual becomes
// the complex/numfield analogues these tests need.
package testutil

import (
	"github.com/cwbudde/vankampen/internal/curvealg"
	"github.com/cwbudde/vankampen/internal/numfield"
	"github.com/cwbudde/vankampen/internal/upoly"
)

// RatPoly builds a upoly.Poly from ascending-degree real (integer)
// coefficients.
func RatPoly(coeffs ...int64) upoly.Poly {
	c := make([]numfield.Scalar, len(coeffs))
	for i, v := range coeffs {
		c[i] = numfield.NewInt(v)
	}
	return upoly.New(c)
}

// RatPolyF builds a upoly.Poly from ascending-degree real float
// coefficients, rationalised exactly via numfield.FromComplex128.
func RatPolyF(coeffs ...float64) upoly.Poly {
	c := make([]numfield.Scalar, len(coeffs))
	for i, v := range coeffs {
		c[i] = numfield.FromComplex128(complex(v, 0))
	}
	return upoly.New(c)
}

// Cusp returns y^2 - x^3, the simplest cuspidal curve: one branch
// point at x=0 where the two sheets meet tangentially.
func Cusp() curvealg.Bivariate {
	return curvealg.New([]upoly.Poly{
		RatPoly(0, 0, 0, -1),
		{},
		RatPoly(1),
	})
}

// ThreeLines returns (x+y)(x-y)(x+2y), three lines through the
// origin, collected by power of y.
func ThreeLines() curvealg.Bivariate {
	return curvealg.New([]upoly.Poly{
		RatPoly(0, 0, 0, 1),
		RatPoly(0, 0, 2),
		RatPoly(0, -1),
		RatPoly(-2),
	})
}

// TwoVertical returns x^2 - 1, two parallel vertical lines
// independent of y (the y-fibration is everywhere degree 0, so the
// curve itself carries no finite monodromy: a regression fixture for
// the vertical-lines path, which yields the free group on two
// generators).
func TwoVertical() curvealg.Bivariate {
	return curvealg.New([]upoly.Poly{
		RatPoly(-1, 0, 1),
	})
}

// Nongeneric returns y(y-1)(y-x), the non-generic three-line
// arrangement x(x-1)(x-y) under the module's
// x<->y fibration convention: three sheets over generic x, with
// branch points at x=0 and x=1 where the y=x sheet collides with
// y=0 and y=1 respectively.
func Nongeneric() curvealg.Bivariate {
	return curvealg.New([]upoly.Poly{
		RatPoly(0),
		RatPoly(0, 1),
		RatPoly(-1, -1),
		RatPoly(1),
	})
}

// Tacnode returns x^3 - y^2, the same topological type as Cusp with a
// different defining polynomial, used to check the pipeline is not
// accidentally keyed on coefficient values rather than curve shape.
func Tacnode() curvealg.Bivariate {
	return curvealg.New([]upoly.Poly{
		RatPoly(0, 0, 0, 1),
		{},
		RatPoly(-1),
	})
}

// TwoConics returns (x^2+y^2-1)(x^2+y^2-4), two disjoint concentric
// circles: four branch points, none of which interact with each
// other's loop.
func TwoConics() curvealg.Bivariate {
	a := RatPoly(-1, 0, 1)
	b := RatPoly(-4, 0, 1)
	return curvealg.New([]upoly.Poly{
		a.Mul(b),
		{},
		RatPoly(-5, 0, 2),
		{},
		RatPoly(1),
	})
}
