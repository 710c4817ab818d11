// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package quadratic solves a*x^2 + b*x + c = 0 over the reals.
package quadratic

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/check"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// Name is the catalog directory of this algorithm.
const Name = "quadratic_equation"

// NoRealRoots is reported when the discriminant is negative.
const NoRealRoots = "no real roots, D < 0"

// ErrZeroLeading is returned when a == 0.
var ErrZeroLeading = errors.New("coefficient of x^2 in a quadratic equation must not be 0")

// Solve describes the real roots of the equation. Distinct roots are
// rounded to 8 decimal places.
func Solve(a, b, c float64) (string, error) {
	if a == 0 {
		return "", ErrZeroLeading
	}

	d := b*b - 4*a*c
	switch {
	case d < 0:
		return NoRealRoots, nil
	case d == 0:
		x := -b / (2 * a)
		if b == 0 && c == 0 {
			x = math.Abs(x)
		}
		return "single root: x = " + formatFloat(x), nil
	}

	sq := math.Sqrt(d)
	x1 := round8((-b + sq) / (2 * a))
	x2 := round8((-b - sq) / (2 * a))
	return "x1 = " + formatFloat(x1) + ", x2 = " + formatFloat(x2), nil
}

func round8(x float64) float64 {
	r := math.Round(x*1e8) / 1e8
	if r == 0 {
		return 0 // drop the sign of -0
	}
	return r
}

// formatFloat prints the shortest representation, keeping ".0" on whole
// numbers.
func formatFloat(x float64) string {
	s := strconv.FormatFloat(x, 'f', -1, 64)
	if x == math.Trunc(x) {
		s += ".0"
	}
	return s
}

// Main reads coefficients a, b, c and returns {"roots": Solve(a, b, c)}.
func Main(_ context.Context, p core.Params) (core.Params, error) {
	a, err := p.Float("a")
	if err != nil {
		return nil, err
	}
	b, err := p.Float("b")
	if err != nil {
		return nil, err
	}
	c, err := p.Float("c")
	if err != nil {
		return nil, err
	}
	roots, err := Solve(a, b, c)
	if err != nil {
		return nil, err
	}
	return core.Params{"roots": roots}, nil
}

func coefficients(a, b, c float64) core.Params {
	return core.Params{"a": a, "b": b, "c": c}
}

// Plugin returns the registration for this algorithm.
func Plugin() builder.Plugin {
	return builder.Plugin{
		Name: Name,
		Main: Main,
		Tests: []builder.UnitTest{
			check.Fails("non-numeric coefficient", Main, core.Params{"a": "one", "b": 1.0, "c": 1.0}, "not a number"),
			check.Fails("zero a", Main, coefficients(0, 1, 1), ErrZeroLeading.Error()),
			check.Outputs("zero b", Main, coefficients(1.0/3, 0, -3), core.Params{"roots": "x1 = 3.0, x2 = -3.0"}),
			check.Outputs("zero c", Main, coefficients(3.2, 6.5, 0), core.Params{"roots": "x1 = 0.0, x2 = -2.03125"}),
			check.Outputs("negative discriminant", Main, coefficients(1, 2, 3), core.Params{"roots": NoRealRoots}),
			check.Outputs("zero discriminant", Main, coefficients(1, 10, 25), core.Params{"roots": "single root: x = -5.0"}),
			check.Outputs("periodic fractions", Main, coefficients(1.0/3, 5.0/7, -3), core.Params{"roots": "x1 = 2.11415759, x2 = -4.25701473"}),
		},
	}
}
