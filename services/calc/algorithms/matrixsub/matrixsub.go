// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package matrixsub subtracts one matrix from another.
package matrixsub

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/check"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// Name is the catalog directory of this algorithm.
const Name = "matrix_sub"

// ErrRowCount is returned when the matrices have a different number of rows.
var ErrRowCount = errors.New("matrices have different row counts")

// Subtract returns n - m. Both matrices must be rectangular with the row
// length of n[0] and must not contain unset (NaN) cells.
func Subtract(n, m [][]float64) ([][]float64, error) {
	if len(n) != len(m) {
		return nil, ErrRowCount
	}
	width := len(n[0])
	if err := checkMatrix(n, "n", width); err != nil {
		return nil, err
	}
	if err := checkMatrix(m, "m", width); err != nil {
		return nil, err
	}

	out := make([][]float64, len(n))
	for i := range n {
		out[i] = make([]float64, width)
		for j := range n[i] {
			out[i][j] = n[i][j] - m[i][j]
		}
	}
	return out, nil
}

func checkMatrix(matrix [][]float64, name string, width int) error {
	for _, row := range matrix {
		if len(row) != width {
			return fmt.Errorf("wrong number of columns in matrix %s", name)
		}
		for _, cell := range row {
			if math.IsNaN(cell) {
				return fmt.Errorf("matrix %s has an unset value", name)
			}
		}
	}
	return nil
}

// Main reads matrices n and m and returns {"result": n - m}.
func Main(_ context.Context, p core.Params) (core.Params, error) {
	n, err := p.FloatMatrix("n")
	if err != nil {
		return nil, err
	}
	m, err := p.FloatMatrix("m")
	if err != nil {
		return nil, err
	}
	diff, err := Subtract(n, m)
	if err != nil {
		return nil, err
	}
	return core.Params{"result": diff}, nil
}

// Plugin returns the registration for this algorithm.
func Plugin() builder.Plugin {
	return builder.Plugin{
		Name: Name,
		Main: Main,
		Tests: []builder.UnitTest{
			check.Fails("row count", Main, core.Params{
				"n": []any{[]any{0.0}, []any{1.0}},
				"m": []any{[]any{0.0}, []any{0.0}, []any{0.0}},
			}, ErrRowCount.Error()),
			check.Fails("unset value in n", Main, core.Params{
				"n": []any{[]any{nil}, []any{1.0}},
				"m": []any{[]any{0.0}, []any{0.0}},
			}, "matrix n has an unset value"),
			check.Fails("unset value in m", Main, core.Params{
				"n": []any{[]any{2.0}, []any{1.0}},
				"m": []any{[]any{nil}, []any{1.0}},
			}, "matrix m has an unset value"),
			check.Fails("ragged rows", Main, core.Params{
				"n": []any{[]any{1.0, 2.0}, []any{1.0}},
				"m": []any{[]any{1.0, 2.0}, []any{1.0, 2.0}},
			}, "wrong number of columns in matrix n"),
			check.Outputs("subtract", Main, core.Params{
				"n": [][]float64{{1, 2, 3}, {2, 3, 4}},
				"m": [][]float64{{0, 2, 2}, {2, 1, 4}},
			}, core.Params{"result": [][]float64{{1, 0, 1}, {0, 2, 0}}}),
			check.Outputs("subtract itself", Main, core.Params{
				"n": [][]float64{{1, 2, 3}, {2, 3, 4}},
				"m": [][]float64{{1, 2, 3}, {2, 3, 4}},
			}, core.Params{"result": [][]float64{{0, 0, 0}, {0, 0, 0}}}),
		},
	}
}
