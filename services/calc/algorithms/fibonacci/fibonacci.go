// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fibonacci computes the n-th Fibonacci number.
package fibonacci

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/check"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// Name is the catalog directory of this algorithm.
const Name = "fibonacci"

// MaxN is the largest n whose term fits in an int64.
const MaxN = 92

var (
	ErrNotPositive = errors.New("n must be a positive integer")
	ErrTooLarge    = fmt.Errorf("n must not exceed %d", MaxN)
)

// Term returns the n-th Fibonacci number, with Term(1) == Term(2) == 1.
func Term(n int64) (int64, error) {
	switch {
	case n < 1:
		return 0, ErrNotPositive
	case n > MaxN:
		return 0, ErrTooLarge
	}
	a, b := int64(1), int64(1)
	for i := int64(2); i < n; i++ {
		a, b = b, a+b
	}
	if n == 1 {
		return a, nil
	}
	return b, nil
}

// Main reads n and returns {"result": Term(n)}.
func Main(_ context.Context, p core.Params) (core.Params, error) {
	n, err := p.Int("n")
	if err != nil {
		return nil, err
	}
	term, err := Term(n)
	if err != nil {
		return nil, err
	}
	return core.Params{"result": term}, nil
}

// Plugin returns the registration for this algorithm.
func Plugin() builder.Plugin {
	tests := make([]builder.UnitTest, 0, 12)
	for i, want := range []int64{1, 1, 2, 3, 5, 8, 13, 21, 34, 55} {
		n := int64(i + 1)
		tests = append(tests, check.Outputs(fmt.Sprintf("term %d", n), Main,
			core.Params{"n": n}, core.Params{"result": want}))
	}
	tests = append(tests,
		check.Fails("zero", Main, core.Params{"n": int64(0)}, ErrNotPositive.Error()),
		check.Fails("overflow", Main, core.Params{"n": int64(MaxN + 1)}, ErrTooLarge.Error()),
	)
	return builder.Plugin{Name: Name, Main: Main, Tests: tests}
}
