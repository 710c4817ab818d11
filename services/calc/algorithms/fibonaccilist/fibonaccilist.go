// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package fibonaccilist lists the first n Fibonacci numbers.
package fibonaccilist

import (
	"context"
	"fmt"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/check"
	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/fibonacci"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// Name is the catalog directory of this algorithm.
const Name = "fibonacci_list"

// Sequence returns the first n Fibonacci numbers.
func Sequence(n int64) ([]int64, error) {
	switch {
	case n < 1:
		return nil, fibonacci.ErrNotPositive
	case n > fibonacci.MaxN:
		return nil, fibonacci.ErrTooLarge
	}
	seq := make([]int64, n)
	for i := range seq {
		if i < 2 {
			seq[i] = 1
			continue
		}
		seq[i] = seq[i-1] + seq[i-2]
	}
	return seq, nil
}

// Main reads n and returns {"result": Sequence(n)}.
func Main(_ context.Context, p core.Params) (core.Params, error) {
	n, err := p.Int("n")
	if err != nil {
		return nil, err
	}
	seq, err := Sequence(n)
	if err != nil {
		return nil, err
	}
	return core.Params{"result": seq}, nil
}

// Plugin returns the registration for this algorithm.
func Plugin() builder.Plugin {
	numbers := []int64{1, 1, 2, 3, 5, 8, 13, 21, 34, 55}
	tests := make([]builder.UnitTest, 0, len(numbers)+1)
	for i := range numbers {
		n := int64(i + 1)
		tests = append(tests, check.Outputs(fmt.Sprintf("first %d", n), Main,
			core.Params{"n": n}, core.Params{"result": numbers[:n]}))
	}
	tests = append(tests, check.Fails("negative", Main, core.Params{"n": int64(-3)}, fibonacci.ErrNotPositive.Error()))
	return builder.Plugin{Name: Name, Main: Main, Tests: tests}
}
