// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package perfect picks the perfect numbers out of a list.
package perfect

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/check"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// Name is the catalog directory of this algorithm.
const Name = "perfect_numbers"

// Output names.
const (
	HasPerfect = "has_perfect"
	Numbers    = "perfect_numbers"
)

var (
	ErrEmpty    = errors.New("list of numbers is empty")
	ErrNotInt   = errors.New("list of numbers contains a non-integer value")
	ErrNegative = errors.New("list of numbers contains a negative value")
)

// IsPerfect reports whether n equals the sum of its proper divisors.
func IsPerfect(n int64) bool {
	if n < 2 {
		return false
	}
	sum := int64(1)
	for d := int64(2); d*d <= n; d++ {
		if n%d != 0 {
			continue
		}
		sum += d
		if q := n / d; q != d {
			sum += q
		}
		if sum > n {
			return false
		}
	}
	return sum == n
}

// Filter returns the perfect numbers of numbers, in input order.
func Filter(numbers []int64) []int64 {
	out := []int64{}
	for _, n := range numbers {
		if IsPerfect(n) {
			out = append(out, n)
		}
	}
	return out
}

func integers(items []any) ([]int64, error) {
	if len(items) == 0 {
		return nil, ErrEmpty
	}
	out := make([]int64, len(items))
	for i, item := range items {
		if !core.TypeInt.Accepts(item) {
			return nil, fmt.Errorf("%w at index %d", ErrNotInt, i)
		}
		n, err := core.Params{"n": item}.Int("n")
		if err != nil {
			return nil, fmt.Errorf("%w at index %d", ErrNotInt, i)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w at index %d", ErrNegative, i)
		}
		out[i] = n
	}
	return out, nil
}

// Main reads numbers and returns {"has_perfect", "perfect_numbers"}.
func Main(_ context.Context, p core.Params) (core.Params, error) {
	items, err := p.List("numbers")
	if err != nil {
		return nil, err
	}
	numbers, err := integers(items)
	if err != nil {
		return nil, err
	}
	found := Filter(numbers)
	return core.Params{HasPerfect: len(found) > 0, Numbers: found}, nil
}

func list(v any) core.Params { return core.Params{"numbers": v} }

func want(has bool, numbers ...int64) core.Params {
	if numbers == nil {
		numbers = []int64{}
	}
	return core.Params{HasPerfect: has, Numbers: numbers}
}

// Plugin returns the registration for this algorithm.
func Plugin() builder.Plugin {
	return builder.Plugin{
		Name: Name,
		Main: Main,
		Tests: []builder.UnitTest{
			check.Fails("not a list", Main, list("str"), "numbers is not a list"),
			check.Fails("nil", Main, list(nil), "numbers is not a list"),
			check.Fails("empty", Main, list([]any{}), ErrEmpty.Error()),
			check.Fails("not int", Main, list([]any{int64(1), "str"}), ErrNotInt.Error()),
			check.Fails("unset entry", Main, list([]any{int64(1), nil}), ErrNotInt.Error()),
			check.Fails("negative", Main, list([]any{int64(1), int64(2), int64(-1)}), ErrNegative.Error()),
			check.Outputs("single true", Main, list([]any{int64(6)}), want(true, 6)),
			check.Outputs("single false", Main, list([]any{int64(5)}), want(false)),
			check.Outputs("multi true", Main, list([]any{int64(0), int64(1), int64(6)}), want(true, 6)),
			check.Outputs("perfect only", Main, list([]int64{6, 28, 496, 8128}), want(true, 6, 28, 496, 8128)),
			check.Outputs("multi", Main, list([]int64{6, 0, 10, 28, 100, 496, 532, 8128}), want(true, 6, 28, 496, 8128)),
		},
	}
}
