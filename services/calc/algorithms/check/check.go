// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package check provides assertions for plugin unit-test suites.
package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// Outputs builds a test that expects fn(params) to return want exactly,
// comparing numbers by value.
func Outputs(name string, fn core.Func, params core.Params, want core.Params) builder.UnitTest {
	return builder.UnitTest{
		Name: name,
		Run: func(ctx context.Context) error {
			got, err := fn(ctx, params)
			if err != nil {
				return fmt.Errorf("unexpected error: %w", err)
			}
			if len(got) != len(want) {
				return fmt.Errorf("got %s, want %s", got, want)
			}
			for k, v := range want {
				if !core.ValuesEqual(got[k], v) {
					return fmt.Errorf("%s: got %v, want %v", k, got[k], v)
				}
			}
			return nil
		},
	}
}

// Fails builds a test that expects fn(params) to fail with a message
// containing substr.
func Fails(name string, fn core.Func, params core.Params, substr string) builder.UnitTest {
	return builder.UnitTest{
		Name: name,
		Run: func(ctx context.Context) error {
			_, err := fn(ctx, params)
			if err == nil {
				return fmt.Errorf("expected error containing %q", substr)
			}
			if !strings.Contains(err.Error(), substr) {
				return fmt.Errorf("error %q does not contain %q", err, substr)
			}
			return nil
		},
	}
}
