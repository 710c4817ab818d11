// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"same ints", int64(1), 1, true},
		{"int and float", int64(1), 1.0, true},
		{"different numbers", 1, 1.5, false},
		{"strings", "a", "a", true},
		{"string and number", "1", 1, false},
		{"bools", true, true, true},
		{"bool and int", true, 1, false},
		{"nil and nil", nil, nil, true},
		{"nil and zero", nil, 0, false},
		{"lists", []any{int64(1), 2.0}, []float64{1, 2}, true},
		{"list lengths", []any{1}, []any{1, 2}, false},
		{"matrices", []any{[]any{1, nil}}, [][]any{{1.0, nil}}, true},
		{"list and scalar", []any{1}, 1, false},
		{"empty lists", []any{}, []int{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValuesEqual(tt.a, tt.b))
			assert.Equal(t, tt.want, ValuesEqual(tt.b, tt.a))
		})
	}
}
