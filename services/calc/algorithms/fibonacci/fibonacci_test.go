// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fibonacci

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

func TestTerm(t *testing.T) {
	tests := []struct {
		n    int64
		want int64
	}{
		{1, 1}, {2, 1}, {3, 2}, {10, 55}, {50, 12586269025}, {MaxN, 7540113804746346429},
	}
	for _, tt := range tests {
		got, err := Term(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}

	_, err := Term(-1)
	assert.ErrorIs(t, err, ErrNotPositive)
	_, err = Term(MaxN + 1)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestMain_ParameterShape(t *testing.T) {
	_, err := Main(context.Background(), core.Params{"n": "ten"})
	assert.ErrorIs(t, err, core.ErrParameterShape)
}

func TestPlugin_UnitTestsPass(t *testing.T) {
	p := Plugin()
	assert.Equal(t, Name, p.Name)
	assert.Empty(t, builder.RunUnitTests(context.Background(), p))
}
