// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package perfect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

func TestIsPerfect(t *testing.T) {
	var found []int64
	for n := int64(0); n <= 10000; n++ {
		if IsPerfect(n) {
			found = append(found, n)
		}
	}
	assert.Equal(t, []int64{6, 28, 496, 8128}, found)
	assert.True(t, IsPerfect(33550336))
}

func TestMain_RejectsFloats(t *testing.T) {
	_, err := Main(context.Background(), core.Params{"numbers": []any{6.0}})
	assert.ErrorIs(t, err, ErrNotInt)
}

func TestMain_NoneFoundIsEmptyList(t *testing.T) {
	out, err := Main(context.Background(), core.Params{"numbers": []int64{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, false, out[HasPerfect])
	assert.Equal(t, []int64{}, out[Numbers])
}

func TestPlugin_UnitTestsPass(t *testing.T) {
	assert.Empty(t, builder.RunUnitTests(context.Background(), Plugin()))
}
