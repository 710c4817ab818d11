// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package fibonaccilist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
)

func TestSequence(t *testing.T) {
	seq, err := Sequence(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, seq)

	seq, err = Sequence(7)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 1, 2, 3, 5, 8, 13}, seq)

	_, err = Sequence(0)
	assert.Error(t, err)
}

func TestPlugin_UnitTestsPass(t *testing.T) {
	assert.Empty(t, builder.RunUnitTests(context.Background(), Plugin()))
}
