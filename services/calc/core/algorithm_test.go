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
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Helpers
// =============================================================================

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustElement(t *testing.T, name string, vt ValueType, shape ValueShape, def any) *DataElement {
	t.Helper()
	e, err := NewDataElement(name, name+" title", name+" description", vt, shape, def)
	require.NoError(t, err)
	return e
}

// newSumAlgorithm declares sum(a=1, b=2) -> {sum: 3} without binding a function.
func newSumAlgorithm(t *testing.T, timeout time.Duration) *Algorithm {
	t.Helper()
	alg, err := NewAlgorithm("sum", "Sum", "Adds two integers", timeout, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, alg.AddParameter(mustElement(t, "a", TypeInt, ShapeScalar, int64(1))))
	require.NoError(t, alg.AddParameter(mustElement(t, "b", TypeInt, ShapeScalar, int64(2))))
	require.NoError(t, alg.AddOutput(mustElement(t, "sum", TypeInt, ShapeScalar, int64(3))))
	return alg
}

func sumFunc(_ context.Context, p Params) (Params, error) {
	a, err := p.Int("a")
	if err != nil {
		return nil, err
	}
	b, err := p.Int("b")
	if err != nil {
		return nil, err
	}
	return Params{"sum": a + b}, nil
}

// =============================================================================
// Construction
// =============================================================================

func TestNewAlgorithm_InvalidDeclaration(t *testing.T) {
	tests := []struct {
		name        string
		algName     string
		title       string
		description string
		timeout     time.Duration
	}{
		{"empty name", "", "t", "d", 0},
		{"empty title", "n", "", "d", 0},
		{"empty description", "n", "t", "", 0},
		{"negative timeout", "n", "t", "d", -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alg, err := NewAlgorithm(tt.algName, tt.title, tt.description, tt.timeout, WithLogger(quietLogger()))
			assert.Nil(t, alg)
			assert.ErrorIs(t, err, ErrInvalidDeclaration)
		})
	}
}

func TestAlgorithm_StateTransitions(t *testing.T) {
	alg, err := NewAlgorithm("sum", "Sum", "Adds", 0, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, StateDeclared, alg.State())

	require.NoError(t, alg.AddParameter(mustElement(t, "a", TypeInt, ShapeScalar, int64(1))))
	assert.Equal(t, StateConfiguring, alg.State())

	require.NoError(t, alg.AddParameter(mustElement(t, "b", TypeInt, ShapeScalar, int64(2))))
	require.NoError(t, alg.AddOutput(mustElement(t, "sum", TypeInt, ShapeScalar, int64(3))))
	assert.Equal(t, StateTestable, alg.State())

	require.NoError(t, alg.AddExecuteMethod(context.Background(), sumFunc))
	assert.Equal(t, StateBound, alg.State())
	assert.Equal(t, "bound", alg.State().String())
}

func TestAlgorithm_AddElementErrors(t *testing.T) {
	alg := newSumAlgorithm(t, 0)

	err := alg.AddParameter(mustElement(t, "a", TypeInt, ShapeScalar, int64(5)))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Contains(t, err.Error(), `"a"`)

	assert.ErrorIs(t, alg.AddOutput(mustElement(t, "sum", TypeInt, ShapeScalar, int64(3))), ErrDuplicateName)
	assert.ErrorIs(t, alg.AddParameter(nil), ErrNotADataElement)
	assert.ErrorIs(t, alg.AddOutput(nil), ErrNotADataElement)

	// A parameter and an output may share a name.
	assert.NoError(t, alg.AddOutput(mustElement(t, "a", TypeInt, ShapeScalar, int64(1))))
}

func TestAlgorithm_AddParameterAfterBinding(t *testing.T) {
	alg := newSumAlgorithm(t, 0)
	require.NoError(t, alg.AddExecuteMethod(context.Background(), sumFunc))

	err := alg.AddParameter(mustElement(t, "c", TypeInt, ShapeScalar, int64(0)))
	assert.ErrorIs(t, err, ErrInvalidDeclaration)
	assert.Len(t, alg.Parameters(), 2)
}

// =============================================================================
// Binding and self-test
// =============================================================================

func TestAlgorithm_AddExecuteMethod_Nil(t *testing.T) {
	alg := newSumAlgorithm(t, 0)
	assert.ErrorIs(t, alg.AddExecuteMethod(context.Background(), nil), ErrNotCallable)
	assert.Equal(t, StateTestable, alg.State())
}

func TestAlgorithm_AddExecuteMethod_WrongDefaultRollsBack(t *testing.T) {
	alg := newSumAlgorithm(t, 0)

	product := func(_ context.Context, p Params) (Params, error) {
		a, _ := p.Int("a")
		b, _ := p.Int("b")
		return Params{"sum": a * b}, nil
	}

	err := alg.AddExecuteMethod(context.Background(), product)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAdditionFailed)

	var addErr *AdditionError
	require.ErrorAs(t, err, &addErr)
	assert.Contains(t, addErr.Reason, `output "sum"`)
	assert.Equal(t, StateTestable, alg.State())

	_, err = alg.Execute(context.Background(), Params{"a": 1, "b": 2})
	assert.ErrorIs(t, err, ErrNotCallable)
}

func TestAlgorithm_AddExecuteMethod_FailedReplacementClearsBinding(t *testing.T) {
	alg := newSumAlgorithm(t, 0)
	require.NoError(t, alg.AddExecuteMethod(context.Background(), sumFunc))

	broken := func(context.Context, Params) (Params, error) {
		return Params{"sum": int64(0)}, nil
	}
	assert.ErrorIs(t, alg.AddExecuteMethod(context.Background(), broken), ErrAdditionFailed)
	assert.Equal(t, StateTestable, alg.State())
}

func TestAlgorithm_TestErrors(t *testing.T) {
	alg := newSumAlgorithm(t, 0)
	assert.Contains(t, alg.TestErrors(context.Background()), ErrNotCallable.Error())

	require.NoError(t, alg.AddExecuteMethod(context.Background(), sumFunc))
	assert.Empty(t, alg.TestErrors(context.Background()))
}

func TestAlgorithm_TestErrors_TrimsTrailingQuote(t *testing.T) {
	alg, err := NewAlgorithm("quote", "Quote", "Returns the wrong string", 0, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, alg.AddParameter(mustElement(t, "x", TypeString, ShapeScalar, "in")))
	require.NoError(t, alg.AddOutput(mustElement(t, "y", TypeString, ShapeScalar, "'quoted'")))

	err = alg.AddExecuteMethod(context.Background(), func(context.Context, Params) (Params, error) {
		return Params{"y": "other"}, nil
	})
	var addErr *AdditionError
	require.ErrorAs(t, err, &addErr)
	assert.Equal(t, `output "y": got other, expected 'quoted`, addErr.Reason)
}

func TestAlgorithm_TestErrors_IntFloatDefaultsCompareNumerically(t *testing.T) {
	alg, err := NewAlgorithm("half", "Half", "Halves a number", 0, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, alg.AddParameter(mustElement(t, "x", TypeFloat, ShapeScalar, int64(4))))
	require.NoError(t, alg.AddOutput(mustElement(t, "half", TypeFloat, ShapeScalar, int64(2))))

	half := func(_ context.Context, p Params) (Params, error) {
		x, err := p.Float("x")
		if err != nil {
			return nil, err
		}
		return Params{"half": x / 2}, nil
	}
	assert.NoError(t, alg.AddExecuteMethod(context.Background(), half))
}

func TestAlgorithm_TestErrors_InPlaceSortKeepsDefaults(t *testing.T) {
	alg, err := NewAlgorithm("minimum", "Minimum", "Smallest list element", 0, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, alg.AddParameter(mustElement(t, "xs", TypeInt, ShapeList, []any{int64(3), int64(1), int64(2)})))
	require.NoError(t, alg.AddOutput(mustElement(t, "min", TypeInt, ShapeScalar, int64(1))))

	sortInPlace := func(_ context.Context, p Params) (Params, error) {
		xs := p["xs"].([]any)
		sort.Slice(xs, func(i, j int) bool { return xs[i].(int64) < xs[j].(int64) })
		return Params{"min": xs[0]}, nil
	}
	require.NoError(t, alg.AddExecuteMethod(context.Background(), sortInPlace))
	assert.Empty(t, alg.TestErrors(context.Background()))

	d := alg.Describe()
	require.Len(t, d.Parameters, 1)
	assert.Equal(t, []any{int64(3), int64(1), int64(2)}, d.Parameters[0].DefaultValue)
}

func TestAlgorithm_Describe(t *testing.T) {
	alg := newSumAlgorithm(t, 5*time.Second)
	d := alg.Describe()

	assert.Equal(t, "sum", d.Name)
	assert.Equal(t, "Sum", d.Title)
	assert.Equal(t, 5.0, d.TimeoutSeconds)
	require.Len(t, d.Parameters, 2)
	assert.Equal(t, "a", d.Parameters[0].Name)
	assert.Equal(t, "b", d.Parameters[1].Name)
	require.Len(t, d.Outputs, 1)
	assert.Equal(t, int64(3), d.Outputs[0].DefaultValue)
}
