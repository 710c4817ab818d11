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
	"github.com/stretchr/testify/require"
)

func TestNewDataElement(t *testing.T) {
	e, err := NewDataElement("n", "Number", "Ordinal of the term", TypeInt, ShapeScalar, int64(10))
	require.NoError(t, err)

	assert.Equal(t, "n", e.Name())
	assert.Equal(t, "Number", e.Title())
	assert.Equal(t, "Ordinal of the term", e.Description())
	assert.Equal(t, TypeInt, e.Type())
	assert.Equal(t, ShapeScalar, e.Shape())
	assert.Equal(t, int64(10), e.DefaultValue())
	assert.NoError(t, e.CheckValue(e.DefaultValue()))
}

func TestNewDataElement_InvalidDeclaration(t *testing.T) {
	tests := []struct {
		name        string
		elemName    string
		title       string
		description string
		vt          ValueType
		shape       ValueShape
		def         any
	}{
		{"empty name", "", "t", "d", TypeInt, ShapeScalar, 1},
		{"empty title", "n", "", "d", TypeInt, ShapeScalar, 1},
		{"empty description", "n", "t", "", TypeInt, ShapeScalar, 1},
		{"unknown type", "n", "t", "d", ValueType("DECIMAL"), ShapeScalar, 1},
		{"unknown shape", "n", "t", "d", TypeInt, ValueShape("CUBE"), 1},
		{"default of wrong type", "n", "t", "d", TypeInt, ShapeScalar, "one"},
		{"nil default", "n", "t", "d", TypeInt, ShapeScalar, nil},
		{"nil list default", "n", "t", "d", TypeInt, ShapeList, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewDataElement(tt.elemName, tt.title, tt.description, tt.vt, tt.shape, tt.def)
			assert.Nil(t, e)
			assert.ErrorIs(t, err, ErrInvalidDeclaration)
		})
	}
}

func TestNewDataElement_MatrixDefaultRowNotList(t *testing.T) {
	_, err := NewDataElement("m", "Matrix", "A matrix", TypeInt, ShapeMatrix,
		[]any{[]any{1, 2}, []any{1, 2}, "row"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDeclaration)
	var rowErr *RowError
	require.ErrorAs(t, err, &rowErr)
	assert.Equal(t, 2, rowErr.Row)
}

func TestDataElement_CheckValue_FloatWidening(t *testing.T) {
	e, err := NewDataElement("x", "X", "A float", TypeFloat, ShapeScalar, 0.5)
	require.NoError(t, err)

	assert.NoError(t, e.CheckValue(1))
	assert.NoError(t, e.CheckValue(int64(1)))
	assert.NoError(t, e.CheckValue(1.25))
	assert.ErrorIs(t, e.CheckValue("1.25"), ErrTypeMismatch)
	assert.ErrorIs(t, e.CheckValue(nil), ErrNullValue)
}

func TestDataElement_CheckValue_List(t *testing.T) {
	e, err := NewDataElement("xs", "Numbers", "A list", TypeInt, ShapeList, []any{int64(1), int64(2)})
	require.NoError(t, err)

	assert.NoError(t, e.CheckValue([]any{1, 2, 3}))
	assert.NoError(t, e.CheckValue([]int{1, 2}))

	err = e.CheckValue([]any{1, "two", 3})
	var typeErr *ValueTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 1, typeErr.Index)
	assert.Equal(t, TypeInt, typeErr.Expected)
	assert.Contains(t, err.Error(), "list element 1")
}

func TestDataElement_CheckValue_Matrix(t *testing.T) {
	e, err := NewDataElement("m", "Matrix", "A matrix", TypeFloat, ShapeMatrix, []any{[]any{1.0, 2}})
	require.NoError(t, err)

	assert.NoError(t, e.CheckValue([][]float64{{1, 2}, {3, 4}}))

	err = e.CheckValue([]any{[]any{1.0, 2.0}, []any{3.0, true}})
	var typeErr *ValueTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, 1, typeErr.Column)
	assert.Equal(t, 1, typeErr.Row)
	assert.Contains(t, err.Error(), "column 1, row 1")
}

// Nil entries inside a list or matrix are treated as unset and skipped,
// while a nil container is rejected. This asymmetry is intentional and kept
// as the contract; the cases below pin it down.
func TestDataElement_CheckValue_NullElementAsymmetry(t *testing.T) {
	list, err := NewDataElement("xs", "Numbers", "A list", TypeInt, ShapeList, []any{int64(1)})
	require.NoError(t, err)
	matrix, err := NewDataElement("m", "Matrix", "A matrix", TypeFloat, ShapeMatrix, []any{[]any{1.0}})
	require.NoError(t, err)

	assert.NoError(t, list.CheckValue([]any{nil, 2, nil}))
	assert.NoError(t, matrix.CheckValue([]any{[]any{nil, 1.0}, []any{2.0, nil}}))

	assert.ErrorIs(t, list.CheckValue(nil), ErrNullValue)
	assert.ErrorIs(t, matrix.CheckValue(nil), ErrNullValue)

	// A partially unset default is accepted as well.
	_, err = NewDataElement("ys", "Numbers", "A list", TypeInt, ShapeList, []any{nil, int64(1)})
	assert.NoError(t, err)
}

func TestDataElement_Definition(t *testing.T) {
	e, err := NewDataElement("flag", "Flag", "A bool", TypeBool, ShapeScalar, true)
	require.NoError(t, err)

	data, err := e.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"flag","title":"Flag","description":"A bool",
		"data_type":"BOOL","data_shape":"SCALAR","default_value":true}`, string(data))
}

func TestDataElement_DefaultValueIsCopied(t *testing.T) {
	def := []any{int64(3), int64(1)}
	e, err := NewDataElement("xs", "Xs", "A list", TypeInt, ShapeList, def)
	require.NoError(t, err)

	def[0] = int64(7)
	got := e.DefaultValue().([]any)
	got[1] = int64(8)
	e.Definition().DefaultValue.([]any)[0] = int64(9)

	assert.Equal(t, []any{int64(3), int64(1)}, e.DefaultValue())
}
