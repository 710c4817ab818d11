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
	"encoding/json"
	"fmt"
	"reflect"
)

// DataElement declares one parameter or output of an Algorithm.
//
// A DataElement is immutable and its default value always satisfies its own
// type and shape.
type DataElement struct {
	name         string
	title        string
	description  string
	valueType    ValueType
	shape        ValueShape
	defaultValue any
}

// NewDataElement validates the declaration and its default value.
//
// Description:
//
//	Rejects empty name, title, or description and unknown type or shape with
//	ErrInvalidDeclaration. The default is then checked with CheckValue; a
//	failing default yields an error wrapping both ErrInvalidDeclaration and
//	the specific value error (for example a *RowError).
//
// Inputs:
//
//	name, title, description - Non-empty strings.
//	t, s - Declared type and shape.
//	def - Default value, also used as the self-test input or expected output.
//
// Outputs:
//
//	*DataElement - The element. Never nil when error is nil.
//	error - Non-nil if the declaration is invalid.
func NewDataElement(name, title, description string, t ValueType, s ValueShape, def any) (*DataElement, error) {
	for _, f := range []struct{ field, value string }{
		{"name", name}, {"title", title}, {"description", description},
	} {
		if f.value == "" {
			return nil, fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidDeclaration, f.field)
		}
	}
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: unknown data type %q", ErrInvalidDeclaration, string(t))
	}
	if !s.IsValid() {
		return nil, fmt.Errorf("%w: unknown data shape %q", ErrInvalidDeclaration, string(s))
	}

	e := &DataElement{
		name:        name,
		title:       title,
		description: description,
		valueType:   t,
		shape:       s,
	}
	if err := e.CheckValue(def); err != nil {
		return nil, fmt.Errorf("%w: default value of %q: %w", ErrInvalidDeclaration, name, err)
	}
	e.defaultValue = copyValue(def)
	return e, nil
}

func (e *DataElement) Name() string        { return e.name }
func (e *DataElement) Title() string       { return e.title }
func (e *DataElement) Description() string { return e.description }
func (e *DataElement) Type() ValueType     { return e.valueType }
func (e *DataElement) Shape() ValueShape   { return e.shape }

// DefaultValue returns a copy of the default; lists and matrices are never
// shared with the element.
func (e *DataElement) DefaultValue() any { return copyValue(e.defaultValue) }

func (e *DataElement) String() string {
	return fmt.Sprintf("DataElement: %s, %q, value: %v", e.name, e.title, e.defaultValue)
}

// CheckValue validates v against the declared shape and then the declared
// type of every element.
//
// Nil entries inside a list or matrix are skipped: a partially filled list
// or matrix passes, while a nil list or matrix does not.
func (e *DataElement) CheckValue(v any) error {
	if err := e.shape.Validate(v); err != nil {
		return err
	}

	switch e.shape {
	case ShapeScalar:
		if !e.valueType.Accepts(v) {
			return &ValueTypeError{Expected: e.valueType, Index: -1, Column: -1, Row: -1}
		}
	case ShapeList:
		rv := reflect.ValueOf(v)
		for i := 0; i < rv.Len(); i++ {
			item := elem(rv, i)
			if item != nil && !e.valueType.Accepts(item) {
				return &ValueTypeError{Expected: e.valueType, Index: i, Column: -1, Row: -1}
			}
		}
	case ShapeMatrix:
		rows := reflect.ValueOf(v)
		for r := 0; r < rows.Len(); r++ {
			row := reflect.ValueOf(elem(rows, r))
			for c := 0; c < row.Len(); c++ {
				item := elem(row, c)
				if item != nil && !e.valueType.Accepts(item) {
					return &ValueTypeError{Expected: e.valueType, Index: -1, Column: c, Row: r}
				}
			}
		}
	}
	return nil
}

// ElementDefinition is the serialized form of a DataElement.
type ElementDefinition struct {
	Name         string     `json:"name"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	DataType     ValueType  `json:"data_type"`
	DataShape    ValueShape `json:"data_shape"`
	DefaultValue any        `json:"default_value"`
}

// Definition returns the serializable description of e.
func (e *DataElement) Definition() ElementDefinition {
	return ElementDefinition{
		Name:         e.name,
		Title:        e.title,
		Description:  e.description,
		DataType:     e.valueType,
		DataShape:    e.shape,
		DefaultValue: copyValue(e.defaultValue),
	}
}

func (e *DataElement) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Definition())
}
