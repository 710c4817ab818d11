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
	"strings"
)

// ValueType is the primitive kind of a parameter or output value.
type ValueType string

const (
	TypeInt    ValueType = "INT"
	TypeFloat  ValueType = "FLOAT"
	TypeString ValueType = "STRING"
	TypeBool   ValueType = "BOOL"
)

// ParseValueType converts a definition-file name into a ValueType.
func ParseValueType(s string) (ValueType, error) {
	t := ValueType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown data type %q", ErrInvalidDeclaration, s)
	}
	return t, nil
}

// IsValid reports whether t is one of the declared constants.
func (t ValueType) IsValid() bool {
	switch t {
	case TypeInt, TypeFloat, TypeString, TypeBool:
		return true
	}
	return false
}

// String renders the type in lower case, as used in validation messages.
func (t ValueType) String() string {
	return strings.ToLower(string(t))
}

// Accepts reports whether a single non-nil scalar v is admissible for t.
// FLOAT accepts integers as well as floats; every other type requires an
// exact kind match.
func (t ValueType) Accepts(v any) bool {
	k, ok := scalarKind(v)
	if !ok {
		return false
	}
	if t == TypeFloat {
		return k == TypeFloat || k == TypeInt
	}
	return k == t
}

// KindOf reports the primitive kind of a single non-nil scalar, before any
// widening. Lists, matrices and nil report false.
func KindOf(v any) (ValueType, bool) {
	return scalarKind(v)
}

// scalarKind classifies v as one of the four primitive kinds.
func scalarKind(v any) (ValueType, bool) {
	switch n := v.(type) {
	case json.Number:
		if _, err := n.Int64(); err == nil {
			return TypeInt, true
		}
		if _, err := n.Float64(); err == nil {
			return TypeFloat, true
		}
		return "", false
	case nil:
		return "", false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeInt, true
	case reflect.Float32, reflect.Float64:
		return TypeFloat, true
	case reflect.String:
		return TypeString, true
	case reflect.Bool:
		return TypeBool, true
	}
	return "", false
}

// ValueShape is the structural class of a value.
type ValueShape string

const (
	ShapeScalar ValueShape = "SCALAR"
	ShapeList   ValueShape = "LIST"
	ShapeMatrix ValueShape = "MATRIX"
)

// ParseValueShape converts a definition-file name into a ValueShape.
func ParseValueShape(s string) (ValueShape, error) {
	sh := ValueShape(s)
	if !sh.IsValid() {
		return "", fmt.Errorf("%w: unknown data shape %q", ErrInvalidDeclaration, s)
	}
	return sh, nil
}

// IsValid reports whether s is one of the declared constants.
func (s ValueShape) IsValid() bool {
	switch s {
	case ShapeScalar, ShapeList, ShapeMatrix:
		return true
	}
	return false
}

func (s ValueShape) String() string {
	return strings.ToLower(string(s))
}

// Validate checks the structure of v without looking at element types.
//
// An untyped nil is ErrNullValue for every shape. A matrix must be a
// non-empty list whose rows are all lists; the first offending row is
// reported as a *RowError.
func (s ValueShape) Validate(v any) error {
	if v == nil {
		return ErrNullValue
	}
	switch s {
	case ShapeScalar:
		if _, ok := scalarKind(v); !ok {
			return ErrNotScalar
		}
	case ShapeList:
		if !isSequence(v) {
			return ErrNotList
		}
	case ShapeMatrix:
		if !isSequence(v) {
			return ErrNotMatrix
		}
		rv := reflect.ValueOf(v)
		if rv.Len() == 0 {
			return ErrNotMatrix
		}
		for i := 0; i < rv.Len(); i++ {
			if !isSequence(elem(rv, i)) {
				return &RowError{Row: i}
			}
		}
	default:
		return fmt.Errorf("%w: unknown data shape %q", ErrInvalidDeclaration, string(s))
	}
	return nil
}

// isSequence reports whether v is a slice or array. Strings and byte
// strings are scalars, not sequences.
func isSequence(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// elem returns the i-th element of a slice or array as an interface,
// unwrapping interface-typed elements so that a nil entry yields nil.
func elem(rv reflect.Value, i int) any {
	e := rv.Index(i)
	if e.Kind() == reflect.Interface || e.Kind() == reflect.Pointer {
		if e.IsNil() {
			return nil
		}
		if e.Kind() == reflect.Pointer {
			return e.Elem().Interface()
		}
	}
	return e.Interface()
}
