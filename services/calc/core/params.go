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
	"math"
	"reflect"
	"sort"
	"strings"
)

// Params maps parameter or output names to values.
type Params map[string]any

// Keys returns the names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders p as {a: 1, b: [1 2]} with sorted keys.
func (p Params) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range p.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, p[k])
	}
	b.WriteByte('}')
	return b.String()
}

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// copyValue deep-copies lists and matrices so callers cannot reach shared
// backing arrays. Scalars and nil are returned as is.
func copyValue(v any) any {
	if x, ok := v.([]any); ok {
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	for i := range rv.Len() {
		e := rv.Index(i)
		switch e.Kind() {
		case reflect.Slice, reflect.Interface:
			if !e.IsNil() {
				out.Index(i).Set(reflect.ValueOf(copyValue(e.Interface())))
			}
		default:
			out.Index(i).Set(e)
		}
	}
	return out.Interface()
}

// Int reads name as an int64. Floats with an integral value are accepted.
func (p Params) Int(name string) (int64, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s is missing", ErrParameterShape, name)
	}
	return toInt(name, v)
}

// Float reads name as a float64, widening integers.
func (p Params) Float(name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s is missing", ErrParameterShape, name)
	}
	return toFloat(name, v)
}

// Str reads name as a string.
func (p Params) Str(name string) (string, error) {
	s, ok := p[name].(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is not a string", ErrParameterShape, name)
	}
	return s, nil
}

// Bool reads name as a bool.
func (p Params) Bool(name string) (bool, error) {
	b, ok := p[name].(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s is not a bool", ErrParameterShape, name)
	}
	return b, nil
}

// IntList reads name as a list of integers. Nil entries are rejected.
func (p Params) IntList(name string) ([]int64, error) {
	items, err := p.list(name)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(items))
	for i, item := range items {
		n, err := toInt(fmt.Sprintf("%s[%d]", name, i), item)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// FloatMatrix reads name as a matrix of floats. Nil cells are returned as
// NaN so callers can detect unset entries.
func (p Params) FloatMatrix(name string) ([][]float64, error) {
	rows, err := p.list(name)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(rows))
	for r, row := range rows {
		cells, err := asList(fmt.Sprintf("%s[%d]", name, r), row)
		if err != nil {
			return nil, err
		}
		out[r] = make([]float64, len(cells))
		for c, cell := range cells {
			if cell == nil {
				out[r][c] = math.NaN()
				continue
			}
			f, err := toFloat(fmt.Sprintf("%s[%d][%d]", name, r, c), cell)
			if err != nil {
				return nil, err
			}
			out[r][c] = f
		}
	}
	return out, nil
}

// List reads name as a list. Nil entries are returned as nil.
func (p Params) List(name string) ([]any, error) {
	return p.list(name)
}

func (p Params) list(name string) ([]any, error) {
	v, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s is missing", ErrParameterShape, name)
	}
	return asList(name, v)
}

func asList(name string, v any) ([]any, error) {
	if !isSequence(v) {
		return nil, fmt.Errorf("%w: %s is not a list", ErrParameterShape, name)
	}
	rv := reflect.ValueOf(v)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = elem(rv, i)
	}
	return out, nil
}

func toInt(name string, v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
	case float32, float64:
		f := reflect.ValueOf(n).Float()
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			return int64(f), nil
		}
	default:
		if k, ok := scalarKind(v); ok && k == TypeInt {
			rv := reflect.ValueOf(v)
			if rv.CanInt() {
				return rv.Int(), nil
			}
			return int64(rv.Uint()), nil
		}
	}
	return 0, fmt.Errorf("%w: %s is not an integer", ErrParameterShape, name)
}

func toFloat(name string, v any) (float64, error) {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f, nil
		}
		return 0, fmt.Errorf("%w: %s is not a number", ErrParameterShape, name)
	}
	k, ok := scalarKind(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not a number", ErrParameterShape, name)
	}
	rv := reflect.ValueOf(v)
	switch k {
	case TypeFloat:
		return rv.Float(), nil
	case TypeInt:
		if rv.CanInt() {
			return float64(rv.Int()), nil
		}
		return float64(rv.Uint()), nil
	}
	return 0, fmt.Errorf("%w: %s is not a number", ErrParameterShape, name)
}

// NormalizeJSON converts values decoded with json.Decoder.UseNumber into the
// canonical value model: integral numbers become int64, other numbers
// float64, and nested lists are normalized recursively.
func NormalizeJSON(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = NormalizeJSON(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = NormalizeJSON(item)
		}
		return out
	}
	return v
}
