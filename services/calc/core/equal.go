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

import "reflect"

// ValuesEqual compares two values of the calculator value model.
//
// Numbers compare by value regardless of Go kind, so int64(1) equals 1.0.
// Lists and matrices compare element-wise; nil equals only nil.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ka, aScalar := scalarKind(a)
	kb, bScalar := scalarKind(b)
	if aScalar || bScalar {
		if !aScalar || !bScalar {
			return false
		}
		if isNumeric(ka) && isNumeric(kb) {
			if ka == TypeInt && kb == TypeInt {
				ia, _ := toInt("", a)
				ib, _ := toInt("", b)
				return ia == ib
			}
			fa, _ := toFloat("", a)
			fb, _ := toFloat("", b)
			return fa == fb
		}
		if ka != kb {
			return false
		}
		if ka == TypeBool {
			return reflect.ValueOf(a).Bool() == reflect.ValueOf(b).Bool()
		}
		return reflect.ValueOf(a).String() == reflect.ValueOf(b).String()
	}

	if isSequence(a) && isSequence(b) {
		ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
		if ra.Len() != rb.Len() {
			return false
		}
		for i := 0; i < ra.Len(); i++ {
			if !ValuesEqual(elem(ra, i), elem(rb, i)) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

func isNumeric(t ValueType) bool {
	return t == TypeInt || t == TypeFloat
}
