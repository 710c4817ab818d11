// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package core implements the algorithm contract.
//
// An Algorithm declares typed, shaped parameters and outputs as DataElements
// and binds a Func only after the function reproduces every declared output
// default from the declared parameter defaults. Execute validates each call
// against the declaration, runs the function under a deadline, and validates
// what it returns.
//
// # Value model
//
// Values are the Go forms produced by encoding/json (with UseNumber
// normalized): int64, float64, string, bool, []any and [][]any. Any Go
// integer or float kind, and any slice of them, is accepted as well.
//
//	ValueType   INT | FLOAT | STRING | BOOL   (FLOAT also accepts integers)
//	ValueShape  SCALAR | LIST | MATRIX
//
// # Lifecycle
//
//	Declared -> Configuring -> Testable -> Bound
//
// # Thread Safety
//
// DataElement is immutable. Algorithm is safe for concurrent Execute calls;
// configuration methods are meant to be called from a single goroutine while
// the algorithm is being built.
package core
