// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

var (
	// ErrNotFound is core.ErrNotFound, re-exported for builder callers.
	ErrNotFound = core.ErrNotFound

	// ErrSchemaViolation indicates a definition file does not match the schema.
	ErrSchemaViolation = errors.New("definition violates schema")

	// ErrUnitTestFailed indicates a plugin's unit-test suite reported failures.
	ErrUnitTestFailed = errors.New("unit tests failed")

	// ErrInvalidConfig indicates the builder configuration is malformed.
	ErrInvalidConfig = errors.New("invalid builder config")

	// ErrInvalidPlugin indicates a plugin without a name or entry point.
	ErrInvalidPlugin = errors.New("invalid plugin")
)

// SchemaError carries the schema validator's findings for one definition.
type SchemaError struct {
	Path   string
	Detail string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrSchemaViolation, e.Path, e.Detail)
}

func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

// UnitTestFailure is one failed plugin unit test.
type UnitTestFailure struct {
	Test string
	Err  error
}

// UnitTestError lists every failed unit test of a plugin.
type UnitTestError struct {
	Algorithm string
	Failures  []UnitTestFailure
}

func (e *UnitTestError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Test, f.Err))
	}
	return fmt.Sprintf("%s for %s: %s", ErrUnitTestFailed, e.Algorithm, strings.Join(parts, "; "))
}

func (e *UnitTestError) Unwrap() error { return ErrUnitTestFailed }
