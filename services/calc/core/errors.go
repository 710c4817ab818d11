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
	"errors"
	"fmt"
	"strings"
	"time"
)

// Declaration errors.
var (
	// ErrInvalidDeclaration indicates malformed Algorithm or DataElement arguments.
	ErrInvalidDeclaration = errors.New("invalid declaration")

	// ErrDuplicateName indicates a parameter or output name is already declared.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrNotADataElement indicates a nil element was passed where one is required.
	ErrNotADataElement = errors.New("not a data element")

	// ErrNotCallable indicates no function is bound, or a nil function was offered.
	ErrNotCallable = errors.New("execute method is not callable")

	// ErrAdditionFailed indicates the bound function failed the default round trip.
	ErrAdditionFailed = errors.New("adding execute method failed")

	// ErrNotFound indicates a missing definition, plugin, or algorithm.
	ErrNotFound = errors.New("not found")
)

// Value errors returned by ValueShape.Validate and DataElement.CheckValue.
var (
	ErrNullValue    = errors.New("value is null")
	ErrNotScalar    = errors.New("value is not a scalar")
	ErrNotList      = errors.New("value is not a list")
	ErrNotMatrix    = errors.New("value is not a matrix")
	ErrRowNotList   = errors.New("matrix row is not a list")
	ErrTypeMismatch = errors.New("value type mismatch")
)

// Call-time contract errors.
var (
	ErrMissingParameters  = errors.New("algorithm has no parameters")
	ErrMissingOutputs     = errors.New("algorithm has no outputs")
	ErrNotADict           = errors.New("values are not a name to value mapping")
	ErrRedundantParameter = errors.New("redundant parameter")
	ErrMissingParameter   = errors.New("missing parameter")
	ErrRedundantOutput    = errors.New("redundant output")
	ErrMissingOutput      = errors.New("missing output")
)

// Execution errors.
var (
	// ErrTimedOut indicates the function exceeded the execution timeout.
	ErrTimedOut = errors.New("execution timed out")

	// ErrUnexpectedParameterShape indicates the function could not consume
	// the declared parameters.
	ErrUnexpectedParameterShape = errors.New("unexpected parameter shape")

	// ErrExecutionFailed indicates the function returned an error or panicked.
	ErrExecutionFailed = errors.New("execution failed")

	// ErrParameterShape is returned by Params accessors when a value cannot be
	// read as the requested Go type. Execute reports it as
	// ErrUnexpectedParameterShape.
	ErrParameterShape = errors.New("parameter has unexpected shape")

	// ErrNestedTimedCall indicates a timed Execute was started from inside
	// another timed Execute.
	ErrNestedTimedCall = errors.New("nested timed execution is not supported")
)

// RowError identifies the first matrix row that is not a list.
type RowError struct {
	Row int
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: row %d", ErrRowNotList, e.Row)
}

func (e *RowError) Unwrap() error { return ErrRowNotList }

// ValueTypeError describes a value whose kind does not match the declared type.
//
// Index is set for lists; Column and Row are set for matrices. Unused
// coordinates are -1.
type ValueTypeError struct {
	Expected ValueType
	Index    int
	Column   int
	Row      int
}

func (e *ValueTypeError) Error() string {
	switch {
	case e.Index >= 0:
		return fmt.Sprintf("list element %d is not of type %s", e.Index, e.Expected)
	case e.Row >= 0:
		return fmt.Sprintf("matrix element in column %d, row %d is not of type %s", e.Column, e.Row, e.Expected)
	default:
		return fmt.Sprintf("value is not of type %s", e.Expected)
	}
}

func (e *ValueTypeError) Unwrap() error { return ErrTypeMismatch }

// ElementError names the parameter or output whose value failed validation.
type ElementError struct {
	Kind string // "parameter" or "output"
	Name string
	Err  error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Kind, e.Name, e.Err)
}

// Unwrap exposes both ErrTypeMismatch and the underlying value error.
func (e *ElementError) Unwrap() []error {
	return []error{ErrTypeMismatch, e.Err}
}

// TimeoutError is returned when execution exceeds the algorithm's timeout.
type TimeoutError struct {
	Algorithm string
	Timeout   time.Duration
	Params    Params
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: algorithm %s exceeded %v with parameters %s",
		ErrTimedOut, e.Algorithm, e.Timeout, e.Params)
}

func (e *TimeoutError) Unwrap() error { return ErrTimedOut }

// ExecutionError wraps a failure raised by the bound function.
type ExecutionError struct {
	Algorithm string
	Message   string
	Params    Params
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: algorithm %s: %s; parameters %s",
		ErrExecutionFailed, e.Algorithm, e.Message, e.Params)
}

// Unwrap exposes ErrExecutionFailed and, if present, the function's own error.
func (e *ExecutionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExecutionFailed}
	}
	return []error{ErrExecutionFailed, e.Err}
}

// AdditionError is returned when a function fails the default round trip.
type AdditionError struct {
	Reason string
}

func (e *AdditionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAdditionFailed, e.Reason)
}

func (e *AdditionError) Unwrap() error { return ErrAdditionFailed }

// trimQuote drops one trailing single quote from a failure message.
func trimQuote(msg string) string {
	return strings.TrimSuffix(msg, "'")
}
