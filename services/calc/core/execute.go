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
	"errors"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianCalc/services/calc/telemetry"
)

const tracerName = "aleutian.calc.core"

// Execution status labels for metrics.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusTimeout = "timeout"
	StatusFailed  = "failed"
)

// timedCallKey marks a context that is already inside a timed execution.
type timedCallKey struct{}

type callResult struct {
	outputs Params
	err     error
}

// Execute runs the bound function with params.
//
// Description:
//
//	Validation runs in a fixed order: binding and declarations, params
//	being a mapping, redundant parameter names (sorted order), missing
//	parameters (declaration order), parameter values. The function then
//	runs on a worker goroutine bounded by the execution timeout. Outputs
//	are validated the same way and returned unchanged.
//
// Inputs:
//
//	ctx - Parent context. Cancelling it releases the caller early.
//	params - Parameter values keyed by name. A nil map is ErrNotADict.
//
// Outputs:
//
//	Params - The function's outputs, unchanged.
//	error - A contract error, *TimeoutError, *ExecutionError, or an error
//	wrapping ErrUnexpectedParameterShape.
//
// Limitations:
//
//	A function that ignores ctx keeps running after a timeout; only the
//	caller is released.
//
// Thread Safety: Safe for concurrent use.
func (a *Algorithm) Execute(ctx context.Context, params Params) (Params, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, tracerName, "core.Algorithm.Execute",
		attribute.String("algorithm", a.name),
		attribute.Int("params.count", len(params)),
	)
	defer span.End()

	outputs, err := a.execute(ctx, params)

	a.metrics.RecordExecution(ctx, a.name, StatusOf(err), time.Since(start))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetSpanOK(span)
	return outputs, nil
}

func (a *Algorithm) execute(ctx context.Context, params Params) (Params, error) {
	a.mu.RLock()
	fn := a.fn
	paramDecls := append([]*DataElement(nil), a.parameters...)
	outputDecls := append([]*DataElement(nil), a.outputs...)
	a.mu.RUnlock()

	switch {
	case fn == nil:
		return nil, a.fail(ErrNotCallable)
	case len(paramDecls) == 0:
		return nil, a.fail(ErrMissingParameters)
	case len(outputDecls) == 0:
		return nil, a.fail(ErrMissingOutputs)
	case params == nil:
		return nil, a.fail(fmt.Errorf("%w: parameters", ErrNotADict))
	}

	if err := checkValues("parameter", params, paramDecls, ErrRedundantParameter, ErrMissingParameter); err != nil {
		return nil, a.fail(err)
	}

	outputs, err := a.invoke(ctx, fn, params)
	if err != nil {
		return nil, err
	}

	if outputs == nil {
		return nil, a.fail(fmt.Errorf("%w: outputs", ErrNotADict))
	}
	if err := checkValues("output", outputs, outputDecls, ErrRedundantOutput, ErrMissingOutput); err != nil {
		return nil, a.fail(err)
	}
	return outputs, nil
}

// checkValues validates names first, then values, against decls.
func checkValues(kind string, values Params, decls []*DataElement, redundant, missing error) error {
	declared := make(map[string]*DataElement, len(decls))
	for _, d := range decls {
		declared[d.Name()] = d
	}
	for _, name := range values.Keys() {
		if _, ok := declared[name]; !ok {
			return fmt.Errorf("%w: %q", redundant, name)
		}
	}
	for _, d := range decls {
		if _, ok := values[d.Name()]; !ok {
			return fmt.Errorf("%w: %q", missing, d.Name())
		}
	}
	for _, d := range decls {
		if err := d.CheckValue(values[d.Name()]); err != nil {
			return &ElementError{Kind: kind, Name: d.Name(), Err: err}
		}
	}
	return nil
}

// invoke runs fn, bounded by the algorithm timeout when it is non-zero.
func (a *Algorithm) invoke(ctx context.Context, fn Func, params Params) (Params, error) {
	if a.timeout == 0 {
		return a.call(ctx, fn, params)
	}
	if ctx.Value(timedCallKey{}) != nil {
		return nil, a.fail(fmt.Errorf("%w: %s", ErrNestedTimedCall, a.name))
	}

	tctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	tctx = context.WithValue(tctx, timedCallKey{}, a.name)

	done := make(chan callResult, 1)
	go func() {
		outputs, err := a.call(tctx, fn, params)
		done <- callResult{outputs: outputs, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && a.deadlineHit(ctx, tctx) {
			return nil, a.fail(&TimeoutError{Algorithm: a.name, Timeout: a.timeout, Params: params})
		}
		return r.outputs, r.err
	case <-tctx.Done():
		if a.deadlineHit(ctx, tctx) {
			return nil, a.fail(&TimeoutError{Algorithm: a.name, Timeout: a.timeout, Params: params})
		}
		return nil, a.fail(&ExecutionError{
			Algorithm: a.name,
			Message:   ctx.Err().Error(),
			Params:    params,
			Err:       ctx.Err(),
		})
	}
}

// deadlineHit reports whether tctx ended because of our own deadline rather
// than the parent being cancelled.
func (a *Algorithm) deadlineHit(parent, tctx context.Context) bool {
	return errors.Is(tctx.Err(), context.DeadlineExceeded) && parent.Err() == nil
}

// call invokes fn and classifies its failures. Panics are recovered.
func (a *Algorithm) call(ctx context.Context, fn Func, params Params) (outputs Params, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var te *runtime.TypeAssertionError
		if e, ok := r.(error); ok && errors.As(e, &te) {
			err = a.fail(fmt.Errorf("%w: algorithm %s: %v; parameters %s",
				ErrUnexpectedParameterShape, a.name, te, params))
			return
		}
		err = a.fail(&ExecutionError{
			Algorithm: a.name,
			Message:   fmt.Sprintf("panic: %v", r),
			Params:    params,
		})
	}()

	outputs, err = fn(ctx, params.Clone())
	if err == nil {
		return outputs, nil
	}
	if errors.Is(err, ErrParameterShape) {
		return nil, a.fail(fmt.Errorf("%w: algorithm %s: %w; parameters %s",
			ErrUnexpectedParameterShape, a.name, err, params))
	}
	return nil, a.fail(&ExecutionError{
		Algorithm: a.name,
		Message:   err.Error(),
		Params:    params,
		Err:       err,
	})
}

// StatusOf classifies err into one of the Status labels.
func StatusOf(err error) string {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrTimedOut):
		return StatusTimeout
	case errors.Is(err, ErrExecutionFailed), errors.Is(err, ErrUnexpectedParameterShape):
		return StatusFailed
	}
	return StatusInvalid
}
