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
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianCalc/services/calc/telemetry"
)

// Func is the signature every algorithm implementation provides.
//
// The function receives the validated parameters and returns its outputs.
// Implementations should honour ctx cancellation when they loop; a function
// that ignores it keeps running after its caller has been released.
//
// Params is a fresh map on every call and lists in the self-test defaults are
// copies, so a function may reorder its inputs in place.
type Func func(ctx context.Context, params Params) (Params, error)

// State is the configuration stage of an Algorithm.
type State int

const (
	// StateDeclared means nothing has been added yet.
	StateDeclared State = iota
	// StateConfiguring means parameters or outputs are being added.
	StateConfiguring
	// StateTestable means at least one parameter and one output exist.
	StateTestable
	// StateBound means a function passed the default round trip and is bound.
	StateBound
)

func (s State) String() string {
	switch s {
	case StateDeclared:
		return "declared"
	case StateConfiguring:
		return "configuring"
	case StateTestable:
		return "testable"
	case StateBound:
		return "bound"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Option configures an Algorithm.
type Option func(*Algorithm)

// WithLogger sets the logger. The algorithm name is added to every record.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Algorithm) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithMetrics sets the instruments used to record executions.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(a *Algorithm) {
		a.metrics = m
	}
}

// Algorithm is a named, contract-bound unit of computation.
//
// Thread Safety: Execute and the accessors are safe for concurrent use.
// AddParameter, AddOutput, and AddExecuteMethod are serialized internally but
// are expected to run during construction only.
type Algorithm struct {
	name        string
	title       string
	description string
	timeout     time.Duration

	mu         sync.RWMutex
	parameters []*DataElement
	paramIndex map[string]*DataElement
	outputs    []*DataElement
	outIndex   map[string]*DataElement
	fn         Func

	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewAlgorithm declares an algorithm with no parameters, outputs, or function.
//
// Description:
//
//	name, title, and description must be non-empty; timeout must not be
//	negative. A zero timeout disables the execution deadline.
//
// Outputs:
//
//	*Algorithm - The algorithm in StateDeclared.
//	error - ErrInvalidDeclaration on malformed arguments.
func NewAlgorithm(name, title, description string, timeout time.Duration, opts ...Option) (*Algorithm, error) {
	a := &Algorithm{
		name:        name,
		title:       title,
		description: description,
		timeout:     timeout,
		paramIndex:  make(map[string]*DataElement),
		outIndex:    make(map[string]*DataElement),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(slog.String("algorithm", name))
	if a.metrics == nil {
		a.metrics = telemetry.Default()
	}

	for _, f := range []struct{ field, value string }{
		{"name", name}, {"title", title}, {"description", description},
	} {
		if f.value == "" {
			return nil, a.fail(fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidDeclaration, f.field))
		}
	}
	if timeout < 0 {
		return nil, a.fail(fmt.Errorf("%w: execute timeout must not be negative", ErrInvalidDeclaration))
	}

	a.logger.Debug("algorithm declared",
		slog.String("title", title),
		slog.Duration("execute_timeout", timeout),
	)
	return a, nil
}

func (a *Algorithm) Name() string           { return a.name }
func (a *Algorithm) Title() string          { return a.title }
func (a *Algorithm) Description() string    { return a.description }
func (a *Algorithm) Timeout() time.Duration { return a.timeout }

func (a *Algorithm) String() string {
	return fmt.Sprintf("Algorithm: %s, title: %s", a.name, a.title)
}

// Parameters returns the declared parameters in declaration order.
func (a *Algorithm) Parameters() []*DataElement {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*DataElement(nil), a.parameters...)
}

// Outputs returns the declared outputs in declaration order.
func (a *Algorithm) Outputs() []*DataElement {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*DataElement(nil), a.outputs...)
}

// State reports the configuration stage.
func (a *Algorithm) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stateLocked()
}

func (a *Algorithm) stateLocked() State {
	switch {
	case a.fn != nil:
		return StateBound
	case len(a.parameters) > 0 && len(a.outputs) > 0:
		return StateTestable
	case len(a.parameters) > 0 || len(a.outputs) > 0:
		return StateConfiguring
	}
	return StateDeclared
}

// AddParameter appends a parameter declaration.
func (a *Algorithm) AddParameter(e *DataElement) error {
	return a.addElement("parameter", e, &a.parameters, a.paramIndex)
}

// AddOutput appends an output declaration.
func (a *Algorithm) AddOutput(e *DataElement) error {
	return a.addElement("output", e, &a.outputs, a.outIndex)
}

func (a *Algorithm) addElement(kind string, e *DataElement, list *[]*DataElement, index map[string]*DataElement) error {
	if e == nil {
		return a.fail(fmt.Errorf("%w: %s", ErrNotADataElement, kind))
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.fn != nil {
		return a.fail(fmt.Errorf("%w: cannot add %s %q to a bound algorithm", ErrInvalidDeclaration, kind, e.Name()))
	}
	if _, exists := index[e.Name()]; exists {
		return a.fail(fmt.Errorf("%w: %s %q already exists", ErrDuplicateName, kind, e.Name()))
	}
	*list = append(*list, e)
	index[e.Name()] = e
	return nil
}

// AddExecuteMethod binds fn after it reproduces every output default.
//
// Description:
//
//	Binds fn tentatively and runs TestErrors. If the round trip reports a
//	failure the binding is cleared, including any function bound earlier,
//	and an *AdditionError carrying the failure message is returned.
//
// Outputs:
//
//	error - ErrNotCallable for a nil fn; *AdditionError when the round
//	trip fails.
func (a *Algorithm) AddExecuteMethod(ctx context.Context, fn Func) error {
	if fn == nil {
		return a.fail(ErrNotCallable)
	}

	a.mu.Lock()
	a.fn = fn
	a.mu.Unlock()

	if reason := a.TestErrors(ctx); reason != "" {
		a.mu.Lock()
		a.fn = nil
		a.mu.Unlock()
		return a.fail(&AdditionError{Reason: reason})
	}

	a.logger.Info("execute method bound")
	return nil
}

// TestErrors executes the algorithm with the declared parameter defaults and
// compares every output with its declared default.
//
// It returns "" on success and the failure message otherwise. Failures are
// logged, never returned as errors.
func (a *Algorithm) TestErrors(ctx context.Context) string {
	a.mu.RLock()
	params := make(Params, len(a.parameters))
	for _, p := range a.parameters {
		params[p.Name()] = p.DefaultValue()
	}
	outputs := append([]*DataElement(nil), a.outputs...)
	a.mu.RUnlock()

	got, err := a.Execute(ctx, params)
	if err == nil {
		for _, o := range outputs {
			if !ValuesEqual(got[o.Name()], o.DefaultValue()) {
				err = fmt.Errorf("output %q: got %v, expected %v", o.Name(), got[o.Name()], o.DefaultValue())
				break
			}
		}
	}
	if err != nil {
		a.logger.Error("self-test failed", slog.String("error", err.Error()))
		return trimQuote(err.Error())
	}
	return ""
}

// Definition is the serializable description of an Algorithm.
type Definition struct {
	Name           string              `json:"name"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	TimeoutSeconds float64             `json:"execute_timeout"`
	Parameters     []ElementDefinition `json:"parameters"`
	Outputs        []ElementDefinition `json:"outputs"`
}

// Describe returns the algorithm's public contract.
func (a *Algorithm) Describe() Definition {
	a.mu.RLock()
	defer a.mu.RUnlock()

	d := Definition{
		Name:           a.name,
		Title:          a.title,
		Description:    a.description,
		TimeoutSeconds: a.timeout.Seconds(),
		Parameters:     make([]ElementDefinition, 0, len(a.parameters)),
		Outputs:        make([]ElementDefinition, 0, len(a.outputs)),
	}
	for _, p := range a.parameters {
		d.Parameters = append(d.Parameters, p.Definition())
	}
	for _, o := range a.outputs {
		d.Outputs = append(d.Outputs, o.Definition())
	}
	return d
}

// fail logs err with the algorithm context and returns it unchanged.
func (a *Algorithm) fail(err error) error {
	a.logger.Error("algorithm error", slog.String("error", err.Error()))
	return err
}
