// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/AleutianAI/AleutianCalc/services/calc/collection"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
	"github.com/AleutianAI/AleutianCalc/services/calc/journal"
)

// Catalog is the read side of an algorithm collection.
type Catalog interface {
	Names() []string
	Filter(substr string) []collection.Summary
	Get(name string) (*core.Algorithm, error)
}

// Journal stores execution records.
type Journal interface {
	Record(ctx context.Context, rec journal.Record) (string, error)
	Get(ctx context.Context, id string) (*journal.Record, error)
	Recent(ctx context.Context, algorithm string, limit int) ([]journal.Record, error)
}

// Execution is the outcome of one Executor.Execute call.
type Execution struct {
	ID        string
	Algorithm *core.Algorithm
	// Outputs may be shared with concurrent identical requests; treat as read-only.
	Outputs core.Params
	// Shared is true when the outputs came from another request's run.
	Shared bool
}

// Executor runs algorithms for the API, coalescing identical concurrent
// requests and journaling every run.
//
// Thread Safety: Safe for concurrent use.
type Executor struct {
	catalog  Catalog
	journal  Journal
	coalesce bool
	flight   singleflight.Group
	logger   *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithJournal records every execution in j.
func WithJournal(j Journal) ExecutorOption {
	return func(e *Executor) { e.journal = j }
}

// WithCoalescing shares one run between identical in-flight requests.
func WithCoalescing(enabled bool) ExecutorOption {
	return func(e *Executor) { e.coalesce = enabled }
}

// WithExecutorLogger sets the logger.
func WithExecutorLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor returns an Executor over catalog.
func NewExecutor(catalog Catalog, opts ...ExecutorOption) *Executor {
	e := &Executor{catalog: catalog, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs the algorithm called name with params.
//
// Description:
//
//	Every run gets a UUIDv7 execution ID and, with a journal configured,
//	a journal record holding its parameters, outputs or error. With
//	coalescing on, a request whose algorithm and kind-tagged parameters
//	match a run already in flight waits for that run instead of starting
//	its own; it still gets its own ID and record.
//
// Outputs:
//
//	*Execution - Nil only when the algorithm is unknown.
//	error - The execution error, classified by StatusFor.
func (e *Executor) Execute(ctx context.Context, name string, params core.Params) (*Execution, error) {
	alg, err := e.catalog.Get(name)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	exec := &Execution{ID: id.String(), Algorithm: alg}

	started := time.Now()
	exec.Outputs, exec.Shared, err = e.run(ctx, alg, params)
	elapsed := time.Since(started)

	if e.journal != nil {
		rec := journal.NewRecord(name, params, exec.Outputs, err, started, elapsed)
		rec.ID = exec.ID
		if _, jerr := e.journal.Record(context.WithoutCancel(ctx), rec); jerr != nil {
			e.logger.Warn("failed to journal execution",
				slog.String("execution_id", exec.ID),
				slog.String("algorithm", name),
				slog.String("error", jerr.Error()),
			)
		}
	}
	return exec, err
}

func (e *Executor) run(ctx context.Context, alg *core.Algorithm, params core.Params) (core.Params, bool, error) {
	if !e.coalesce {
		out, err := alg.Execute(ctx, params)
		return out, false, err
	}
	key, ok := flightKey(alg.Name(), params)
	if !ok {
		out, err := alg.Execute(ctx, params)
		return out, false, err
	}

	// The shared run must outlive any single caller; each caller still
	// stops waiting when its own context ends.
	ch := e.flight.DoChan(key, func() (any, error) {
		return alg.Execute(context.WithoutCancel(ctx), params)
	})
	select {
	case res := <-ch:
		out, _ := res.Val.(core.Params)
		return out, res.Shared, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// flightKey is the algorithm name plus every parameter in sorted name order.
// Scalars are tagged with their kind, so values that look alike in JSON, such
// as int 5 and float 5.0, never share a run.
func flightKey(name string, params core.Params) (string, bool) {
	var b strings.Builder
	b.WriteString(name)
	for _, k := range params.Keys() {
		b.WriteByte(0)
		b.WriteString(strconv.Quote(k))
		b.WriteByte('=')
		if !writeKeyValue(&b, params[k]) {
			return "", false
		}
	}
	return b.String(), true
}

func writeKeyValue(b *strings.Builder, v any) bool {
	if v == nil {
		b.WriteString("null")
		return true
	}
	if kind, ok := core.KindOf(v); ok {
		raw, err := json.Marshal(v)
		if err != nil {
			return false
		}
		b.WriteString(string(kind))
		b.WriteByte(':')
		b.Write(raw)
		return true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	b.WriteByte('[')
	for i := range rv.Len() {
		if i > 0 {
			b.WriteByte(',')
		}
		if !writeKeyValue(b, rv.Index(i).Interface()) {
			return false
		}
	}
	b.WriteByte(']')
	return true
}
