// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package builder turns a catalog directory into a verified core.Algorithm.
//
// Each algorithm directory holds a JSON definition; the implementation is a
// Plugin compiled into the binary and registered under the directory's base
// name. Build gates the plugin twice before binding it: its own unit-test
// suite, then the contract round trip in core.Algorithm.AddExecuteMethod.
package builder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-openapi/spec"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
	"github.com/AleutianAI/AleutianCalc/services/calc/telemetry"
)

const tracerName = "aleutian.calc.builder"

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used by the builder and the algorithms it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics sets the instruments shared by the builder and its algorithms.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(b *Builder) {
		b.metrics = m
	}
}

// Builder builds algorithms from catalog directories.
//
// Thread Safety: Build is safe for concurrent use.
type Builder struct {
	cfg     Config
	plugins *PluginRegistry
	schema  *spec.Schema
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// New validates cfg, loads the definition schema, and returns a Builder.
//
// Outputs:
//
//	*Builder - Ready to build.
//	error - ErrInvalidConfig for a malformed config or nil registry, or a
//	schema load failure.
func New(cfg Config, plugins *PluginRegistry, opts ...Option) (*Builder, error) {
	b := &Builder{
		cfg:     cfg,
		plugins: plugins,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.metrics == nil {
		b.metrics = telemetry.Default()
	}

	b.logger.Info("creating algorithm builder",
		slog.String("definition_file_name", cfg.DefinitionFileName),
		slog.String("schema_path", cfg.SchemaPath),
		slog.Duration("execute_timeout", cfg.ExecuteTimeout),
	)

	if err := cfg.Validate(); err != nil {
		b.logger.Error("invalid builder config", slog.String("error", err.Error()))
		return nil, err
	}
	if plugins == nil {
		return nil, fmt.Errorf("%w: plugin registry is nil", ErrInvalidConfig)
	}

	schema, err := loadSchema(cfg.SchemaPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	b.schema = schema
	return b, nil
}

// Build creates the algorithm described in dir.
//
// Description:
//
//	Steps run in a fixed order and the first failure wins:
//	  1. read the definition file (ErrNotFound if absent)
//	  2. validate it against the schema (*SchemaError)
//	  3. declare the Algorithm named after filepath.Base(dir)
//	  4. run the plugin's unit tests (ErrNotFound if no plugin, *UnitTestError)
//	  5. bind the plugin's entry point (*core.AdditionError)
//
// Inputs:
//
//	ctx - Context for the self-test executions.
//	dir - Algorithm directory.
//
// Outputs:
//
//	*core.Algorithm - A bound algorithm.
//	error - Non-nil on any failed step.
func (b *Builder) Build(ctx context.Context, dir string) (alg *core.Algorithm, err error) {
	name := filepath.Base(dir)
	logger := b.logger.With(slog.String("algorithm", name), slog.String("dir", dir))

	ctx, span := telemetry.StartSpan(ctx, tracerName, "builder.Build",
		attribute.String("algorithm", name),
	)
	defer func() {
		status := core.StatusOK
		if err != nil {
			status = core.StatusInvalid
			telemetry.RecordError(span, err)
			logger.Error("algorithm build failed", slog.String("error", err.Error()))
		} else {
			telemetry.SetSpanOK(span)
			logger.Info("algorithm built")
		}
		b.metrics.RecordBuild(ctx, name, status)
		span.End()
	}()

	defPath := filepath.Join(dir, b.cfg.DefinitionFileName)
	raw, err := os.ReadFile(defPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: definition file %s: %w", ErrNotFound, defPath, err)
		}
		return nil, fmt.Errorf("read definition %s: %w", defPath, err)
	}

	if err := validateDefinition(b.schema, defPath, raw); err != nil {
		return nil, err
	}
	def, err := parseDefinition(raw)
	if err != nil {
		return nil, &SchemaError{Path: defPath, Detail: err.Error()}
	}

	alg, err = core.NewAlgorithm(name, def.Title, def.Description, b.cfg.ExecuteTimeout,
		core.WithLogger(b.logger),
		core.WithMetrics(b.metrics),
	)
	if err != nil {
		return nil, err
	}
	for _, p := range def.Parameters {
		el, err := p.dataElement()
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		if err := alg.AddParameter(el); err != nil {
			return nil, err
		}
	}
	for _, o := range def.Outputs {
		el, err := o.dataElement()
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", o.Name, err)
		}
		if err := alg.AddOutput(el); err != nil {
			return nil, err
		}
	}

	plugin, ok := b.plugins.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: no plugin registered for algorithm %q", ErrNotFound, name)
	}
	if failures := RunUnitTests(ctx, plugin); len(failures) > 0 {
		return nil, &UnitTestError{Algorithm: name, Failures: failures}
	}
	logger.Debug("unit tests passed", slog.Int("tests", len(plugin.Tests)))

	if err := alg.AddExecuteMethod(ctx, plugin.Main); err != nil {
		return nil, err
	}
	return alg, nil
}
