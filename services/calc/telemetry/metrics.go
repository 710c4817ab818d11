// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope for calculator metrics.
const MeterName = "aleutian.calc"

// Metrics holds the calculator's OTel instruments.
//
// All instruments use the "calc_" prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// ExecutionsTotal counts algorithm executions by algorithm and status.
	ExecutionsTotal metric.Int64Counter

	// ExecutionDuration records algorithm execution time in seconds.
	ExecutionDuration metric.Float64Histogram

	// BuildsTotal counts algorithm builds by status.
	BuildsTotal metric.Int64Counter

	// HTTPRequestsTotal counts API requests by route and status code.
	HTTPRequestsTotal metric.Int64Counter

	// HTTPRequestDuration records API request latency in seconds.
	HTTPRequestDuration metric.Float64Histogram
}

// NewMetrics registers every calculator instrument with meter.
//
// Description:
//
//	Creates the counters and histograms used by the core, builder and HTTP
//	layers. Instruments created from the global meter before Init are
//	re-pointed at the real provider once Init installs it.
//
// Inputs:
//
//	meter - The OTel meter used for registration.
//
// Outputs:
//
//	*Metrics - Initialized instruments.
//	error - Non-nil if any registration fails.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.ExecutionsTotal, err = meter.Int64Counter(
		"calc_executions_total",
		metric.WithDescription("Total algorithm executions"),
		metric.WithUnit("{execution}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create executions_total: %w", err)
	}

	m.ExecutionDuration, err = meter.Float64Histogram(
		"calc_execution_duration_seconds",
		metric.WithDescription("Algorithm execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("create execution_duration_seconds: %w", err)
	}

	m.BuildsTotal, err = meter.Int64Counter(
		"calc_builds_total",
		metric.WithDescription("Total algorithm builds"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create builds_total: %w", err)
	}

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"calc_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"calc_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration_seconds: %w", err)
	}

	return m, nil
}

var defaultMetrics = sync.OnceValue(func() *Metrics {
	m, err := NewMetrics(otel.Meter(MeterName))
	if err != nil {
		// The global meter only fails on invalid instrument names.
		panic(err)
	}
	return m
})

// Default returns instruments bound to the global meter provider.
func Default() *Metrics {
	return defaultMetrics()
}

// RecordExecution records one algorithm execution.
func (m *Metrics) RecordExecution(ctx context.Context, algorithm, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("algorithm", algorithm),
		attribute.String("status", status),
	)
	m.ExecutionsTotal.Add(ctx, 1, attrs)
	m.ExecutionDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordBuild records one algorithm build attempt.
func (m *Metrics) RecordBuild(ctx context.Context, algorithm, status string) {
	if m == nil {
		return
	}
	m.BuildsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("algorithm", algorithm),
		attribute.String("status", status),
	))
}

// RecordHTTPRequest records one API request.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}
