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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianCalc/services/calc/collection"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// maxRequestBytes caps execute request bodies.
const maxRequestBytes = 1 << 20

var requestValidator = validator.New(validator.WithRequiredStructEnabled())

// NamedValue is one parameter or output on the wire.
type NamedValue struct {
	Name  string `json:"name" validate:"required"`
	Value any    `json:"value"`
}

// ExecuteRequest is the body of POST /v1/algorithms/:name/execute.
type ExecuteRequest struct {
	Parameters []NamedValue `json:"parameters" validate:"required,dive"`
}

// ExecuteResponse is the result of a successful execution.
type ExecuteResponse struct {
	Outputs     []NamedValue `json:"outputs"`
	ExecutionID string       `json:"execution_id"`
}

// ListAlgorithms handles GET /v1/algorithms?name=<substr>&page=<n>&size=<n>.
// Pages count from 1 and hold collection.DefaultPageSize items unless size
// says otherwise.
func ListAlgorithms(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := queryInt(c, "page", 1, 0)
		if !ok {
			respondError(c, http.StatusBadRequest, "page must be a positive integer", "")
			return
		}
		size, ok := queryInt(c, "size", collection.DefaultPageSize, collection.MaxPageSize)
		if !ok {
			respondError(c, http.StatusBadRequest,
				fmt.Sprintf("size must be an integer between 1 and %d", collection.MaxPageSize), "")
			return
		}
		respond(c, collection.Paginate(catalog.Filter(c.Query("name")), page, size))
	}
}

// queryInt reads a positive integer query parameter, returning def when it
// is absent. A non-zero limit is an inclusive upper bound.
func queryInt(c *gin.Context, key string, def, limit int) (int, bool) {
	v, present := c.GetQuery(key)
	if !present {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || (limit > 0 && n > limit) {
		return 0, false
	}
	return n, true
}

// DescribeAlgorithm handles GET /v1/algorithms/:name.
func DescribeAlgorithm(catalog Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		alg, err := catalog.Get(c.Param("name"))
		if err != nil {
			status, msg := StatusFor(err)
			respondError(c, status, msg, "")
			return
		}
		respond(c, alg.Describe())
	}
}

// ExecuteAlgorithm handles POST /v1/algorithms/:name/execute.
//
// The body lists parameters as name/value pairs. Numbers keep their JSON
// spelling: 2 is an INT and 2.0 a FLOAT. Outputs come back in declaration
// order together with the execution ID under which the run was journaled.
func ExecuteAlgorithm(exec *Executor, logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		name := c.Param("name")
		span := trace.SpanFromContext(c.Request.Context())
		span.SetAttributes(attribute.String("calc.algorithm", name))

		params, err := decodeParameters(c.Request.Body)
		if err != nil {
			respondError(c, http.StatusBadRequest, err.Error(), "")
			return
		}

		run, err := exec.Execute(c.Request.Context(), name, params)
		if err != nil {
			status, msg := StatusFor(err)
			id := ""
			if run != nil {
				id = run.ID
			}
			logger.Info("execution rejected",
				slog.String("algorithm", name),
				slog.String("execution_id", id),
				slog.Int("status", status),
				slog.String("error", err.Error()),
			)
			respondError(c, status, msg, id)
			return
		}

		span.SetAttributes(
			attribute.String("calc.execution_id", run.ID),
			attribute.Bool("calc.shared", run.Shared),
		)
		outputs := make([]NamedValue, 0, len(run.Outputs))
		for _, o := range run.Algorithm.Outputs() {
			outputs = append(outputs, NamedValue{Name: o.Name(), Value: run.Outputs[o.Name()]})
		}
		respond(c, ExecuteResponse{Outputs: outputs, ExecutionID: run.ID})
	}
}

// decodeParameters reads an ExecuteRequest and flattens it to Params.
func decodeParameters(body io.Reader) (core.Params, error) {
	raw, err := io.ReadAll(io.LimitReader(body, maxRequestBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	if len(raw) > maxRequestBytes {
		return nil, fmt.Errorf("request body exceeds %d bytes", maxRequestBytes)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var req ExecuteRequest
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if err := requestValidator.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}

	params := make(core.Params, len(req.Parameters))
	for _, p := range req.Parameters {
		if _, dup := params[p.Name]; dup {
			return nil, fmt.Errorf("parameter %q given more than once", p.Name)
		}
		params[p.Name] = core.NormalizeJSON(p.Value)
	}
	return params, nil
}
