// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers provides the HTTP handlers of the calculator API.
//
// Every response uses one envelope:
//
//	{"result": <payload or null>, "errors": null | [{"message": "..."}]}
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// TimeLimitMessage is reported for executions that hit their time limit.
const TimeLimitMessage = "execution time limit exceeded"

// Envelope wraps every API response.
type Envelope struct {
	Result any        `json:"result"`
	Errors []APIError `json:"errors"`
}

// APIError is one entry of Envelope.Errors.
type APIError struct {
	Message     string `json:"message"`
	ExecutionID string `json:"execution_id,omitempty"`
}

func respond(c *gin.Context, result any) {
	c.JSON(http.StatusOK, Envelope{Result: result})
}

func respondError(c *gin.Context, status int, message, executionID string) {
	c.AbortWithStatusJSON(status, Envelope{
		Errors: []APIError{{Message: message, ExecutionID: executionID}},
	})
}

// StatusFor maps an execution error to an HTTP status and client message.
//
//	404 unknown algorithm or record
//	504 time limit (message TimeLimitMessage)
//	400 the function failed on the caller's data
//	422 the parameters violate the algorithm contract
//	500 the algorithm itself broke its contract or the call was misused
//	503 the request was cancelled while running
func StatusFor(err error) (int, string) {
	var elemErr *core.ElementError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, core.ErrTimedOut):
		return http.StatusGatewayTimeout, TimeLimitMessage
	case errors.Is(err, core.ErrExecutionFailed), errors.Is(err, core.ErrUnexpectedParameterShape):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &elemErr) && elemErr.Kind == "output",
		errors.Is(err, core.ErrRedundantOutput),
		errors.Is(err, core.ErrMissingOutput),
		errors.Is(err, core.ErrNotADict),
		errors.Is(err, core.ErrNotCallable),
		errors.Is(err, core.ErrMissingParameters),
		errors.Is(err, core.ErrMissingOutputs),
		errors.Is(err, core.ErrNestedTimedCall):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, err.Error()
	}
	return http.StatusUnprocessableEntity, err.Error()
}
