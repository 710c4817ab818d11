// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides Gin middleware for the calculator HTTP API.
//
// # Middleware
//
//   - CORS: cross-origin headers and preflight answers for browser clients
//   - RateLimit: global token bucket, 429 when exhausted
//   - Metrics: request counter and latency histogram per route
//   - RequestLogger: one structured log line per request
package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianCalc/services/calc/telemetry"
)

// =============================================================================
// CORS
// =============================================================================

// DisallowedCORSMessage is the error message of a rejected preflight.
const DisallowedCORSMessage = "disallowed CORS request"

// CORSOptions configures the CORS middleware. "*" in AllowOrigins,
// AllowMethods or AllowHeaders allows any value.
type CORSOptions struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORS answers preflight requests and adds cross-origin headers.
//
// # Description
//
// Requests without an Origin header pass through untouched. A preflight
// (OPTIONS carrying Access-Control-Request-Method) is answered directly:
// 200 with the allowed methods, headers and max age, or 400 when the origin
// or method is not allowed. Other requests from an allowed origin get
// Access-Control-Allow-Origin (and Allow-Credentials when enabled); requests
// from other origins are served without CORS headers, so the browser blocks
// the response.
//
// With credentials enabled a wildcard origin echoes the caller's origin,
// because browsers reject "*" together with credentials.
//
// # Inputs
//
//   - opts: Allowed origins, methods and headers. No origins disables CORS.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware ready for router.Use. Register it on the
//     engine so preflights to any path reach it.
func CORS(opts CORSOptions) gin.HandlerFunc {
	if len(opts.AllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	anyOrigin := slices.Contains(opts.AllowOrigins, "*")
	methods := make([]string, 0, len(opts.AllowMethods))
	for _, m := range opts.AllowMethods {
		methods = append(methods, strings.ToUpper(m))
	}
	anyMethod := slices.Contains(methods, "*")
	anyHeader := slices.Contains(opts.AllowHeaders, "*")
	allowMethods := strings.Join(methods, ", ")
	allowHeaders := strings.Join(opts.AllowHeaders, ", ")
	maxAge := strconv.Itoa(int(opts.MaxAge.Seconds()))

	originAllowed := func(origin string) bool {
		return anyOrigin || slices.Contains(opts.AllowOrigins, origin)
	}
	setOrigin := func(h http.Header, origin string) {
		if anyOrigin && !opts.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
		}
		if opts.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		h := c.Writer.Header()

		requested := c.GetHeader("Access-Control-Request-Method")
		if c.Request.Method != http.MethodOptions || requested == "" {
			if originAllowed(origin) {
				setOrigin(h, origin)
			}
			c.Next()
			return
		}

		requested = strings.ToUpper(requested)
		if !originAllowed(origin) || !(anyMethod || slices.Contains(methods, requested)) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"result": nil,
				"errors": []gin.H{{"message": DisallowedCORSMessage}},
			})
			return
		}
		setOrigin(h, origin)
		if anyMethod {
			h.Set("Access-Control-Allow-Methods", requested)
		} else {
			h.Set("Access-Control-Allow-Methods", allowMethods)
		}
		switch {
		case anyHeader:
			if req := c.GetHeader("Access-Control-Request-Headers"); req != "" {
				h.Set("Access-Control-Allow-Headers", req)
			}
		case allowHeaders != "":
			h.Set("Access-Control-Allow-Headers", allowHeaders)
		}
		h.Set("Access-Control-Max-Age", maxAge)
		c.AbortWithStatus(http.StatusOK)
	}
}

// =============================================================================
// Rate Limiting
// =============================================================================

// RateLimitedMessage is the error message of a rejected request.
const RateLimitedMessage = "rate limit exceeded"

// RateLimit rejects requests once limiter has no tokens left.
//
// # Description
//
// Every request takes one token from limiter without waiting. When none is
// available the request is aborted with 429 and a Retry-After header of one
// second. A nil limiter disables the middleware.
//
// # Inputs
//
//   - limiter: Shared token bucket. May be nil.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware ready for router.Use.
//
// # Thread Safety
//
// Safe for concurrent use; rate.Limiter is goroutine safe.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || limiter.Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"result": nil,
			"errors": []gin.H{{"message": RateLimitedMessage}},
		})
	}
}

// NewLimiter builds a limiter for rps requests per second with the given
// burst. A non-positive rps returns nil, which RateLimit treats as unlimited.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// =============================================================================
// Metrics
// =============================================================================

// Metrics records calc_http_requests_total and
// calc_http_request_duration_seconds for every request.
//
// The route label is the matched route pattern (for example
// /v1/algorithms/:name) so path parameters do not explode cardinality.
// Unmatched requests are labelled "unmatched".
func Metrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// =============================================================================
// Logging
// =============================================================================

// RequestLogger logs each request at Info, or Warn for 4xx/5xx responses.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
			slog.String("trace_id", telemetry.TraceID(c.Request.Context())),
		)
	}
}
