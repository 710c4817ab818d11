// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/AleutianCalc/services/calc/handlers"
	"github.com/AleutianAI/AleutianCalc/services/calc/middleware"
	"github.com/AleutianAI/AleutianCalc/services/calc/telemetry"
)

// Deps are the collaborators the API is served from.
type Deps struct {
	Catalog handlers.Catalog

	// Journal enables /v1/executions and execution records. May be nil.
	Journal handlers.Journal

	// MetricsHandler serves /metrics when non-nil.
	MetricsHandler http.Handler

	Metrics *telemetry.Metrics
	Logger  *slog.Logger

	RateLimitRPS float64
	RateBurst    int
	Coalesce     bool

	// CORS is applied to every route, 404s included, so preflights are
	// answered without OPTIONS routes. Disabled when AllowOrigins is empty.
	CORS middleware.CORSOptions

	// ServiceName labels the otelgin server spans.
	ServiceName string
}

// NewRouter builds the API engine with recovery, CORS, tracing, metrics,
// logging and rate limiting installed in that order.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.ServiceName == "" {
		deps.ServiceName = "aleutian-calc"
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.CORS(deps.CORS),
		otelgin.Middleware(deps.ServiceName),
		middleware.Metrics(deps.Metrics),
		middleware.RequestLogger(deps.Logger),
	)
	SetupRoutes(router, deps)
	return router
}

// SetupRoutes registers every endpoint on router. Only the /v1 group is
// rate limited, so health checks and scrapes are never rejected.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck(deps.Catalog))
	if deps.MetricsHandler != nil {
		router.GET("/metrics", gin.WrapH(deps.MetricsHandler))
	}

	opts := []handlers.ExecutorOption{
		handlers.WithCoalescing(deps.Coalesce),
		handlers.WithExecutorLogger(deps.Logger),
	}
	if deps.Journal != nil {
		opts = append(opts, handlers.WithJournal(deps.Journal))
	}
	exec := handlers.NewExecutor(deps.Catalog, opts...)

	v1 := router.Group("/v1")
	v1.Use(middleware.RateLimit(middleware.NewLimiter(deps.RateLimitRPS, deps.RateBurst)))
	{
		algorithms := v1.Group("/algorithms")
		{
			algorithms.GET("", handlers.ListAlgorithms(deps.Catalog))
			algorithms.GET("/:name", handlers.DescribeAlgorithm(deps.Catalog))
			algorithms.POST("/:name/execute", handlers.ExecuteAlgorithm(exec, deps.Logger))
		}
		if deps.Journal != nil {
			executions := v1.Group("/executions")
			{
				executions.GET("", handlers.ListExecutions(deps.Journal))
				executions.GET("/:id", handlers.GetExecution(deps.Journal))
			}
		}
	}
}
