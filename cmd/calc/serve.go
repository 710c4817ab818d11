// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianCalc/services/calc/journal"
	"github.com/AleutianAI/AleutianCalc/services/calc/routes"
	"github.com/AleutianAI/AleutianCalc/services/calc/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the algorithm catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) (err error) {
	logger := a.logger.Logger

	shutdownTelemetry, err := telemetry.Init(ctx, a.cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = errors.Join(err, shutdownTelemetry(sctx))
	}()

	handler, closeHandler, err := a.newHandler(ctx)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, closeHandler()) }()

	srv := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("calc server listening", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down calc server")
		sctx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// newHandler builds the catalog, opens the journal and assembles the router.
// The returned close function releases the journal.
func (a *app) newHandler(ctx context.Context) (http.Handler, func() error, error) {
	logger := a.logger.Logger
	if logger.Enabled(ctx, slog.LevelDebug) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := telemetry.Default()
	catalog, err := a.buildCatalog(ctx, metrics)
	if err != nil {
		return nil, nil, err
	}

	deps := routes.Deps{
		Catalog:        catalog,
		MetricsHandler: telemetry.MetricsHandler(),
		Metrics:        metrics,
		Logger:         logger,
		RateLimitRPS:   a.cfg.Server.RateLimitRPS,
		RateBurst:      a.cfg.Server.RateBurst,
		Coalesce:       a.cfg.Server.CoalesceExecutions,
		CORS:           a.cfg.CORSOptions(),
		ServiceName:    a.cfg.Telemetry.ServiceName,
	}
	closer := func() error { return nil }
	if a.cfg.Journal.Enabled {
		j, err := journal.Open(a.cfg.JournalStore(), logger)
		if err != nil {
			return nil, nil, err
		}
		deps.Journal = j
		closer = j.Close
	}

	logger.Info("catalog ready", slog.Int("algorithms", len(catalog.Names())))
	return routes.NewRouter(deps), closer, nil
}
