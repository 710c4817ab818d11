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
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCalc/pkg/logging"
	"github.com/AleutianAI/AleutianCalc/pkg/ux"
	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/collection"
	"github.com/AleutianAI/AleutianCalc/services/calc/config"
	"github.com/AleutianAI/AleutianCalc/services/calc/telemetry"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	logDir     string

	cfg     config.Config
	logger  *logging.Logger
	printer *ux.Printer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "calc",
		Short:         "Build, serve and run the Aleutian algorithm catalog",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.logger == nil {
				return nil
			}
			return a.logger.Close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", os.Getenv("CALC_CONFIG"), "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (default info for serve, warn otherwise)")
	flags.StringVar(&a.logFormat, "log-format", "auto", "auto, text or json")
	flags.StringVar(&a.logDir, "log-dir", "", "also write JSON logs to this directory")

	rootCmd.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newDescribeCmd(a),
		newRunCmd(a),
		newVerifyCmd(a),
		newConfigCmd(a),
		newExecutionsCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	level := a.logLevel
	if level == "" {
		level = "warn"
		if cmd.Name() == "serve" {
			level = "info"
		}
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(a.logFormat)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Config{
		Level:   lvl,
		Format:  format,
		Service: "calc",
		LogDir:  a.logDir,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger.Logger)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.printer = ux.For(cmd.OutOrStdout())
	return nil
}

// newBuilder wires the built-in plugins into an algorithm builder.
func (a *app) newBuilder(metrics *telemetry.Metrics) (*builder.Builder, error) {
	registry, err := algorithms.Registry()
	if err != nil {
		return nil, err
	}
	opts := []builder.Option{builder.WithLogger(a.logger.Logger)}
	if metrics != nil {
		opts = append(opts, builder.WithMetrics(metrics))
	}
	return builder.New(a.cfg.BuilderConfig(), registry, opts...)
}

// buildCatalog builds every algorithm under the configured catalog path.
func (a *app) buildCatalog(ctx context.Context, metrics *telemetry.Metrics) (*collection.Collection, error) {
	b, err := a.newBuilder(metrics)
	if err != nil {
		return nil, err
	}
	c, err := collection.Build(ctx, a.cfg.Catalog.Path, b, collection.WithLogger(a.logger.Logger))
	if err != nil {
		return nil, fmt.Errorf("build catalog %s: %w", a.cfg.Catalog.Path, err)
	}
	return c, nil
}
