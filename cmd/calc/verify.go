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
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms"
)

var errVerifyFailed = errors.New("catalog verification failed")

// verifyResult is the outcome of building one catalog directory.
type verifyResult struct {
	Name  string `json:"name"`
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func newVerifyCmd(a *app) *cobra.Command {
	var (
		parallel int
		output   string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Build every catalog algorithm and run its self-tests",
		Long: `Build every catalog algorithm and run its self-tests.

Unlike serve, verify builds each directory independently and reports every
failure instead of stopping at the first. Registered algorithms without a
catalog directory are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output, outputText, outputJSON); err != nil {
				return err
			}
			results, err := a.verify(cmd.Context(), parallel)
			if err != nil {
				return err
			}
			missing, err := missingDirectories(results)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if output == outputJSON {
				if err := writeJSON(a.printer.Writer(), results); err != nil {
					return err
				}
			} else {
				a.printVerify(results, missing)
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d algorithms", errVerifyFailed, failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", runtime.GOMAXPROCS(0), "maximum concurrent builds")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "text or json")
	return cmd
}

// verify builds every directory under the catalog root concurrently.
func (a *app) verify(ctx context.Context, parallel int) ([]verifyResult, error) {
	b, err := a.newBuilder(nil)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(a.cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", a.cfg.Catalog.Path, err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	results := make([]verifyResult, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallel, 1))
	for i, name := range dirs {
		g.Go(func() error {
			res := verifyResult{Name: name}
			alg, err := b.Build(gctx, filepath.Join(a.cfg.Catalog.Path, name))
			if err != nil {
				res.State = "failed"
				res.Error = err.Error()
			} else {
				res.State = alg.State().String()
			}
			results[i] = res
			// A cancelled run stops the rest; build failures do not.
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// missingDirectories lists registered algorithms absent from results.
func missingDirectories(results []verifyResult) ([]string, error) {
	registry, err := algorithms.Registry()
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range registry.Names() {
		if !slices.ContainsFunc(results, func(r verifyResult) bool { return r.Name == name }) {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func (a *app) printVerify(results []verifyResult, missing []string) {
	p := a.printer
	p.Title("Catalog verification")
	for _, r := range results {
		if r.Error != "" {
			p.Failure("%s: %s", r.Name, r.Error)
			continue
		}
		p.Success("%s (%s)", r.Name, r.State)
	}
	for _, name := range missing {
		p.Warning("%s is registered but has no catalog directory", name)
	}
}
