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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
	"github.com/AleutianAI/AleutianCalc/services/calc/handlers"
	"github.com/AleutianAI/AleutianCalc/services/calc/journal"
)

// runResult is the JSON form of a run.
type runResult struct {
	Algorithm   string      `json:"algorithm"`
	ExecutionID string      `json:"execution_id,omitempty"`
	Outputs     core.Params `json:"outputs"`
}

func newRunCmd(a *app) *cobra.Command {
	var (
		pairs    []string
		defaults bool
		record   bool
		output   string
	)
	cmd := &cobra.Command{
		Use:   "run <algorithm> [--param name=value]...",
		Short: "Execute one algorithm with the given parameters",
		Long: `Execute one algorithm with the given parameters.

Each value is read as JSON when it parses (10, 2.5, true, [1,2], [[1,2],[3,4]])
and as a plain string otherwise. --defaults fills every parameter not given
from the algorithm definition.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, outputText, outputJSON); err != nil {
				return err
			}
			params, err := parseParams(pairs)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			catalog, err := a.buildCatalog(ctx, nil)
			if err != nil {
				return err
			}
			alg, err := catalog.Get(args[0])
			if err != nil {
				return err
			}
			if defaults {
				fillDefaults(params, alg)
			}

			opts := []handlers.ExecutorOption{handlers.WithExecutorLogger(a.logger.Logger)}
			if record {
				if !a.cfg.Journal.Enabled {
					return errJournalDisabled
				}
				j, err := journal.Open(a.cfg.JournalStore(), a.logger.Logger)
				if err != nil {
					return err
				}
				defer j.Close()
				opts = append(opts, handlers.WithJournal(j))
			}

			exec, err := handlers.NewExecutor(catalog, opts...).Execute(ctx, alg.Name(), params)
			if err != nil {
				_, msg := handlers.StatusFor(err)
				if record && exec != nil {
					msg += " (execution " + exec.ID + ")"
				}
				a.printer.ErrorBox(msg)
				return fmt.Errorf("%s: %w", core.StatusOf(err), err)
			}

			res := runResult{Algorithm: alg.Name(), Outputs: exec.Outputs}
			if record {
				res.ExecutionID = exec.ID
			}
			if output == outputJSON {
				return writeJSON(a.printer.Writer(), res)
			}
			rows := make([][2]string, 0, len(exec.Outputs)+1)
			for _, o := range alg.Outputs() {
				rows = append(rows, [2]string{o.Name(), formatValue(exec.Outputs[o.Name()])})
			}
			if res.ExecutionID != "" {
				rows = append(rows, [2]string{"execution", res.ExecutionID})
			}
			a.printer.Title(alg.Title())
			a.printer.KeyValues(rows)
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&pairs, "param", "p", nil, "parameter as name=value, repeatable")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "use definition defaults for parameters not given")
	cmd.Flags().BoolVar(&record, "record", false, "record the execution in the journal")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "text or json")
	return cmd
}

var errJournalDisabled = errors.New("journal is disabled in the configuration")

// parseParams turns name=value pairs into parameters.
func parseParams(pairs []string) (core.Params, error) {
	params := make(core.Params, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q is not name=value", pair)
		}
		if _, dup := params[name]; dup {
			return nil, fmt.Errorf("parameter %q given more than once", name)
		}
		params[name] = parseValue(raw)
	}
	return params, nil
}

// parseValue reads raw as a single JSON value, or returns it as a string.
func parseValue(raw string) any {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return raw
	}
	return core.NormalizeJSON(v)
}

func fillDefaults(params core.Params, alg *core.Algorithm) {
	for _, p := range alg.Parameters() {
		if _, ok := params[p.Name()]; !ok {
			params[p.Name()] = p.DefaultValue()
		}
	}
}
