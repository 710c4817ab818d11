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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCalc/services/calc/journal"
)

func newExecutionsCmd(a *app) *cobra.Command {
	var (
		algorithm string
		limit     int
		output    string
	)
	executionsCmd := &cobra.Command{
		Use:     "executions",
		Aliases: []string{"history"},
		Short:   "List journaled executions, newest first",
		Long: `List journaled executions, newest first.

The journal is a single-process store: stop a running server before reading
its journal from the CLI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output, outputText, outputJSON); err != nil {
				return err
			}
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			records, err := j.Recent(cmd.Context(), algorithm, limit)
			if err != nil {
				return err
			}
			if output == outputJSON {
				return writeJSON(a.printer.Writer(), records)
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.ID,
					r.Algorithm,
					r.Status,
					r.StartedAt.Format(time.RFC3339),
					time.Duration(r.Duration).String(),
				})
			}
			a.printer.Title("Executions")
			a.printer.Table([]string{"ID", "ALGORITHM", "STATUS", "STARTED", "DURATION"}, rows)
			return nil
		},
	}
	executionsCmd.Flags().StringVarP(&algorithm, "algorithm", "a", "", "only this algorithm")
	executionsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum records")
	executionsCmd.Flags().StringVarP(&output, "output", "o", outputText, "text or json")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one execution record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			rec, err := j.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(a.printer.Writer(), rec)
		},
	}
	executionsCmd.AddCommand(showCmd)
	return executionsCmd
}

func (a *app) openJournal() (*journal.Journal, error) {
	if !a.cfg.Journal.Enabled {
		return nil, errJournalDisabled
	}
	return journal.Open(a.cfg.JournalStore(), a.logger.Logger)
}
