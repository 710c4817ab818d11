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
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var (
		filter string
		output string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog algorithms, optionally filtered by name",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkOutput(output, outputText, outputJSON); err != nil {
				return err
			}
			catalog, err := a.buildCatalog(cmd.Context(), nil)
			if err != nil {
				return err
			}
			found := catalog.Filter(filter)
			if output == outputJSON {
				return writeJSON(a.printer.Writer(), found)
			}

			rows := make([][]string, 0, len(found))
			for _, s := range found {
				rows = append(rows, []string{s.Name, s.Title})
			}
			a.printer.Title("Algorithms")
			a.printer.Table([]string{"NAME", "TITLE"}, rows)
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "name", "n", "", "case-insensitive name substring")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "text or json")
	return cmd
}
