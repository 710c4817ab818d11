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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

func newDescribeCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "describe <algorithm>",
		Short: "Show an algorithm's parameters and outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output, outputText, outputJSON, outputYAML); err != nil {
				return err
			}
			catalog, err := a.buildCatalog(cmd.Context(), nil)
			if err != nil {
				return err
			}
			alg, err := catalog.Get(args[0])
			if err != nil {
				return err
			}
			def := alg.Describe()
			switch output {
			case outputJSON:
				return writeJSON(a.printer.Writer(), def)
			case outputYAML:
				return writeYAML(a.printer.Writer(), def)
			}
			a.printDefinition(def)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "text, json or yaml")
	return cmd
}

func (a *app) printDefinition(def core.Definition) {
	p := a.printer
	p.Title(def.Title)
	p.KeyValues([][2]string{
		{"name", def.Name},
		{"title", def.Title},
		{"description", def.Description},
		{"timeout", strconv.FormatFloat(def.TimeoutSeconds, 'f', -1, 64) + "s"},
	})
	p.Section("Parameters")
	p.Table(elementHeaders, elementRows(def.Parameters))
	p.Section("Outputs")
	p.Table(elementHeaders, elementRows(def.Outputs))
}

var elementHeaders = []string{"NAME", "TYPE", "SHAPE", "DEFAULT", "TITLE"}

func elementRows(elems []core.ElementDefinition) [][]string {
	rows := make([][]string, 0, len(elems))
	for _, e := range elems {
		rows = append(rows, []string{
			e.Name,
			string(e.DataType),
			string(e.DataShape),
			formatValue(e.DefaultValue),
			e.Title,
		})
	}
	return rows
}
