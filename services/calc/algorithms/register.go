// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package algorithms lists the built-in algorithm plugins.
//
// Each plugin pairs with a directory under the catalog root that holds its
// definition file; the directory name must equal the plugin name.
package algorithms

import (
	"fmt"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/fibonacci"
	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/fibonaccilist"
	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/fuel"
	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/matrixsub"
	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/perfect"
	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/quadratic"
	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms/substring"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
)

// Plugins returns every built-in plugin.
func Plugins() []builder.Plugin {
	return []builder.Plugin{
		fibonacci.Plugin(),
		fibonaccilist.Plugin(),
		fuel.Plugin(),
		matrixsub.Plugin(),
		perfect.Plugin(),
		quadratic.Plugin(),
		substring.Plugin(),
	}
}

// Register adds every built-in plugin to r.
func Register(r *builder.PluginRegistry) error {
	for _, p := range Plugins() {
		if err := r.Register(p); err != nil {
			return fmt.Errorf("register %s: %w", p.Name, err)
		}
	}
	return nil
}

// Registry returns a new registry holding the built-in plugins.
func Registry() (*builder.PluginRegistry, error) {
	r := builder.NewPluginRegistry()
	if err := Register(r); err != nil {
		return nil, err
	}
	return r, nil
}
