// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package builder

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// UnitTest is one check of a plugin's entry point, run before the entry
// point is bound to its Algorithm.
type UnitTest struct {
	Name string
	Run  func(ctx context.Context) error
}

// Plugin is a compiled-in algorithm implementation.
//
// Name must equal the base name of the catalog directory holding the
// algorithm's definition file.
type Plugin struct {
	Name  string
	Main  core.Func
	Tests []UnitTest
}

// PluginRegistry maps algorithm names to plugins.
//
// Thread Safety: Safe for concurrent use.
type PluginRegistry struct {
	mu     sync.RWMutex
	byName map[string]Plugin
}

// NewPluginRegistry returns an empty registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{byName: make(map[string]Plugin)}
}

// Register adds p. A plugin name can be registered once.
func (r *PluginRegistry) Register(p Plugin) error {
	if p.Name == "" || p.Main == nil {
		return fmt.Errorf("%w: plugin %q needs a name and an entry point", ErrInvalidPlugin, p.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[p.Name]; exists {
		return fmt.Errorf("%w: plugin %q", core.ErrDuplicateName, p.Name)
	}
	r.byName[p.Name] = p
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (r *PluginRegistry) MustRegister(p Plugin) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Lookup returns the plugin registered under name.
func (r *PluginRegistry) Lookup(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byName[name]
	return p, ok
}

// Names returns the registered plugin names, sorted.
func (r *PluginRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunUnitTests runs every test of p and returns the failures.
// A panicking test counts as a failure.
func RunUnitTests(ctx context.Context, p Plugin) []UnitTestFailure {
	var failures []UnitTestFailure
	for _, test := range p.Tests {
		if err := runUnitTest(ctx, test); err != nil {
			failures = append(failures, UnitTestFailure{Test: test.Name, Err: err})
		}
	}
	return failures
}

func runUnitTest(ctx context.Context, test UnitTest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	if test.Run == nil {
		return fmt.Errorf("%w: test %q has no body", ErrInvalidPlugin, test.Name)
	}
	return test.Run(ctx)
}
