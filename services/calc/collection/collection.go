// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package collection builds every algorithm under a catalog root and serves
// them by name.
package collection

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

var (
	// ErrNotFound is returned for an unknown algorithm or a missing root.
	ErrNotFound = core.ErrNotFound

	// ErrNoAlgorithmsFound is returned when the root holds no algorithm.
	ErrNoAlgorithmsFound = errors.New("no algorithms found")
)

// Builder turns one algorithm directory into a bound algorithm.
type Builder interface {
	Build(ctx context.Context, dir string) (*core.Algorithm, error)
}

// Summary names one algorithm for listings.
type Summary struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// Collection is an immutable set of bound algorithms.
//
// Thread Safety: Safe for concurrent use after Build returns.
type Collection struct {
	byName map[string]*core.Algorithm
	names  []string
}

// Option configures Build.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used while building.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Build builds every subdirectory of root with b.
//
// Description:
//
//	Subdirectories are visited in name order and plain files are ignored.
//	The first build failure aborts the whole collection.
//
// Outputs:
//
//	*Collection - Every algorithm under root.
//	error - ErrNotFound if root does not exist, the first build error
//	wrapped with its directory name, or ErrNoAlgorithmsFound.
func Build(ctx context.Context, root string, b Builder, opts ...Option) (*Collection, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(slog.String("root", root))

	entries, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: algorithm root %s: %w", ErrNotFound, root, err)
		}
		return nil, fmt.Errorf("read algorithm root %s: %w", root, err)
	}

	c := &Collection{byName: make(map[string]*core.Algorithm)}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		alg, err := b.Build(ctx, filepath.Join(root, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("algorithm %s: %w", entry.Name(), err)
		}
		c.byName[alg.Name()] = alg
		c.names = append(c.names, alg.Name())
	}

	if len(c.names) == 0 {
		logger.Warn("no algorithms found")
		return nil, fmt.Errorf("%w in %s", ErrNoAlgorithmsFound, root)
	}
	sort.Strings(c.names)
	logger.Info("algorithm collection built", slog.Int("algorithms", len(c.names)))
	return c, nil
}

// Has reports whether name is registered.
func (c *Collection) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Names returns the registered names, sorted.
func (c *Collection) Names() []string {
	return append([]string(nil), c.names...)
}

// NamesAndTitles maps every name to its title.
func (c *Collection) NamesAndTitles() map[string]string {
	out := make(map[string]string, len(c.byName))
	for name, alg := range c.byName {
		out[name] = alg.Title()
	}
	return out
}

// Filter lists the algorithms whose name contains substr, ignoring case.
// An empty substr matches everything.
func (c *Collection) Filter(substr string) []Summary {
	substr = strings.ToLower(substr)
	out := []Summary{}
	for _, name := range c.names {
		if strings.Contains(strings.ToLower(name), substr) {
			out = append(out, Summary{Name: name, Title: c.byName[name].Title()})
		}
	}
	return out
}

// Listing page sizes.
const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Page is one slice of a listing. Pages counts from 1; a page past the end
// has no items but still reports the total.
type Page struct {
	Items []Summary `json:"algorithms"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Size  int       `json:"size"`
	Pages int       `json:"pages"`
}

// Paginate cuts page number page of the given size out of items. Values
// below 1 fall back to the first page and DefaultPageSize; size is capped at
// MaxPageSize.
func Paginate(items []Summary, page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	total := len(items)
	p := Page{Items: []Summary{}, Total: total, Page: page, Size: size, Pages: (total + size - 1) / size}
	if start := (page - 1) * size; start < total {
		p.Items = items[start:min(start+size, total)]
	}
	return p
}

// Get returns the algorithm registered under name.
func (c *Collection) Get(name string) (*core.Algorithm, error) {
	alg, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: algorithm %q", ErrNotFound, name)
	}
	return alg, nil
}

// Execute runs the algorithm registered under name.
func (c *Collection) Execute(ctx context.Context, name string, params core.Params) (core.Params, error) {
	alg, err := c.Get(name)
	if err != nil {
		return nil, err
	}
	return alg.Execute(ctx, params)
}
