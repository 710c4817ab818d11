// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCalc/services/calc/algorithms"
	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

var errBroken = errors.New("broken definition")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoBuilder builds an algorithm that doubles x, titled after its directory.
type echoBuilder struct {
	built []string
}

func (b *echoBuilder) Build(ctx context.Context, dir string) (*core.Algorithm, error) {
	name := filepath.Base(dir)
	b.built = append(b.built, name)
	if name == "broken" {
		return nil, errBroken
	}

	alg, err := core.NewAlgorithm(name, "Title of "+name, "Doubles x", 0, core.WithLogger(quietLogger()))
	if err != nil {
		return nil, err
	}
	x, err := core.NewDataElement("x", "X", "Input", core.TypeInt, core.ShapeScalar, int64(2))
	if err != nil {
		return nil, err
	}
	y, err := core.NewDataElement("y", "Y", "Output", core.TypeInt, core.ShapeScalar, int64(4))
	if err != nil {
		return nil, err
	}
	if err := alg.AddParameter(x); err != nil {
		return nil, err
	}
	if err := alg.AddOutput(y); err != nil {
		return nil, err
	}
	err = alg.AddExecuteMethod(ctx, func(_ context.Context, p core.Params) (core.Params, error) {
		v, err := p.Int("x")
		if err != nil {
			return nil, err
		}
		return core.Params{"y": 2 * v}, nil
	})
	return alg, err
}

func mkdirs(t *testing.T, names ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.Mkdir(filepath.Join(root, name), 0o755))
	}
	return root
}

func TestBuild(t *testing.T) {
	root := mkdirs(t, "zeta", "Alpha", "beta")
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("ignored"), 0o644))

	b := &echoBuilder{}
	c, err := Build(context.Background(), root, b, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, []string{"Alpha", "beta", "zeta"}, b.built, "directories in name order, files skipped")
	assert.Equal(t, []string{"Alpha", "beta", "zeta"}, c.Names())
	assert.True(t, c.Has("beta"))
	assert.False(t, c.Has("README.md"))
	assert.Equal(t, map[string]string{
		"Alpha": "Title of Alpha",
		"beta":  "Title of beta",
		"zeta":  "Title of zeta",
	}, c.NamesAndTitles())
}

func TestBuild_Errors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := Build(context.Background(), filepath.Join(t.TempDir(), "absent"), &echoBuilder{})
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("empty root", func(t *testing.T) {
		_, err := Build(context.Background(), mkdirs(t), &echoBuilder{}, WithLogger(quietLogger()))
		assert.ErrorIs(t, err, ErrNoAlgorithmsFound)
	})

	t.Run("first failure aborts", func(t *testing.T) {
		b := &echoBuilder{}
		_, err := Build(context.Background(), mkdirs(t, "a", "broken", "c"), b, WithLogger(quietLogger()))
		assert.ErrorIs(t, err, errBroken)
		assert.ErrorContains(t, err, "algorithm broken")
		assert.Equal(t, []string{"a", "broken"}, b.built)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Build(ctx, mkdirs(t, "a"), &echoBuilder{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCollection_GetAndExecute(t *testing.T) {
	c, err := Build(context.Background(), mkdirs(t, "double"), &echoBuilder{}, WithLogger(quietLogger()))
	require.NoError(t, err)

	alg, err := c.Get("double")
	require.NoError(t, err)
	assert.Equal(t, "double", alg.Name())

	_, err = c.Get("triple")
	assert.ErrorIs(t, err, ErrNotFound)

	out, err := c.Execute(context.Background(), "double", core.Params{"x": int64(21)})
	require.NoError(t, err)
	assert.Equal(t, core.Params{"y": int64(42)}, out)

	_, err = c.Execute(context.Background(), "triple", core.Params{"x": int64(1)})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Execute(context.Background(), "double", core.Params{"x": "one"})
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
}

func TestCollection_Filter(t *testing.T) {
	c, err := Build(context.Background(), mkdirs(t, "fibonacci", "fibonacci_list", "matrix_sub"), &echoBuilder{}, WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, []Summary{
		{Name: "fibonacci", Title: "Title of fibonacci"},
		{Name: "fibonacci_list", Title: "Title of fibonacci_list"},
	}, c.Filter("FIBO"))
	assert.Len(t, c.Filter(""), 3)
	assert.Empty(t, c.Filter("simplex"))
	assert.NotNil(t, c.Filter("simplex"), "no match is an empty list, not nil")
}

func TestPaginate(t *testing.T) {
	items := make([]Summary, 7)
	for i := range items {
		items[i] = Summary{Name: fmt.Sprintf("alg_%d", i)}
	}

	tests := []struct {
		name       string
		page, size int
		wantNames  []string
		wantPage   int
		wantSize   int
		wantPages  int
	}{
		{"first page", 1, 3, []string{"alg_0", "alg_1", "alg_2"}, 1, 3, 3},
		{"last partial page", 3, 3, []string{"alg_6"}, 3, 3, 3},
		{"past the end", 4, 3, []string{}, 4, 3, 3},
		{"defaults", 0, 0, []string{"alg_0", "alg_1", "alg_2", "alg_3", "alg_4", "alg_5", "alg_6"}, 1, DefaultPageSize, 1},
		{"size capped", 1, 500, []string{"alg_0", "alg_1", "alg_2", "alg_3", "alg_4", "alg_5", "alg_6"}, 1, MaxPageSize, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.size)
			names := []string{}
			for _, s := range p.Items {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, 7, p.Total)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.Size)
			assert.Equal(t, tt.wantPages, p.Pages)
		})
	}

	empty := Paginate(nil, 1, 10)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.Pages)
}

func TestBuild_BuiltInCatalog(t *testing.T) {
	r, err := algorithms.Registry()
	require.NoError(t, err)
	b, err := builder.New(builder.DefaultConfig(), r, builder.WithLogger(quietLogger()))
	require.NoError(t, err)

	c, err := Build(context.Background(), "../../../catalog", b, WithLogger(quietLogger()))
	require.NoError(t, err)
	assert.Equal(t, r.Names(), c.Names())

	out, err := c.Execute(context.Background(), "fibonacci", core.Params{"n": int64(20)})
	require.NoError(t, err)
	assert.Equal(t, int64(6765), out["result"])
}
