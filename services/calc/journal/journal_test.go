// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package journal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openInMemory(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(InMemoryConfig(), quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_RecordAndGet(t *testing.T) {
	j := openInMemory(t)
	ctx := context.Background()
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rec := NewRecord("matrix_sub",
		core.Params{"n": [][]float64{{1.5, 2}}, "m": [][]float64{{0.5, 1}}},
		core.Params{"result": [][]float64{{1, 1}}},
		nil, started, 1500*time.Microsecond)
	id, err := j.Record(ctx, rec)
	require.NoError(t, err)

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())

	got, err := j.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "matrix_sub", got.Algorithm)
	assert.Equal(t, core.StatusOK, got.Status)
	assert.Empty(t, got.Error)
	assert.Equal(t, started, got.StartedAt)
	assert.Equal(t, Duration(1500*time.Microsecond), got.Duration)
	assert.True(t, core.ValuesEqual(rec.Parameters["n"], got.Parameters["n"]))
	assert.True(t, core.ValuesEqual(rec.Outputs["result"], got.Outputs["result"]))
	assert.Equal(t, []any{[]any{1.5, int64(2)}}, got.Parameters["n"])
}

func TestJournal_RecordKeepsCallerID(t *testing.T) {
	j := openInMemory(t)
	rec := NewRecord("fibonacci", core.Params{"n": int64(3)}, core.Params{"result": int64(2)}, nil, time.Now(), time.Millisecond)
	rec.ID = "fixed"

	id, err := j.Record(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)
}

func TestJournal_FailedExecution(t *testing.T) {
	j := openInMemory(t)
	execErr := &core.ExecutionError{Algorithm: "fibonacci", Message: "boom", Err: errors.New("boom")}

	id, err := j.Record(context.Background(), NewRecord("fibonacci", core.Params{"n": int64(-1)}, nil, execErr, time.Now(), 0))
	require.NoError(t, err)

	got, err := j.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusFailed, got.Status)
	assert.Contains(t, got.Error, "boom")
	assert.Nil(t, got.Outputs)
}

func TestJournal_GetUnknown(t *testing.T) {
	j := openInMemory(t)
	_, err := j.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJournal_Recent(t *testing.T) {
	j := openInMemory(t)
	ctx := context.Background()

	var ids []string
	for i, name := range []string{"fibonacci", "quadratic_equation", "fibonacci", "fibonacci"} {
		id, err := j.Record(ctx, NewRecord(name, core.Params{"i": int64(i)}, nil, nil, time.Now(), 0))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	recent, err := j.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	assert.Equal(t, ids[3], recent[0].ID, "newest first")
	assert.Equal(t, ids[0], recent[3].ID)

	fib, err := j.Recent(ctx, "fibonacci", 2)
	require.NoError(t, err)
	require.Len(t, fib, 2)
	assert.Equal(t, ids[3], fib[0].ID)
	assert.Equal(t, ids[2], fib[1].ID)

	none, err := j.Recent(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournal_Persistent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "journal")
	cfg.GCInterval = time.Hour

	j, err := Open(cfg, quietLogger())
	require.NoError(t, err)
	id, err := j.Record(context.Background(), NewRecord("fibonacci", core.Params{"n": int64(5)}, core.Params{"result": int64(5)}, nil, time.Now(), 0))
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(cfg, quietLogger())
	require.NoError(t, err)
	defer j.Close()
	got, err := j.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Outputs["result"])
}

func TestJournal_Closed(t *testing.T) {
	j, err := Open(InMemoryConfig(), quietLogger())
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = j.Record(context.Background(), NewRecord("fibonacci", core.Params{}, nil, nil, time.Now(), 0))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(Config{}, quietLogger())
	assert.ErrorContains(t, err, "path is required")

	cfg := DefaultConfig()
	cfg.Path = t.TempDir()
	cfg.GCDiscardRatio = 2
	_, err = Open(cfg, quietLogger())
	assert.ErrorContains(t, err, "discard ratio")
}

func TestRecord_CancelledContext(t *testing.T) {
	j := openInMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := j.Record(ctx, Record{Algorithm: "fibonacci"})
	assert.ErrorIs(t, err, context.Canceled)
}
