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
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCalc/pkg/logging"
	"github.com/AleutianAI/AleutianCalc/services/calc/config"
	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// useCatalog points the CLI at the repository catalog and a scratch journal.
func useCatalog(t *testing.T) string {
	t.Helper()
	catalog, err := filepath.Abs(filepath.Join("..", "..", "catalog"))
	require.NoError(t, err)
	journalDir := filepath.Join(t.TempDir(), "journal")

	t.Setenv("CALC_CONFIG", "")
	t.Setenv("CALC_CATALOG_PATH", catalog)
	t.Setenv("CALC_JOURNAL_PATH", journalDir)
	t.Setenv("CALC_TEST_MODE", "true")
	return journalDir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestList(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME\tTITLE\n")
	assert.Contains(t, out, "fibonacci\tFibonacci number\n")
	assert.Contains(t, out, "perfect_numbers\t")
}

func TestList_FilterJSON(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "list", "--name", "FIB", "-o", "json")
	require.NoError(t, err)

	var got []struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	names := []string{}
	for _, s := range got {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"fibonacci", "fibonacci_list"}, names)
}

func TestList_BadOutput(t *testing.T) {
	useCatalog(t)

	_, err := runCLI(t, "list", "-o", "xml")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestDescribe(t *testing.T) {
	useCatalog(t)

	t.Run("json", func(t *testing.T) {
		out, err := runCLI(t, "describe", "fibonacci", "-o", "json")
		require.NoError(t, err)
		var def map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &def))
		assert.Equal(t, "fibonacci", def["name"])
		params := def["parameters"].([]any)
		require.Len(t, params, 1)
		assert.Equal(t, "n", params[0].(map[string]any)["name"])
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := runCLI(t, "describe", "fibonacci", "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "name: fibonacci\n")
		assert.Contains(t, out, "data_type: INT")
	})

	t.Run("text", func(t *testing.T) {
		out, err := runCLI(t, "describe", "fibonacci")
		require.NoError(t, err)
		assert.Contains(t, out, "name:")
		assert.Contains(t, out, "# Parameters\n")
		assert.Contains(t, out, "n\tINT\tSCALAR\t10\t")
		assert.Contains(t, out, "# Outputs\n")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := runCLI(t, "describe", "nope")
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestRun(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "run", "fibonacci", "-p", "n=10")
	require.NoError(t, err)
	assert.Equal(t, "result: 55\n", out)
}

func TestRun_DefaultsJSON(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "run", "quadratic_equation", "--defaults", "-o", "json")
	require.NoError(t, err)

	var res runResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "quadratic_equation", res.Algorithm)
	assert.Equal(t, "x1 = 2.0, x2 = 1.0", res.Outputs["roots"])
	assert.Empty(t, res.ExecutionID)
}

func TestRun_ListParameter(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "run", "perfect_numbers", "-p", "numbers=[6,28,12]", "-o", "json")
	require.NoError(t, err)
	var res runResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, true, res.Outputs["has_perfect"])
	assert.Equal(t, []any{6.0, 28.0}, res.Outputs["perfect_numbers"])
}

func TestRun_InvalidParameter(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "run", "fibonacci", "-p", "n=ten")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTypeMismatch)
	assert.ErrorContains(t, err, "invalid: ")
	assert.Contains(t, out, "FAIL: ")
}

func TestRun_RecordAndBrowseExecutions(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "run", "fuel_consumption", "--defaults", "--record", "-o", "json")
	require.NoError(t, err)
	var res runResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.ExecutionID)

	_, err = runCLI(t, "run", "fibonacci", "-p", "n=-1", "--record")
	require.Error(t, err)

	out, err = runCLI(t, "executions", "--algorithm", "fuel_consumption", "-o", "json")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, res.ExecutionID, records[0]["id"])
	assert.Equal(t, "ok", records[0]["status"])

	out, err = runCLI(t, "executions")
	require.NoError(t, err)
	assert.Contains(t, out, "ID\tALGORITHM\tSTATUS\tSTARTED\tDURATION\n")
	assert.Contains(t, out, "\tfibonacci\t")

	out, err = runCLI(t, "executions", "show", res.ExecutionID)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "fuel_consumption", rec["algorithm"])
	assert.Equal(t, 337.5, rec["outputs"].(map[string]any)["cost"])
}

func TestExecutions_JournalDisabled(t *testing.T) {
	useCatalog(t)
	path := filepath.Join(t.TempDir(), "calc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  enabled: false\n"), 0o644))

	_, err := runCLI(t, "--config", path, "executions")
	assert.ErrorIs(t, err, errJournalDisabled)

	_, err = runCLI(t, "--config", path, "run", "fibonacci", "-p", "n=3", "--record")
	assert.ErrorIs(t, err, errJournalDisabled)
}

func TestVerify(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "verify")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: fibonacci (bound)\n")
	assert.Contains(t, out, "OK: substring_in_a_string (bound)\n")
	assert.NotContains(t, out, "FAIL")
}

func TestVerify_ReportsEveryFailure(t *testing.T) {
	useCatalog(t)
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "fibonacci"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "fibonacci", "definition.json"), []byte("{"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "unregistered"), 0o755))
	t.Setenv("CALC_CATALOG_PATH", root)

	out, err := runCLI(t, "verify")
	require.ErrorIs(t, err, errVerifyFailed)
	assert.ErrorContains(t, err, "2 of 2 algorithms")
	assert.Contains(t, out, "FAIL: fibonacci: ")
	assert.Contains(t, out, "FAIL: unregistered: ")
	assert.Contains(t, out, "WARN: matrix_sub is registered but has no catalog directory\n")
}

func TestConfig(t *testing.T) {
	useCatalog(t)

	out, err := runCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "port: 12210")

	path := filepath.Join(t.TempDir(), "etc", "calc.yaml")
	out, err = runCLI(t, "config", "init", path)
	require.NoError(t, err)
	assert.Equal(t, "OK: wrote "+path+"\n", out)

	_, err = runCLI(t, "config", "init", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = runCLI(t, "config", "init", "--force", path)
	assert.NoError(t, err)

	_, err = config.Load(path)
	assert.NoError(t, err)
}

func TestBadLogFlags(t *testing.T) {
	useCatalog(t)

	_, err := runCLI(t, "--log-level", "chatty", "list")
	assert.ErrorContains(t, err, "unknown log level")

	_, err = runCLI(t, "--log-format", "xml", "list")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{
		"n=10",
		"x=2.5",
		"flag=true",
		"text=hello world",
		"quoted=\"42\"",
		"list=[1,2.5]",
		"matrix=[[1,2],[3,4]]",
		"empty=",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), params["n"])
	assert.Equal(t, 2.5, params["x"])
	assert.Equal(t, true, params["flag"])
	assert.Equal(t, "hello world", params["text"])
	assert.Equal(t, "42", params["quoted"])
	assert.Equal(t, []any{int64(1), 2.5}, params["list"])
	assert.Equal(t, []any{[]any{int64(1), int64(2)}, []any{int64(3), int64(4)}}, params["matrix"])
	assert.Equal(t, "", params["empty"])

	_, err = parseParams([]string{"novalue"})
	assert.ErrorContains(t, err, "is not name=value")

	_, err = parseParams([]string{"n=1", "n=2"})
	assert.ErrorContains(t, err, "given more than once")
}

func TestParseValue_TrailingDataIsString(t *testing.T) {
	assert.Equal(t, "1 2", parseValue("1 2"))
	assert.Equal(t, "12abc", parseValue("12abc"))
}

func TestNewHandler_ServesCatalog(t *testing.T) {
	useCatalog(t)
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Journal.InMemory = true

	logger, err := logging.New(logging.Config{Level: slog.LevelWarn, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	a := &app{cfg: cfg, logger: logger}

	handler, closeHandler, err := a.newHandler(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, closeHandler()) })

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","algorithms":7}`, rec.Body.String())

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/executions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
