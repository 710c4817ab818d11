// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the calculator service configuration.
//
// Values come from three layers, later ones winning: DefaultConfig, an
// optional YAML file, then CALC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianCalc/services/calc/builder"
	"github.com/AleutianAI/AleutianCalc/services/calc/journal"
	"github.com/AleutianAI/AleutianCalc/services/calc/middleware"
	"github.com/AleutianAI/AleutianCalc/services/calc/telemetry"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Catalog   CatalogConfig    `yaml:"catalog"`
	Execution ExecutionConfig  `yaml:"execution"`
	Server    ServerConfig     `yaml:"server"`
	Journal   JournalConfig    `yaml:"journal"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

type CatalogConfig struct {
	Path               string `yaml:"path" validate:"required"`
	DefinitionFileName string `yaml:"definition_file_name" validate:"required,excludesall=/\\"`
	SchemaPath         string `yaml:"schema_path,omitempty"`
}

type ExecutionConfig struct {
	// TimeoutSeconds bounds every execution. Zero disables the bound.
	TimeoutSeconds float64 `yaml:"timeout_seconds" validate:"gte=0"`

	// TestMode disables the execution bound regardless of TimeoutSeconds.
	TestMode bool `yaml:"test_mode"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"min=1,max=65535"`

	// RateLimitRPS caps requests per second across all clients. Zero disables limiting.
	RateLimitRPS float64 `yaml:"rate_limit_rps" validate:"gte=0"`
	RateBurst    int     `yaml:"rate_burst" validate:"gte=0"`

	// CoalesceExecutions shares one run between identical concurrent requests.
	CoalesceExecutions bool `yaml:"coalesce_executions"`

	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig controls cross-origin access for browser clients. An empty
// Origins list disables CORS.
type CORSConfig struct {
	Origins       []string `yaml:"origins,omitempty" validate:"dive,required"`
	Credentials   bool     `yaml:"credentials"`
	Methods       []string `yaml:"methods" validate:"dive,required"`
	Headers       []string `yaml:"headers" validate:"dive,required"`
	MaxAgeSeconds int      `yaml:"max_age_seconds" validate:"gte=0"`
}

type JournalConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path" validate:"required_if=Enabled true InMemory false"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Catalog: CatalogConfig{
			Path:               "catalog",
			DefinitionFileName: builder.DefaultDefinitionFileName,
		},
		Execution: ExecutionConfig{TimeoutSeconds: 5},
		Server: ServerConfig{
			Port:               12210,
			RateLimitRPS:       50,
			RateBurst:          100,
			CoalesceExecutions: true,
			CORS: CORSConfig{
				Methods:       []string{"GET", "POST"},
				Headers:       []string{"Content-Type"},
				MaxAgeSeconds: 600,
			},
		},
		Journal: JournalConfig{
			Enabled:    true,
			Path:       filepath.Join("data", "journal"),
			SyncWrites: true,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("CALC_CATALOG_PATH"); ok {
		c.Catalog.Path = v
	}
	if v, ok := lookup("CALC_SCHEMA_PATH"); ok {
		c.Catalog.SchemaPath = v
	}
	if v, ok := lookup("CALC_EXECUTION_TIMEOUT"); ok {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: CALC_EXECUTION_TIMEOUT=%q: %v", ErrInvalidConfig, v, err)
		}
		c.Execution.TimeoutSeconds = secs
	}
	for _, name := range []string{"CALC_TEST_MODE", "IS_TEST_APP"} {
		if v, ok := lookup(name); ok && truthy(v) {
			c.Execution.TestMode = true
		}
	}
	if v, ok := lookup("CALC_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: CALC_PORT=%q: %v", ErrInvalidConfig, v, err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("CALC_JOURNAL_PATH"); ok {
		c.Journal.Path = v
	}
	if v, ok := lookup("CALC_CORS_ORIGINS"); ok {
		c.Server.CORS.Origins = splitList(v)
	}
	return nil
}

// splitList splits a comma-separated value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// ExecuteTimeout is the per-execution bound. Test mode forces zero.
func (c Config) ExecuteTimeout() time.Duration {
	if c.Execution.TestMode {
		return 0
	}
	return time.Duration(c.Execution.TimeoutSeconds * float64(time.Second))
}

// BuilderConfig derives the algorithm builder settings.
func (c Config) BuilderConfig() builder.Config {
	return builder.Config{
		DefinitionFileName: c.Catalog.DefinitionFileName,
		SchemaPath:         c.Catalog.SchemaPath,
		ExecuteTimeout:     c.ExecuteTimeout(),
	}
}

// JournalStore derives the journal store settings.
func (c Config) JournalStore() journal.Config {
	if c.Journal.InMemory {
		return journal.InMemoryConfig()
	}
	cfg := journal.DefaultConfig()
	cfg.Path = c.Journal.Path
	cfg.SyncWrites = c.Journal.SyncWrites
	return cfg
}

// CORSOptions derives the CORS middleware settings.
func (c Config) CORSOptions() middleware.CORSOptions {
	cors := c.Server.CORS
	return middleware.CORSOptions{
		AllowOrigins:     cors.Origins,
		AllowMethods:     cors.Methods,
		AllowHeaders:     cors.Headers,
		AllowCredentials: cors.Credentials,
		MaxAge:           time.Duration(cors.MaxAgeSeconds) * time.Second,
	}
}

// Addr is the HTTP listen address.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// WriteDefault writes DefaultConfig to path, creating parent directories.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := DefaultConfig().Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
