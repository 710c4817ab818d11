// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package journal persists a record of every algorithm execution.
//
// Records live in an embedded BadgerDB under keys "exec/<id>". IDs are
// UUIDv7 so key order is creation order and the most recent runs are read
// with a reverse prefix scan.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

const keyPrefix = "exec/"

var (
	// ErrNotFound is returned by Get for an unknown ID.
	ErrNotFound = core.ErrNotFound

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("journal is closed")
)

// Record is one execution.
type Record struct {
	ID         string      `json:"id"`
	Algorithm  string      `json:"algorithm"`
	Status     string      `json:"status"`
	Parameters core.Params `json:"parameters"`
	Outputs    core.Params `json:"outputs,omitempty"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	Duration   Duration    `json:"duration"`
}

// Duration marshals as a Go duration string such as "1.5ms".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// NewRecord describes one finished execution. The status is derived from
// err with core.StatusOf.
func NewRecord(algorithm string, params, outputs core.Params, err error, started time.Time, elapsed time.Duration) Record {
	rec := Record{
		Algorithm:  algorithm,
		Status:     core.StatusOf(err),
		Parameters: params,
		Outputs:    outputs,
		StartedAt:  started.UTC(),
		Duration:   Duration(elapsed),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}

// Journal stores execution records.
//
// Thread Safety: Safe for concurrent use.
type Journal struct {
	db     *badger.DB
	gc     *gcRunner
	logger *slog.Logger
}

// Open opens the journal described by cfg.
//
// Description:
//
//	On-disk journals start a value log GC runner when cfg.GCInterval is
//	positive. The caller must Close the journal.
func Open(cfg Config, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	j := &Journal{db: db, logger: logger.With(slog.String("component", "journal"))}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		j.gc, err = startGC(db, cfg.GCInterval, cfg.GCDiscardRatio, j.logger)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("start journal GC: %w", err)
		}
	}
	j.logger.Info("journal opened", slog.String("path", cfg.Path), slog.Bool("in_memory", cfg.InMemory))
	return j, nil
}

// Record stores rec and returns its ID. An empty rec.ID is assigned a new
// UUIDv7.
func (j *Journal) Record(ctx context.Context, rec Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generate execution id: %w", err)
		}
		rec.ID = id.String()
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("encode execution %s: %w", rec.ID, err)
	}
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(rec.ID), value)
	})
	if err != nil {
		return "", j.wrap(err, "store execution "+rec.ID)
	}

	j.logger.Debug("execution recorded",
		slog.String("id", rec.ID),
		slog.String("algorithm", rec.Algorithm),
		slog.String("status", rec.Status),
	)
	return rec.ID, nil
}

// Get returns the record stored under id.
func (j *Journal) Get(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rec *Record
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			rec, err = decode(val)
			return err
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: execution %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, j.wrap(err, "read execution "+id)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first. A non-empty algorithm
// keeps only that algorithm's runs.
func (j *Journal) Recent(ctx context.Context, algorithm string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []Record{}, nil
	}

	out := []Record{}
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(append([]byte(keyPrefix), 0xff)); it.Valid() && len(out) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var rec *Record
			err := it.Item().Value(func(val []byte) error {
				var err error
				rec, err = decode(val)
				return err
			})
			if err != nil {
				return err
			}
			if algorithm == "" || rec.Algorithm == algorithm {
				out = append(out, *rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, j.wrap(err, "list executions")
	}
	return out, nil
}

// Close stops GC and closes the database.
func (j *Journal) Close() error {
	if j.gc != nil {
		j.gc.stop()
	}
	return j.db.Close()
}

func (j *Journal) wrap(err error, op string) error {
	if errors.Is(err, badger.ErrDBClosed) {
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func key(id string) []byte {
	return []byte(keyPrefix + id)
}

// decode normalizes values the way definition files are. A float with an
// integral value was written as "2" and comes back as int64.
func decode(val []byte) (*Record, error) {
	dec := json.NewDecoder(bytes.NewReader(val))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode execution: %w", err)
	}
	rec.Parameters = normalize(rec.Parameters)
	rec.Outputs = normalize(rec.Outputs)
	return &rec, nil
}

func normalize(p core.Params) core.Params {
	for k, v := range p {
		p[k] = core.NormalizeJSON(v)
	}
	return p
}
