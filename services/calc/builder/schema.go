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
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/go-openapi/spec"
	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

//go:embed algorithm_schema.json
var embeddedSchema []byte

// loadSchema parses the schema at path, or the embedded schema when path is
// empty.
func loadSchema(path string) (*spec.Schema, error) {
	raw := embeddedSchema
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", path, err)
		}
		raw = data
	}

	var schema spec.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return &schema, nil
}

// validateDefinition checks raw definition JSON against schema.
func validateDefinition(schema *spec.Schema, path string, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &SchemaError{Path: path, Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}
	if err := validate.AgainstSchema(schema, doc, strfmt.Default); err != nil {
		return &SchemaError{Path: path, Detail: err.Error()}
	}
	return nil
}
