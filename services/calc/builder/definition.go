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
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/AleutianCalc/services/calc/core"
)

// definitionFile is the on-disk algorithm definition.
type definitionFile struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Parameters  []elementFile `json:"parameters"`
	Outputs     []elementFile `json:"outputs"`
}

type elementFile struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	DataType     string `json:"data_type"`
	DataShape    string `json:"data_shape"`
	DefaultValue any    `json:"default_value"`
}

// parseDefinition decodes raw, keeping integer and float literals distinct.
func parseDefinition(raw []byte) (*definitionFile, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var def definitionFile
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("decode definition: %w", err)
	}
	for i := range def.Parameters {
		def.Parameters[i].DefaultValue = core.NormalizeJSON(def.Parameters[i].DefaultValue)
	}
	for i := range def.Outputs {
		def.Outputs[i].DefaultValue = core.NormalizeJSON(def.Outputs[i].DefaultValue)
	}
	return &def, nil
}

// dataElement translates the symbolic type and shape names.
func (e elementFile) dataElement() (*core.DataElement, error) {
	vt, err := core.ParseValueType(e.DataType)
	if err != nil {
		return nil, err
	}
	shape, err := core.ParseValueShape(e.DataShape)
	if err != nil {
		return nil, err
	}
	return core.NewDataElement(e.Name, e.Title, e.Description, vt, shape, e.DefaultValue)
}
