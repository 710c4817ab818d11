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
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultDefinitionFileName is the definition file looked up in each
// algorithm directory.
const DefaultDefinitionFileName = "definition.json"

// Config controls how algorithms are built.
type Config struct {
	// DefinitionFileName is the definition file inside each algorithm directory.
	DefinitionFileName string `validate:"required,excludesall=/\\"`

	// SchemaPath overrides the embedded definition schema when set.
	SchemaPath string `validate:"omitempty,file"`

	// ExecuteTimeout bounds every execution. Zero disables the bound.
	ExecuteTimeout time.Duration `validate:"gte=0"`
}

// DefaultConfig returns the definition.json layout with a five second timeout.
func DefaultConfig() Config {
	return Config{
		DefinitionFileName: DefaultDefinitionFileName,
		ExecuteTimeout:     5 * time.Second,
	}
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate reports malformed configuration as ErrInvalidConfig.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
