// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// GetExecution handles GET /v1/executions/:id.
func GetExecution(j Journal) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := j.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			status, msg := StatusFor(err)
			if status != http.StatusNotFound {
				status = http.StatusInternalServerError
			}
			respondError(c, status, msg, "")
			return
		}
		respond(c, rec)
	}
}

// ListExecutions handles GET /v1/executions?algorithm=<name>&limit=<n>,
// newest first.
func ListExecutions(j Journal) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := defaultRecentLimit
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				respondError(c, http.StatusBadRequest, "limit must be a positive integer", "")
				return
			}
			limit = min(n, maxRecentLimit)
		}
		records, err := j.Recent(c.Request.Context(), c.Query("algorithm"), limit)
		if err != nil {
			respondError(c, http.StatusInternalServerError, err.Error(), "")
			return
		}
		respond(c, gin.H{"executions": records})
	}
}
