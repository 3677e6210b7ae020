// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/AleutianAI/genescope/services/genescope/export"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/AleutianAI/genescope/services/genescope/runstore"
	"github.com/gin-gonic/gin"
)

func lookupRun(c *gin.Context, store *runstore.Store) (string, *pipeline.Result, bool) {
	id := c.Param("id")
	res, err := store.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return "", nil, false
	}
	return id, res, true
}

// GetRun returns the JSON summary of a stored run.
func GetRun(store *runstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, res, ok := lookupRun(c, store)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, newAnalyzeResponse(id, res))
	}
}

// DownloadExport sends the run's workbook as an attachment.
func DownloadExport(store *runstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, res, ok := lookupRun(c, store)
		if !ok {
			return
		}
		name, data, err := res.Export()
		if err != nil {
			slog.Error("Export failed", "run_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to build workbook"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, export.ContentType, data)
	}
}

// ShowNetwork sends the run's rendered network page.
func ShowNetwork(store *runstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, res, ok := lookupRun(c, store)
		if !ok {
			return
		}
		if len(res.NetworkHTML) == 0 {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "run has no network view"})
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", res.NetworkHTML)
	}
}

// DeleteRun drops a stored run before it expires.
func DeleteRun(store *runstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _, ok := lookupRun(c, store)
		if !ok {
			return
		}
		store.Delete(id)
		slog.Info("Run deleted", "run_id", id)
		c.Status(http.StatusNoContent)
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
