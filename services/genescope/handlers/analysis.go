// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the GeneScope HTTP endpoints.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/AleutianAI/genescope/services/genescope/loader"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/AleutianAI/genescope/services/genescope/runstore"
	"github.com/gin-gonic/gin"
)

// Analyzer runs one analysis. *pipeline.Pipeline satisfies it.
type Analyzer interface {
	Run(ctx context.Context, mode pipeline.Mode, r io.Reader, filename string) (*pipeline.Result, error)
}

// errBadRequest marks upload problems detected before the pipeline runs.
var errBadRequest = errors.New("bad request")

// runUpload reads the multipart form, runs the analysis and stores the
// result. The returned status is meaningful only when err is non-nil.
func runUpload(c *gin.Context, analyzer Analyzer, store *runstore.Store, maxUpload int64) (string, *pipeline.Result, int, error) {
	if maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)
	}

	mode, err := pipeline.ParseMode(c.DefaultPostForm("mode", string(pipeline.ModeCombined)))
	if err != nil {
		return "", nil, http.StatusBadRequest, err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return "", nil, http.StatusRequestEntityTooLarge, fmt.Errorf("%w: upload exceeds %d bytes", errBadRequest, maxUpload)
		}
		return "", nil, http.StatusBadRequest, fmt.Errorf("%w: a gene file is required in form field 'file'", errBadRequest)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, http.StatusBadRequest, fmt.Errorf("%w: cannot open upload: %v", errBadRequest, err)
	}
	defer f.Close()

	res, err := analyzer.Run(c.Request.Context(), mode, f, fh.Filename)
	if err != nil {
		if errors.Is(err, loader.ErrParse) || errors.Is(err, loader.ErrSchema) {
			return "", nil, http.StatusBadRequest, err
		}
		slog.Error("Analysis failed", "filename", fh.Filename, "mode", mode, "error", err)
		return "", nil, http.StatusInternalServerError, err
	}

	id := store.Put(res)
	slog.Info("Analysis stored", "run_id", id, "mode", mode, "genes", len(res.Genes), "ttl", store.TTL())
	return id, res, http.StatusOK, nil
}

// HandleAnalyze runs an analysis from a multipart upload and returns a
// JSON summary with links to the stored artifacts.
func HandleAnalyze(analyzer Analyzer, store *runstore.Store, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, res, status, err := runUpload(c, analyzer, store, maxUpload)
		if err != nil {
			c.JSON(status, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, newAnalyzeResponse(id, res))
	}
}

// HandleRun is the form target of the upload page. It renders the results
// page, or the upload page again with the error.
func HandleRun(analyzer Analyzer, store *runstore.Store, maxUpload int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, res, status, err := runUpload(c, analyzer, store, maxUpload)
		if err != nil {
			renderHTML(c, status, uploadTemplate, uploadPage{Modes: modeOptions(c.PostForm("mode")), Error: err.Error()})
			return
		}
		renderHTML(c, http.StatusOK, resultsTemplate, newResultsPage(id, res, store.TTL()))
	}
}
