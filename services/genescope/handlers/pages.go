// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/AleutianAI/genescope/pkg/validation"
	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	uploadTemplate  = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/upload.html"))
	resultsTemplate = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/results.html"))
)

type modeOption struct {
	Value    string
	Label    string
	Selected bool
}

type uploadPage struct {
	Modes []modeOption
	Error string
}

// MaxGeneLength feeds the identifier rules shown under the form.
func (uploadPage) MaxGeneLength() int {
	return validation.MaxGeneIDLength
}

type failureLine struct {
	Key   string
	Error string
}

type resultsPage struct {
	RunID      string
	Mode       string
	Filename   string
	Genes      int
	Summary    []datatypes.StageSummary
	Failures   []failureLine
	Pathway    *TablePreview
	PPI        *TablePreview
	Network    *pipeline.NetworkStats
	ExportURL  string
	ExportName string
	NetworkURL string
	// KeptMinutes is how long the download links stay valid.
	KeptMinutes int
}

func modeOptions(selected string) []modeOption {
	sel, err := pipeline.ParseMode(selected)
	if err != nil {
		sel = pipeline.ModePathway
	}
	opts := make([]modeOption, len(pipeline.Modes))
	for i, m := range pipeline.Modes {
		opts[i] = modeOption{Value: string(m), Label: m.Label(), Selected: m == sel}
	}
	return opts
}

func newResultsPage(id string, res *pipeline.Result, ttl time.Duration) resultsPage {
	resp := newAnalyzeResponse(id, res)
	page := resultsPage{
		RunID:      id,
		Mode:       res.Mode.Label(),
		Filename:   res.Filename,
		Genes:      resp.Genes,
		Summary:    resp.Summary,
		Pathway:    resp.Pathway,
		PPI:        resp.PPI,
		Network:    resp.Network,
		ExportURL:  resp.ExportURL,
		ExportName: res.Mode.ExportFilename(),
		NetworkURL: resp.NetworkURL,

		KeptMinutes: int(ttl.Round(time.Minute) / time.Minute),
	}
	// Only per-gene enrichment failures are listed; chunk failures show up
	// in the summary counts.
	for _, item := range resp.Failed {
		if item.Stage == datatypes.StageEnrichment {
			page.Failures = append(page.Failures, failureLine{Key: item.Key, Error: item.Error})
		}
	}
	return page
}

func renderHTML(c *gin.Context, status int, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("Template execution failed", "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// UploadPage serves the mode selector and file upload form.
func UploadPage(c *gin.Context) {
	renderHTML(c, http.StatusOK, uploadTemplate, uploadPage{Modes: modeOptions(c.Query("mode"))})
}
