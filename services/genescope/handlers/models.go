// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"fmt"
	"strconv"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/enrichment"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
)

// PreviewRows is the number of rows shown in table previews.
const PreviewRows = 15

// TablePreview is the head of a result table with cells rendered as text.
type TablePreview struct {
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// AnalyzeResponse is the JSON body returned by POST /v1/analyze and
// GET /v1/runs/:id.
type AnalyzeResponse struct {
	RunID      string                   `json:"run_id"`
	Mode       pipeline.Mode            `json:"mode"`
	Filename   string                   `json:"filename"`
	Genes      int                      `json:"genes"`
	Summary    []datatypes.StageSummary `json:"summary"`
	Failed     []datatypes.ItemResult   `json:"failed,omitempty"`
	Pathway    *TablePreview            `json:"pathway,omitempty"`
	Hits       *TablePreview            `json:"hits,omitempty"`
	PPI        *TablePreview            `json:"ppi,omitempty"`
	Network    *pipeline.NetworkStats   `json:"network,omitempty"`
	ExportURL  string                   `json:"export_url"`
	NetworkURL string                   `json:"network_url,omitempty"`
	DurationMS int64                    `json:"duration_ms"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

func exportURL(id string) string  { return "/v1/runs/" + id + "/export" }
func networkURL(id string) string { return "/v1/runs/" + id + "/network" }

// newAnalyzeResponse summarizes a stored run.
func newAnalyzeResponse(id string, res *pipeline.Result) AnalyzeResponse {
	resp := AnalyzeResponse{
		RunID:      id,
		Mode:       res.Mode,
		Filename:   res.Filename,
		Genes:      len(res.Genes),
		Summary:    res.Report.Summary(),
		Failed:     res.Report.Failed(),
		ExportURL:  exportURL(id),
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Mode.RunsEnrichment() {
		resp.Pathway = preview(res.Pathway, PreviewRows)
		resp.Hits = preview(enrichment.HitsTable(res.Hits), PreviewRows)
	}
	if res.Mode.RunsInteraction() {
		resp.PPI = preview(res.PPI, PreviewRows)
		stats := res.Network
		resp.Network = &stats
		resp.NetworkURL = networkURL(id)
	}
	return resp
}

func preview(t *datatypes.Table, n int) *TablePreview {
	if t == nil {
		return nil
	}
	head := t.Head(n)
	p := &TablePreview{
		Columns:   head.Columns,
		Rows:      make([][]string, len(head.Rows)),
		TotalRows: t.Len(),
	}
	for i, row := range head.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = formatCell(v)
		}
		p.Rows[i] = cells
	}
	return p
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}
