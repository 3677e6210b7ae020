// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/loader"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/AleutianAI/genescope/services/genescope/runstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock Analyzer ---

type mockAnalyzer struct {
	RunFunc func(ctx context.Context, mode pipeline.Mode, r io.Reader, filename string) (*pipeline.Result, error)
	gotMode pipeline.Mode
	gotName string
	gotBody string
}

func (m *mockAnalyzer) Run(ctx context.Context, mode pipeline.Mode, r io.Reader, filename string) (*pipeline.Result, error) {
	m.gotMode = mode
	m.gotName = filename
	body, _ := io.ReadAll(r)
	m.gotBody = string(body)
	return m.RunFunc(ctx, mode, bytes.NewReader(body), filename)
}

// --- Test Fixtures ---

func sampleResult(mode pipeline.Mode) *pipeline.Result {
	input := datatypes.NewTable("Gene", "Sample")
	input.AppendRow("TP53", "a")
	input.AppendRow("BRCA1", "b")

	pathway := datatypes.NewTable("Gene", "Sample", "Term", "Preferred Names", "FDR", "Description", "Category")
	pathway.AppendRow("TP53", "a", "hsa04115", "TP53", 0.01, "p53 signaling", "KEGG")
	pathway.AppendRow("BRCA1", "b")

	res := &pipeline.Result{
		Mode:     mode,
		Filename: "genes.csv",
		Input:    input,
		Genes:    []string{"TP53", "BRCA1"},
		Pathway:  pathway,
		Hits:     []datatypes.EnrichmentHit{{Gene: "TP53", Term: "hsa04115", PreferredNames: "TP53", FDR: 0.01, Description: "p53 signaling", Category: "KEGG"}},
		PPI:      datatypes.DegreeTable([]datatypes.NodeDegree{{Name: "TP53", StringID: "9606.P1", Degree: 1}}),
		Network:  pipeline.NetworkStats{RawEdges: 2, Nodes: 2, Edges: 1, MeanDegree: 1},
		Duration: 1500 * time.Millisecond,
	}
	if mode.RunsInteraction() {
		res.NetworkHTML = []byte("<html>network</html>")
	}
	res.Report.Add(
		datatypes.ItemResult{Stage: datatypes.StageEnrichment, Key: "TP53", Status: datatypes.StatusOK, Records: 1},
		datatypes.ItemResult{Stage: datatypes.StageEnrichment, Key: "BRCA1", Status: datatypes.StatusFailed, Kind: datatypes.ErrorKindStatus, Error: "status 500"},
	)
	return res
}

func multipartRequest(t *testing.T, target, mode, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if mode != "" {
		require.NoError(t, w.WriteField("mode", mode))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newContext(req *http.Request) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// --- HandleAnalyze Tests ---

func TestHandleAnalyze_Success(t *testing.T) {
	store := runstore.New(time.Minute)
	analyzer := &mockAnalyzer{RunFunc: func(_ context.Context, mode pipeline.Mode, _ io.Reader, _ string) (*pipeline.Result, error) {
		return sampleResult(mode), nil
	}}

	c, w := newContext(multipartRequest(t, "/v1/analyze", "Combined Analysis", "genes.csv", "Gene\nTP53\n"))
	HandleAnalyze(analyzer, store, 1<<20)(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, pipeline.ModeCombined, analyzer.gotMode)
	assert.Equal(t, "genes.csv", analyzer.gotName)
	assert.Equal(t, "Gene\nTP53\n", analyzer.gotBody)

	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "/v1/runs/"+resp.RunID+"/export", resp.ExportURL)
	assert.Equal(t, "/v1/runs/"+resp.RunID+"/network", resp.NetworkURL)
	assert.Equal(t, int64(1500), resp.DurationMS)
	require.NotNil(t, resp.Pathway)
	assert.Equal(t, []string{"TP53", "a", "hsa04115", "TP53", "0.01", "p53 signaling", "KEGG"}, resp.Pathway.Rows[0])
	assert.Equal(t, []string{"BRCA1", "b", "", "", "", "", ""}, resp.Pathway.Rows[1])
	require.NotNil(t, resp.Hits)
	assert.Equal(t, []string{"Gene", "Term", "Preferred Names", "FDR", "Description", "Category"}, resp.Hits.Columns)
	assert.Equal(t, [][]string{{"TP53", "hsa04115", "TP53", "0.01", "p53 signaling", "KEGG"}}, resp.Hits.Rows)
	assert.Equal(t, 1, resp.Hits.TotalRows)
	require.NotNil(t, resp.PPI)
	assert.Equal(t, []string{"TP53", "9606.P1", "1"}, resp.PPI.Rows[0])
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "BRCA1", resp.Failed[0].Key)

	_, err := store.Get(resp.RunID)
	assert.NoError(t, err)
}

func TestHandleAnalyze_PathwayOmitsNetwork(t *testing.T) {
	analyzer := &mockAnalyzer{RunFunc: func(_ context.Context, mode pipeline.Mode, _ io.Reader, _ string) (*pipeline.Result, error) {
		return sampleResult(mode), nil
	}}
	c, w := newContext(multipartRequest(t, "/v1/analyze", "pathway", "genes.csv", "Gene\nTP53\n"))
	HandleAnalyze(analyzer, runstore.New(time.Minute), 0)(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.PPI)
	assert.Nil(t, resp.Network)
	assert.Empty(t, resp.NetworkURL)
	assert.NotNil(t, resp.Hits)
}

func TestNewAnalyzeResponse_PPIOmitsHits(t *testing.T) {
	resp := newAnalyzeResponse("id", sampleResult(pipeline.ModePPI))
	assert.Nil(t, resp.Hits)
	assert.Nil(t, resp.Pathway)
	assert.NotNil(t, resp.PPI)
}

func TestHandleAnalyze_BadRequests(t *testing.T) {
	tests := []struct {
		name     string
		mode     string
		filename string
		runErr   error
		wantCode int
		wantMsg  string
	}{
		{"unknown mode", "everything", "genes.csv", nil, http.StatusBadRequest, "unknown analysis mode"},
		{"missing file", "ppi", "", nil, http.StatusBadRequest, "form field 'file'"},
		{"schema error", "ppi", "genes.csv", &loader.SchemaError{}, http.StatusBadRequest, "'Gene' or 'gene'"},
		{"parse error", "ppi", "genes.xls", &loader.ParseError{Filename: "genes.xls", Reason: "legacy"}, http.StatusBadRequest, "legacy"},
		{"internal error", "ppi", "genes.csv", errors.New("render exploded"), http.StatusInternalServerError, "render exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &mockAnalyzer{RunFunc: func(context.Context, pipeline.Mode, io.Reader, string) (*pipeline.Result, error) {
				if tt.runErr != nil {
					return nil, tt.runErr
				}
				return sampleResult(pipeline.ModePPI), nil
			}}
			c, w := newContext(multipartRequest(t, "/v1/analyze", tt.mode, tt.filename, "Gene\nTP53\n"))
			HandleAnalyze(analyzer, runstore.New(time.Minute), 1<<20)(c)

			assert.Equal(t, tt.wantCode, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Contains(t, resp.Error, tt.wantMsg)
		})
	}
}

// --- HTML Page Tests ---

func TestUploadPage(t *testing.T) {
	c, w := newContext(httptest.NewRequest(http.MethodGet, "/?mode=ppi", nil))
	UploadPage(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Select Analysis Type")
	assert.Contains(t, body, `<option value="ppi" selected>PPI Analysis</option>`)
	assert.Contains(t, body, "Combined Analysis")
	assert.Contains(t, body, `name="file"`)
	assert.Contains(t, body, "longer than 128 characters, are not sent to STRING")
	assert.Contains(t, body, "listed as invalid in the run summary")
}

func TestHandleRun_RendersResults(t *testing.T) {
	store := runstore.New(time.Minute)
	analyzer := &mockAnalyzer{RunFunc: func(_ context.Context, mode pipeline.Mode, _ io.Reader, _ string) (*pipeline.Result, error) {
		return sampleResult(mode), nil
	}}

	c, w := newContext(multipartRequest(t, "/run", "combined", "genes.csv", "Gene\nTP53\n"))
	HandleRun(analyzer, store, 1<<20)(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Pathway Enrichment Results Preview")
	assert.Contains(t, body, "PPI Network Analysis Results Preview")
	assert.Contains(t, body, "Failed to process BRCA1: status 500")
	assert.Contains(t, body, "combined_results.xlsx")
	assert.Contains(t, body, "<iframe")
	assert.Contains(t, body, "Results stay available for 1 min.")
	assert.Equal(t, 1, store.Len())
}

func TestHandleRun_ErrorRerendersForm(t *testing.T) {
	analyzer := &mockAnalyzer{RunFunc: func(context.Context, pipeline.Mode, io.Reader, string) (*pipeline.Result, error) {
		return nil, &loader.SchemaError{}
	}}
	c, w := newContext(multipartRequest(t, "/run", "ppi", "genes.csv", "Symbol\nTP53\n"))
	HandleRun(analyzer, runstore.New(time.Minute), 1<<20)(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must contain a &#39;Gene&#39; or &#39;gene&#39; column")
	assert.Contains(t, w.Body.String(), `<form action="/run"`)
}

// --- Stored Run Tests ---

func storedRun(t *testing.T, mode pipeline.Mode) (*runstore.Store, string) {
	t.Helper()
	store := runstore.New(time.Minute)
	return store, store.Put(sampleResult(mode))
}

func runContext(id, path string) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := newContext(httptest.NewRequest(http.MethodGet, path, nil))
	c.Params = gin.Params{{Key: "id", Value: id}}
	return c, w
}

func TestDownloadExport(t *testing.T) {
	store, id := storedRun(t, pipeline.ModePPI)
	c, w := runContext(id, "/v1/runs/"+id+"/export")
	DownloadExport(store)(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="ppi_analysis.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestShowNetwork(t *testing.T) {
	store, id := storedRun(t, pipeline.ModeCombined)
	c, w := runContext(id, "/v1/runs/"+id+"/network")
	ShowNetwork(store)(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<html>network</html>", w.Body.String())

	store, id = storedRun(t, pipeline.ModePathway)
	c, w = runContext(id, "/v1/runs/"+id+"/network")
	ShowNetwork(store)(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetRun_NotFound(t *testing.T) {
	store := runstore.New(time.Minute)
	c, w := runContext("missing", "/v1/runs/missing")
	GetRun(store)(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteRun(t *testing.T) {
	store, id := storedRun(t, pipeline.ModePPI)
	c, w := runContext(id, "/v1/runs/"+id)
	DeleteRun(store)(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	_, err := store.Get(id)
	assert.ErrorIs(t, err, runstore.ErrNotFound)

	c, w = runContext(id, "/v1/runs/"+id)
	DeleteRun(store)(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthCheck(t *testing.T) {
	c, w := newContext(httptest.NewRequest(http.MethodGet, "/health", nil))
	HealthCheck(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "0.001", formatCell(0.001))
	assert.Equal(t, "7", formatCell(7))
	assert.Equal(t, "x", formatCell("x"))
	assert.Equal(t, "true", formatCell(true))
}
