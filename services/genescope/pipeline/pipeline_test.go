// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/export"
	"github.com/AleutianAI/genescope/services/genescope/loader"
	"github.com/AleutianAI/genescope/services/genescope/observability"
	"github.com/AleutianAI/genescope/services/genescope/stringdb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fakeSTRING serves canned enrichment and network responses.
type fakeSTRING struct {
	mu              sync.Mutex
	enrichmentCalls []string
	networkCalls    int
	failNetwork     bool
}

func (f *fakeSTRING) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/json/enrichment", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gene := r.PostForm.Get("identifiers")
		f.mu.Lock()
		f.enrichmentCalls = append(f.enrichmentCalls, gene)
		f.mu.Unlock()
		if gene == "TP53" {
			io.WriteString(w, `[
				{"category":"KEGG","term":"hsa04115","preferredNames":["TP53"],"description":"p53 signaling pathway","fdr":0.01},
				{"category":"KEGG","term":"hsa05200","preferredNames":["TP53"],"description":"Pathways in cancer","fdr":0.2}
			]`)
			return
		}
		io.WriteString(w, `[]`)
	})
	mux.HandleFunc("/json/network", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.networkCalls++
		fail := f.failNetwork
		f.mu.Unlock()
		if fail {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		io.WriteString(w, `[
			{"preferredName_A":"TP53","stringId_A":"9606.P1","preferredName_B":"BRCA1","stringId_B":"9606.P2","score":0.9},
			{"preferredName_A":"TP53","stringId_A":"9606.P1","preferredName_B":"EGFR","stringId_B":"9606.P3","score":0.1}
		]`)
	})
	return mux
}

func newTestPipeline(t *testing.T, fake *fakeSTRING, metrics *observability.Metrics) *Pipeline {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	client := stringdb.NewClient(stringdb.Config{BaseURL: srv.URL}, stringdb.WithHTTPClient(srv.Client()))
	return New(client, DefaultConfig(), logging.Nop(), metrics)
}

const scenarioCSV = "gene,Sample\nTP53,a\nBRCA1,b\nEGFR,c\n"

func TestRun_PathwayScenario(t *testing.T) {
	fake := &fakeSTRING{}
	p := newTestPipeline(t, fake, nil)

	res, err := p.Run(context.Background(), ModePathway, strings.NewReader(scenarioCSV), "genes.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"TP53", "BRCA1", "EGFR"}, res.Genes)
	assert.Zero(t, fake.networkCalls)
	require.Len(t, res.Hits, 1)

	tbl := res.Pathway
	assert.Equal(t, []string{"Gene", "Sample", "Term", "Preferred Names", "FDR", "Description", "Category"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []any{"TP53", "a", "hsa04115", "TP53", 0.01, "p53 signaling pathway", "KEGG"}, tbl.Rows[0])
	assert.Equal(t, []any{"BRCA1", "b", nil, nil, nil, nil, nil}, tbl.Rows[1])
	assert.Equal(t, []any{"EGFR", "c", nil, nil, nil, nil, nil}, tbl.Rows[2])

	assert.Empty(t, res.NetworkHTML)
	assert.Equal(t, []datatypes.StageSummary{{Stage: datatypes.StageEnrichment, OK: 1, Empty: 2}}, res.Report.Summary())

	name, data, err := res.Export()
	require.NoError(t, err)
	assert.Equal(t, export.FilePathway, name)
	assert.NotEmpty(t, data)
}

func TestRun_PPIScenario(t *testing.T) {
	fake := &fakeSTRING{}
	p := newTestPipeline(t, fake, nil)

	res, err := p.Run(context.Background(), ModePPI, strings.NewReader(scenarioCSV), "genes.csv")
	require.NoError(t, err)

	assert.Empty(t, fake.enrichmentCalls)
	assert.Equal(t, 1, fake.networkCalls)
	assert.Equal(t, []datatypes.NodeDegree{
		{Name: "TP53", StringID: "9606.P1", Degree: 1},
		{Name: "BRCA1", StringID: "9606.P2", Degree: 1},
	}, res.Degrees)
	assert.Equal(t, 2, res.PPI.Len())
	assert.Equal(t, NetworkStats{RawEdges: 2, Nodes: 2, Edges: 1, MeanDegree: 1}, res.Network)

	assert.Equal(t, []string{"TP53", "BRCA1"}, res.Subgraph.Nodes)
	require.Len(t, res.Subgraph.Edges, 1)
	assert.Contains(t, string(res.NetworkHTML), `"label":"TP53"`)
	assert.Contains(t, string(res.NetworkHTML), `"label":"BRCA1"`)
}

func TestRun_CombinedExportHasTwoSheets(t *testing.T) {
	p := newTestPipeline(t, &fakeSTRING{}, nil)

	res, err := p.Run(context.Background(), ModeCombined, strings.NewReader(scenarioCSV), "genes.csv")
	require.NoError(t, err)

	name, data, err := res.Export()
	require.NoError(t, err)
	assert.Equal(t, export.FileCombined, name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{export.SheetPathway, export.SheetPPI}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetPPI)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gene", "Identifier", "Node Degree"}, rows[0])
	assert.Equal(t, []string{"TP53", "9606.P1", "1"}, rows[1])
}

func TestRun_FailedChunkIsReportedAndExportFallsBack(t *testing.T) {
	fake := &fakeSTRING{failNetwork: true}
	p := newTestPipeline(t, fake, nil)

	res, err := p.Run(context.Background(), ModePPI, strings.NewReader(scenarioCSV), "genes.csv")
	require.NoError(t, err)

	assert.Empty(t, res.Degrees)
	failed := res.Report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, datatypes.StageInteraction, failed[0].Stage)
	assert.Equal(t, datatypes.ErrorKindStatus, failed[0].Kind)

	_, data, err := res.Export()
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gene", "Sample"}, rows[0])
	assert.Len(t, rows, 4)
}

func TestRun_InvalidIdentifiersAreNotSent(t *testing.T) {
	fake := &fakeSTRING{}
	p := newTestPipeline(t, fake, nil)

	csv := "Gene\nTP53\n\"BAD ID\"\n"
	res, err := p.Run(context.Background(), ModePathway, strings.NewReader(csv), "genes.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"TP53"}, fake.enrichmentCalls)
	failed := res.Report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "BAD ID", failed[0].Key)
	assert.Equal(t, datatypes.StatusInvalid, failed[0].Status)
}

func TestRun_SchemaErrorHaltsBeforeRequests(t *testing.T) {
	fake := &fakeSTRING{}
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	p := newTestPipeline(t, fake, metrics)

	_, err := p.Run(context.Background(), ModeCombined, strings.NewReader("Symbol\nTP53\n"), "genes.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, loader.ErrSchema))
	assert.Empty(t, fake.enrichmentCalls)
	assert.Zero(t, fake.networkCalls)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AnalysesTotal.WithLabelValues("combined", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ActiveAnalyses))
}

func TestRun_ParseError(t *testing.T) {
	p := newTestPipeline(t, &fakeSTRING{}, nil)
	_, err := p.Run(context.Background(), ModePathway, strings.NewReader("Gene\nTP53\n"), "genes.xls")
	assert.True(t, errors.Is(err, loader.ErrParse))
}

func TestRun_CanceledContextMarksItems(t *testing.T) {
	fake := &fakeSTRING{}
	p := newTestPipeline(t, fake, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := p.Run(ctx, ModePathway, strings.NewReader(scenarioCSV), "genes.csv")
	require.NoError(t, err)
	assert.Empty(t, fake.enrichmentCalls)

	require.Len(t, res.Report.Items, 3)
	for _, item := range res.Report.Items {
		assert.Equal(t, datatypes.ErrorKindCanceled, item.Kind)
	}
}

func TestPartitionGenes_TrimsAndRejects(t *testing.T) {
	long := strings.Repeat("A", 129)
	valid, invalid := partitionGenes([]string{" TP53\t", "BAD ID", "EGFR", long})

	assert.Equal(t, []string{"TP53", "EGFR"}, valid)
	require.Len(t, invalid, 2)
	assert.Equal(t, "BAD ID", invalid[0].id)
	assert.Equal(t, long, invalid[1].id)
	assert.Contains(t, invalid[1].err.Error(), "too long")
}
