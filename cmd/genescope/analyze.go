// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/genescope/cmd/genescope/config"
	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/pkg/ux"
	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/AleutianAI/genescope/services/genescope/stringdb"
)

// analysisOutput lists the files written by one CLI analysis.
type analysisOutput struct {
	Workbook string
	Network  string
}

// runAnalyze runs one analysis from the command line and prints a summary.
func runAnalyze(ctx context.Context, cfg *config.GeneScopeConfig, mode pipeline.Mode, file, out string) error {
	logger := logging.New(cfg.Logger(serviceName))
	defer logger.Close()

	client := stringdb.NewClient(cfg.StringDBClient())
	p := pipeline.New(client, cfg.Pipeline(), logger, nil)

	ux.Title("GeneScope " + mode.Label())
	res, written, err := analyzeFile(ctx, p, mode, file, out)
	if err != nil {
		ux.Error(err.Error())
		return err
	}
	printResult(res, written)
	return nil
}

// analyzeFile runs the pipeline over file and writes the workbook, plus the
// network page when the mode produces one.
func analyzeFile(ctx context.Context, p *pipeline.Pipeline, mode pipeline.Mode, file, out string) (*pipeline.Result, analysisOutput, error) {
	var written analysisOutput

	f, err := os.Open(file)
	if err != nil {
		return nil, written, fmt.Errorf("failed to open gene file: %w", err)
	}
	defer f.Close()

	res, err := p.Run(ctx, mode, f, filepath.Base(file))
	if err != nil {
		return nil, written, err
	}

	name, data, err := res.Export()
	if err != nil {
		return nil, written, fmt.Errorf("failed to build workbook: %w", err)
	}
	dir, workbook := outputPaths(out, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, written, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(workbook, data, 0644); err != nil {
		return nil, written, fmt.Errorf("failed to write workbook: %w", err)
	}
	written.Workbook = workbook

	if len(res.NetworkHTML) > 0 {
		page := filepath.Join(dir, "ppi_network.html")
		if err := os.WriteFile(page, res.NetworkHTML, 0644); err != nil {
			return nil, written, fmt.Errorf("failed to write network page: %w", err)
		}
		written.Network = page
	}
	return res, written, nil
}

// outputPaths resolves --out. A path ending in .xlsx names the workbook;
// anything else is a directory that receives the default file name.
func outputPaths(out, defaultName string) (dir, workbook string) {
	if out == "" {
		out = "."
	}
	if strings.EqualFold(filepath.Ext(out), ".xlsx") {
		return filepath.Dir(out), out
	}
	return out, filepath.Join(out, defaultName)
}

func printResult(res *pipeline.Result, written analysisOutput) {
	ux.Info(fmt.Sprintf("%d gene identifiers from %s", len(res.Genes), res.Filename))
	for _, s := range res.Report.Summary() {
		ux.StageCounts(string(s.Stage), s.OK, s.Empty, s.Failed, s.Invalid)
	}
	for _, item := range res.Report.Failed() {
		if item.Stage == datatypes.StageEnrichment && item.Status != datatypes.StatusInvalid {
			ux.Warning(fmt.Sprintf("Failed to process %s: %s", item.Key, item.Error))
		}
	}
	if invalid := invalidKeys(res.Report); len(invalid) > 0 {
		ux.Box("Invalid identifiers (not sent)", strings.Join(invalid, ", "))
	}

	if res.Mode.RunsEnrichment() && res.Pathway != nil {
		ux.Title("Pathway Enrichment Results Preview")
		ux.Table(tableText(res.Pathway))
	}
	if res.Mode.RunsInteraction() && res.PPI != nil {
		ux.Title("PPI Network Analysis Results Preview")
		ux.Table(tableText(res.PPI))
		ux.Info(fmt.Sprintf("%d proteins, %d interactions kept from %d records",
			res.Network.Nodes, res.Network.Edges, res.Network.RawEdges))
	}

	ux.Success("Wrote " + written.Workbook)
	if written.Network != "" {
		ux.Success("Wrote " + written.Network)
	}
}

// invalidKeys lists rejected identifiers once each, in report order.
func invalidKeys(r datatypes.Report) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, item := range r.Items {
		if item.Status != datatypes.StatusInvalid || seen[item.Key] {
			continue
		}
		seen[item.Key] = true
		keys = append(keys, item.Key)
	}
	return keys
}

func tableText(t *datatypes.Table) ([]string, [][]string) {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			if v != nil {
				cells[j] = fmt.Sprint(v)
			}
		}
		rows[i] = cells
	}
	return t.Columns, rows
}
