// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"time"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/export"
)

// NetworkStats summarizes the thresholded interaction network.
type NetworkStats struct {
	RawEdges   int     `json:"raw_edges"`
	Nodes      int     `json:"nodes"`
	Edges      int     `json:"edges"`
	SelfLoops  int     `json:"self_loops"`
	MeanDegree float64 `json:"mean_degree"`
}

// Result holds everything one analysis produced.
type Result struct {
	Mode     Mode
	Filename string

	// Input is the loaded table with the gene column normalized.
	Input *datatypes.Table
	Genes []string

	Hits    []datatypes.EnrichmentHit
	Pathway *datatypes.Table

	RawEdges []datatypes.InteractionEdge
	Degrees  []datatypes.NodeDegree
	PPI      *datatypes.Table
	Subgraph datatypes.Subgraph
	Network  NetworkStats

	// NetworkHTML is the rendered subgraph page. Empty unless the
	// interaction stage ran.
	NetworkHTML []byte

	Report   datatypes.Report
	Timings  map[string]time.Duration
	Started  time.Time
	Duration time.Duration
}

// Export renders the mode's workbook.
//
// # Outputs
//
//   - string: The download file name for the mode.
//   - []byte: The .xlsx content.
//   - error: Non-nil if the workbook cannot be produced.
func (r *Result) Export() (string, []byte, error) {
	var (
		data []byte
		err  error
	)
	switch r.Mode {
	case ModePathway:
		data, err = export.Single(r.Pathway, r.Input)
	case ModePPI:
		data, err = export.Single(r.PPI, r.Input)
	default:
		data, err = export.Combined(r.Pathway, r.PPI, r.Input)
	}
	if err != nil {
		return "", nil, err
	}
	return r.Mode.ExportFilename(), data, nil
}
