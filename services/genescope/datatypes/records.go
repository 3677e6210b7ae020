// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Result column names shared by the join, the exporter and the UI.
const (
	ColumnTerm           = "Term"
	ColumnPreferredNames = "Preferred Names"
	ColumnFDR            = "FDR"
	ColumnDescription    = "Description"
	ColumnCategory       = "Category"

	ColumnIdentifier = "Identifier"
	ColumnNodeDegree = "Node Degree"
)

// EnrichmentColumns are the columns an EnrichmentHit contributes, in order.
var EnrichmentColumns = []string{
	ColumnTerm,
	ColumnPreferredNames,
	ColumnFDR,
	ColumnDescription,
	ColumnCategory,
}

// EnrichmentHit is one annotation row that passed the category and FDR
// filters for a gene.
type EnrichmentHit struct {
	Gene           string  `json:"gene"`
	Term           string  `json:"term"`
	PreferredNames string  `json:"preferred_names"`
	FDR            float64 `json:"fdr"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
}

// Cells returns the hit's values in EnrichmentColumns order.
func (h EnrichmentHit) Cells() []any {
	return []any{h.Term, h.PreferredNames, h.FDR, h.Description, h.Category}
}

// NodeKey identifies an interaction graph node.
type NodeKey struct {
	Name     string `json:"name"`
	StringID string `json:"string_id"`
}

// InteractionEdge is a scored association between two proteins.
type InteractionEdge struct {
	A     NodeKey `json:"a"`
	B     NodeKey `json:"b"`
	Score float64 `json:"score"`
}

// NodeDegree is one row of the degree table.
type NodeDegree struct {
	Name     string `json:"name"`
	StringID string `json:"string_id"`
	Degree   int    `json:"degree"`
}

// DegreeTable builds the (Gene, Identifier, Node Degree) result table,
// keeping the order of degrees.
func DegreeTable(degrees []NodeDegree) *Table {
	t := NewTable(GeneColumn, ColumnIdentifier, ColumnNodeDegree)
	for _, d := range degrees {
		t.AppendRow(d.Name, d.StringID, d.Degree)
	}
	return t
}

// SubgraphEdge is an undirected weighted edge between two display names.
type SubgraphEdge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Subgraph is the top-degree induced subgraph keyed by display name.
type Subgraph struct {
	Nodes []string       `json:"nodes"`
	Edges []SubgraphEdge `json:"edges"`
}
