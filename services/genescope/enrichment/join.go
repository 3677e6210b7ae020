// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package enrichment

import (
	"github.com/AleutianAI/genescope/services/genescope/datatypes"
)

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// HitsTable lays hits out as (Gene, Term, Preferred Names, FDR,
// Description, Category).
func HitsTable(hits []datatypes.EnrichmentHit) *datatypes.Table {
	cols := append([]string{datatypes.GeneColumn}, datatypes.EnrichmentColumns...)
	t := datatypes.NewTable(cols...)
	for _, h := range hits {
		t.AppendRow(append([]any{h.Gene}, h.Cells()...)...)
	}
	return t
}

// Join left-joins hits onto input by the Gene column.
//
// Every input row appears at least once, in input order. A row whose gene
// has several hits is repeated once per hit; a row with no hit keeps
// missing enrichment cells. Input columns that clash with enrichment
// column names get an "_x" suffix and the enrichment side gets "_y".
// With no hits, or no Gene column, the result is a copy of input.
func Join(input *datatypes.Table, hits []datatypes.EnrichmentHit) *datatypes.Table {
	geneIdx := input.ColumnIndex(datatypes.GeneColumn)
	if len(hits) == 0 || geneIdx < 0 {
		return input.Clone()
	}

	byGene := make(map[string][]datatypes.EnrichmentHit)
	for _, h := range hits {
		byGene[h.Gene] = append(byGene[h.Gene], h)
	}

	out := datatypes.NewTable(joinColumns(input.Columns, geneIdx)...)
	width := len(input.Columns)
	for _, row := range input.Rows {
		left := make([]any, width)
		copy(left, row)

		gene, _ := left[geneIdx].(string)
		matches := byGene[gene]
		if left[geneIdx] == nil || len(matches) == 0 {
			out.AppendRow(left...)
			continue
		}
		for _, h := range matches {
			r := make([]any, 0, width+len(datatypes.EnrichmentColumns))
			r = append(r, left...)
			r = append(r, h.Cells()...)
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

func joinColumns(left []string, keyIdx int) []string {
	right := datatypes.EnrichmentColumns
	clash := make(map[string]bool, len(right))
	for _, r := range right {
		clash[r] = true
	}

	cols := make([]string, 0, len(left)+len(right))
	renamed := make(map[string]bool)
	for i, c := range left {
		if i != keyIdx && clash[c] {
			renamed[c] = true
			c += leftSuffix
		}
		cols = append(cols, c)
	}
	for _, r := range right {
		if renamed[r] {
			r += rightSuffix
		}
		cols = append(cols, r)
	}
	return cols
}
