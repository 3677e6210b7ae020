// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package loader

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// foldHeader reduces a header to a comparable form.
func foldHeader(s string) string {
	return folder.String(norm.NFKC.String(strings.TrimSpace(s)))
}

// FindGeneColumn returns the index of the gene identifier column, or -1.
// An exact "Gene" header wins over any case-insensitive match.
func FindGeneColumn(columns []string) int {
	for i, c := range columns {
		if c == datatypes.GeneColumn {
			return i
		}
	}
	target := foldHeader(datatypes.GeneColumn)
	for i, c := range columns {
		if foldHeader(c) == target {
			return i
		}
	}
	return -1
}

// Normalize renames the gene column to "Gene" and extracts identifiers.
//
// # Description
//
// The input table is not modified. In the returned copy the gene cells are
// trimmed and blank cells become missing. The identifier list follows row
// order, skips missing entries and keeps duplicates.
//
// # Outputs
//
//   - *datatypes.Table: The normalized copy.
//   - []string: Gene identifiers.
//   - error: A *SchemaError when no gene column exists.
func Normalize(t *datatypes.Table) (*datatypes.Table, []string, error) {
	idx := FindGeneColumn(t.Columns)
	if idx < 0 {
		return nil, nil, &SchemaError{Columns: append([]string(nil), t.Columns...)}
	}

	out := t.Clone()
	out.Columns[idx] = datatypes.GeneColumn

	genes := make([]string, 0, len(out.Rows))
	for _, row := range out.Rows {
		if idx >= len(row) || row[idx] == nil {
			continue
		}
		var s string
		switch v := row[idx].(type) {
		case string:
			s = v
		default:
			s = fmt.Sprint(v)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			row[idx] = nil
			continue
		}
		row[idx] = s
		genes = append(genes, s)
	}
	return out, genes, nil
}
