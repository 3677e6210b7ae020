// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package export

import (
	"bytes"
	"testing"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readBack(t *testing.T, data []byte) (*excelize.File, []string) {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f, f.GetSheetList()
}

func inputTable() *datatypes.Table {
	tbl := datatypes.NewTable("Gene", "Sample")
	tbl.AppendRow("TP53", "s1")
	tbl.AppendRow("BRCA1", nil)
	return tbl
}

func TestSingle_WritesResult(t *testing.T) {
	result := datatypes.NewTable("Gene", "Identifier", "Node Degree")
	result.AppendRow("TP53", "9606.P1", 2)
	result.AppendRow("BRCA1", nil, 1)

	data, err := Single(result, inputTable())
	require.NoError(t, err)

	f, sheets := readBack(t, data)
	assert.Equal(t, []string{SheetDefault}, sheets)

	rows, err := f.GetRows(SheetDefault)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Gene", "Identifier", "Node Degree"},
		{"TP53", "9606.P1", "2"},
		{"BRCA1", "", "1"},
	}, rows)
}

func TestSingle_EmptyResultFallsBackToInput(t *testing.T) {
	empty := datatypes.NewTable("Gene", "Identifier", "Node Degree")

	data, err := Single(empty, inputTable())
	require.NoError(t, err)

	f, _ := readBack(t, data)
	rows, err := f.GetRows(SheetDefault)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Gene", "Sample"},
		{"TP53", "s1"},
		{"BRCA1"},
	}, rows)
}

func TestCombined_TwoNamedSheets(t *testing.T) {
	pathway := datatypes.NewTable("Gene", "Term", "FDR")
	pathway.AppendRow("TP53", "hsa04115", 0.01)

	data, err := Combined(pathway, nil, inputTable())
	require.NoError(t, err)

	f, sheets := readBack(t, data)
	assert.Equal(t, []string{SheetPathway, SheetPPI}, sheets)

	rows, err := f.GetRows(SheetPathway)
	require.NoError(t, err)
	assert.Equal(t, []string{"TP53", "hsa04115", "0.01"}, rows[1])

	rows, err = f.GetRows(SheetPPI)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gene", "Sample"}, rows[0], "empty PPI sheet falls back to input")
}

func TestWorkbook_NoSheets(t *testing.T) {
	_, err := Workbook(nil)
	assert.ErrorIs(t, err, ErrNoSheets)
}

func TestOrInput(t *testing.T) {
	in := inputTable()
	assert.Same(t, in, OrInput(nil, in))
	res := datatypes.NewTable("X")
	res.AppendRow("y")
	assert.Same(t, res, OrInput(res, in))
}
