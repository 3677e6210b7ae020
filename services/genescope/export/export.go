// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package export writes result tables to in-memory Excel workbooks.
package export

import (
	"errors"
	"fmt"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/xuri/excelize/v2"
)

// Download file names.
const (
	FilePathway  = "pathway_enrichment.xlsx"
	FilePPI      = "ppi_analysis.xlsx"
	FileCombined = "combined_results.xlsx"
)

// Sheet names.
const (
	SheetDefault = "Sheet1"
	SheetPathway = "Pathway Enrichment"
	SheetPPI     = "PPI Analysis"
)

// ContentType is the MIME type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ErrNoSheets is returned when a workbook is requested with nothing in it.
var ErrNoSheets = errors.New("workbook needs at least one sheet")

// Sheet is a named table destined for one worksheet.
type Sheet struct {
	Name  string
	Table *datatypes.Table
}

// OrInput returns result when it has rows and input otherwise.
func OrInput(result, input *datatypes.Table) *datatypes.Table {
	if result.IsEmpty() {
		return input
	}
	return result
}

// Single writes one table to a one-sheet workbook, falling back to input
// when result is empty.
func Single(result, input *datatypes.Table) ([]byte, error) {
	return Workbook([]Sheet{{Name: SheetDefault, Table: OrInput(result, input)}})
}

// Combined writes the pathway and PPI tables to a two-sheet workbook. Each
// sheet falls back to input independently.
func Combined(pathway, ppi, input *datatypes.Table) ([]byte, error) {
	return Workbook([]Sheet{
		{Name: SheetPathway, Table: OrInput(pathway, input)},
		{Name: SheetPPI, Table: OrInput(ppi, input)},
	})
}

// Workbook renders sheets in order.
//
// # Description
//
// The header row holds the column names in bold; there is no index column.
// Missing cells are left empty. The workbook is built in memory and
// serialized to bytes.
//
// # Outputs
//
//   - []byte: The .xlsx content.
//   - error: Non-nil if sheets is empty or excelize fails.
func Workbook(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if sheet.Name != SheetDefault {
				if err := f.SetSheetName(SheetDefault, sheet.Name); err != nil {
					return nil, fmt.Errorf("failed to name sheet %q: %w", sheet.Name, err)
				}
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("failed to add sheet %q: %w", sheet.Name, err)
		}
		if err := writeTable(f, sheet.Name, sheet.Table, bold); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, t *datatypes.Table, headerStyle int) error {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}

	for c, name := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("failed to write header %q: %w", name, err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for r, row := range t.Rows {
		for c, v := range row {
			if v == nil || c >= len(t.Columns) {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
