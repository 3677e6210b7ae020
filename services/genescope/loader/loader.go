// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package loader reads uploaded gene lists into tables.
//
// Two formats are accepted: Excel workbooks (.xlsx, first sheet only) and
// comma separated text (.csv). The first row is the header. Every cell is
// kept as a string; empty cells become missing values.
package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/xuri/excelize/v2"
)

// Format is a supported input format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat maps a file name to a Format by extension.
//
// # Description
//
// The extension match is case-insensitive. Legacy .xls workbooks are
// rejected explicitly since the reader only understands the OOXML format.
//
// # Outputs
//
//   - Format: The detected format.
//   - error: A *ParseError when the extension is unsupported.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".xls":
		return "", &ParseError{Filename: filename, Reason: "legacy .xls workbooks are not supported, save the file as .xlsx"}
	default:
		return "", &ParseError{Filename: filename, Reason: fmt.Sprintf("unsupported file type %q, expected .xlsx or .csv", ext)}
	}
}

// Load parses r as a table according to the extension of filename.
//
// # Inputs
//
//   - r: The file content.
//   - filename: The original file name, used for format detection and errors.
//
// # Outputs
//
//   - *datatypes.Table: The parsed table. Never empty of columns.
//   - error: A *ParseError for unsupported, empty or malformed input.
func Load(r io.Reader, filename string) (*datatypes.Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Filename: filename, Reason: "read failed", Err: err}
	}
	if len(bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))) == 0 {
		return nil, &ParseError{Filename: filename, Reason: "file is empty"}
	}

	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = readXLSX(data)
	case FormatCSV:
		records, err = readCSV(data)
	}
	if err != nil {
		return nil, &ParseError{Filename: filename, Reason: "malformed " + string(format) + " content", Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{Filename: filename, Reason: "no header row found"}
	}
	return buildTable(records), nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// buildTable turns raw records into a table. The first record is the
// header; rows wider than the header add unnamed columns and shorter rows
// are padded. Rows with no values at all are dropped.
func buildTable(records [][]string) *datatypes.Table {
	header := records[0]
	width := len(header)
	for _, rec := range records[1:] {
		if len(rec) > width {
			width = len(rec)
		}
	}

	raw := make([]string, width)
	for i := range raw {
		if i < len(header) {
			raw[i] = strings.TrimPrefix(header[i], "\uFEFF")
		}
		if strings.TrimSpace(raw[i]) == "" {
			raw[i] = "Unnamed: " + strconv.Itoa(i)
		}
	}

	table := datatypes.NewTable(dedupeHeaders(raw)...)
	for _, rec := range records[1:] {
		row := make([]any, width)
		blank := true
		for i, cell := range rec {
			if cell == "" {
				continue
			}
			row[i] = cell
			blank = false
		}
		if blank {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// dedupeHeaders renames repeated names to X, X.1, X.2 and so on.
func dedupeHeaders(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]int, len(names))
	used := make(map[string]bool, len(names))
	for _, n := range names {
		used[n] = true
	}
	for i, n := range names {
		count, dup := seen[n]
		if !dup {
			seen[n] = 0
			out[i] = n
			continue
		}
		candidate := n
		for {
			count++
			candidate = n + "." + strconv.Itoa(count)
			if !used[candidate] {
				break
			}
		}
		seen[n] = count
		used[candidate] = true
		out[i] = candidate
	}
	return out
}
