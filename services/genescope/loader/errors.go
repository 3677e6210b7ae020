// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package loader

import (
	"errors"
	"fmt"
)

// Sentinel errors for loader operations.
var (
	// ErrParse indicates the uploaded file could not be read as a table.
	ErrParse = errors.New("could not parse input file")

	// ErrSchema indicates the table lacks a required column.
	ErrSchema = errors.New("input table schema error")
)

// ParseError describes why a file could not be parsed.
type ParseError struct {
	Filename string
	Reason   string
	Err      error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Filename, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports ErrParse as a match so callers can use errors.Is.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when no gene column can be located.
type SchemaError struct {
	Columns []string
}

func (e *SchemaError) Error() string {
	return "the uploaded file must contain a 'Gene' or 'gene' column"
}

// Is reports ErrSchema as a match so callers can use errors.Is.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}
