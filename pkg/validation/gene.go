// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package validation provides input validation for values that end up in
// upstream API requests.
//
// Gene identifiers are joined with a carriage-return separator when they are
// batched into a single STRING network query, so an identifier that carries
// its own control characters or whitespace would split into several
// identifiers upstream. These validators reject such values before any
// request is built.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxGeneIDLength is the longest identifier, in runes, accepted for a query.
const MaxGeneIDLength = 128

// geneIDPattern rejects whitespace and ASCII control characters anywhere in
// the identifier. Everything else (dots, dashes, colons, digits, Greek
// letters in legacy symbols) is left to the upstream resolver.
var geneIDPattern = regexp.MustCompile(`^[^\s\x00-\x1f\x7f]+$`)

// ValidateGeneID validates a single gene or protein identifier.
//
// Valid identifiers:
//   - 1-128 runes
//   - no whitespace and no control characters
//
// Example:
//
//	if err := validation.ValidateGeneID(gene); err != nil {
//	    return fmt.Errorf("invalid gene: %w", err)
//	}
func ValidateGeneID(id string) error {
	if id == "" {
		return fmt.Errorf("gene identifier cannot be empty")
	}
	if n := utf8.RuneCountInString(id); n > MaxGeneIDLength {
		return fmt.Errorf("gene identifier too long: %d runes (max %d)", n, MaxGeneIDLength)
	}
	if !utf8.ValidString(id) {
		return fmt.Errorf("gene identifier is not valid UTF-8: %q", id)
	}
	if !geneIDPattern.MatchString(id) {
		return fmt.Errorf("invalid gene identifier: %q (whitespace and control characters are not allowed)", id)
	}
	return nil
}

// SanitizeGeneID trims surrounding whitespace and validates the result.
// Case is preserved: STRING resolves symbols case-insensitively, and
// the original spelling is what the user expects to see in the output.
func SanitizeGeneID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if err := ValidateGeneID(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
