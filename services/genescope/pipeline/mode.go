// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AleutianAI/genescope/services/genescope/export"
)

// Mode selects which stages run.
type Mode string

const (
	ModePathway  Mode = "pathway"
	ModePPI      Mode = "ppi"
	ModeCombined Mode = "combined"
)

// ErrUnknownMode is returned by ParseMode for unrecognized input.
var ErrUnknownMode = errors.New("unknown analysis mode")

// Modes lists every mode in menu order.
var Modes = []Mode{ModePathway, ModePPI, ModeCombined}

// ParseMode accepts a mode name ("pathway", "ppi", "combined") or its menu
// label ("Pathway Enrichment", "PPI Analysis", "Combined Analysis"),
// ignoring case and surrounding space.
func ParseMode(s string) (Mode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if v == string(m) || v == strings.ToLower(m.Label()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Label is the human-readable menu name.
func (m Mode) Label() string {
	switch m {
	case ModePathway:
		return "Pathway Enrichment"
	case ModePPI:
		return "PPI Analysis"
	case ModeCombined:
		return "Combined Analysis"
	default:
		return string(m)
	}
}

// RunsEnrichment reports whether the enrichment stage is part of m.
func (m Mode) RunsEnrichment() bool {
	return m == ModePathway || m == ModeCombined
}

// RunsInteraction reports whether the interaction stage is part of m.
func (m Mode) RunsInteraction() bool {
	return m == ModePPI || m == ModeCombined
}

// ExportFilename is the download name of the mode's workbook.
func (m Mode) ExportFilename() string {
	switch m {
	case ModePathway:
		return export.FilePathway
	case ModePPI:
		return export.FilePPI
	default:
		return export.FileCombined
	}
}
