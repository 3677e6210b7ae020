// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderTable formats a preview of rows under the given headers. At most
// PreviewRows rows are shown; a trailing line reports how many were cut.
func RenderTable(headers []string, rows [][]string) string {
	p := GetPersonality()
	shown := rows
	if p.PreviewRows > 0 && len(shown) > p.PreviewRows {
		shown = shown[:p.PreviewRows]
	}

	var b strings.Builder
	if p.Level == PersonalityMachine {
		b.WriteString(strings.Join(headers, "\t"))
		b.WriteByte('\n')
		for _, row := range shown {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
	} else {
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(ColorTealDeep)).
			Headers(headers...).
			Rows(shown...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return Styles.Bold.Padding(0, 1)
				}
				return lipgloss.NewStyle().Padding(0, 1)
			})
		b.WriteString(t.String())
		b.WriteByte('\n')
	}

	if hidden := len(rows) - len(shown); hidden > 0 {
		b.WriteString(fmt.Sprintf("... %d more rows\n", hidden))
	}
	return b.String()
}

// Table prints RenderTable output.
func Table(headers []string, rows [][]string) {
	printf(false, "%s", RenderTable(headers, rows))
}
