// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"bytes"
	"strings"
	"testing"
)

// capture runs f at the given level and returns what reached stdout and stderr.
func capture(t *testing.T, level PersonalityLevel, f func()) (string, string) {
	t.Helper()
	orig := GetPersonality()
	var out, errOut bytes.Buffer
	SetOutput(&out, &errOut)
	SetPersonalityLevel(level)
	t.Cleanup(func() {
		SetOutput(nil, nil)
		SetPersonality(orig)
	})
	f()
	return out.String(), errOut.String()
}

// =============================================================================
// Icon.Render Tests
// =============================================================================

func TestIcon_Render(t *testing.T) {
	for _, icon := range []Icon{IconSuccess, IconWarning, IconError, IconBullet} {
		if !strings.Contains(icon.Render(), string(icon)) {
			t.Errorf("Render() of %q lost the glyph", icon)
		}
	}
}

// =============================================================================
// Message Tests
// =============================================================================

func TestMessages_MachineMode(t *testing.T) {
	out, errOut := capture(t, PersonalityMachine, func() {
		Title("GeneScope")
		Success("wrote combined_results.xlsx")
		Warning("2 chunks failed")
		Error("upload rejected")
		Info("3 genes")
		Box("Run", "done")
	})

	if strings.Contains(out, "GeneScope") {
		t.Errorf("Title should be silent in machine mode, got %q", out)
	}
	for _, want := range []string{"OK: wrote combined_results.xlsx\n", "3 genes\n", "Run: done\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q, got %q", want, out)
		}
	}
	for _, want := range []string{"WARN: 2 chunks failed\n", "ERROR: upload rejected\n"} {
		if !strings.Contains(errOut, want) {
			t.Errorf("stderr missing %q, got %q", want, errOut)
		}
	}
}

func TestMessages_FullMode(t *testing.T) {
	out, errOut := capture(t, PersonalityFull, func() {
		Title("GeneScope")
		Success("saved")
		Error("broken")
	})
	if errOut != "" {
		t.Errorf("full mode writes everything to stdout, stderr got %q", errOut)
	}
	for _, want := range []string{"GeneScope", "✓", "saved", "✗", "broken"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q, got %q", want, out)
		}
	}
}

func TestStageCounts(t *testing.T) {
	out, _ := capture(t, PersonalityMachine, func() {
		StageCounts("interaction", 1, 0, 2, 3)
	})
	want := "SUMMARY: stage=interaction ok=1 empty=0 failed=2 invalid=3\n"
	if out != want {
		t.Errorf("StageCounts() = %q, want %q", out, want)
	}

	out, _ = capture(t, PersonalityMinimal, func() {
		StageCounts("enrichment", 4, 1, 0, 0)
	})
	for _, want := range []string{"enrichment", "4", "ok", "failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("StageCounts() missing %q, got %q", want, out)
		}
	}
}

// =============================================================================
// Table Tests
// =============================================================================

func TestRenderTable_MachineIsTabSeparated(t *testing.T) {
	capture(t, PersonalityMachine, func() {
		got := RenderTable([]string{"Gene", "Node Degree"}, [][]string{{"TP53", "2"}, {"BRCA1", "1"}})
		want := "Gene\tNode Degree\nTP53\t2\nBRCA1\t1\n"
		if got != want {
			t.Errorf("RenderTable() = %q, want %q", got, want)
		}
	})
}

func TestRenderTable_TruncatesToPreviewRows(t *testing.T) {
	capture(t, PersonalityMachine, func() {
		SetPersonality(Personality{Level: PersonalityMachine, PreviewRows: 1})
		got := RenderTable([]string{"Gene"}, [][]string{{"TP53"}, {"BRCA1"}, {"EGFR"}})
		if !strings.Contains(got, "TP53") || strings.Contains(got, "BRCA1") {
			t.Errorf("expected only the first row, got %q", got)
		}
		if !strings.Contains(got, "... 2 more rows") {
			t.Errorf("expected truncation note, got %q", got)
		}
	})
}

func TestRenderTable_FullHasBorders(t *testing.T) {
	capture(t, PersonalityFull, func() {
		got := RenderTable([]string{"Gene"}, [][]string{{"TP53"}})
		if !strings.Contains(got, "TP53") || !strings.Contains(got, "Gene") {
			t.Errorf("table lost its cells: %q", got)
		}
		if !strings.Contains(got, "╭") {
			t.Errorf("expected rounded border, got %q", got)
		}
	})
}
