// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides rich terminal output styling for the GeneScope CLI.
package ux

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// GeneScope palette
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4") // main brand color
	ColorTealDeep    = lipgloss.Color("#16858E") // borders
	ColorSlate       = lipgloss.Color("#2C4A54") // muted text

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Bold     lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Box      lipgloss.Style
}{
	Title:    lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle: lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:     lipgloss.NewStyle().Bold(true),
	Muted:    lipgloss.NewStyle().Foreground(ColorSlate),
	Success:  lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:  lipgloss.NewStyle().Foreground(ColorWarning),
	Error:    lipgloss.NewStyle().Foreground(ColorError),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

var (
	stdout  io.Writer = os.Stdout
	stderr  io.Writer = os.Stderr
	writeMu sync.Mutex
)

// SetOutput redirects regular and diagnostic output. Nil restores the
// process streams.
func SetOutput(out, errOut io.Writer) {
	writeMu.Lock()
	defer writeMu.Unlock()
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	stdout, stderr = out, errOut
}

func printf(toErr bool, format string, args ...any) {
	writeMu.Lock()
	defer writeMu.Unlock()
	w := stdout
	if toErr {
		w = stderr
	}
	fmt.Fprintf(w, format, args...)
}

// Title prints a styled title
func Title(text string) {
	if GetPersonality().Level == PersonalityMachine {
		return
	}
	printf(false, "%s\n", Styles.Title.Render(text))
}

// Success prints a success message with checkmark
func Success(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		printf(false, "OK: %s\n", text)
	case PersonalityMinimal:
		printf(false, "%s %s\n", IconSuccess.Render(), text)
	default:
		printf(false, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
	}
}

// Warning prints a warning message
func Warning(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		printf(true, "WARN: %s\n", text)
	case PersonalityMinimal:
		printf(false, "%s %s\n", IconWarning.Render(), text)
	default:
		printf(false, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
	}
}

// Error prints an error message
func Error(text string) {
	switch GetPersonality().Level {
	case PersonalityMachine:
		printf(true, "ERROR: %s\n", text)
	case PersonalityMinimal:
		printf(false, "%s %s\n", IconError.Render(), text)
	default:
		printf(false, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
	}
}

// Info prints an informational message
func Info(text string) {
	if GetPersonality().Level == PersonalityMachine {
		printf(false, "%s\n", text)
		return
	}
	printf(false, "%s %s\n", Styles.Muted.Render("│"), text)
}

// Box prints text in a rounded box
func Box(title, content string) {
	if GetPersonality().Level == PersonalityMachine {
		printf(false, "%s: %s\n", title, content)
		return
	}
	titleLine := Styles.Title.Render(title)
	printf(false, "%s\n", Styles.Box.Width(60).Render(titleLine+"\n"+content))
}

// StageCounts prints per-stage outcome counts.
func StageCounts(stage string, ok, empty, failed, invalid int) {
	if GetPersonality().Level == PersonalityMachine {
		printf(false, "SUMMARY: stage=%s ok=%d empty=%d failed=%d invalid=%d\n", stage, ok, empty, failed, invalid)
		return
	}
	failedStyle := Styles.Muted
	if failed > 0 {
		failedStyle = Styles.Error
	}
	printf(false, "%s  %s %s  %s %s  %s %s  %s %s\n",
		Styles.Bold.Render(stage),
		Styles.Success.Render(fmt.Sprintf("%d", ok)), Styles.Muted.Render("ok"),
		Styles.Bold.Render(fmt.Sprintf("%d", empty)), Styles.Muted.Render("empty"),
		failedStyle.Render(fmt.Sprintf("%d", failed)), Styles.Muted.Render("failed"),
		Styles.Warning.Render(fmt.Sprintf("%d", invalid)), Styles.Muted.Render("invalid"),
	)
}
