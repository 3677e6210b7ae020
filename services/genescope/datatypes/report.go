// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "fmt"

// Stage names the pipeline stage an item belongs to.
type Stage string

const (
	StageEnrichment  Stage = "enrichment"
	StageInteraction Stage = "interaction"
)

// ItemStatus is the outcome of a single upstream request.
type ItemStatus string

const (
	// StatusOK means the request succeeded and produced records.
	StatusOK ItemStatus = "ok"

	// StatusEmpty means the request succeeded but nothing survived filtering.
	StatusEmpty ItemStatus = "empty"

	// StatusFailed means the request failed; see ItemResult.Kind.
	StatusFailed ItemStatus = "failed"

	// StatusInvalid means the identifier was rejected before any request.
	StatusInvalid ItemStatus = "invalid"
)

// ErrorKind classifies a failed item.
type ErrorKind string

const (
	ErrorKindNone      ErrorKind = ""
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindStatus    ErrorKind = "status"
	ErrorKindDecode    ErrorKind = "decode"
	ErrorKindCanceled  ErrorKind = "canceled"
	ErrorKindInvalid   ErrorKind = "invalid"
)

// ItemResult records what happened to one gene (enrichment) or one chunk
// (interaction).
type ItemResult struct {
	Stage   Stage      `json:"stage"`
	Key     string     `json:"key"`
	Status  ItemStatus `json:"status"`
	Kind    ErrorKind  `json:"kind,omitempty"`
	Error   string     `json:"error,omitempty"`
	Records int        `json:"records"`
}

// Succeeded reports whether the request completed, with or without records.
func (r ItemResult) Succeeded() bool {
	return r.Status == StatusOK || r.Status == StatusEmpty
}

// Report collects item results for a run.
type Report struct {
	Items []ItemResult `json:"items"`
}

// Add appends results to the report.
func (r *Report) Add(items ...ItemResult) {
	r.Items = append(r.Items, items...)
}

// Failed returns every item that failed or was rejected.
func (r *Report) Failed() []ItemResult {
	var out []ItemResult
	for _, item := range r.Items {
		if !item.Succeeded() {
			out = append(out, item)
		}
	}
	return out
}

// Stage returns the items belonging to one stage.
func (r *Report) Stage(stage Stage) []ItemResult {
	var out []ItemResult
	for _, item := range r.Items {
		if item.Stage == stage {
			out = append(out, item)
		}
	}
	return out
}

// StageSummary counts item outcomes for one stage.
type StageSummary struct {
	Stage   Stage `json:"stage"`
	OK      int   `json:"ok"`
	Empty   int   `json:"empty"`
	Failed  int   `json:"failed"`
	Invalid int   `json:"invalid"`
}

// Total returns the number of items counted.
func (s StageSummary) Total() int {
	return s.OK + s.Empty + s.Failed + s.Invalid
}

// String renders the summary as "stage: ok=N empty=N failed=N invalid=N".
func (s StageSummary) String() string {
	return fmt.Sprintf("%s: ok=%d empty=%d failed=%d invalid=%d", s.Stage, s.OK, s.Empty, s.Failed, s.Invalid)
}

// Summary returns per-stage outcome counts for the stages present in the
// report, enrichment first.
func (r *Report) Summary() []StageSummary {
	var out []StageSummary
	for _, stage := range []Stage{StageEnrichment, StageInteraction} {
		items := r.Stage(stage)
		if len(items) == 0 {
			continue
		}
		s := StageSummary{Stage: stage}
		for _, item := range items {
			switch item.Status {
			case StatusOK:
				s.OK++
			case StatusEmpty:
				s.Empty++
			case StatusFailed:
				s.Failed++
			case StatusInvalid:
				s.Invalid++
			}
		}
		out = append(out, s)
	}
	return out
}
