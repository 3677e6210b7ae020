// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides metrics for GeneScope analyses.
//
// # Description
//
// Prometheus metrics for monitoring analysis runs and the upstream STRING
// API. Metrics include:
//   - Upstream request counters and latency (by endpoint and outcome)
//   - Analysis counters and duration (by mode and status)
//   - Per-item outcome counters (by stage and status)
//   - Kept record counters (enrichment hits, network edges)
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
// A nil *Metrics is valid and records nothing.
package observability

import (
	"time"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "genescope"

// Subsystems
const (
	upstreamSubsystem = "upstream"
	analysisSubsystem = "analysis"
)

// Kept record kinds for RecordKept.
const (
	KindHits  = "hits"
	KindEdges = "edges"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// UpstreamRequestsTotal counts STRING requests.
	// Labels: endpoint (enrichment, network), outcome (ok, transport, status, decode, canceled)
	UpstreamRequestsTotal *prometheus.CounterVec

	// UpstreamDurationSeconds measures STRING request latency.
	// Labels: endpoint
	UpstreamDurationSeconds *prometheus.HistogramVec

	// AnalysesTotal counts finished analyses.
	// Labels: mode (pathway, ppi, combined), status (success, error)
	AnalysesTotal *prometheus.CounterVec

	// AnalysisDurationSeconds measures end-to-end analysis time.
	// Labels: mode
	AnalysisDurationSeconds *prometheus.HistogramVec

	// ActiveAnalyses tracks analyses in progress.
	ActiveAnalyses prometheus.Gauge

	// ItemsTotal counts per-item outcomes.
	// Labels: stage (enrichment, interaction), status (ok, empty, failed, invalid)
	ItemsTotal *prometheus.CounterVec

	// RecordsKeptTotal counts records that survived filtering.
	// Labels: kind (hits, edges)
	RecordsKeptTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: upstreamSubsystem,
				Name:      "requests_total",
				Help:      "Total STRING API requests by endpoint and outcome",
			},
			[]string{"endpoint", "outcome"},
		),
		UpstreamDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: upstreamSubsystem,
				Name:      "request_duration_seconds",
				Help:      "STRING API request latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"endpoint"},
		),
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "runs_total",
				Help:      "Total analyses by mode and status",
			},
			[]string{"mode", "status"},
		),
		AnalysisDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "duration_seconds",
				Help:      "Analysis duration in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
			[]string{"mode"},
		),
		ActiveAnalyses: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "active",
				Help:      "Analyses currently running",
			},
		),
		ItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "items_total",
				Help:      "Per-gene and per-chunk outcomes by stage and status",
			},
			[]string{"stage", "status"},
		),
		RecordsKeptTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: analysisSubsystem,
				Name:      "records_kept_total",
				Help:      "Records kept after filtering by kind",
			},
			[]string{"kind"},
		),
	}
}

// =============================================================================
// Recording Helpers
// =============================================================================

// ObserveRequest records one upstream request.
func (m *Metrics) ObserveRequest(endpoint, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.UpstreamDurationSeconds.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// AnalysisStarted increments the active gauge. Pair with RecordAnalysis.
func (m *Metrics) AnalysisStarted() {
	if m == nil {
		return
	}
	m.ActiveAnalyses.Inc()
}

// RecordAnalysis records a finished analysis and decrements the active gauge.
func (m *Metrics) RecordAnalysis(mode string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.ActiveAnalyses.Dec()
	m.AnalysesTotal.WithLabelValues(mode, status).Inc()
	m.AnalysisDurationSeconds.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordItems counts item outcomes.
func (m *Metrics) RecordItems(items []datatypes.ItemResult) {
	if m == nil {
		return
	}
	for _, item := range items {
		m.ItemsTotal.WithLabelValues(string(item.Stage), string(item.Status)).Inc()
	}
}

// RecordKept adds n kept records of the given kind.
func (m *Metrics) RecordKept(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsKeptTotal.WithLabelValues(kind).Add(float64(n))
}
