// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline runs a GeneScope analysis end to end.
//
// # Description
//
// A run loads the uploaded table, locates the gene column, validates the
// identifiers and then, depending on the mode, runs pathway enrichment,
// the interaction network or both. The interaction stage also computes
// node degrees and renders the top-degree subgraph. Export is deferred to
// Result.Export so callers decide when to pay for workbook encoding.
//
// # Error Handling
//
// Parse and schema errors end the run before any upstream request. Upstream
// failures never end the run; they are recorded per gene or per chunk in
// Result.Report.
//
// # Thread Safety
//
// A Pipeline is safe for concurrent use; runs share no state.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/pkg/validation"
	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/enrichment"
	"github.com/AleutianAI/genescope/services/genescope/interaction"
	"github.com/AleutianAI/genescope/services/genescope/loader"
	"github.com/AleutianAI/genescope/services/genescope/observability"
	"github.com/AleutianAI/genescope/services/genescope/render"
	"github.com/AleutianAI/genescope/services/genescope/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gonum.org/v1/gonum/stat"
)

const tracerName = "genescope.pipeline"

// Upstream is the STRING API as seen by the pipeline.
// *stringdb.Client satisfies it.
type Upstream interface {
	enrichment.Fetcher
	interaction.Fetcher
}

// Config tunes the analysis stages.
type Config struct {
	Enrichment enrichment.Options
	ChunkSize  int
	MinScore   float64
	TopN       int
	Render     render.Options
}

// DefaultConfig returns the standard thresholds and sizes.
func DefaultConfig() Config {
	return Config{
		Enrichment: enrichment.DefaultOptions(),
		ChunkSize:  interaction.DefaultChunkSize,
		MinScore:   interaction.DefaultMinScore,
		TopN:       interaction.DefaultTopN,
		Render:     render.DefaultOptions(),
	}
}

// Pipeline wires the stage clients together.
type Pipeline struct {
	enrichment  *enrichment.Client
	interaction *interaction.Client
	renderer    *render.Renderer
	minScore    float64
	topN        int
	logger      *logging.Logger
	metrics     *observability.Metrics
}

// New creates a pipeline over upstream. logger and metrics may be nil.
func New(upstream Upstream, cfg Config, logger *logging.Logger, metrics *observability.Metrics) *Pipeline {
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.MinScore <= 0 {
		cfg.MinScore = interaction.DefaultMinScore
	}
	if cfg.TopN <= 0 {
		cfg.TopN = interaction.DefaultTopN
	}
	return &Pipeline{
		enrichment:  enrichment.NewClient(upstream, cfg.Enrichment, logger),
		interaction: interaction.NewClient(upstream, cfg.ChunkSize, logger),
		renderer:    render.NewRenderer(&cfg.Render),
		minScore:    cfg.MinScore,
		topN:        cfg.TopN,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run executes one analysis.
//
// # Inputs
//
//   - ctx: Cancels outstanding upstream requests. Items not yet sent are
//     reported as canceled.
//   - mode: Which stages to run.
//   - r: The uploaded file content.
//   - filename: The uploaded file name; its extension selects the format.
//
// # Outputs
//
//   - *Result: The analysis result. Nil on error.
//   - error: A loader.ParseError or loader.SchemaError, or a render failure.
func (p *Pipeline) Run(ctx context.Context, mode Mode, r io.Reader, filename string) (res *Result, err error) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline.Run",
		trace.WithAttributes(attribute.String("mode", string(mode)), attribute.String("filename", filename)))
	defer span.End()

	started := time.Now()
	logger := p.logger.With(append([]any{"mode", string(mode)}, telemetry.LogAttrs(ctx)...)...)
	p.metrics.AnalysisStarted()
	defer func() {
		p.metrics.RecordAnalysis(string(mode), err, time.Since(started))
		if err != nil {
			telemetry.RecordError(span, err)
			logger.Warn("Analysis failed", "filename", filename, "error", err)
			return
		}
		telemetry.SetSpanOK(span)
	}()

	res = &Result{
		Mode:     mode,
		Filename: filename,
		Timings:  make(map[string]time.Duration),
		Started:  started,
	}

	if err := p.load(ctx, res, r); err != nil {
		return nil, err
	}
	logger.Info("Input loaded", "filename", filename, "rows", res.Input.Len(), "genes", len(res.Genes))

	valid, invalid := partitionGenes(res.Genes)
	if len(invalid) > 0 {
		logger.Warn("Skipping invalid identifiers", "count", len(invalid))
	}

	if mode.RunsEnrichment() {
		res.Report.Add(invalidItems(datatypes.StageEnrichment, invalid)...)
		p.runEnrichment(ctx, res, valid)
	}
	if mode.RunsInteraction() {
		res.Report.Add(invalidItems(datatypes.StageInteraction, invalid)...)
		if err := p.runInteraction(ctx, res, valid); err != nil {
			return nil, err
		}
	}

	p.metrics.RecordItems(res.Report.Items)
	res.Duration = time.Since(started)
	for _, s := range res.Report.Summary() {
		logger.Info("Stage summary", "stage", string(s.Stage), "ok", s.OK, "empty", s.Empty, "failed", s.Failed, "invalid", s.Invalid)
	}
	return res, nil
}

func (p *Pipeline) load(ctx context.Context, res *Result, r io.Reader) error {
	_, span := telemetry.StartSpan(ctx, tracerName, "pipeline.Load")
	defer span.End()
	start := time.Now()
	defer func() { res.Timings["load"] = time.Since(start) }()

	table, err := loader.Load(r, res.Filename)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	normalized, genes, err := loader.Normalize(table)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	res.Input = normalized
	res.Genes = genes
	span.SetAttributes(attribute.Int("rows", table.Len()), attribute.Int("genes", len(genes)))
	return nil
}

func (p *Pipeline) runEnrichment(ctx context.Context, res *Result, genes []string) {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline.Enrichment",
		trace.WithAttributes(attribute.Int("genes", len(genes))))
	defer span.End()
	start := time.Now()

	hits, items := p.enrichment.Run(ctx, genes)
	res.Hits = hits
	res.Pathway = enrichment.Join(res.Input, hits)
	res.Report.Add(items...)
	res.Timings["enrichment"] = time.Since(start)

	p.metrics.RecordKept(observability.KindHits, len(hits))
	span.SetAttributes(attribute.Int("hits", len(hits)))
}

func (p *Pipeline) runInteraction(ctx context.Context, res *Result, genes []string) error {
	ctx, span := telemetry.StartSpan(ctx, tracerName, "pipeline.Interaction",
		trace.WithAttributes(attribute.Int("genes", len(genes))))
	defer span.End()
	start := time.Now()

	raw, items := p.interaction.Fetch(ctx, genes)
	res.RawEdges = raw
	res.Report.Add(items...)

	network := interaction.BuildNetwork(raw, p.minScore)
	res.Degrees = network.Degrees()
	res.PPI = datatypes.DegreeTable(res.Degrees)
	res.Subgraph = interaction.InducedSubgraph(raw, interaction.TopNames(res.Degrees, p.topN))
	res.Network = networkStats(raw, network, res.Degrees)
	res.Timings["interaction"] = time.Since(start)

	p.metrics.RecordKept(observability.KindEdges, network.EdgeCount())
	span.SetAttributes(
		attribute.Int("raw_edges", len(raw)),
		attribute.Int("edges", network.EdgeCount()),
		attribute.Int("nodes", network.NodeCount()),
	)

	renderStart := time.Now()
	html, err := p.renderer.Render(ctx, res.Subgraph)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("render network: %w", err)
	}
	res.NetworkHTML = html
	res.Timings["render"] = time.Since(renderStart)
	return nil
}

func networkStats(raw []datatypes.InteractionEdge, n *interaction.Network, degrees []datatypes.NodeDegree) NetworkStats {
	s := NetworkStats{
		RawEdges:  len(raw),
		Nodes:     n.NodeCount(),
		Edges:     n.EdgeCount(),
		SelfLoops: n.SelfLoops,
	}
	if len(degrees) > 0 {
		xs := make([]float64, len(degrees))
		for i, d := range degrees {
			xs[i] = float64(d.Degree)
		}
		s.MeanDegree = stat.Mean(xs, nil)
	}
	return s
}

// partitionGenes splits identifiers into trimmed ones safe to send and
// those rejected by validation. Order is preserved in both.
func partitionGenes(genes []string) (valid []string, invalid []invalidGene) {
	valid = make([]string, 0, len(genes))
	for _, g := range genes {
		id, err := validation.SanitizeGeneID(g)
		if err != nil {
			invalid = append(invalid, invalidGene{id: g, err: err})
			continue
		}
		valid = append(valid, id)
	}
	return valid, invalid
}

type invalidGene struct {
	id  string
	err error
}

func invalidItems(stage datatypes.Stage, invalid []invalidGene) []datatypes.ItemResult {
	items := make([]datatypes.ItemResult, len(invalid))
	for i, g := range invalid {
		items[i] = datatypes.ItemResult{
			Stage:  stage,
			Key:    g.id,
			Status: datatypes.StatusInvalid,
			Kind:   datatypes.ErrorKindInvalid,
			Error:  g.err.Error(),
		}
	}
	return items
}
