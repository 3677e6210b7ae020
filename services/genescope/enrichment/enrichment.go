// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package enrichment fetches pathway enrichment per gene and joins the
// significant terms back onto the input table.
package enrichment

import (
	"context"
	"strings"

	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/stringdb"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFDRThreshold is the exclusive upper bound on kept FDR values.
	DefaultFDRThreshold = 0.05

	// DefaultWorkers is the number of concurrent enrichment requests.
	DefaultWorkers = 4
)

// DefaultCategories are the annotation sources kept in results.
var DefaultCategories = []string{
	"Process",
	"KEGG",
	"Reactome",
	"WikiPathways",
	"Pfam",
	"InterPro",
	"SMART",
}

// Fetcher returns raw enrichment rows for one identifier.
// *stringdb.Client satisfies it.
type Fetcher interface {
	Enrichment(ctx context.Context, identifier string) ([]stringdb.EnrichmentRow, error)
}

// Options tune a Client.
type Options struct {
	Workers      int
	FDRThreshold float64
	Categories   []string
}

// DefaultOptions returns the standard filter and pool size.
func DefaultOptions() Options {
	return Options{
		Workers:      DefaultWorkers,
		FDRThreshold: DefaultFDRThreshold,
		Categories:   append([]string(nil), DefaultCategories...),
	}
}

// Client runs the enrichment stage.
type Client struct {
	fetcher    Fetcher
	workers    int
	threshold  float64
	categories map[string]bool
	logger     *logging.Logger
}

// NewClient creates an enrichment client. A nil logger disables logging.
func NewClient(fetcher Fetcher, opts Options, logger *logging.Logger) *Client {
	def := DefaultOptions()
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.FDRThreshold <= 0 {
		opts.FDRThreshold = def.FDRThreshold
	}
	if len(opts.Categories) == 0 {
		opts.Categories = def.Categories
	}
	if logger == nil {
		logger = logging.Nop()
	}

	cats := make(map[string]bool, len(opts.Categories))
	for _, c := range opts.Categories {
		cats[c] = true
	}
	return &Client{
		fetcher:    fetcher,
		workers:    opts.Workers,
		threshold:  opts.FDRThreshold,
		categories: cats,
		logger:     logger,
	}
}

// Filter keeps rows in an allowed category with fdr strictly below the
// threshold and converts them to hits for gene. Row order is preserved.
func Filter(gene string, rows []stringdb.EnrichmentRow, categories map[string]bool, threshold float64) []datatypes.EnrichmentHit {
	var hits []datatypes.EnrichmentHit
	for _, row := range rows {
		if !categories[row.Category] {
			continue
		}
		fdr := row.FDRValue()
		if !(fdr < threshold) {
			continue
		}
		hits = append(hits, datatypes.EnrichmentHit{
			Gene:           gene,
			Term:           row.Term,
			PreferredNames: strings.Join(row.PreferredNames, ","),
			FDR:            fdr,
			Description:    row.Description,
			Category:       row.Category,
		})
	}
	return hits
}

// Run requests enrichment for every gene, duplicates included.
//
// # Description
//
// Requests fan out over a bounded pool. A failed gene is logged, recorded
// in its ItemResult and skipped. Hits are returned in input order
// regardless of completion order.
//
// # Outputs
//
//   - []datatypes.EnrichmentHit: All kept hits, grouped by gene in input order.
//   - []datatypes.ItemResult: One result per gene, in input order.
func (c *Client) Run(ctx context.Context, genes []string) ([]datatypes.EnrichmentHit, []datatypes.ItemResult) {
	perGene := make([][]datatypes.EnrichmentHit, len(genes))
	items := make([]datatypes.ItemResult, len(genes))

	var g errgroup.Group
	g.SetLimit(c.workers)

	for i, gene := range genes {
		g.Go(func() error {
			items[i] = datatypes.ItemResult{Stage: datatypes.StageEnrichment, Key: gene}

			if err := ctx.Err(); err != nil {
				items[i].Status = datatypes.StatusFailed
				items[i].Kind = datatypes.ErrorKindCanceled
				items[i].Error = err.Error()
				return nil
			}

			rows, err := c.fetcher.Enrichment(ctx, gene)
			if err != nil {
				c.logger.Warn("Enrichment request failed", "gene", gene, "error", err)
				items[i].Status = datatypes.StatusFailed
				items[i].Kind = stringdb.KindOf(err)
				items[i].Error = err.Error()
				return nil
			}

			hits := Filter(gene, rows, c.categories, c.threshold)
			perGene[i] = hits
			items[i].Records = len(hits)
			if len(hits) == 0 {
				items[i].Status = datatypes.StatusEmpty
			} else {
				items[i].Status = datatypes.StatusOK
			}
			return nil
		})
	}
	_ = g.Wait()

	var all []datatypes.EnrichmentHit
	for _, hits := range perGene {
		all = append(all, hits...)
	}
	c.logger.Debug("Enrichment stage finished", "genes", len(genes), "hits", len(all))
	return all, items
}
