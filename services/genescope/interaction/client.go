// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package interaction fetches the protein interaction network for a gene
// list and derives degree statistics and the top-degree subgraph.
package interaction

import (
	"context"
	"fmt"

	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"github.com/AleutianAI/genescope/services/genescope/stringdb"
)

// DefaultChunkSize is the maximum number of identifiers per network request.
const DefaultChunkSize = 500

// Fetcher returns raw network records for a batch of identifiers.
// *stringdb.Client satisfies it.
type Fetcher interface {
	Network(ctx context.Context, identifiers []string) ([]stringdb.NetworkEdge, error)
}

// Chunk splits genes into consecutive slices of at most size elements.
// The slices share the backing array of genes.
func Chunk(genes []string, size int) [][]string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks [][]string
	for start := 0; start < len(genes); start += size {
		end := min(start+size, len(genes))
		chunks = append(chunks, genes[start:end])
	}
	return chunks
}

// Client runs the interaction stage.
type Client struct {
	fetcher   Fetcher
	chunkSize int
	logger    *logging.Logger
}

// NewClient creates an interaction client. A chunk size of zero uses
// DefaultChunkSize and a nil logger disables logging.
func NewClient(fetcher Fetcher, chunkSize int, logger *logging.Logger) *Client {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{fetcher: fetcher, chunkSize: chunkSize, logger: logger}
}

// ChunkKey names a chunk in the run report, e.g. "chunk 1 (genes 1-500)".
func ChunkKey(index, start, size int) string {
	return fmt.Sprintf("chunk %d (genes %d-%d)", index+1, start+1, start+size)
}

// Fetch requests the network for every chunk of genes, one chunk at a time.
//
// # Description
//
// A failed chunk is skipped and recorded; the remaining chunks still run.
// The returned edge list is the concatenation of chunk results in chunk
// order, with no score filtering applied.
//
// # Outputs
//
//   - []datatypes.InteractionEdge: The raw edge list.
//   - []datatypes.ItemResult: One result per chunk.
func (c *Client) Fetch(ctx context.Context, genes []string) ([]datatypes.InteractionEdge, []datatypes.ItemResult) {
	chunks := Chunk(genes, c.chunkSize)
	items := make([]datatypes.ItemResult, 0, len(chunks))

	var raw []datatypes.InteractionEdge
	for i, chunk := range chunks {
		item := datatypes.ItemResult{
			Stage: datatypes.StageInteraction,
			Key:   ChunkKey(i, i*c.chunkSize, len(chunk)),
		}

		if err := ctx.Err(); err != nil {
			item.Status = datatypes.StatusFailed
			item.Kind = datatypes.ErrorKindCanceled
			item.Error = err.Error()
			items = append(items, item)
			continue
		}

		records, err := c.fetcher.Network(ctx, chunk)
		if err != nil {
			c.logger.Warn("Network chunk failed", "chunk", i+1, "genes", len(chunk), "error", err)
			item.Status = datatypes.StatusFailed
			item.Kind = stringdb.KindOf(err)
			item.Error = err.Error()
			items = append(items, item)
			continue
		}

		for _, rec := range records {
			raw = append(raw, rec.ToEdge())
		}
		item.Records = len(records)
		if len(records) == 0 {
			item.Status = datatypes.StatusEmpty
		} else {
			item.Status = datatypes.StatusOK
		}
		items = append(items, item)
	}

	c.logger.Debug("Interaction stage finished", "chunks", len(chunks), "edges", len(raw))
	return raw, items
}
