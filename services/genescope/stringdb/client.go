// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package stringdb is a small client for the STRING protein database API.
//
// Only the two JSON endpoints GeneScope needs are wrapped: functional
// enrichment (POST /json/enrichment) and the interaction network
// (GET /json/network). The client performs no retries.
package stringdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
)

const (
	// DefaultBaseURL is the public STRING API root.
	DefaultBaseURL = "https://string-db.org/api"

	// SpeciesHuman is the NCBI taxonomy id for Homo sapiens.
	SpeciesHuman = 9606

	// DefaultTimeout bounds a single upstream request.
	DefaultTimeout = 30 * time.Second

	EndpointEnrichment = "enrichment"
	EndpointNetwork    = "network"

	// identifierSeparator is the URL-encoded carriage return STRING
	// expects between identifiers in a GET query.
	identifierSeparator = "%0D"

	maxErrorBody = 512
)

// HTTPClient allows injecting mock HTTP clients for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Observer receives one call per upstream request.
type Observer interface {
	ObserveRequest(endpoint string, outcome string, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL        string
	Species        int
	CallerIdentity string
	Timeout        time.Duration
}

// DefaultConfig returns the configuration for the public human STRING API.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Species:        SpeciesHuman,
		CallerIdentity: "genescope",
		Timeout:        DefaultTimeout,
	}
}

// Client talks to the STRING API.
type Client struct {
	httpClient     HTTPClient
	baseURL        string
	species        int
	callerIdentity string
	observer       Observer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc HTTPClient) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithObserver attaches a request observer, typically the metrics recorder.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a STRING client.
//
// # Inputs
//
//   - cfg: Endpoint and identity settings. Zero fields take defaults.
//   - opts: Optional HTTP client and observer.
//
// # Outputs
//
//   - *Client: Ready to use. Safe for concurrent use if the HTTP client is.
func NewClient(cfg Config, opts ...Option) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Species == 0 {
		cfg.Species = def.Species
	}
	if cfg.CallerIdentity == "" {
		cfg.CallerIdentity = def.CallerIdentity
	}

	c := &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		species:        cfg.Species,
		callerIdentity: cfg.CallerIdentity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnrichmentRow is one row of the enrichment response.
type EnrichmentRow struct {
	Category       string   `json:"category"`
	Term           string   `json:"term"`
	PreferredNames []string `json:"preferredNames"`
	Description    string   `json:"description"`
	FDR            *float64 `json:"fdr"`
	NumberOfGenes  int      `json:"number_of_genes,omitempty"`
}

// FDRValue returns the false discovery rate, treating a missing value as 1.
func (r EnrichmentRow) FDRValue() float64 {
	if r.FDR == nil {
		return 1
	}
	return *r.FDR
}

// NetworkEdge is one interaction record of the network response.
type NetworkEdge struct {
	PreferredNameA string   `json:"preferredName_A"`
	StringIDA      string   `json:"stringId_A"`
	PreferredNameB string   `json:"preferredName_B"`
	StringIDB      string   `json:"stringId_B"`
	Score          *float64 `json:"score"`
}

// ScoreValue returns the combined score, treating a missing value as 0.
func (e NetworkEdge) ScoreValue() float64 {
	if e.Score == nil {
		return 0
	}
	return *e.Score
}

// ToEdge converts the record to the shared edge type.
func (e NetworkEdge) ToEdge() datatypes.InteractionEdge {
	return datatypes.InteractionEdge{
		A:     datatypes.NodeKey{Name: e.PreferredNameA, StringID: e.StringIDA},
		B:     datatypes.NodeKey{Name: e.PreferredNameB, StringID: e.StringIDB},
		Score: e.ScoreValue(),
	}
}

// Enrichment requests functional enrichment for a single identifier.
func (c *Client) Enrichment(ctx context.Context, identifier string) ([]EnrichmentRow, error) {
	form := url.Values{}
	form.Set("identifiers", identifier)
	form.Set("species", strconv.Itoa(c.species))
	form.Set("caller_identity", c.callerIdentity)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/json/enrichment", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create enrichment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var rows []EnrichmentRow
	if err := c.do(ctx, EndpointEnrichment, req, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// NetworkURL builds the GET URL for a network query. Each identifier is
// query-escaped and the results are joined with %0D.
func (c *Client) NetworkURL(identifiers []string) string {
	escaped := make([]string, len(identifiers))
	for i, id := range identifiers {
		escaped[i] = url.QueryEscape(id)
	}
	return c.baseURL + "/json/network?identifiers=" + strings.Join(escaped, identifierSeparator) +
		"&species=" + strconv.Itoa(c.species) +
		"&caller_identity=" + url.QueryEscape(c.callerIdentity)
}

// Network requests the interaction network among the given identifiers.
func (c *Client) Network(ctx context.Context, identifiers []string) ([]NetworkEdge, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.NetworkURL(identifiers), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create network request: %w", err)
	}

	var edges []NetworkEdge
	if err := c.do(ctx, EndpointNetwork, req, &edges); err != nil {
		return nil, err
	}
	return edges, nil
}

func (c *Client) do(ctx context.Context, endpoint string, req *http.Request, out any) (err error) {
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveRequest(endpoint, outcome(err), time.Since(start))
		}
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classify(ctx, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RequestError{
			Endpoint:   endpoint,
			Kind:       datatypes.ErrorKindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("STRING returned status %s: %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return classify(ctx, endpoint, ctxErr)
		}
		return &RequestError{
			Endpoint:   endpoint,
			Kind:       datatypes.ErrorKindDecode,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode STRING JSON: %w", err),
		}
	}
	return nil
}

func classify(ctx context.Context, endpoint string, err error) error {
	kind := datatypes.ErrorKindTransport
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		kind = datatypes.ErrorKindCanceled
	}
	return &RequestError{Endpoint: endpoint, Kind: kind, Err: err}
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}
