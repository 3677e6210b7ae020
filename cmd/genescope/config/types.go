// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"time"

	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/services/genescope/enrichment"
	"github.com/AleutianAI/genescope/services/genescope/interaction"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/AleutianAI/genescope/services/genescope/render"
	"github.com/AleutianAI/genescope/services/genescope/stringdb"
	"github.com/AleutianAI/genescope/services/genescope/telemetry"
)

type GeneScopeConfig struct {
	// Server: HTTP listener and run retention
	Server ServerConfig `yaml:"server"`

	// StringDB: upstream API location and identity
	StringDB StringDBConfig `yaml:"stringdb"`

	// Enrichment: per-gene enrichment filter and pool size
	Enrichment EnrichmentConfig `yaml:"enrichment"`

	// Interaction: network request batching
	Interaction InteractionConfig `yaml:"interaction"`

	// Network: edge filter, top-N selection and rendering
	Network NetworkConfig `yaml:"network"`

	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

type ServerConfig struct {
	Port         int           `yaml:"port" validate:"min=1,max=65535"`
	MaxUploadMB  int           `yaml:"max_upload_mb" validate:"min=1"`
	RunTTL       time.Duration `yaml:"run_ttl" validate:"gt=0"`
	AllowOrigins []string      `yaml:"allow_origins,omitempty"` // empty allows all
}

type StringDBConfig struct {
	BaseURL        string        `yaml:"base_url" validate:"required,url"`
	Species        int           `yaml:"species" validate:"gt=0"`
	CallerIdentity string        `yaml:"caller_identity" validate:"required"`
	Timeout        time.Duration `yaml:"timeout" validate:"gte=0"` // 0 disables the timeout
}

type EnrichmentConfig struct {
	Workers      int      `yaml:"workers" validate:"min=1,max=64"`
	FDRThreshold float64  `yaml:"fdr_threshold" validate:"gt=0,lte=1"`
	Categories   []string `yaml:"categories" validate:"min=1,dive,required"`
}

type InteractionConfig struct {
	ChunkSize int `yaml:"chunk_size" validate:"min=1,max=2000"`
}

type NetworkConfig struct {
	MinScore   float64 `yaml:"min_score" validate:"gte=0,lte=1"`
	TopN       int     `yaml:"top_n" validate:"min=1"`
	Iterations int     `yaml:"layout_iterations" validate:"min=1"`
	Height     string  `yaml:"height" validate:"required"`
	Width      string  `yaml:"width" validate:"required"`
	// ScriptURL is the vis-network script the network page loads
	ScriptURL string `yaml:"script_url" validate:"required"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Dir   string `yaml:"dir,omitempty"`
	JSON  bool   `yaml:"json"`
}

type TracingConfig struct {
	// Exporter is one of none, stdout or otlp
	Exporter     string `yaml:"exporter" validate:"oneof=none stdout otlp"`
	OTLPEndpoint string `yaml:"otlp_endpoint,omitempty" validate:"required_if=Exporter otlp"`
	OTLPInsecure bool   `yaml:"otlp_insecure"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() GeneScopeConfig {
	return GeneScopeConfig{
		Server: ServerConfig{
			Port:        8080,
			MaxUploadMB: 32,
			RunTTL:      30 * time.Minute,
		},
		StringDB: StringDBConfig{
			BaseURL:        stringdb.DefaultBaseURL,
			Species:        stringdb.SpeciesHuman,
			CallerIdentity: "genescope",
			Timeout:        stringdb.DefaultTimeout,
		},
		Enrichment: EnrichmentConfig{
			Workers:      enrichment.DefaultWorkers,
			FDRThreshold: enrichment.DefaultFDRThreshold,
			Categories:   append([]string(nil), enrichment.DefaultCategories...),
		},
		Interaction: InteractionConfig{
			ChunkSize: interaction.DefaultChunkSize,
		},
		Network: NetworkConfig{
			MinScore:   interaction.DefaultMinScore,
			TopN:       interaction.DefaultTopN,
			Iterations: render.DefaultIterations,
			Height:     render.DefaultHeight,
			Width:      render.DefaultWidth,
			ScriptURL:  render.VisNetworkURL,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Exporter: telemetry.ExporterNone,
		},
	}
}

// MaxUploadBytes converts the upload cap to bytes.
func (c GeneScopeConfig) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// StringDBClient returns the STRING client settings.
func (c GeneScopeConfig) StringDBClient() stringdb.Config {
	return stringdb.Config{
		BaseURL:        c.StringDB.BaseURL,
		Species:        c.StringDB.Species,
		CallerIdentity: c.StringDB.CallerIdentity,
		Timeout:        c.StringDB.Timeout,
	}
}

// Pipeline returns the analysis stage settings.
func (c GeneScopeConfig) Pipeline() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.Enrichment = enrichment.Options{
		Workers:      c.Enrichment.Workers,
		FDRThreshold: c.Enrichment.FDRThreshold,
		Categories:   append([]string(nil), c.Enrichment.Categories...),
	}
	cfg.ChunkSize = c.Interaction.ChunkSize
	cfg.MinScore = c.Network.MinScore
	cfg.TopN = c.Network.TopN
	cfg.Render.Iterations = c.Network.Iterations
	cfg.Render.Height = c.Network.Height
	cfg.Render.Width = c.Network.Width
	cfg.Render.ScriptURL = c.Network.ScriptURL
	return cfg
}

// Logger returns logging settings for the named service.
func (c GeneScopeConfig) Logger(service string) logging.Config {
	return logging.Config{
		Level:   logging.ParseLevel(c.Logging.Level),
		LogDir:  c.Logging.Dir,
		Service: service,
		JSON:    c.Logging.JSON,
	}
}

// Telemetry returns tracer provider settings.
func (c GeneScopeConfig) Telemetry(service, version string) telemetry.Config {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceName = service
	cfg.ServiceVersion = version
	cfg.Exporter = c.Tracing.Exporter
	cfg.OTLPEndpoint = c.Tracing.OTLPEndpoint
	cfg.OTLPInsecure = c.Tracing.OTLPInsecure
	return cfg
}
