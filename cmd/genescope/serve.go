// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AleutianAI/genescope/cmd/genescope/config"
	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/services/genescope/observability"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/AleutianAI/genescope/services/genescope/routes"
	"github.com/AleutianAI/genescope/services/genescope/runstore"
	"github.com/AleutianAI/genescope/services/genescope/stringdb"
	"github.com/AleutianAI/genescope/services/genescope/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 10 * time.Second

// newHandler wires the service graph behind an http.Handler.
func newHandler(cfg *config.GeneScopeConfig, logger *logging.Logger, reg *prometheus.Registry) http.Handler {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)
	client := stringdb.NewClient(cfg.StringDBClient(), stringdb.WithObserver(metrics))
	analyzer := pipeline.New(client, cfg.Pipeline(), logger, metrics)

	router := routes.NewEngine(serviceName, cfg.Server.AllowOrigins, logger)
	routes.SetupRoutes(router, routes.Dependencies{
		Analyzer:       analyzer,
		Store:          runstore.New(cfg.Server.RunTTL),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Gatherer:       reg,
	})
	return router
}

// runServe starts the HTTP server and blocks until SIGINT or SIGTERM.
func runServe(ctx context.Context, cfg *config.GeneScopeConfig) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.New(cfg.Logger(serviceName))
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry(serviceName, version))
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("Tracer shutdown failed", "error", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	reg := prometheus.NewRegistry()
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newHandler(cfg, logger, reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting GeneScope server", "address", srv.Addr, "string_url", cfg.StringDB.BaseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down GeneScope server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
