// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the GeneScope service.
//
// # Request Flow
//
//	Request
//	   │
//	   ▼
//	gin.Recovery ─► otelgin ─► CORS ─► RequestLogger
//	   │
//	   ▼
//	Handler
package middleware

import (
	"time"

	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/services/genescope/telemetry"
	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request once the handler chain returns.
//
// # Description
//
// Server errors are logged at ERROR, client errors at WARN and everything
// else at INFO. Trace and span IDs are attached when otelgin started a span.
//
// # Inputs
//
//   - logger: Destination logger. A nil logger disables request logging.
//
// # Outputs
//
//   - gin.HandlerFunc: Middleware to install with router.Use.
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if logger == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		args := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		args = append(args, telemetry.LogAttrs(c.Request.Context())...)

		switch {
		case status >= 500:
			logger.Error("Request failed", args...)
		case status >= 400:
			logger.Warn("Request rejected", args...)
		default:
			logger.Info("Request handled", args...)
		}
	}
}
