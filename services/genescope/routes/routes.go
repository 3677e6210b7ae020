// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/AleutianAI/genescope/pkg/logging"
	"github.com/AleutianAI/genescope/services/genescope/handlers"
	"github.com/AleutianAI/genescope/services/genescope/middleware"
	"github.com/AleutianAI/genescope/services/genescope/runstore"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Dependencies are the collaborators the routes need.
type Dependencies struct {
	Analyzer handlers.Analyzer
	Store    *runstore.Store
	// MaxUploadBytes caps multipart uploads. Zero disables the cap.
	MaxUploadBytes int64
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewEngine creates a gin engine with the standard middleware chain.
// An empty allowOrigins list allows every origin.
func NewEngine(serviceName string, allowOrigins []string, logger *logging.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))

	corsCfg := cors.DefaultConfig()
	if len(allowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowOrigins
	}
	router.Use(cors.New(corsCfg))
	router.Use(middleware.RequestLogger(logger))
	return router
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Browser flow
	router.GET("/", handlers.UploadPage)
	router.POST("/run", handlers.HandleRun(deps.Analyzer, deps.Store, deps.MaxUploadBytes))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.POST("/analyze", handlers.HandleAnalyze(deps.Analyzer, deps.Store, deps.MaxUploadBytes))
		runs := v1.Group("/runs")
		{
			runs.GET("/:id", handlers.GetRun(deps.Store))
			runs.DELETE("/:id", handlers.DeleteRun(deps.Store))
			runs.GET("/:id/export", handlers.DownloadExport(deps.Store))
			runs.GET("/:id/network", handlers.ShowNetwork(deps.Store))
		}
	}
}
