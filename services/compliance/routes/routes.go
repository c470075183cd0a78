// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vantagecompliance/VantageCore/services/compliance/coordinator"
	"github.com/vantagecompliance/VantageCore/services/compliance/handlers"
	"github.com/vantagecompliance/VantageCore/services/compliance/middleware"
	"github.com/vantagecompliance/VantageCore/services/compliance/reports"
)

// SetupRoutes registers every endpoint of the compliance service. All /v1
// routes require authentication; workspace membership is enforced per
// request inside the engine.
func SetupRoutes(router *gin.Engine, coord *coordinator.Coordinator,
	reporter *reports.Reporter, auth middleware.AuthProvider) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(auth))

	ws := v1.Group("/workspaces/:workspaceId")
	{
		// Check lifecycle
		ws.POST("/checks", handlers.RunCheck(coord))
		ws.POST("/checks/batch", handlers.RunBatch(coord))
		ws.GET("/checks/:checkId", handlers.GetCheck(coord))
		ws.GET("/batches/:batchId", handlers.GetBatchStatus(coord))
		ws.GET("/documents/:documentId/checks", handlers.ListDocumentChecks(coord))
		ws.GET("/documents/:documentId/summary/:framework", handlers.GetDocumentSummary(coord))

		// Issue workflow
		ws.GET("/issues", handlers.ListIssues(coord))
		ws.GET("/issues/:issueId", handlers.GetIssue(coord))
		ws.PATCH("/issues/:issueId", handlers.UpdateIssue(coord))

		// Aggregates and reports
		ws.GET("/score", handlers.GetWorkspaceScore(reporter))
		ws.POST("/score", handlers.RecalculateScore(reporter))
		ws.GET("/dashboard", handlers.GetDashboard(reporter))
		ws.GET("/maturity", handlers.GetMaturity(reporter))
		ws.GET("/maturity/:framework", handlers.GetFrameworkMaturity(reporter))
		ws.GET("/gaps/:framework", handlers.GetFrameworkGaps(reporter))
		ws.GET("/trends", handlers.GetTrends(reporter))
		ws.GET("/benchmarks", handlers.GetBenchmarks(reporter))
	}
}
