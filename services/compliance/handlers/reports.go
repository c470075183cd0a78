// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vantagecompliance/VantageCore/services/compliance/middleware"
	"github.com/vantagecompliance/VantageCore/services/compliance/reports"
)

// GetWorkspaceScore handles GET /v1/workspaces/:workspaceId/score. Serves the
// cached latest snapshot, computing one lazily for never-scored workspaces.
func GetWorkspaceScore(reporter *reports.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := reporter.WorkspaceScore(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

// RecalculateScore handles POST /v1/workspaces/:workspaceId/score. Always
// computes a fresh snapshot and invalidates the workspace's cached views.
func RecalculateScore(reporter *reports.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := reporter.Recalculate(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, snap)
	}
}

// GetDashboard handles GET /v1/workspaces/:workspaceId/dashboard.
func GetDashboard(reporter *reports.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := reporter.Dashboard(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// GetMaturity handles GET /v1/workspaces/:workspaceId/maturity.
func GetMaturity(reporter *reports.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		level, err := reporter.Maturity(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, level)
	}
}

// GetFrameworkMaturity handles
// GET /v1/workspaces/:workspaceId/maturity/:framework. 404 until at least one
// check has completed for the framework.
func GetFrameworkMaturity(reporter *reports.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		score, err := reporter.FrameworkMaturity(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c), normalizeFramework(c.Param("framework")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, score)
	}
}

// GetFrameworkGaps handles GET /v1/workspaces/:workspaceId/gaps/:framework.
func GetFrameworkGaps(reporter *reports.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		assessment, err := reporter.FrameworkGaps(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c), normalizeFramework(c.Param("framework")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, assessment)
	}
}

// GetTrends handles GET /v1/workspaces/:workspaceId/trends?days=N.
func GetTrends(reporter *reports.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		days, _ := strconv.Atoi(c.Query("days"))

		analysis, err := reporter.Trends(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c), days)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, analysis)
	}
}

// GetBenchmarks handles GET /v1/workspaces/:workspaceId/benchmarks.
func GetBenchmarks(reporter *reports.Reporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		comparisons, err := reporter.Benchmarks(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"benchmarks": comparisons})
	}
}
