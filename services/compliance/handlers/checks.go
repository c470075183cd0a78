// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vantagecompliance/VantageCore/services/compliance/coordinator"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/middleware"
	"github.com/vantagecompliance/VantageCore/services/compliance/observability"
)

type runCheckRequest struct {
	DocumentID string `json:"document_id" binding:"required"`
	Framework  string `json:"framework" binding:"required"`
}

type runBatchRequest struct {
	DocumentIDs []string `json:"document_ids" binding:"required,min=1"`
	Framework   string   `json:"framework" binding:"required"`
}

// normalizeFramework lowercases the requested framework. Unknown frameworks
// are accepted; analysis falls back to the generic catalog.
func normalizeFramework(raw string) datatypes.Framework {
	return datatypes.Framework(strings.ToLower(strings.TrimSpace(raw)))
}

// RunCheck handles POST /v1/workspaces/:workspaceId/checks. The analysis runs
// synchronously; the response carries the finished check.
func RunCheck(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("workspaceId")
		var req runCheckRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "document_id and framework are required"})
			return
		}
		framework := normalizeFramework(req.Framework)

		slog.Info("Received compliance check request",
			"workspace_id", workspaceID, "document_id", req.DocumentID, "framework", framework)

		start := time.Now()
		check, err := coord.RunCheck(c.Request.Context(), req.DocumentID, workspaceID,
			middleware.UserID(c), framework)
		if err != nil {
			respondError(c, err)
			return
		}
		observability.Default().RecordCheck(string(framework), string(check.Status),
			time.Since(start).Seconds())

		c.JSON(http.StatusCreated, check)
	}
}

// RunBatch handles POST /v1/workspaces/:workspaceId/checks/batch. Validation
// is all-or-nothing; accepted batches return immediately with every check in
// processing state.
func RunBatch(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		workspaceID := c.Param("workspaceId")
		var req runBatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "document_ids and framework are required"})
			return
		}
		framework := normalizeFramework(req.Framework)

		slog.Info("Received batch compliance check request",
			"workspace_id", workspaceID, "documents", len(req.DocumentIDs), "framework", framework)

		result, err := coord.RunBatch(c.Request.Context(), req.DocumentIDs, workspaceID,
			middleware.UserID(c), framework)
		if err != nil {
			respondError(c, err)
			return
		}
		observability.Default().RecordBatch(len(req.DocumentIDs))

		c.JSON(http.StatusAccepted, gin.H{
			"batch_id": result.BatchID,
			"checks":   result.Checks,
		})
	}
}

// GetBatchStatus handles GET /v1/workspaces/:workspaceId/batches/:batchId.
func GetBatchStatus(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := coord.GetBatchStatus(c.Request.Context(), c.Param("batchId"),
			c.Param("workspaceId"), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

// GetCheck handles GET /v1/workspaces/:workspaceId/checks/:checkId.
func GetCheck(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		check, err := coord.GetCheck(c.Request.Context(), c.Param("checkId"),
			c.Param("workspaceId"), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, check)
	}
}

// ListDocumentChecks handles
// GET /v1/workspaces/:workspaceId/documents/:documentId/checks.
// Stale processing checks are reaped before the list is read.
func ListDocumentChecks(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks, err := coord.ListDocumentChecks(c.Request.Context(), c.Param("documentId"),
			c.Param("workspaceId"), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"checks": checks, "total": len(checks)})
	}
}

// GetDocumentSummary handles
// GET /v1/workspaces/:workspaceId/documents/:documentId/summary/:framework.
// Returns 404 once the summary's TTL has lapsed.
func GetDocumentSummary(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := coord.GetDocumentSummary(c.Request.Context(), c.Param("documentId"),
			c.Param("workspaceId"), middleware.UserID(c), normalizeFramework(c.Param("framework")))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
