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
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vantagecompliance/VantageCore/services/compliance/coordinator"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/middleware"
)

type updateIssueRequest struct {
	Status     string  `json:"status" binding:"required"`
	AssignedTo *string `json:"assigned_to"`
}

// ListIssues handles GET /v1/workspaces/:workspaceId/issues with optional
// status, severity, and limit query filters.
func ListIssues(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := datatypes.IssueStatus(strings.ToLower(c.Query("status")))
		if status != "" && !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status filter"})
			return
		}
		severity := datatypes.Severity(strings.ToLower(c.Query("severity")))
		if severity != "" && !severity.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity filter"})
			return
		}
		limit, _ := strconv.Atoi(c.Query("limit"))

		issues, err := coord.ListIssues(c.Request.Context(), c.Param("workspaceId"),
			middleware.UserID(c), status, severity, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"issues": issues, "total": len(issues)})
	}
}

// GetIssue handles GET /v1/workspaces/:workspaceId/issues/:issueId.
func GetIssue(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		issue, err := coord.GetIssue(c.Request.Context(), c.Param("issueId"),
			c.Param("workspaceId"), middleware.UserID(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, issue)
	}
}

// UpdateIssue handles PATCH /v1/workspaces/:workspaceId/issues/:issueId.
// Resolution timestamps are stamped server-side; the workspace score and its
// cached views refresh as a side effect.
func UpdateIssue(coord *coordinator.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateIssueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		status := datatypes.IssueStatus(strings.ToLower(req.Status))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "status must be one of open, in_progress, resolved, dismissed",
			})
			return
		}

		issue, err := coord.UpdateIssueStatus(c.Request.Context(), c.Param("issueId"),
			c.Param("workspaceId"), middleware.UserID(c), status, req.AssignedTo)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, issue)
	}
}
