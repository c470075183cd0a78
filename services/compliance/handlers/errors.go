// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the HTTP endpoints of the compliance service.
// Handlers are thin: they bind and validate the request, resolve the caller
// from the auth middleware, and delegate to the coordinator or reporter.
// Domain errors map onto HTTP status codes in respondError.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

// respondError translates engine errors into JSON error responses.
func respondError(c *gin.Context, err error) {
	var validationErr *store.ValidationError
	switch {
	case errors.Is(err, store.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "access to this workspace is denied"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                "batch references unknown documents",
			"missing_document_ids": validationErr.MissingDocumentIDs,
		})
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// HealthCheck reports liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "compliance-engine"})
}
