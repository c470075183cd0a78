// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package middleware provides HTTP middleware for the compliance service.
//
// The auth middleware extracts a bearer token from the Authorization header,
// resolves it to a user id through the configured AuthProvider, and stores
// the id in the Gin context for downstream handlers. Workspace-level
// authorization is a separate concern: handlers pass the user id down to the
// engine, which consults the membership table per workspace.
//
// With NopAuthProvider (the default), every request is authenticated as
// "local-user". That keeps single-tenant and development deployments working
// without any identity infrastructure; production deployments plug in a
// provider that validates tokens against the platform's identity service.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrUnauthorized is returned by AuthProvider implementations when a token
// is missing, expired, or otherwise invalid.
var ErrUnauthorized = errors.New("unauthorized")

// AuthProvider resolves a bearer token to a user id.
type AuthProvider interface {
	Validate(ctx context.Context, token string) (string, error)
}

// NopAuthProvider accepts every request as "local-user".
type NopAuthProvider struct{}

func (NopAuthProvider) Validate(_ context.Context, _ string) (string, error) {
	return "local-user", nil
}

// userIDKey is the Gin context key for the authenticated user id.
// Typed key string kept service-prefixed to avoid collisions.
const userIDKey = "vantage_user_id"

// SetUserID stores the authenticated user id in the Gin context.
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

// UserID retrieves the authenticated user id, or "" when the request
// never passed through AuthMiddleware.
func UserID(c *gin.Context) string {
	if v, exists := c.Get(userIDKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// AuthMiddleware authenticates requests via the provider and aborts with
// 401 on failure.
func AuthMiddleware(provider AuthProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)

		userID, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "unauthorized",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication failed",
			})
			return
		}

		SetUserID(c, userID)
		c.Next()
	}
}

// extractBearerToken parses "Authorization: Bearer <token>". The scheme is
// case-insensitive per RFC 7235. Returns "" when missing or malformed.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
