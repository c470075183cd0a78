// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/coordinator"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/gaps"
	"github.com/vantagecompliance/VantageCore/services/compliance/maturity"
	"github.com/vantagecompliance/VantageCore/services/compliance/middleware"
	"github.com/vantagecompliance/VantageCore/services/compliance/reports"
	"github.com/vantagecompliance/VantageCore/services/compliance/scoring"
	"github.com/vantagecompliance/VantageCore/services/compliance/store/storetest"
)

type noopAnalyzer struct{}

func (noopAnalyzer) Analyze(context.Context, string, datatypes.Framework) []datatypes.ComplianceIssue {
	return nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	mem := storetest.New()
	perfCache := cache.New(100, nil)
	calc := scoring.NewCalculator(mem, mem, mem, mem, perfCache, nil)
	assessor := maturity.NewAssessor(mem, mem, mem, mem, nil)
	gapAnalyzer := gaps.NewAnalyzer(mem, nil)
	coord := coordinator.New(mem, storetest.AllowAll{}, noopAnalyzer{}, calc)
	reporter := reports.New(mem, storetest.AllowAll{}, calc, assessor, gapAnalyzer, perfCache, nil)

	router := gin.New()
	SetupRoutes(router, coord, reporter, middleware.NopAuthProvider{})
	return router
}

func TestSetupRoutes_Health(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestSetupRoutes_Metrics(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSetupRoutes_WorkspaceEndpointsRegistered(t *testing.T) {
	router := newTestRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/v1/workspaces/ws-1/dashboard"},
		{http.MethodGet, "/v1/workspaces/ws-1/score"},
		{http.MethodGet, "/v1/workspaces/ws-1/maturity"},
		{http.MethodGet, "/v1/workspaces/ws-1/gaps/gdpr"},
		{http.MethodGet, "/v1/workspaces/ws-1/trends"},
		{http.MethodGet, "/v1/workspaces/ws-1/benchmarks"},
		{http.MethodGet, "/v1/workspaces/ws-1/issues"},
	}
	for _, p := range paths {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
		assert.NotEqual(t, http.StatusNotFound, rec.Code, "%s %s", p.method, p.path)
	}
}

func TestSetupRoutes_UnknownRoute(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
