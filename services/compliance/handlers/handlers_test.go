// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
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
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
	"github.com/vantagecompliance/VantageCore/services/compliance/store/storetest"
)

// stubAnalyzer returns a fixed issue list for every document.
type stubAnalyzer struct {
	issues []datatypes.ComplianceIssue
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ string, _ datatypes.Framework) []datatypes.ComplianceIssue {
	out := make([]datatypes.ComplianceIssue, len(s.issues))
	copy(out, s.issues)
	return out
}

type fixture struct {
	mem    *storetest.Mem
	coord  *coordinator.Coordinator
	router *gin.Engine
}

// newFixture wires the full engine against the in-memory store and registers
// the same route shapes the service exposes.
func newFixture(access store.AccessProvider, analyzer coordinator.Analyzer) *fixture {
	gin.SetMode(gin.TestMode)

	mem := storetest.New()
	perfCache := cache.New(100, nil)
	calc := scoring.NewCalculator(mem, mem, mem, mem, perfCache, nil)
	assessor := maturity.NewAssessor(mem, mem, mem, mem, nil)
	gapAnalyzer := gaps.NewAnalyzer(mem, nil)

	if analyzer == nil {
		analyzer = &stubAnalyzer{issues: []datatypes.ComplianceIssue{
			{Severity: datatypes.SeverityMedium, Category: "retention", Title: "No retention schedule", Confidence: 70},
		}}
	}
	coord := coordinator.New(mem, access, analyzer, calc)
	reporter := reports.New(mem, access, calc, assessor, gapAnalyzer, perfCache, nil)

	router := gin.New()
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(middleware.NopAuthProvider{}))
	ws := v1.Group("/workspaces/:workspaceId")
	ws.POST("/checks", RunCheck(coord))
	ws.POST("/checks/batch", RunBatch(coord))
	ws.GET("/checks/:checkId", GetCheck(coord))
	ws.GET("/batches/:batchId", GetBatchStatus(coord))
	ws.GET("/documents/:documentId/checks", ListDocumentChecks(coord))
	ws.GET("/documents/:documentId/summary/:framework", GetDocumentSummary(coord))
	ws.GET("/issues", ListIssues(coord))
	ws.GET("/issues/:issueId", GetIssue(coord))
	ws.PATCH("/issues/:issueId", UpdateIssue(coord))
	ws.GET("/score", GetWorkspaceScore(reporter))
	ws.POST("/score", RecalculateScore(reporter))
	ws.GET("/dashboard", GetDashboard(reporter))
	ws.GET("/maturity", GetMaturity(reporter))
	ws.GET("/maturity/:framework", GetFrameworkMaturity(reporter))
	ws.GET("/gaps/:framework", GetFrameworkGaps(reporter))
	ws.GET("/trends", GetTrends(reporter))
	ws.GET("/benchmarks", GetBenchmarks(reporter))

	return &fixture{mem: mem, coord: coord, router: router}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRunCheckEndpoint(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)
	f.mem.AddDocument(datatypes.Document{ID: "doc-1", WorkspaceID: "ws-1", DocType: "policy"}, "body")

	rec := f.do(http.MethodPost, "/v1/workspaces/ws-1/checks",
		`{"document_id": "doc-1", "framework": "GDPR"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var check datatypes.ComplianceCheck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &check))
	assert.Equal(t, datatypes.CheckCompleted, check.Status)
	assert.Equal(t, datatypes.FrameworkGDPR, check.Framework, "framework is lowercased")
	assert.Equal(t, 1, check.IssuesFound)
	require.NotNil(t, check.OverallScore)
	assert.Equal(t, 95, *check.OverallScore)
	assert.Equal(t, "local-user", check.CreatedBy)
}

func TestRunCheckEndpoint_BadRequest(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)

	rec := f.do(http.MethodPost, "/v1/workspaces/ws-1/checks", `{"framework": "gdpr"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunCheckEndpoint_UnknownDocument(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)

	rec := f.do(http.MethodPost, "/v1/workspaces/ws-1/checks",
		`{"document_id": "ghost", "framework": "gdpr"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunCheckEndpoint_AccessDenied(t *testing.T) {
	f := newFixture(storetest.DenyAll{}, nil)
	f.mem.AddDocument(datatypes.Document{ID: "doc-1", WorkspaceID: "ws-1"}, "body")

	rec := f.do(http.MethodPost, "/v1/workspaces/ws-1/checks",
		`{"document_id": "doc-1", "framework": "gdpr"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRunBatchEndpoint_RejectsUnknownDocuments(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)
	f.mem.AddDocument(datatypes.Document{ID: "doc-1", WorkspaceID: "ws-1"}, "body")

	rec := f.do(http.MethodPost, "/v1/workspaces/ws-1/checks/batch",
		`{"document_ids": ["doc-1", "ghost-1"], "framework": "gdpr"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghost-1")

	// All-or-nothing: the known document got no check either.
	checks, err := f.mem.ListChecksByDocument(context.Background(), "doc-1", "ws-1")
	require.NoError(t, err)
	assert.Empty(t, checks)
}

func TestRunBatchEndpoint_AcceptsAndCompletes(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)
	f.mem.AddDocument(datatypes.Document{ID: "doc-1", WorkspaceID: "ws-1"}, "body")
	f.mem.AddDocument(datatypes.Document{ID: "doc-2", WorkspaceID: "ws-1"}, "body")

	rec := f.do(http.MethodPost, "/v1/workspaces/ws-1/checks/batch",
		`{"document_ids": ["doc-1", "doc-2"], "framework": "soc2"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp struct {
		BatchID string                      `json:"batch_id"`
		Checks  []datatypes.ComplianceCheck `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.BatchID)
	require.Len(t, resp.Checks, 2)

	f.coord.Drain()

	statusRec := f.do(http.MethodGet, "/v1/workspaces/ws-1/batches/"+resp.BatchID, "")
	require.Equal(t, http.StatusOK, statusRec.Code)

	var status datatypes.BatchStatus
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &status))
	assert.Equal(t, 2, status.Total)
	assert.Equal(t, 2, status.Completed)
	assert.Zero(t, status.Processing)
}

func TestGetBatchStatusEndpoint_Unknown(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)

	rec := f.do(http.MethodGet, "/v1/workspaces/ws-1/batches/no-such-batch", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateIssueEndpoint(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)
	f.mem.AddIssue(datatypes.ComplianceIssue{
		ID: "iss-1", CheckID: "chk-1", WorkspaceID: "ws-1",
		Severity: datatypes.SeverityHigh, Title: "Weak passwords",
		Status: datatypes.IssueOpen, IsActive: true,
	})

	rec := f.do(http.MethodPatch, "/v1/workspaces/ws-1/issues/iss-1",
		`{"status": "resolved"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var issue datatypes.ComplianceIssue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &issue))
	assert.Equal(t, datatypes.IssueResolved, issue.Status)
	require.NotNil(t, issue.ResolvedAt)
	require.NotNil(t, issue.ResolvedBy)
	assert.Equal(t, "local-user", *issue.ResolvedBy)
}

func TestUpdateIssueEndpoint_UnknownStatus(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)

	rec := f.do(http.MethodPatch, "/v1/workspaces/ws-1/issues/iss-1",
		`{"status": "wontfix"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListIssuesEndpoint_FilterValidation(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)

	rec := f.do(http.MethodGet, "/v1/workspaces/ws-1/issues?severity=terrible", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, "/v1/workspaces/ws-1/issues?status=open&severity=high", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestScoreAndDashboardEndpoints(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)
	f.mem.AddDocument(datatypes.Document{ID: "doc-1", WorkspaceID: "ws-1"}, "body")

	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/v1/workspaces/ws-1/checks",
			`{"document_id": "doc-1", "framework": "gdpr"}`).Code)

	rec := f.do(http.MethodGet, "/v1/workspaces/ws-1/score", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var snap datatypes.WorkspaceScoreSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "ws-1", snap.WorkspaceID)
	assert.Equal(t, 1, snap.IssueCounts.Medium)

	rec = f.do(http.MethodGet, "/v1/workspaces/ws-1/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "framework_scores")

	rec = f.do(http.MethodPost, "/v1/workspaces/ws-1/score", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDocumentSummaryEndpoint(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)
	f.mem.AddDocument(datatypes.Document{ID: "doc-1", WorkspaceID: "ws-1"}, "body")

	// No check yet: no summary row.
	rec := f.do(http.MethodGet, "/v1/workspaces/ws-1/documents/doc-1/summary/gdpr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/v1/workspaces/ws-1/checks",
			`{"document_id": "doc-1", "framework": "gdpr"}`).Code)

	rec = f.do(http.MethodGet, "/v1/workspaces/ws-1/documents/doc-1/summary/gdpr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var summary datatypes.DocumentComplianceSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 95, summary.Score)
}

func TestFrameworkMaturityEndpoint(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)
	f.mem.AddDocument(datatypes.Document{ID: "doc-1", WorkspaceID: "ws-1"}, "body")

	rec := f.do(http.MethodGet, "/v1/workspaces/ws-1/maturity/gdpr", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no checks yet for the framework")

	require.Equal(t, http.StatusCreated,
		f.do(http.MethodPost, "/v1/workspaces/ws-1/checks",
			`{"document_id": "doc-1", "framework": "gdpr"}`).Code)

	rec = f.do(http.MethodGet, "/v1/workspaces/ws-1/maturity/gdpr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fs datatypes.FrameworkScore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fs))
	assert.Equal(t, 95, fs.Score)
	assert.Equal(t, 1, fs.ChecksTotal)
}

func TestReportEndpoints_Smoke(t *testing.T) {
	f := newFixture(storetest.AllowAll{}, nil)

	for _, path := range []string{
		"/v1/workspaces/ws-1/maturity",
		"/v1/workspaces/ws-1/gaps/gdpr",
		"/v1/workspaces/ws-1/trends",
		"/v1/workspaces/ws-1/benchmarks",
	} {
		rec := f.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestReportEndpoints_AccessDenied(t *testing.T) {
	f := newFixture(storetest.DenyAll{}, nil)

	for _, path := range []string{
		"/v1/workspaces/ws-1/score",
		"/v1/workspaces/ws-1/dashboard",
		"/v1/workspaces/ws-1/issues",
	} {
		rec := f.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}
