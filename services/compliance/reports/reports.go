// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package reports serves the read-heavy aggregate views: dashboard, trend
// analysis, benchmark comparisons, and the cached maturity and gap reads.
// Every read goes through the performance cache first and repopulates it on
// a miss. Cache keys embed the workspace id so score recomputation can
// invalidate a workspace's views wholesale.
package reports

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/gaps"
	"github.com/vantagecompliance/VantageCore/services/compliance/maturity"
	"github.com/vantagecompliance/VantageCore/services/compliance/scoring"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

const recentCheckLimit = 10

// Reporter assembles cached aggregate views for a workspace.
type Reporter struct {
	store      store.Store
	access     store.AccessProvider
	calculator *scoring.Calculator
	assessor   *maturity.Assessor
	analyzer   *gaps.Analyzer
	cache      *cache.PerformanceCache
	clock      cache.Clock
}

// New wires a reporter. A nil clock falls back to system time.
func New(st store.Store, access store.AccessProvider, calculator *scoring.Calculator,
	assessor *maturity.Assessor, analyzer *gaps.Analyzer,
	perfCache *cache.PerformanceCache, clock cache.Clock) *Reporter {

	if clock == nil {
		clock = cache.SystemClock()
	}
	return &Reporter{
		store:      st,
		access:     access,
		calculator: calculator,
		assessor:   assessor,
		analyzer:   analyzer,
		cache:      perfCache,
		clock:      clock,
	}
}

// WorkspaceScore returns the latest snapshot, recomputing when none exists.
// Cached briefly; recomputation elsewhere invalidates the key.
func (r *Reporter) WorkspaceScore(ctx context.Context, workspaceID, userID string) (*datatypes.WorkspaceScoreSnapshot, error) {
	if _, err := r.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}

	key := "score:" + workspaceID
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*datatypes.WorkspaceScoreSnapshot), nil
	}

	snap, err := r.store.LatestSnapshot(ctx, workspaceID)
	if err == store.ErrNotFound {
		snap, err = r.calculator.Calculate(ctx, workspaceID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load the workspace score: %w", err)
	}
	r.cache.Set(key, snap, cache.TTLWorkspaceScore)
	return snap, nil
}

// Recalculate forces a fresh snapshot, bypassing and invalidating the cache.
func (r *Reporter) Recalculate(ctx context.Context, workspaceID, userID string) (*datatypes.WorkspaceScoreSnapshot, error) {
	if _, err := r.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	return r.calculator.Calculate(ctx, workspaceID, userID)
}

// Dashboard assembles the workspace dashboard aggregate.
func (r *Reporter) Dashboard(ctx context.Context, workspaceID, userID string) (*datatypes.DashboardView, error) {
	if _, err := r.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}

	key := "dashboard:" + workspaceID
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*datatypes.DashboardView), nil
	}

	view := &datatypes.DashboardView{
		WorkspaceID: workspaceID,
		GeneratedAt: r.clock.Now().UTC(),
	}

	snap, err := r.store.LatestSnapshot(ctx, workspaceID)
	switch err {
	case nil:
		view.Snapshot = snap
	case store.ErrNotFound:
		// A never-scored workspace still gets a dashboard.
	default:
		return nil, fmt.Errorf("failed to load the latest snapshot: %w", err)
	}

	if view.FrameworkScores, err = r.store.ListFrameworkScores(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to list framework scores: %w", err)
	}
	if view.RecentChecks, err = r.store.ListRecentChecks(ctx, workspaceID, recentCheckLimit); err != nil {
		return nil, fmt.Errorf("failed to list recent checks: %w", err)
	}
	if view.OpenIssues, err = r.store.CountOpenBySeverity(ctx, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to tally open issues: %w", err)
	}

	r.cache.Set(key, view, cache.TTLDashboard)
	return view, nil
}

// Maturity returns the cached CMMI-style assessment.
func (r *Reporter) Maturity(ctx context.Context, workspaceID, userID string) (*datatypes.MaturityLevel, error) {
	if _, err := r.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}

	key := "maturity:" + workspaceID
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*datatypes.MaturityLevel), nil
	}

	level, err := r.assessor.Assess(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("maturity assessment failed: %w", err)
	}
	r.cache.Set(key, level, cache.TTLDashboard)
	return level, nil
}

// FrameworkMaturity returns the rolling per-framework score built up from
// completed checks. ErrNotFound when no check has ever run for the framework.
func (r *Reporter) FrameworkMaturity(ctx context.Context, workspaceID, userID string, framework datatypes.Framework) (*datatypes.FrameworkScore, error) {
	if _, err := r.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}

	key := fmt.Sprintf("maturity:%s:%s", workspaceID, framework)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*datatypes.FrameworkScore), nil
	}

	score, err := r.store.GetFrameworkScore(ctx, workspaceID, framework)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, score, cache.TTLDashboard)
	return score, nil
}

// FrameworkGaps returns the cached gap assessment for one framework.
func (r *Reporter) FrameworkGaps(ctx context.Context, workspaceID, userID string, framework datatypes.Framework) (*datatypes.GapAssessment, error) {
	if _, err := r.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}

	key := fmt.Sprintf("gaps:%s:%s", workspaceID, framework)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*datatypes.GapAssessment), nil
	}

	assessment, err := r.analyzer.Assess(ctx, workspaceID, framework)
	if err != nil {
		return nil, fmt.Errorf("gap assessment failed: %w", err)
	}
	r.cache.Set(key, assessment, cache.TTLDashboard)

	slog.Debug("gap assessment computed",
		"workspace_id", workspaceID,
		"framework", framework,
		"coverage_pct", assessment.CoveragePercent,
	)
	return assessment, nil
}
