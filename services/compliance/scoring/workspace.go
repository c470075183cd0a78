// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

// Calculator aggregates a workspace's open issues into a weighted score and
// risk level, appends an immutable snapshot, and invalidates the workspace's
// cache keys.
//
// Calculate is a recompute-from-scratch operation, not an incremental
// update. At the issue volumes a workspace carries, correctness wins over
// incremental bookkeeping.
type Calculator struct {
	checks    store.CheckStore
	issues    store.IssueStore
	snapshots store.SnapshotStore
	documents store.DocumentProvider
	cache     *cache.PerformanceCache
	clock     cache.Clock
}

// NewCalculator wires a calculator. A nil clock falls back to system time.
func NewCalculator(checks store.CheckStore, issues store.IssueStore,
	snapshots store.SnapshotStore, documents store.DocumentProvider,
	perfCache *cache.PerformanceCache, clock cache.Clock) *Calculator {

	if clock == nil {
		clock = cache.SystemClock()
	}
	return &Calculator{
		checks:    checks,
		issues:    issues,
		snapshots: snapshots,
		documents: documents,
		cache:     perfCache,
		clock:     clock,
	}
}

// Calculate recomputes the workspace score snapshot and persists it.
//
// Ordering guarantee: the snapshot insert always precedes cache
// invalidation, so a cache read issued after this returns either the fresh
// recompute or a miss, never stale post-invalidation data from this process.
func (c *Calculator) Calculate(ctx context.Context, workspaceID, calculatedBy string) (*datatypes.WorkspaceScoreSnapshot, error) {
	totalDocs, err := c.documents.CountDocuments(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count workspace documents: %w", err)
	}

	checkedDocs, err := c.checks.CountDistinctDocumentsChecked(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count checked documents: %w", err)
	}

	counts, err := c.issues.CountOpenBySeverity(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to tally open issues: %w", err)
	}

	covered, err := c.checks.ListFrameworksCovered(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list covered frameworks: %w", err)
	}

	score := ScoreFromCounts(counts)
	risk := RiskLevel(score, counts)

	snap := &datatypes.WorkspaceScoreSnapshot{
		ID:                uuid.NewString(),
		WorkspaceID:       workspaceID,
		OverallScore:      score,
		DocumentsChecked:  checkedDocs,
		TotalDocuments:    totalDocs,
		IssueCounts:       counts,
		RiskLevel:         risk,
		FrameworksCovered: covered,
		CalculatedAt:      c.clock.Now().UTC(),
		CalculatedBy:      calculatedBy,
	}

	if err := c.snapshots.InsertSnapshot(ctx, snap); err != nil {
		return nil, fmt.Errorf("failed to append the score snapshot: %w", err)
	}

	if c.cache != nil {
		c.cache.Invalidate(workspaceID)
	}

	slog.Info("workspace score recalculated",
		"workspace_id", workspaceID,
		"score", score,
		"risk_level", risk,
		"open_issues", counts.Total(),
	)
	return snap, nil
}

// CoveragePercent is the share of workspace documents with at least one
// completed check, as a percentage. Zero documents means zero coverage.
func CoveragePercent(checked, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(checked) / float64(total) * 100
}

// TrendWindow is the default lookback used by trend-driven consumers.
const TrendWindow = 30 * 24 * time.Hour
