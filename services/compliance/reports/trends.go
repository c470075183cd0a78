// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
)

// stableBand is the score delta within which the trend reads as stable.
const stableBand = 3

// industryBenchmarks are static baseline scores per industry. The
// comparison is informational; it carries no regulatory weight.
var industryBenchmarks = []struct {
	industry string
	score    int
}{
	{"Healthcare", 72},
	{"Financial Services", 78},
	{"Technology", 75},
	{"Retail", 70},
	{"Government", 80},
	{"Education", 68},
}

// Trends returns the windowed snapshot series with a direction
// classification. windowDays falls back to 30.
func (r *Reporter) Trends(ctx context.Context, workspaceID, userID string, windowDays int) (*datatypes.TrendAnalysis, error) {
	if _, err := r.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	if windowDays <= 0 {
		windowDays = 30
	}

	key := fmt.Sprintf("trends:%s:%d", workspaceID, windowDays)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*datatypes.TrendAnalysis), nil
	}

	since := r.clock.Now().UTC().Add(-time.Duration(windowDays) * 24 * time.Hour)
	snaps, err := r.store.ListSnapshotsSince(ctx, workspaceID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load the snapshot series: %w", err)
	}

	analysis := &datatypes.TrendAnalysis{
		WorkspaceID: workspaceID,
		WindowDays:  windowDays,
		Direction:   datatypes.TrendStable,
	}
	for _, snap := range snaps {
		analysis.Points = append(analysis.Points, datatypes.TrendPoint{
			Score:        snap.OverallScore,
			RiskLevel:    snap.RiskLevel,
			CalculatedAt: snap.CalculatedAt,
		})
	}
	if len(snaps) >= 2 {
		analysis.Delta = snaps[len(snaps)-1].OverallScore - snaps[0].OverallScore
		switch {
		case analysis.Delta > stableBand:
			analysis.Direction = datatypes.TrendImproving
		case analysis.Delta < -stableBand:
			analysis.Direction = datatypes.TrendDeclining
		}
	}

	r.cache.Set(key, analysis, cache.TTLTrends)
	return analysis, nil
}

// Benchmarks compares the workspace's current score against the static
// industry baselines.
func (r *Reporter) Benchmarks(ctx context.Context, workspaceID, userID string) ([]datatypes.BenchmarkComparison, error) {
	if _, err := r.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}

	key := "benchmarks:" + workspaceID
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]datatypes.BenchmarkComparison), nil
	}

	snap, err := r.WorkspaceScore(ctx, workspaceID, userID)
	if err != nil {
		return nil, err
	}

	out := make([]datatypes.BenchmarkComparison, 0, len(industryBenchmarks))
	for _, bench := range industryBenchmarks {
		delta := snap.OverallScore - bench.score
		out = append(out, datatypes.BenchmarkComparison{
			Industry:       bench.industry,
			BenchmarkScore: bench.score,
			WorkspaceScore: snap.OverallScore,
			Delta:          delta,
			Percentile:     percentileEstimate(delta),
		})
	}

	r.cache.Set(key, out, cache.TTLBenchmarks)
	return out, nil
}

// percentileEstimate is a coarse placement: at the baseline you sit at the
// median, each score point shifts placement by 1.5 points, clamped away from
// the extremes.
func percentileEstimate(delta int) float64 {
	p := 50 + float64(delta)*1.5
	if p < 5 {
		return 5
	}
	if p > 95 {
		return 95
	}
	return p
}
