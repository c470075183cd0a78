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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/store/storetest"
)

// TestScoreFromCounts verifies the deduction arithmetic and the zero floor.
func TestScoreFromCounts(t *testing.T) {
	assert.Equal(t, 100, ScoreFromCounts(datatypes.SeverityCounts{}))

	counts := datatypes.SeverityCounts{Critical: 1, Medium: 2}
	assert.Equal(t, 70, ScoreFromCounts(counts), "100 - (20 + 5 + 5)")

	flooded := datatypes.SeverityCounts{Critical: 10}
	assert.Equal(t, 0, ScoreFromCounts(flooded), "score floors at zero")
}

// TestScoreFromCounts_MonotonicInSeverityCounts verifies the score never
// rises when critical or high counts grow, other counts held fixed.
func TestScoreFromCounts_MonotonicInSeverityCounts(t *testing.T) {
	base := datatypes.SeverityCounts{Medium: 1, Low: 2}
	prev := ScoreFromCounts(base)
	for critical := 1; critical <= 6; critical++ {
		c := base
		c.Critical = critical
		s := ScoreFromCounts(c)
		assert.LessOrEqual(t, s, prev)
		prev = s
	}
}

// TestRiskLevel_Cascade verifies the strict first-match-wins cascade.
func TestRiskLevel_Cascade(t *testing.T) {
	tests := []struct {
		name   string
		score  int
		counts datatypes.SeverityCounts
		want   datatypes.RiskLevel
	}{
		{"low score is critical", 39, datatypes.SeverityCounts{}, datatypes.RiskCritical},
		{"any critical issue overrides a good score", 95, datatypes.SeverityCounts{Critical: 1}, datatypes.RiskCritical},
		{"score below 60 is high", 59, datatypes.SeverityCounts{}, datatypes.RiskHigh},
		{"three high issues force high", 85, datatypes.SeverityCounts{High: 3}, datatypes.RiskHigh},
		{"two high issues do not", 85, datatypes.SeverityCounts{High: 2}, datatypes.RiskLow},
		{"score below 80 is medium", 79, datatypes.SeverityCounts{}, datatypes.RiskMedium},
		{"score below 90 is low", 89, datatypes.SeverityCounts{}, datatypes.RiskLow},
		{"clean high score is minimal", 90, datatypes.SeverityCounts{}, datatypes.RiskMinimal},
		{"boundary 40 is not critical", 40, datatypes.SeverityCounts{}, datatypes.RiskHigh},
		{"boundary 60 is not high", 60, datatypes.SeverityCounts{}, datatypes.RiskMedium},
		{"boundary 80 is not medium", 80, datatypes.SeverityCounts{}, datatypes.RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskLevel(tt.score, tt.counts))
		})
	}
}

// TestRiskLevel_TotalAndExclusive verifies exactly one level is produced for
// any (score, counts) pair by sweeping a representative grid.
func TestRiskLevel_TotalAndExclusive(t *testing.T) {
	known := map[datatypes.RiskLevel]bool{
		datatypes.RiskCritical: true, datatypes.RiskHigh: true,
		datatypes.RiskMedium: true, datatypes.RiskLow: true,
		datatypes.RiskMinimal: true,
	}
	for score := 0; score <= 100; score += 5 {
		for _, counts := range []datatypes.SeverityCounts{
			{}, {Critical: 1}, {High: 3}, {High: 2, Medium: 5}, {Critical: 2, High: 4},
		} {
			level := RiskLevel(score, counts)
			assert.True(t, known[level], "unknown risk level %q for score=%d", level, score)
		}
	}
}

// TestCalculator_Calculate runs the end-to-end aggregation scenario: a
// workspace with 10 documents, 4 checked, and one check yielding 1 critical
// + 2 medium open issues.
func TestCalculator_Calculate(t *testing.T) {
	mem := storetest.New()
	const ws = "ws-1"

	for i := 0; i < 10; i++ {
		mem.AddDocument(datatypes.Document{
			ID:          fmt.Sprintf("doc-%d", i),
			WorkspaceID: ws,
		}, "text")
	}

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	score := 70
	for i := 0; i < 4; i++ {
		completed := now
		mem.AddCheck(datatypes.ComplianceCheck{
			ID:          fmt.Sprintf("chk-%d", i),
			DocumentID:  fmt.Sprintf("doc-%d", i),
			WorkspaceID: ws,
			Framework:   datatypes.FrameworkGDPR,
			Status:      datatypes.CheckCompleted,
			OverallScore: func() *int {
				s := score
				return &s
			}(),
			CreatedAt:   now.Add(-time.Minute),
			CompletedAt: &completed,
		})
	}

	mem.AddIssue(datatypes.ComplianceIssue{
		ID: "iss-1", CheckID: "chk-0", WorkspaceID: ws,
		Severity: datatypes.SeverityCritical, Status: datatypes.IssueOpen,
	})
	mem.AddIssue(datatypes.ComplianceIssue{
		ID: "iss-2", CheckID: "chk-0", WorkspaceID: ws,
		Severity: datatypes.SeverityMedium, Status: datatypes.IssueOpen,
	})
	mem.AddIssue(datatypes.ComplianceIssue{
		ID: "iss-3", CheckID: "chk-0", WorkspaceID: ws,
		Severity: datatypes.SeverityMedium, Status: datatypes.IssueOpen,
	})

	perfCache := cache.New(10, nil)
	perfCache.Set("dashboard:"+ws, "stale", time.Hour)

	calc := NewCalculator(mem, mem, mem, mem, perfCache, nil)
	snap, err := calc.Calculate(context.Background(), ws, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 70, snap.OverallScore, "100 - (20 + 5 + 5)")
	assert.Equal(t, datatypes.RiskCritical, snap.RiskLevel, "criticalCount>0 overrides the score branch")
	assert.Equal(t, 10, snap.TotalDocuments)
	assert.Equal(t, 4, snap.DocumentsChecked)
	assert.Equal(t, 40.0, CoveragePercent(snap.DocumentsChecked, snap.TotalDocuments))
	assert.Equal(t, []datatypes.Framework{datatypes.FrameworkGDPR}, snap.FrameworksCovered)

	// Snapshot was appended.
	stored := mem.Snapshots()
	require.Len(t, stored, 1)
	assert.Equal(t, snap.ID, stored[0].ID)

	// Workspace cache keys were invalidated after persistence.
	_, ok := perfCache.Get("dashboard:" + ws)
	assert.False(t, ok)
}

// TestCalculator_Calculate_EmptyWorkspace verifies a workspace with no
// documents or issues scores a clean 100/minimal.
func TestCalculator_Calculate_EmptyWorkspace(t *testing.T) {
	mem := storetest.New()
	calc := NewCalculator(mem, mem, mem, mem, cache.New(10, nil), nil)

	snap, err := calc.Calculate(context.Background(), "ws-empty", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 100, snap.OverallScore)
	assert.Equal(t, datatypes.RiskMinimal, snap.RiskLevel)
	assert.Equal(t, 0, snap.TotalDocuments)
	assert.Equal(t, 0.0, CoveragePercent(snap.DocumentsChecked, snap.TotalDocuments))
}

// TestCalculator_SnapshotsAreAppendOnly verifies repeated recalculation
// grows the series instead of rewriting it.
func TestCalculator_SnapshotsAreAppendOnly(t *testing.T) {
	mem := storetest.New()
	calc := NewCalculator(mem, mem, mem, mem, cache.New(10, nil), nil)

	for i := 0; i < 3; i++ {
		_, err := calc.Calculate(context.Background(), "ws-1", "user-1")
		require.NoError(t, err)
	}
	assert.Len(t, mem.Snapshots(), 3)
}
