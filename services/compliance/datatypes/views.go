// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// Derived view objects. None of these are persisted; they are computed on
// demand from checks, issues, and snapshots, and cached in the process-local
// performance cache.

// MaturitySubScores breaks the CMMI-style assessment into its five
// independently capped components. Caps: coverage 25, diversity 20,
// resolution 25, quality 15, trend 15.
type MaturitySubScores struct {
	Coverage           float64 `json:"coverage"`
	FrameworkDiversity float64 `json:"framework_diversity"`
	ResolutionRate     float64 `json:"resolution_rate"`
	IssueQuality       float64 `json:"issue_quality"`
	TrendConsistency   float64 `json:"trend_consistency"`
}

// Total sums the five sub-scores into the 0-100 maturity score.
func (m MaturitySubScores) Total() float64 {
	return m.Coverage + m.FrameworkDiversity + m.ResolutionRate +
		m.IssueQuality + m.TrendConsistency
}

// MaturityLevel is the 1-5 CMMI-style classification of a workspace's
// compliance process rigor.
type MaturityLevel struct {
	Level           int               `json:"level"`
	Name            string            `json:"name"`
	Score           float64           `json:"score"`
	SubScores       MaturitySubScores `json:"sub_scores"`
	Description     string            `json:"description"`
	Characteristics []string          `json:"characteristics"`
	NextSteps       []string          `json:"next_steps"`
	AssessedAt      time.Time         `json:"assessed_at"`
}

// GapEffort estimates remediation effort for one gap.
type GapEffort string

const (
	EffortLow    GapEffort = "low"
	EffortMedium GapEffort = "medium"
	EffortHigh   GapEffort = "high"
)

// GapAnalysisItem is one uncovered or problematic framework control.
type GapAnalysisItem struct {
	ControlID      string    `json:"control_id"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Severity       Severity  `json:"severity"`
	Covered        bool      `json:"covered"`
	MatchedIssues  int       `json:"matched_issues"`
	CriticalIssues int       `json:"critical_issues"`
	Recommendation string    `json:"recommendation"`
	Effort         GapEffort `json:"effort"`
}

// GapAssessment is the full gap-analysis result for one workspace+framework.
type GapAssessment struct {
	WorkspaceID     string            `json:"workspace_id"`
	Framework       Framework         `json:"framework"`
	CoveragePercent float64           `json:"coverage_percent"`
	ControlsTotal   int               `json:"controls_total"`
	ControlsCovered int               `json:"controls_covered"`
	Gaps            []GapAnalysisItem `json:"gaps"`
	Strengths       []string          `json:"strengths"`
	Recommendations []string          `json:"recommendations"`
	AssessedAt      time.Time         `json:"assessed_at"`
}

// BatchStatus summarizes the checks created by one batch submission.
type BatchStatus struct {
	BatchID    string            `json:"batch_id"`
	Total      int               `json:"total"`
	Completed  int               `json:"completed"`
	Processing int               `json:"processing"`
	Failed     int               `json:"failed"`
	Checks     []ComplianceCheck `json:"checks"`
}

// TrendDirection classifies how the snapshot series is moving.
type TrendDirection string

const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// TrendPoint is one snapshot projected into the trend series.
type TrendPoint struct {
	Score        int       `json:"score"`
	RiskLevel    RiskLevel `json:"risk_level"`
	CalculatedAt time.Time `json:"calculated_at"`
}

// TrendAnalysis is the windowed view over the snapshot time series.
type TrendAnalysis struct {
	WorkspaceID string         `json:"workspace_id"`
	WindowDays  int            `json:"window_days"`
	Points      []TrendPoint   `json:"points"`
	Direction   TrendDirection `json:"direction"`
	Delta       int            `json:"delta"`
}

// BenchmarkComparison compares the workspace's current score against a
// static industry baseline.
type BenchmarkComparison struct {
	Industry       string  `json:"industry"`
	BenchmarkScore int     `json:"benchmark_score"`
	WorkspaceScore int     `json:"workspace_score"`
	Delta          int     `json:"delta"`
	Percentile     float64 `json:"percentile"`
}

// DashboardView is the cached aggregate served to the workspace dashboard.
type DashboardView struct {
	WorkspaceID     string                  `json:"workspace_id"`
	Snapshot        *WorkspaceScoreSnapshot `json:"snapshot,omitempty"`
	FrameworkScores []FrameworkScore        `json:"framework_scores"`
	RecentChecks    []ComplianceCheck       `json:"recent_checks"`
	OpenIssues      SeverityCounts          `json:"open_issues"`
	GeneratedAt     time.Time               `json:"generated_at"`
}
