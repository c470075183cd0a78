// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package maturity implements the CMMI-style maturity assessment: five
// independently capped sub-metrics summed to a 0-100 score and mapped to a
// 1-5 level with templated guidance text.
package maturity

import (
	"context"
	"fmt"
	"time"

	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/scoring"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

// Sub-score caps. The five caps sum to 100.
const (
	capCoverage   = 25.0
	capDiversity  = 20.0
	capResolution = 25.0
	capQuality    = 15.0
	capTrend      = 15.0
)

// trendLookback is the snapshot window consulted for trend consistency.
const trendLookback = 30 * 24 * time.Hour

// levelDef carries the static portion of a maturity level.
type levelDef struct {
	name        string
	description string
}

// Levels are mapped from the total score by a strict `< threshold` cascade:
// <20 is 1, <40 is 2, <60 is 3, <80 is 4, else 5. A total of exactly 20
// lands in level 2 (inclusive on the upper side of each boundary).
var levelDefs = map[int]levelDef{
	1: {"Initial", "Compliance activities are ad hoc and reactive. No systematic document analysis is in place."},
	2: {"Managed", "Basic compliance checks run on selected documents, but coverage and follow-through are inconsistent."},
	3: {"Defined", "Compliance analysis is an established process across frameworks with tracked remediation."},
	4: {"Quantitatively Managed", "Compliance posture is measured continuously and issue resolution is predictable."},
	5: {"Optimizing", "Compliance processes are self-correcting, with stable scores and proactive gap remediation."},
}

// Assessor computes workspace maturity from checks, issues, and the
// snapshot time series.
type Assessor struct {
	checks    store.CheckStore
	issues    store.IssueStore
	snapshots store.SnapshotStore
	documents store.DocumentProvider
	clock     cache.Clock
}

// NewAssessor wires an assessor. A nil clock falls back to system time.
func NewAssessor(checks store.CheckStore, issues store.IssueStore,
	snapshots store.SnapshotStore, documents store.DocumentProvider,
	clock cache.Clock) *Assessor {

	if clock == nil {
		clock = cache.SystemClock()
	}
	return &Assessor{
		checks:    checks,
		issues:    issues,
		snapshots: snapshots,
		documents: documents,
		clock:     clock,
	}
}

// Assess computes the maturity level for a workspace.
func (a *Assessor) Assess(ctx context.Context, workspaceID string) (*datatypes.MaturityLevel, error) {
	now := a.clock.Now().UTC()

	totalDocs, err := a.documents.CountDocuments(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	checkedDocs, err := a.checks.CountDistinctDocumentsChecked(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count checked documents: %w", err)
	}
	covered, err := a.checks.ListFrameworksCovered(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list covered frameworks: %w", err)
	}
	totalIssues, openIssues, err := a.issues.CountIssues(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count issues: %w", err)
	}
	severeOpen, err := a.issues.CountCriticalAndHighOpen(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count severe open issues: %w", err)
	}
	snaps, err := a.snapshots.ListSnapshotsSince(ctx, workspaceID, now.Add(-trendLookback))
	if err != nil {
		return nil, fmt.Errorf("failed to load the snapshot series: %w", err)
	}

	coveragePct := scoring.CoveragePercent(checkedDocs, totalDocs)

	sub := datatypes.MaturitySubScores{
		Coverage:           capMin(coveragePct/100*capCoverage, capCoverage),
		FrameworkDiversity: capMin(float64(len(covered))*4, capDiversity),
		ResolutionRate:     resolutionScore(totalIssues, openIssues),
		IssueQuality:       qualityScore(severeOpen),
		TrendConsistency:   trendScore(snaps),
	}

	total := sub.Total()
	level := levelFor(total)
	def := levelDefs[level]

	return &datatypes.MaturityLevel{
		Level:           level,
		Name:            def.name,
		Score:           total,
		SubScores:       sub,
		Description:     def.description,
		Characteristics: characteristics(level, coveragePct, len(covered), openIssues),
		NextSteps:       nextSteps(level, coveragePct, len(covered), severeOpen),
		AssessedAt:      now,
	}, nil
}

func resolutionScore(total, open int) float64 {
	if total == 0 {
		return 0
	}
	resolvedPct := float64(total-open) / float64(total) * 100
	return capMin(resolvedPct/100*capResolution, capResolution)
}

func qualityScore(severeOpen int) float64 {
	if severeOpen == 0 {
		return capQuality
	}
	score := capQuality - float64(severeOpen)
	if score < 0 {
		return 0
	}
	return score
}

// trendScore rewards a consistent snapshot history: 15 when the most recent
// three of at least three snapshots are non-decreasing, 8 when history
// exists but wobbles, 5 for a thin history, 0 for none.
func trendScore(snaps []datatypes.WorkspaceScoreSnapshot) float64 {
	switch {
	case len(snaps) >= 3:
		n := len(snaps)
		recent := snaps[n-3:]
		if recent[0].OverallScore <= recent[1].OverallScore &&
			recent[1].OverallScore <= recent[2].OverallScore {
			return capTrend
		}
		return 8
	case len(snaps) >= 1:
		return 5
	default:
		return 0
	}
}

func levelFor(total float64) int {
	switch {
	case total < 20:
		return 1
	case total < 40:
		return 2
	case total < 60:
		return 3
	case total < 80:
		return 4
	default:
		return 5
	}
}

func characteristics(level int, coveragePct float64, frameworkCount, openIssues int) []string {
	out := []string{
		fmt.Sprintf("%.0f%% of workspace documents have at least one completed check", coveragePct),
		fmt.Sprintf("%d regulatory framework(s) actively assessed", frameworkCount),
	}
	if openIssues > 0 {
		out = append(out, fmt.Sprintf("%d open issue(s) awaiting remediation", openIssues))
	}
	if level >= 4 {
		out = append(out, "score history is tracked and trending is consistent")
	}
	return out
}

func nextSteps(level int, coveragePct float64, frameworkCount, severeOpen int) []string {
	var out []string
	if coveragePct < 100 {
		out = append(out, fmt.Sprintf("Raise document coverage from %.0f%% by scheduling checks for unanalyzed documents", coveragePct))
	}
	if frameworkCount < 3 {
		out = append(out, fmt.Sprintf("Broaden assessment beyond %d framework(s) to diversify regulatory coverage", frameworkCount))
	}
	if severeOpen > 0 {
		out = append(out, fmt.Sprintf("Resolve the %d open critical/high issue(s) dragging issue quality", severeOpen))
	}
	if level >= 4 && len(out) == 0 {
		out = append(out, "Maintain cadence: keep snapshots trending upward and remediation timely")
	}
	return out
}

func capMin(v, capVal float64) float64 {
	if v > capVal {
		return capVal
	}
	return v
}
