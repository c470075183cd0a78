// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gaps

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/frameworks"
	"github.com/vantagecompliance/VantageCore/services/compliance/store/storetest"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

// seedGDPRCheck registers the completed check that open issues hang off;
// the framework of an issue is resolved through its parent check.
func seedGDPRCheck(mem *storetest.Mem) {
	mem.AddCheck(datatypes.ComplianceCheck{
		ID: "chk-1", DocumentID: "doc-1", WorkspaceID: "ws-1",
		Framework: datatypes.FrameworkGDPR, Status: datatypes.CheckCompleted,
	})
}

func gdprIssue(id, category, title string, sev datatypes.Severity) datatypes.ComplianceIssue {
	return datatypes.ComplianceIssue{
		ID: id, CheckID: "chk-1", WorkspaceID: "ws-1",
		Category: category, Title: title,
		Severity: sev, Status: datatypes.IssueOpen,
	}
}

// TestAssess_EmptyWorkspace verifies an issue-free workspace reports zero
// coverage: absence of evidence is reported, never simulated.
func TestAssess_EmptyWorkspace(t *testing.T) {
	mem := storetest.New()
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	a := NewAnalyzer(mem, fixedClock{now})
	got, err := a.Assess(context.Background(), "ws-1", datatypes.FrameworkGDPR)
	require.NoError(t, err)

	assert.Equal(t, 6, got.ControlsTotal, "the GDPR catalog ships six controls")
	assert.Equal(t, 0, got.ControlsCovered)
	assert.Equal(t, 0.0, got.CoveragePercent)
	assert.Len(t, got.Gaps, 6, "every control is a gap")
	assert.Empty(t, got.Strengths)
	assert.Equal(t, now, got.AssessedAt)

	for _, gap := range got.Gaps {
		assert.False(t, gap.Covered)
		assert.Zero(t, gap.MatchedIssues)
		assert.NotEmpty(t, gap.Recommendation)
	}
}

// TestAssess_CoverageAndRanking seeds issues covering some controls and
// verifies the deterministic coverage math and gap ordering.
func TestAssess_CoverageAndRanking(t *testing.T) {
	mem := storetest.New()
	seedGDPRCheck(mem)

	// Matches "consent" by direct category containment.
	mem.AddIssue(gdprIssue("iss-1", "consent handling", "Consent form lacks withdrawal option", datatypes.SeverityMedium))
	// Matches "retention" via the synonym "deletion".
	mem.AddIssue(gdprIssue("iss-2", "data lifecycle", "No deletion procedure for expired records", datatypes.SeverityLow))
	// Critical finding against "breach notification" via the synonym "data breach".
	mem.AddIssue(gdprIssue("iss-3", "incident handling", "Data breach reporting exceeds the 72-hour deadline", datatypes.SeverityCritical))

	a := NewAnalyzer(mem, fixedClock{time.Now()})
	got, err := a.Assess(context.Background(), "ws-1", datatypes.FrameworkGDPR)
	require.NoError(t, err)

	assert.Equal(t, 3, got.ControlsCovered, "consent, retention, breach notification")
	assert.InDelta(t, 50.0, got.CoveragePercent, 0.001)

	// Gaps: the critically flagged control first, then the three uncovered
	// controls. Covered controls without criticals are strengths, not gaps.
	require.Len(t, got.Gaps, 4)
	assert.Equal(t, "GDPR-BR", got.Gaps[0].ControlID)
	assert.True(t, got.Gaps[0].Covered)
	assert.Equal(t, 1, got.Gaps[0].CriticalIssues)
	assert.Equal(t, datatypes.SeverityCritical, got.Gaps[0].Severity)

	for _, gap := range got.Gaps[1:] {
		assert.False(t, gap.Covered)
		assert.Zero(t, gap.CriticalIssues)
	}
	// Uncovered gaps are risk-ranked: the high-risk lawful-basis control
	// outranks the medium-risk ones.
	assert.Equal(t, "GDPR-LB", got.Gaps[1].ControlID)
	assert.Equal(t, datatypes.SeverityHigh, got.Gaps[1].Severity)

	assert.Len(t, got.Strengths, 2, "consent and retention are covered cleanly")
	assert.NotEmpty(t, got.Recommendations)
	assert.LessOrEqual(t, len(got.Recommendations), 5)
}

// TestAssess_ResolvedIssuesDoNotCover verifies only open issues count as
// coverage evidence.
func TestAssess_ResolvedIssuesDoNotCover(t *testing.T) {
	mem := storetest.New()
	seedGDPRCheck(mem)
	resolved := gdprIssue("iss-1", "consent handling", "Old finding", datatypes.SeverityHigh)
	resolved.Status = datatypes.IssueResolved
	mem.AddIssue(resolved)

	a := NewAnalyzer(mem, fixedClock{time.Now()})
	got, err := a.Assess(context.Background(), "ws-1", datatypes.FrameworkGDPR)
	require.NoError(t, err)

	assert.Equal(t, 0, got.ControlsCovered)
}

// TestAssess_UnknownFrameworkUsesFallback verifies the generic catalog backs
// assessments for frameworks without a shipped catalog.
func TestAssess_UnknownFrameworkUsesFallback(t *testing.T) {
	mem := storetest.New()

	a := NewAnalyzer(mem, fixedClock{time.Now()})
	got, err := a.Assess(context.Background(), "ws-1", datatypes.Framework("custom_internal"))
	require.NoError(t, err)

	assert.Equal(t, datatypes.Framework("custom_internal"), got.Framework)
	assert.Equal(t, 3, got.ControlsTotal, "fallback catalog ships three generic controls")
}

// TestIssueMatchesControl exercises direct containment and the synonym table.
func TestIssueMatchesControl(t *testing.T) {
	control := frameworks.Control{ID: "X-1", Category: "access control"}

	direct := datatypes.ComplianceIssue{Category: "access control policy"}
	assert.True(t, issueMatchesControl(direct, control))

	synonym := datatypes.ComplianceIssue{Category: "identity", Title: "Shared accounts violate least privilege"}
	assert.True(t, issueMatchesControl(synonym, control))

	titleOnly := datatypes.ComplianceIssue{Category: "general", Title: "RBAC roles are too broad"}
	assert.True(t, issueMatchesControl(titleOnly, control), "title text participates in matching")

	unrelated := datatypes.ComplianceIssue{Category: "formatting", Title: "Document lacks page numbers"}
	assert.False(t, issueMatchesControl(unrelated, control))
}

// TestEffortFor verifies the category keyword buckets.
func TestEffortFor(t *testing.T) {
	assert.Equal(t, datatypes.EffortHigh, effortFor("encryption"))
	assert.Equal(t, datatypes.EffortHigh, effortFor("access control"))
	assert.Equal(t, datatypes.EffortLow, effortFor("privacy notice"))
	assert.Equal(t, datatypes.EffortLow, effortFor("training"))
	assert.Equal(t, datatypes.EffortMedium, effortFor("breach notification"))
}

// TestRankGaps_CapsAtTen verifies the remediation list never exceeds ten
// entries even when a large catalog is fully uncovered.
func TestRankGaps_CapsAtTen(t *testing.T) {
	var matches []controlMatch
	for i := 0; i < 15; i++ {
		matches = append(matches, controlMatch{
			control: frameworks.Control{
				ID: string(rune('A' + i)), Category: "misc", Risk: frameworks.RiskMedium,
			},
		})
	}
	assert.Len(t, rankGaps(matches), 10)
}
