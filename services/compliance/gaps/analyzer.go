// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gaps maps a framework's control catalog onto a workspace's
// observed issues, computing per-control coverage and a ranked remediation
// list.
//
// Coverage here is deterministic: a control with zero matched issues is
// reported uncovered. There is no simulated partial coverage; absence of
// evidence is reported as absence.
package gaps

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/frameworks"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

// maxGaps caps the remediation list to keep reports actionable.
const maxGaps = 10

// categorySynonyms is the curated semantic table for control matching. An
// issue counts toward a control when the issue's category or title mentions
// the control category itself or any of its synonyms.
var categorySynonyms = map[string][]string{
	"security":            {"encryption", "access control", "authentication", "firewall", "vulnerability"},
	"encryption":          {"cryptography", "tls", "key management", "unencrypted", "plaintext"},
	"access control":      {"authorization", "authentication", "least privilege", "rbac", "permissions"},
	"consent":             {"opt-in", "opt-out", "parental consent", "authorization from"},
	"retention":           {"deletion", "disposal", "storage limitation", "data lifecycle"},
	"breach notification": {"data breach", "incident notification", "72 hours"},
	"incident response":   {"incident", "response plan", "escalation", "us-cert"},
	"monitoring":          {"logging", "audit trail", "detection", "alerting"},
	"data subject rights": {"access request", "erasure", "portability", "rectification"},
	"vendor management":   {"third party", "business associate", "processor", "supplier"},
	"notice":              {"privacy notice", "privacy policy", "disclosure statement"},
	"data transfer":       {"cross-border", "international transfer", "adequacy"},
	"audit":               {"audit log", "audit trail", "review of activity"},
	"data protection":     {"personal data", "phi", "pii", "cui", "sensitive data"},
	"data storage":        {"cardholder data", "stored data", "storage of"},
}

// highEffortCategories and lowEffortCategories drive the remediation effort
// estimate; anything else is medium.
var highEffortCategories = []string{
	"encryption", "internal controls", "control baseline", "security program",
	"security", "access control", "data protection",
}

var lowEffortCategories = []string{
	"documentation", "notice", "training", "media handling", "directory",
}

// Analyzer computes framework gap assessments.
type Analyzer struct {
	issues store.IssueStore
	clock  cache.Clock
}

// NewAnalyzer wires an analyzer. A nil clock falls back to system time.
func NewAnalyzer(issues store.IssueStore, clock cache.Clock) *Analyzer {
	if clock == nil {
		clock = cache.SystemClock()
	}
	return &Analyzer{issues: issues, clock: clock}
}

// controlMatch is the per-control working state during assessment.
type controlMatch struct {
	control  frameworks.Control
	matched  []datatypes.ComplianceIssue
	critical int
}

// Assess maps the framework's control catalog onto the workspace's open
// issues and returns coverage, ranked gaps, strengths, and recommendations.
func (a *Analyzer) Assess(ctx context.Context, workspaceID string, framework datatypes.Framework) (*datatypes.GapAssessment, error) {
	catalog, err := frameworks.Load(framework)
	if err != nil {
		return nil, fmt.Errorf("failed to load the %s catalog: %w", framework, err)
	}

	issues, err := a.issues.ListOpenIssuesByFramework(ctx, workspaceID, framework)
	if err != nil {
		return nil, fmt.Errorf("failed to list open issues: %w", err)
	}

	matches := make([]controlMatch, 0, len(catalog.Controls))
	covered := 0
	for _, control := range catalog.Controls {
		m := controlMatch{control: control}
		for _, issue := range issues {
			if issueMatchesControl(issue, control) {
				m.matched = append(m.matched, issue)
				if issue.Severity == datatypes.SeverityCritical {
					m.critical++
				}
			}
		}
		if len(m.matched) > 0 {
			covered++
		}
		matches = append(matches, m)
	}

	assessment := &datatypes.GapAssessment{
		WorkspaceID:     workspaceID,
		Framework:       framework,
		ControlsTotal:   len(catalog.Controls),
		ControlsCovered: covered,
		AssessedAt:      a.clock.Now().UTC(),
	}
	if len(catalog.Controls) > 0 {
		assessment.CoveragePercent = float64(covered) / float64(len(catalog.Controls)) * 100
	}

	assessment.Gaps = rankGaps(matches)
	assessment.Strengths = strengths(matches)
	assessment.Recommendations = recommendations(assessment.Gaps)
	return assessment, nil
}

// issueMatchesControl applies category substring containment and the
// synonym table against the issue's category and title.
func issueMatchesControl(issue datatypes.ComplianceIssue, control frameworks.Control) bool {
	haystack := strings.ToLower(issue.Category + " " + issue.Title)
	category := strings.ToLower(control.Category)

	if strings.Contains(haystack, category) {
		return true
	}
	for _, syn := range categorySynonyms[category] {
		if strings.Contains(haystack, syn) {
			return true
		}
	}
	return false
}

// rankGaps turns problem controls into a severity-ranked remediation list:
// critical findings first, then uncovered controls by category risk, then
// covered-but-flagged controls. Capped to maxGaps.
func rankGaps(matches []controlMatch) []datatypes.GapAnalysisItem {
	var items []datatypes.GapAnalysisItem
	for _, m := range matches {
		uncovered := len(m.matched) == 0
		if !uncovered && m.critical == 0 {
			continue
		}
		items = append(items, datatypes.GapAnalysisItem{
			ControlID:      m.control.ID,
			Category:       m.control.Category,
			Description:    m.control.Description,
			Severity:       gapSeverity(m),
			Covered:        !uncovered,
			MatchedIssues:  len(m.matched),
			CriticalIssues: m.critical,
			Recommendation: recommendationFor(m),
			Effort:         effortFor(m.control.Category),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CriticalIssues != items[j].CriticalIssues {
			return items[i].CriticalIssues > items[j].CriticalIssues
		}
		if items[i].Covered != items[j].Covered {
			return !items[i].Covered // uncovered before covered-but-flagged
		}
		return items[i].Severity.Rank() > items[j].Severity.Rank()
	})

	if len(items) > maxGaps {
		items = items[:maxGaps]
	}
	return items
}

// gapSeverity classifies a gap: critical when critical findings exist,
// otherwise by the control category's intrinsic risk.
func gapSeverity(m controlMatch) datatypes.Severity {
	if m.critical > 0 {
		return datatypes.SeverityCritical
	}
	switch m.control.Risk {
	case frameworks.RiskHigh:
		return datatypes.SeverityHigh
	case frameworks.RiskMedium:
		return datatypes.SeverityMedium
	default:
		return datatypes.SeverityLow
	}
}

func recommendationFor(m controlMatch) string {
	if m.critical > 0 {
		return fmt.Sprintf("Remediate the %d critical finding(s) affecting %q (%s) before the next assessment cycle.",
			m.critical, m.control.ID, m.control.Category)
	}
	return fmt.Sprintf("No evidence of %q coverage was found. Document and implement: %s.",
		m.control.Category, m.control.Description)
}

func effortFor(category string) datatypes.GapEffort {
	lower := strings.ToLower(category)
	for _, kw := range highEffortCategories {
		if strings.Contains(lower, kw) {
			return datatypes.EffortHigh
		}
	}
	for _, kw := range lowEffortCategories {
		if strings.Contains(lower, kw) {
			return datatypes.EffortLow
		}
	}
	return datatypes.EffortMedium
}

// strengths lists covered controls with no critical findings.
func strengths(matches []controlMatch) []string {
	var out []string
	for _, m := range matches {
		if len(m.matched) > 0 && m.critical == 0 {
			out = append(out, fmt.Sprintf("%s (%s): %d finding(s) identified and tracked",
				m.control.ID, m.control.Category, len(m.matched)))
		}
	}
	return out
}

// recommendations surfaces the top gap recommendations, deduplicated.
func recommendations(items []datatypes.GapAnalysisItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		if seen[item.Recommendation] {
			continue
		}
		seen[item.Recommendation] = true
		out = append(out, item.Recommendation)
		if len(out) == 5 {
			break
		}
	}
	return out
}
