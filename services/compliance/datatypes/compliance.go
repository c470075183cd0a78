// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the core domain records for the compliance
// analysis engine: checks, issues, score snapshots, and the derived view
// objects served by the dashboard endpoints.
package datatypes

import "time"

// Severity classifies how serious a single compliance finding is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// severityRank orders severities from most to least serious. Used for
// monotonicity checks and gap ranking, never for scoring weights (those are
// component-local, see the scoring package).
var severityRank = map[Severity]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// Rank returns the ordinal position of the severity, higher is more severe.
// Unknown severities rank 0.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Valid reports whether the severity is one of the five known values.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// CheckStatus is the lifecycle state of one analysis run.
type CheckStatus string

const (
	CheckProcessing CheckStatus = "processing"
	CheckCompleted  CheckStatus = "completed"
	CheckFailed     CheckStatus = "failed"
)

// IssueStatus is the workflow state of one finding.
type IssueStatus string

const (
	IssueOpen       IssueStatus = "open"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueDismissed  IssueStatus = "dismissed"
)

// Valid reports whether the status is one of the four known values.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueOpen, IssueInProgress, IssueResolved, IssueDismissed:
		return true
	}
	return false
}

// Framework names a regulatory or standards catalog with its own rule and
// control list. The engine ships catalogs for these thirteen; anything else
// falls back to a generic catalog.
type Framework string

const (
	FrameworkGDPR     Framework = "gdpr"
	FrameworkHIPAA    Framework = "hipaa"
	FrameworkPCIDSS   Framework = "pci_dss"
	FrameworkSOX      Framework = "sox"
	FrameworkSOC2     Framework = "soc2"
	FrameworkISO27001 Framework = "iso_27001"
	FrameworkNISTCSF  Framework = "nist_csf"
	FrameworkCCPA     Framework = "ccpa"
	FrameworkGLBA     Framework = "glba"
	FrameworkFERPA    Framework = "ferpa"
	FrameworkFedRAMP  Framework = "fedramp"
	FrameworkCMMC     Framework = "cmmc"
	FrameworkCOPPA    Framework = "coppa"
)

// AllFrameworks lists every framework the engine ships a catalog for.
func AllFrameworks() []Framework {
	return []Framework{
		FrameworkGDPR, FrameworkHIPAA, FrameworkPCIDSS, FrameworkSOX,
		FrameworkSOC2, FrameworkISO27001, FrameworkNISTCSF, FrameworkCCPA,
		FrameworkGLBA, FrameworkFERPA, FrameworkFedRAMP, FrameworkCMMC,
		FrameworkCOPPA,
	}
}

// Valid reports whether the framework is one of the shipped catalogs.
func (f Framework) Valid() bool {
	for _, known := range AllFrameworks() {
		if f == known {
			return true
		}
	}
	return false
}

// ComplianceCheck identifies one analysis run of one document against one
// framework.
//
// Invariant: CompletedAt is set iff Status is completed or failed. Checks are
// created by the coordinator, mutated only by the coordinator (status, score)
// and the stale-check reaper (forced failure), and never deleted.
type ComplianceCheck struct {
	ID           string      `json:"id"`
	DocumentID   string      `json:"document_id"`
	WorkspaceID  string      `json:"workspace_id"`
	Framework    Framework   `json:"framework"`
	Status       CheckStatus `json:"status"`
	OverallScore *int        `json:"overall_score,omitempty"`
	IssuesFound  int         `json:"issues_found"`
	// BatchID links checks created by one batch submission. Nil for single
	// checks. Batch status is reconstructed by querying this column.
	BatchID     *string    `json:"batch_id,omitempty"`
	CreatedBy   string     `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ComplianceIssue is one finding produced by a check.
//
// Invariant: ResolvedAt/ResolvedBy are set iff Status is resolved or
// dismissed. The fingerprint fields are written by the document service when
// a repeat check reconfirms a known finding; this engine only reads them.
type ComplianceIssue struct {
	ID             string      `json:"id"`
	CheckID        string      `json:"check_id"`
	DocumentID     string      `json:"document_id"`
	WorkspaceID    string      `json:"workspace_id"`
	Severity       Severity    `json:"severity"`
	Category       string      `json:"category"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Recommendation string      `json:"recommendation"`
	Confidence     int         `json:"confidence"`
	Priority       int         `json:"priority"`
	Status         IssueStatus `json:"status"`
	AssignedTo     *string     `json:"assigned_to,omitempty"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty"`
	ResolvedBy     *string     `json:"resolved_by,omitempty"`

	Fingerprint          string  `json:"issue_fingerprint,omitempty"`
	IsActive             bool    `json:"is_active"`
	FirstDetectedCheckID *string `json:"first_detected_check_id,omitempty"`
	LastConfirmedCheckID *string `json:"last_confirmed_check_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
