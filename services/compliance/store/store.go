// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store declares the persistence interfaces the compliance engine
// depends on. The postgres subpackage implements them; tests substitute
// hand-written mocks.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
)

// ErrNotFound is returned when a requested check, issue, or document does
// not exist (or is not visible in the given workspace).
var ErrNotFound = errors.New("not found")

// ErrAccessDenied is returned when the user is not a member of the
// workspace. Surfaced to the caller, never retried.
var ErrAccessDenied = errors.New("access denied")

// ValidationError reports a batch submission that referenced documents the
// workspace does not contain. The whole batch is rejected; no checks are
// created.
type ValidationError struct {
	MissingDocumentIDs []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("documents not found in workspace: %s",
		strings.Join(e.MissingDocumentIDs, ", "))
}

// CheckStore persists compliance checks.
type CheckStore interface {
	CreateCheck(ctx context.Context, check *datatypes.ComplianceCheck) error
	GetCheck(ctx context.Context, checkID, workspaceID string) (*datatypes.ComplianceCheck, error)
	// CompleteCheck transitions a check out of processing, setting score,
	// issue count, and completedAt in one write.
	CompleteCheck(ctx context.Context, checkID string, status datatypes.CheckStatus, overallScore *int, issuesFound int, completedAt time.Time) error
	ListChecksByDocument(ctx context.Context, documentID, workspaceID string) ([]datatypes.ComplianceCheck, error)
	ListChecksByBatch(ctx context.Context, batchID, workspaceID string) ([]datatypes.ComplianceCheck, error)
	ListRecentChecks(ctx context.Context, workspaceID string, limit int) ([]datatypes.ComplianceCheck, error)
	// CountDistinctDocumentsChecked counts documents in the workspace with at
	// least one completed check.
	CountDistinctDocumentsChecked(ctx context.Context, workspaceID string) (int, error)
	// ListFrameworksCovered returns the distinct frameworks with at least one
	// completed check in the workspace.
	ListFrameworksCovered(ctx context.Context, workspaceID string) ([]datatypes.Framework, error)
	// FailStaleChecks forces every check stuck in processing since before
	// cutoff into failed with completedAt = now, returning the count.
	FailStaleChecks(ctx context.Context, workspaceID string, cutoff, now time.Time) (int, error)
}

// IssueStore persists compliance issues.
type IssueStore interface {
	CreateIssue(ctx context.Context, issue *datatypes.ComplianceIssue) error
	GetIssue(ctx context.Context, issueID, workspaceID string) (*datatypes.ComplianceIssue, error)
	UpdateIssueStatus(ctx context.Context, issueID, workspaceID string, status datatypes.IssueStatus, assignedTo *string, resolvedAt *time.Time, resolvedBy *string) (*datatypes.ComplianceIssue, error)
	ListIssues(ctx context.Context, workspaceID string, status datatypes.IssueStatus, severity datatypes.Severity, limit int) ([]datatypes.ComplianceIssue, error)
	// ListOpenIssuesByFramework returns open and in_progress issues found by
	// checks for the given framework, feeding gap analysis.
	ListOpenIssuesByFramework(ctx context.Context, workspaceID string, framework datatypes.Framework) ([]datatypes.ComplianceIssue, error)
	// CountOpenBySeverity tallies open and in_progress issues per severity.
	CountOpenBySeverity(ctx context.Context, workspaceID string) (datatypes.SeverityCounts, error)
	// CountBySeverityForCheck tallies the issues a single check produced.
	CountBySeverityForCheck(ctx context.Context, checkID string) (datatypes.SeverityCounts, error)
	CountIssues(ctx context.Context, workspaceID string) (total int, open int, err error)
	CountCriticalAndHighOpen(ctx context.Context, workspaceID string) (int, error)
}

// SnapshotStore persists the append-only workspace score time series.
// Snapshots are immutable: inserts only, no updates or deletes.
type SnapshotStore interface {
	InsertSnapshot(ctx context.Context, snap *datatypes.WorkspaceScoreSnapshot) error
	LatestSnapshot(ctx context.Context, workspaceID string) (*datatypes.WorkspaceScoreSnapshot, error)
	// ListSnapshotsSince returns snapshots calculated at or after since,
	// oldest first.
	ListSnapshotsSince(ctx context.Context, workspaceID string, since time.Time) ([]datatypes.WorkspaceScoreSnapshot, error)
}

// FrameworkScoreStore keeps the incremental per-workspace+framework tally.
type FrameworkScoreStore interface {
	// UpsertFrameworkScore folds one completed check into the running tally.
	UpsertFrameworkScore(ctx context.Context, workspaceID string, framework datatypes.Framework, score int, passed bool, at time.Time) error
	ListFrameworkScores(ctx context.Context, workspaceID string) ([]datatypes.FrameworkScore, error)
	GetFrameworkScore(ctx context.Context, workspaceID string, framework datatypes.Framework) (*datatypes.FrameworkScore, error)
}

// DocumentSummaryStore maintains the persisted per-(document, framework)
// materialized view. Reads filter on expiry so stale rows surface as misses.
type DocumentSummaryStore interface {
	UpsertSummary(ctx context.Context, summary *datatypes.DocumentComplianceSummary) error
	// GetFreshSummary returns the row only when its ExpiresAt is after now;
	// otherwise ErrNotFound.
	GetFreshSummary(ctx context.Context, documentID string, framework datatypes.Framework, now time.Time) (*datatypes.DocumentComplianceSummary, error)
}

// DocumentProvider is the slice of the external document service this engine
// consumes: existence checks, counts, and raw text retrieval.
type DocumentProvider interface {
	GetDocument(ctx context.Context, documentID, workspaceID string) (*datatypes.Document, error)
	GetDocumentText(ctx context.Context, documentID string) (string, error)
	CountDocuments(ctx context.Context, workspaceID string) (int, error)
	// FilterMissing returns the subset of documentIDs that do not exist in
	// the workspace. Used for the batch all-or-nothing precondition.
	FilterMissing(ctx context.Context, workspaceID string, documentIDs []string) ([]string, error)
}

// AccessProvider is the external membership check. Implementations return
// the user's role in the workspace, or ErrAccessDenied.
type AccessProvider interface {
	HasWorkspaceAccess(ctx context.Context, workspaceID, userID string) (string, error)
}

// Store bundles every persistence interface the service wires at startup.
type Store interface {
	CheckStore
	IssueStore
	SnapshotStore
	FrameworkScoreStore
	DocumentSummaryStore
	DocumentProvider
}
