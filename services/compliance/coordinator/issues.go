// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
)

// UpdateIssueStatus transitions one issue's workflow state. Moving into
// resolved or dismissed stamps resolvedAt/resolvedBy; moving back out clears
// them. The workspace score is recomputed afterwards, which also invalidates
// the workspace's cache keys.
func (c *Coordinator) UpdateIssueStatus(ctx context.Context, issueID, workspaceID, userID string,
	status datatypes.IssueStatus, assignedTo *string) (*datatypes.ComplianceIssue, error) {

	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid issue status %q", status)
	}

	var (
		resolvedAt *time.Time
		resolvedBy *string
	)
	if status == datatypes.IssueResolved || status == datatypes.IssueDismissed {
		now := c.clock.Now().UTC()
		resolvedAt = &now
		resolvedBy = &userID
	}

	issue, err := c.store.UpdateIssueStatus(ctx, issueID, workspaceID, status, assignedTo, resolvedAt, resolvedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to update the issue: %w", err)
	}

	// Open counts changed; the aggregates must follow.
	if _, err := c.recalculator.Calculate(ctx, workspaceID, userID); err != nil {
		slog.Error("failed to recalculate after an issue update",
			"workspace_id", workspaceID, "issue_id", issueID, "error", err)
	}
	return issue, nil
}

// GetIssue returns one issue scoped to the workspace.
func (c *Coordinator) GetIssue(ctx context.Context, issueID, workspaceID, userID string) (*datatypes.ComplianceIssue, error) {
	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	return c.store.GetIssue(ctx, issueID, workspaceID)
}

// ListIssues returns workspace issues, optionally filtered by status and
// severity, highest priority first.
func (c *Coordinator) ListIssues(ctx context.Context, workspaceID, userID string,
	status datatypes.IssueStatus, severity datatypes.Severity, limit int) ([]datatypes.ComplianceIssue, error) {

	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	return c.store.ListIssues(ctx, workspaceID, status, severity, limit)
}

// GetCheck returns one check scoped to the workspace.
func (c *Coordinator) GetCheck(ctx context.Context, checkID, workspaceID, userID string) (*datatypes.ComplianceCheck, error) {
	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	return c.store.GetCheck(ctx, checkID, workspaceID)
}

// GetDocumentSummary serves the persisted per-(document, framework) summary
// row, honoring its expiry.
func (c *Coordinator) GetDocumentSummary(ctx context.Context, documentID, workspaceID, userID string, framework datatypes.Framework) (*datatypes.DocumentComplianceSummary, error) {
	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	if _, err := c.store.GetDocument(ctx, documentID, workspaceID); err != nil {
		return nil, fmt.Errorf("document lookup failed: %w", err)
	}
	return c.store.GetFreshSummary(ctx, documentID, framework, c.clock.Now().UTC())
}
