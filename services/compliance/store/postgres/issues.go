// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

var issueColumnNames = []string{
	"id", "check_id", "document_id", "workspace_id", "severity", "category",
	"title", "description", "recommendation", "confidence", "priority", "status",
	"assigned_to", "resolved_at", "resolved_by", "issue_fingerprint", "is_active",
	"first_detected_check_id", "last_confirmed_check_id", "created_at",
}

var issueColumns = strings.Join(issueColumnNames, ", ")

// issueColumnsAliased prefixes every column with a table alias for joins.
func issueColumnsAliased(alias string) string {
	cols := make([]string, len(issueColumnNames))
	for i, name := range issueColumnNames {
		cols[i] = alias + "." + name
	}
	return strings.Join(cols, ", ")
}

func scanIssue(row pgx.Row) (*datatypes.ComplianceIssue, error) {
	var i datatypes.ComplianceIssue
	var fingerprint *string
	err := row.Scan(&i.ID, &i.CheckID, &i.DocumentID, &i.WorkspaceID, &i.Severity,
		&i.Category, &i.Title, &i.Description, &i.Recommendation, &i.Confidence,
		&i.Priority, &i.Status, &i.AssignedTo, &i.ResolvedAt, &i.ResolvedBy,
		&fingerprint, &i.IsActive, &i.FirstDetectedCheckID, &i.LastConfirmedCheckID,
		&i.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if fingerprint != nil {
		i.Fingerprint = *fingerprint
	}
	return &i, nil
}

func (db *DB) CreateIssue(ctx context.Context, issue *datatypes.ComplianceIssue) error {
	var fingerprint *string
	if issue.Fingerprint != "" {
		fingerprint = &issue.Fingerprint
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO compliance_issues
			(id, check_id, document_id, workspace_id, severity, category, title,
			 description, recommendation, confidence, priority, status,
			 issue_fingerprint, is_active, first_detected_check_id,
			 last_confirmed_check_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, issue.ID, issue.CheckID, issue.DocumentID, issue.WorkspaceID, issue.Severity,
		issue.Category, issue.Title, issue.Description, issue.Recommendation,
		issue.Confidence, issue.Priority, issue.Status, fingerprint, issue.IsActive,
		issue.FirstDetectedCheckID, issue.LastConfirmedCheckID, issue.CreatedAt)
	return err
}

func (db *DB) GetIssue(ctx context.Context, issueID, workspaceID string) (*datatypes.ComplianceIssue, error) {
	return scanIssue(db.Pool.QueryRow(ctx, `
		SELECT `+issueColumns+`
		FROM compliance_issues
		WHERE id = $1 AND workspace_id = $2
	`, issueID, workspaceID))
}

func (db *DB) UpdateIssueStatus(ctx context.Context, issueID, workspaceID string,
	status datatypes.IssueStatus, assignedTo *string, resolvedAt *time.Time, resolvedBy *string) (*datatypes.ComplianceIssue, error) {

	return scanIssue(db.Pool.QueryRow(ctx, `
		UPDATE compliance_issues
		SET status = $3,
		    assigned_to = COALESCE($4, assigned_to),
		    resolved_at = $5,
		    resolved_by = $6
		WHERE id = $1 AND workspace_id = $2
		RETURNING `+issueColumns+`
	`, issueID, workspaceID, status, assignedTo, resolvedAt, resolvedBy))
}

func (db *DB) ListIssues(ctx context.Context, workspaceID string,
	status datatypes.IssueStatus, severity datatypes.Severity, limit int) ([]datatypes.ComplianceIssue, error) {

	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT `+issueColumns+`
		FROM compliance_issues
		WHERE workspace_id = $1
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR severity = $3)
		ORDER BY priority DESC, created_at DESC
		LIMIT $4
	`, workspaceID, string(status), string(severity), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIssues(rows)
}

func (db *DB) ListOpenIssuesByFramework(ctx context.Context, workspaceID string, framework datatypes.Framework) ([]datatypes.ComplianceIssue, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+issueColumnsAliased("i")+`
		FROM compliance_issues i
		JOIN compliance_checks c ON c.id = i.check_id
		WHERE i.workspace_id = $1
		  AND i.status IN ('open', 'in_progress')
		  AND c.framework = $2
	`, workspaceID, framework)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIssues(rows)
}

func collectIssues(rows pgx.Rows) ([]datatypes.ComplianceIssue, error) {
	var out []datatypes.ComplianceIssue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *issue)
	}
	return out, rows.Err()
}

func (db *DB) CountOpenBySeverity(ctx context.Context, workspaceID string) (datatypes.SeverityCounts, error) {
	var counts datatypes.SeverityCounts
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE severity = 'critical'),
			COUNT(*) FILTER (WHERE severity = 'high'),
			COUNT(*) FILTER (WHERE severity = 'medium'),
			COUNT(*) FILTER (WHERE severity = 'low'),
			COUNT(*) FILTER (WHERE severity = 'info')
		FROM compliance_issues
		WHERE workspace_id = $1 AND status IN ('open', 'in_progress')
	`, workspaceID).Scan(&counts.Critical, &counts.High, &counts.Medium, &counts.Low, &counts.Info)
	return counts, err
}

func (db *DB) CountBySeverityForCheck(ctx context.Context, checkID string) (datatypes.SeverityCounts, error) {
	var counts datatypes.SeverityCounts
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE severity = 'critical'),
			COUNT(*) FILTER (WHERE severity = 'high'),
			COUNT(*) FILTER (WHERE severity = 'medium'),
			COUNT(*) FILTER (WHERE severity = 'low'),
			COUNT(*) FILTER (WHERE severity = 'info')
		FROM compliance_issues
		WHERE check_id = $1
	`, checkID).Scan(&counts.Critical, &counts.High, &counts.Medium, &counts.Low, &counts.Info)
	return counts, err
}

func (db *DB) CountIssues(ctx context.Context, workspaceID string) (int, int, error) {
	var total, open int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status IN ('open', 'in_progress'))
		FROM compliance_issues
		WHERE workspace_id = $1
	`, workspaceID).Scan(&total, &open)
	return total, open, err
}

func (db *DB) CountCriticalAndHighOpen(ctx context.Context, workspaceID string) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM compliance_issues
		WHERE workspace_id = $1
		  AND status IN ('open', 'in_progress')
		  AND severity IN ('critical', 'high')
	`, workspaceID).Scan(&count)
	return count, err
}
