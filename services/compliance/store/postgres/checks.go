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
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

const checkColumns = `id, document_id, workspace_id, framework, status,
	overall_score, issues_found, batch_id, created_by, created_at, completed_at`

func scanCheck(row pgx.Row) (*datatypes.ComplianceCheck, error) {
	var c datatypes.ComplianceCheck
	err := row.Scan(&c.ID, &c.DocumentID, &c.WorkspaceID, &c.Framework, &c.Status,
		&c.OverallScore, &c.IssuesFound, &c.BatchID, &c.CreatedBy, &c.CreatedAt, &c.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (db *DB) CreateCheck(ctx context.Context, check *datatypes.ComplianceCheck) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO compliance_checks
			(id, document_id, workspace_id, framework, status, batch_id, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, check.ID, check.DocumentID, check.WorkspaceID, check.Framework, check.Status,
		check.BatchID, check.CreatedBy, check.CreatedAt)
	return err
}

func (db *DB) GetCheck(ctx context.Context, checkID, workspaceID string) (*datatypes.ComplianceCheck, error) {
	return scanCheck(db.Pool.QueryRow(ctx, `
		SELECT `+checkColumns+`
		FROM compliance_checks
		WHERE id = $1 AND workspace_id = $2
	`, checkID, workspaceID))
}

func (db *DB) CompleteCheck(ctx context.Context, checkID string, status datatypes.CheckStatus,
	overallScore *int, issuesFound int, completedAt time.Time) error {

	tag, err := db.Pool.Exec(ctx, `
		UPDATE compliance_checks
		SET status = $2, overall_score = $3, issues_found = $4, completed_at = $5
		WHERE id = $1
	`, checkID, status, overallScore, issuesFound, completedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (db *DB) listChecks(ctx context.Context, query string, args ...any) ([]datatypes.ComplianceCheck, error) {
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []datatypes.ComplianceCheck
	for rows.Next() {
		check, err := scanCheck(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *check)
	}
	return out, rows.Err()
}

func (db *DB) ListChecksByDocument(ctx context.Context, documentID, workspaceID string) ([]datatypes.ComplianceCheck, error) {
	return db.listChecks(ctx, `
		SELECT `+checkColumns+`
		FROM compliance_checks
		WHERE document_id = $1 AND workspace_id = $2
		ORDER BY created_at DESC
	`, documentID, workspaceID)
}

func (db *DB) ListChecksByBatch(ctx context.Context, batchID, workspaceID string) ([]datatypes.ComplianceCheck, error) {
	return db.listChecks(ctx, `
		SELECT `+checkColumns+`
		FROM compliance_checks
		WHERE batch_id = $1 AND workspace_id = $2
		ORDER BY created_at DESC
	`, batchID, workspaceID)
}

func (db *DB) ListRecentChecks(ctx context.Context, workspaceID string, limit int) ([]datatypes.ComplianceCheck, error) {
	if limit <= 0 {
		limit = 50
	}
	return db.listChecks(ctx, `
		SELECT `+checkColumns+`
		FROM compliance_checks
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, workspaceID, limit)
}

func (db *DB) CountDistinctDocumentsChecked(ctx context.Context, workspaceID string) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT document_id)
		FROM compliance_checks
		WHERE workspace_id = $1 AND status = 'completed'
	`, workspaceID).Scan(&count)
	return count, err
}

func (db *DB) ListFrameworksCovered(ctx context.Context, workspaceID string) ([]datatypes.Framework, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT framework
		FROM compliance_checks
		WHERE workspace_id = $1 AND status = 'completed'
		ORDER BY framework
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []datatypes.Framework
	for rows.Next() {
		var fw datatypes.Framework
		if err := rows.Scan(&fw); err != nil {
			return nil, err
		}
		out = append(out, fw)
	}
	return out, rows.Err()
}

func (db *DB) FailStaleChecks(ctx context.Context, workspaceID string, cutoff, now time.Time) (int, error) {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE compliance_checks
		SET status = 'failed', completed_at = $3
		WHERE workspace_id = $1 AND status = 'processing' AND created_at < $2
	`, workspaceID, cutoff, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
