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

const snapshotColumns = `id, workspace_id, overall_score, documents_checked,
	total_documents, critical_count, high_count, medium_count, low_count,
	info_count, risk_level, frameworks_covered, calculated_at, calculated_by`

func scanSnapshot(row pgx.Row) (*datatypes.WorkspaceScoreSnapshot, error) {
	var s datatypes.WorkspaceScoreSnapshot
	var frameworks []string
	err := row.Scan(&s.ID, &s.WorkspaceID, &s.OverallScore, &s.DocumentsChecked,
		&s.TotalDocuments, &s.IssueCounts.Critical, &s.IssueCounts.High,
		&s.IssueCounts.Medium, &s.IssueCounts.Low, &s.IssueCounts.Info,
		&s.RiskLevel, &frameworks, &s.CalculatedAt, &s.CalculatedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	for _, fw := range frameworks {
		s.FrameworksCovered = append(s.FrameworksCovered, datatypes.Framework(fw))
	}
	return &s, nil
}

func (db *DB) InsertSnapshot(ctx context.Context, snap *datatypes.WorkspaceScoreSnapshot) error {
	frameworks := make([]string, 0, len(snap.FrameworksCovered))
	for _, fw := range snap.FrameworksCovered {
		frameworks = append(frameworks, string(fw))
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO workspace_score_snapshots
			(id, workspace_id, overall_score, documents_checked, total_documents,
			 critical_count, high_count, medium_count, low_count, info_count,
			 risk_level, frameworks_covered, calculated_at, calculated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, snap.ID, snap.WorkspaceID, snap.OverallScore, snap.DocumentsChecked,
		snap.TotalDocuments, snap.IssueCounts.Critical, snap.IssueCounts.High,
		snap.IssueCounts.Medium, snap.IssueCounts.Low, snap.IssueCounts.Info,
		snap.RiskLevel, frameworks, snap.CalculatedAt, snap.CalculatedBy)
	return err
}

func (db *DB) LatestSnapshot(ctx context.Context, workspaceID string) (*datatypes.WorkspaceScoreSnapshot, error) {
	return scanSnapshot(db.Pool.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM workspace_score_snapshots
		WHERE workspace_id = $1
		ORDER BY calculated_at DESC
		LIMIT 1
	`, workspaceID))
}

func (db *DB) ListSnapshotsSince(ctx context.Context, workspaceID string, since time.Time) ([]datatypes.WorkspaceScoreSnapshot, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM workspace_score_snapshots
		WHERE workspace_id = $1 AND calculated_at >= $2
		ORDER BY calculated_at ASC
	`, workspaceID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []datatypes.WorkspaceScoreSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

func (db *DB) UpsertFrameworkScore(ctx context.Context, workspaceID string,
	framework datatypes.Framework, score int, passed bool, at time.Time) error {

	passedInc, failedInc := 0, 1
	if passed {
		passedInc, failedInc = 1, 0
	}
	// Running average folded in SQL so concurrent completions stay correct.
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO framework_scores
			(workspace_id, framework, score, checks_passed, checks_failed, checks_total, last_check_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (workspace_id, framework) DO UPDATE SET
			score = (framework_scores.score * framework_scores.checks_total + EXCLUDED.score)
			        / (framework_scores.checks_total + 1),
			checks_passed = framework_scores.checks_passed + $4,
			checks_failed = framework_scores.checks_failed + $5,
			checks_total = framework_scores.checks_total + 1,
			last_check_at = EXCLUDED.last_check_at
	`, workspaceID, framework, score, passedInc, failedInc, at)
	return err
}

func (db *DB) ListFrameworkScores(ctx context.Context, workspaceID string) ([]datatypes.FrameworkScore, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT workspace_id, framework, score, checks_passed, checks_failed, checks_total, last_check_at
		FROM framework_scores
		WHERE workspace_id = $1
		ORDER BY framework
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []datatypes.FrameworkScore
	for rows.Next() {
		var fs datatypes.FrameworkScore
		if err := rows.Scan(&fs.WorkspaceID, &fs.Framework, &fs.Score,
			&fs.ChecksPassed, &fs.ChecksFailed, &fs.ChecksTotal, &fs.LastCheckAt); err != nil {
			return nil, err
		}
		out = append(out, fs)
	}
	return out, rows.Err()
}

func (db *DB) GetFrameworkScore(ctx context.Context, workspaceID string, framework datatypes.Framework) (*datatypes.FrameworkScore, error) {
	var fs datatypes.FrameworkScore
	err := db.Pool.QueryRow(ctx, `
		SELECT workspace_id, framework, score, checks_passed, checks_failed, checks_total, last_check_at
		FROM framework_scores
		WHERE workspace_id = $1 AND framework = $2
	`, workspaceID, framework).Scan(&fs.WorkspaceID, &fs.Framework, &fs.Score,
		&fs.ChecksPassed, &fs.ChecksFailed, &fs.ChecksTotal, &fs.LastCheckAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

func (db *DB) UpsertSummary(ctx context.Context, summary *datatypes.DocumentComplianceSummary) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO document_compliance_summaries
			(document_id, framework, workspace_id, score, risk_level,
			 critical_count, high_count, medium_count, low_count, info_count,
			 check_id, refreshed_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (document_id, framework) DO UPDATE SET
			score = EXCLUDED.score,
			risk_level = EXCLUDED.risk_level,
			critical_count = EXCLUDED.critical_count,
			high_count = EXCLUDED.high_count,
			medium_count = EXCLUDED.medium_count,
			low_count = EXCLUDED.low_count,
			info_count = EXCLUDED.info_count,
			check_id = EXCLUDED.check_id,
			refreshed_at = EXCLUDED.refreshed_at,
			expires_at = EXCLUDED.expires_at
	`, summary.DocumentID, summary.Framework, summary.WorkspaceID, summary.Score,
		summary.RiskLevel, summary.IssueCounts.Critical, summary.IssueCounts.High,
		summary.IssueCounts.Medium, summary.IssueCounts.Low, summary.IssueCounts.Info,
		summary.CheckID, summary.RefreshedAt, summary.ExpiresAt)
	return err
}

func (db *DB) GetFreshSummary(ctx context.Context, documentID string, framework datatypes.Framework, now time.Time) (*datatypes.DocumentComplianceSummary, error) {
	var s datatypes.DocumentComplianceSummary
	err := db.Pool.QueryRow(ctx, `
		SELECT document_id, framework, workspace_id, score, risk_level,
		       critical_count, high_count, medium_count, low_count, info_count,
		       check_id, refreshed_at, expires_at
		FROM document_compliance_summaries
		WHERE document_id = $1 AND framework = $2 AND expires_at > $3
	`, documentID, framework, now).Scan(&s.DocumentID, &s.Framework, &s.WorkspaceID,
		&s.Score, &s.RiskLevel, &s.IssueCounts.Critical, &s.IssueCounts.High,
		&s.IssueCounts.Medium, &s.IssueCounts.Low, &s.IssueCounts.Info,
		&s.CheckID, &s.RefreshedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}
