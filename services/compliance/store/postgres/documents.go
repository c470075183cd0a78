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

	"github.com/jackc/pgx/v5"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

// DocumentProvider and AccessProvider read the platform's documents and
// workspace_members tables. This engine never writes them.

func (db *DB) GetDocument(ctx context.Context, documentID, workspaceID string) (*datatypes.Document, error) {
	var d datatypes.Document
	err := db.Pool.QueryRow(ctx, `
		SELECT id, workspace_id, name, storage_key, COALESCE(doc_type, '')
		FROM documents
		WHERE id = $1 AND workspace_id = $2
	`, documentID, workspaceID).Scan(&d.ID, &d.WorkspaceID, &d.Name, &d.StorageKey, &d.DocType)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (db *DB) GetDocumentText(ctx context.Context, documentID string) (string, error) {
	var text string
	err := db.Pool.QueryRow(ctx, `
		SELECT extracted_text
		FROM documents
		WHERE id = $1 AND extracted_text IS NOT NULL
	`, documentID).Scan(&text)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrNotFound
	}
	return text, err
}

func (db *DB) CountDocuments(ctx context.Context, workspaceID string) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM documents WHERE workspace_id = $1
	`, workspaceID).Scan(&count)
	return count, err
}

func (db *DB) FilterMissing(ctx context.Context, workspaceID string, documentIDs []string) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT candidate.id
		FROM unnest($2::uuid[]) AS candidate(id)
		LEFT JOIN documents d ON d.id = candidate.id AND d.workspace_id = $1
		WHERE d.id IS NULL
	`, workspaceID, documentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		missing = append(missing, id)
	}
	return missing, rows.Err()
}

// HasWorkspaceAccess implements store.AccessProvider against the platform's
// membership table.
func (db *DB) HasWorkspaceAccess(ctx context.Context, workspaceID, userID string) (string, error) {
	var role string
	err := db.Pool.QueryRow(ctx, `
		SELECT role
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2
	`, workspaceID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", store.ErrAccessDenied
	}
	if err != nil {
		return "", err
	}
	return role, nil
}
