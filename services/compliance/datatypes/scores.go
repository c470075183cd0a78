// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// RiskLevel is the qualitative classification derived from a workspace score
// and its open severity counts by the calculator's rule cascade.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskMinimal  RiskLevel = "minimal"
)

// SeverityCounts tallies open issues per severity bucket.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// Total sums all buckets.
func (c SeverityCounts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low + c.Info
}

// WorkspaceScoreSnapshot is a point-in-time aggregate of a workspace's
// compliance posture. Snapshots are append-only: every recomputation inserts
// a new row and the series feeds trend analysis. Rows are never updated or
// deleted.
type WorkspaceScoreSnapshot struct {
	ID                string         `json:"id"`
	WorkspaceID       string         `json:"workspace_id"`
	OverallScore      int            `json:"overall_score"`
	DocumentsChecked  int            `json:"documents_checked"`
	TotalDocuments    int            `json:"total_documents"`
	IssueCounts       SeverityCounts `json:"issue_counts"`
	RiskLevel         RiskLevel      `json:"risk_level"`
	FrameworksCovered []Framework    `json:"frameworks_covered"`
	CalculatedAt      time.Time      `json:"calculated_at"`
	CalculatedBy      string         `json:"calculated_by"`
}

// FrameworkScore is the running tally for one workspace+framework pair,
// updated incrementally as checks complete.
type FrameworkScore struct {
	WorkspaceID  string    `json:"workspace_id"`
	Framework    Framework `json:"framework"`
	Score        int       `json:"score"`
	ChecksPassed int       `json:"checks_passed"`
	ChecksFailed int       `json:"checks_failed"`
	ChecksTotal  int       `json:"checks_total"`
	LastCheckAt  time.Time `json:"last_check_at"`
}

// DocumentComplianceSummary is the persisted materialized-view row for one
// (document, framework) pair, upserted after every completed check. Readers
// filter on ExpiresAt > now, so a stale row degrades to a cache miss rather
// than being served silently.
type DocumentComplianceSummary struct {
	DocumentID  string         `json:"document_id"`
	WorkspaceID string         `json:"workspace_id"`
	Framework   Framework      `json:"framework"`
	Score       int            `json:"score"`
	RiskLevel   RiskLevel      `json:"risk_level"`
	IssueCounts SeverityCounts `json:"issue_counts"`
	CheckID     string         `json:"check_id"`
	RefreshedAt time.Time      `json:"refreshed_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// Document is the slice of the external document service's record that this
// engine needs: existence within a workspace and a handle to fetch text.
type Document struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	StorageKey  string `json:"storage_key"`
	// DocType feeds the priority scorer's context adjustment
	// (policy, contract, code, or empty).
	DocType string `json:"doc_type,omitempty"`
}
