// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package storetest provides an in-memory implementation of store.Store for
// unit tests. It mirrors the postgres adapter's visible behavior (workspace
// scoping, expiry filtering, append-only snapshots) without a database.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

// Mem is an in-memory store.Store. Safe for concurrent use.
type Mem struct {
	mu        sync.Mutex
	checks    map[string]*datatypes.ComplianceCheck
	issues    map[string]*datatypes.ComplianceIssue
	snapshots []datatypes.WorkspaceScoreSnapshot
	fwScores  map[string]*datatypes.FrameworkScore
	summaries map[string]*datatypes.DocumentComplianceSummary
	documents map[string]*datatypes.Document
	texts     map[string]string
}

// New creates an empty in-memory store.
func New() *Mem {
	return &Mem{
		checks:    make(map[string]*datatypes.ComplianceCheck),
		issues:    make(map[string]*datatypes.ComplianceIssue),
		fwScores:  make(map[string]*datatypes.FrameworkScore),
		summaries: make(map[string]*datatypes.DocumentComplianceSummary),
		documents: make(map[string]*datatypes.Document),
		texts:     make(map[string]string),
	}
}

var _ store.Store = (*Mem)(nil)

// AddDocument seeds a document with its extracted text.
func (m *Mem) AddDocument(doc datatypes.Document, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := doc
	m.documents[doc.ID] = &d
	m.texts[doc.ID] = text
}

// DropText removes a document's seeded text so GetDocumentText fails while
// the document itself still resolves.
func (m *Mem) DropText(documentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.texts, documentID)
}

// AddIssue seeds an issue directly, bypassing the coordinator.
func (m *Mem) AddIssue(issue datatypes.ComplianceIssue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := issue
	m.issues[issue.ID] = &i
}

// AddCheck seeds a check directly.
func (m *Mem) AddCheck(check datatypes.ComplianceCheck) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := check
	m.checks[check.ID] = &c
}

// AddSnapshot seeds a snapshot directly.
func (m *Mem) AddSnapshot(snap datatypes.WorkspaceScoreSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snap)
}

// Snapshots returns a copy of all stored snapshots, oldest first.
func (m *Mem) Snapshots() []datatypes.WorkspaceScoreSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]datatypes.WorkspaceScoreSnapshot, len(m.snapshots))
	copy(out, m.snapshots)
	return out
}

// --- CheckStore ---

func (m *Mem) CreateCheck(_ context.Context, check *datatypes.ComplianceCheck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *check
	m.checks[check.ID] = &c
	return nil
}

func (m *Mem) GetCheck(_ context.Context, checkID, workspaceID string) (*datatypes.ComplianceCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checks[checkID]
	if !ok || c.WorkspaceID != workspaceID {
		return nil, store.ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *Mem) CompleteCheck(_ context.Context, checkID string, status datatypes.CheckStatus, overallScore *int, issuesFound int, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.checks[checkID]
	if !ok {
		return store.ErrNotFound
	}
	c.Status = status
	c.OverallScore = overallScore
	c.IssuesFound = issuesFound
	at := completedAt
	c.CompletedAt = &at
	return nil
}

func (m *Mem) ListChecksByDocument(_ context.Context, documentID, workspaceID string) ([]datatypes.ComplianceCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []datatypes.ComplianceCheck
	for _, c := range m.checks {
		if c.DocumentID == documentID && c.WorkspaceID == workspaceID {
			out = append(out, *c)
		}
	}
	sortChecksNewestFirst(out)
	return out, nil
}

func (m *Mem) ListChecksByBatch(_ context.Context, batchID, workspaceID string) ([]datatypes.ComplianceCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []datatypes.ComplianceCheck
	for _, c := range m.checks {
		if c.WorkspaceID == workspaceID && c.BatchID != nil && *c.BatchID == batchID {
			out = append(out, *c)
		}
	}
	sortChecksNewestFirst(out)
	return out, nil
}

func (m *Mem) ListRecentChecks(_ context.Context, workspaceID string, limit int) ([]datatypes.ComplianceCheck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []datatypes.ComplianceCheck
	for _, c := range m.checks {
		if c.WorkspaceID == workspaceID {
			out = append(out, *c)
		}
	}
	sortChecksNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Mem) CountDistinctDocumentsChecked(_ context.Context, workspaceID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]bool)
	for _, c := range m.checks {
		if c.WorkspaceID == workspaceID && c.Status == datatypes.CheckCompleted {
			seen[c.DocumentID] = true
		}
	}
	return len(seen), nil
}

func (m *Mem) ListFrameworksCovered(_ context.Context, workspaceID string) ([]datatypes.Framework, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[datatypes.Framework]bool)
	for _, c := range m.checks {
		if c.WorkspaceID == workspaceID && c.Status == datatypes.CheckCompleted {
			seen[c.Framework] = true
		}
	}
	out := make([]datatypes.Framework, 0, len(seen))
	for fw := range seen {
		out = append(out, fw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (m *Mem) FailStaleChecks(_ context.Context, workspaceID string, cutoff, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.checks {
		if c.WorkspaceID == workspaceID && c.Status == datatypes.CheckProcessing && c.CreatedAt.Before(cutoff) {
			c.Status = datatypes.CheckFailed
			at := now
			c.CompletedAt = &at
			count++
		}
	}
	return count, nil
}

// --- IssueStore ---

func (m *Mem) CreateIssue(_ context.Context, issue *datatypes.ComplianceIssue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := *issue
	m.issues[issue.ID] = &i
	return nil
}

func (m *Mem) GetIssue(_ context.Context, issueID, workspaceID string) (*datatypes.ComplianceIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.issues[issueID]
	if !ok || i.WorkspaceID != workspaceID {
		return nil, store.ErrNotFound
	}
	out := *i
	return &out, nil
}

func (m *Mem) UpdateIssueStatus(_ context.Context, issueID, workspaceID string, status datatypes.IssueStatus, assignedTo *string, resolvedAt *time.Time, resolvedBy *string) (*datatypes.ComplianceIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.issues[issueID]
	if !ok || i.WorkspaceID != workspaceID {
		return nil, store.ErrNotFound
	}
	i.Status = status
	if assignedTo != nil {
		i.AssignedTo = assignedTo
	}
	i.ResolvedAt = resolvedAt
	i.ResolvedBy = resolvedBy
	out := *i
	return &out, nil
}

func (m *Mem) ListIssues(_ context.Context, workspaceID string, status datatypes.IssueStatus, severity datatypes.Severity, limit int) ([]datatypes.ComplianceIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []datatypes.ComplianceIssue
	for _, i := range m.issues {
		if i.WorkspaceID != workspaceID {
			continue
		}
		if status != "" && i.Status != status {
			continue
		}
		if severity != "" && i.Severity != severity {
			continue
		}
		out = append(out, *i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Priority > out[b].Priority })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Mem) ListOpenIssuesByFramework(_ context.Context, workspaceID string, framework datatypes.Framework) ([]datatypes.ComplianceIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []datatypes.ComplianceIssue
	for _, i := range m.issues {
		if i.WorkspaceID != workspaceID || !isOpen(i.Status) {
			continue
		}
		check, ok := m.checks[i.CheckID]
		if !ok || check.Framework != framework {
			continue
		}
		out = append(out, *i)
	}
	return out, nil
}

func (m *Mem) CountOpenBySeverity(_ context.Context, workspaceID string) (datatypes.SeverityCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts datatypes.SeverityCounts
	for _, i := range m.issues {
		if i.WorkspaceID != workspaceID || !isOpen(i.Status) {
			continue
		}
		bump(&counts, i.Severity)
	}
	return counts, nil
}

func (m *Mem) CountBySeverityForCheck(_ context.Context, checkID string) (datatypes.SeverityCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts datatypes.SeverityCounts
	for _, i := range m.issues {
		if i.CheckID == checkID {
			bump(&counts, i.Severity)
		}
	}
	return counts, nil
}

func (m *Mem) CountIssues(_ context.Context, workspaceID string) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total, open := 0, 0
	for _, i := range m.issues {
		if i.WorkspaceID != workspaceID {
			continue
		}
		total++
		if isOpen(i.Status) {
			open++
		}
	}
	return total, open, nil
}

func (m *Mem) CountCriticalAndHighOpen(_ context.Context, workspaceID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, i := range m.issues {
		if i.WorkspaceID != workspaceID || !isOpen(i.Status) {
			continue
		}
		if i.Severity == datatypes.SeverityCritical || i.Severity == datatypes.SeverityHigh {
			count++
		}
	}
	return count, nil
}

// --- SnapshotStore ---

func (m *Mem) InsertSnapshot(_ context.Context, snap *datatypes.WorkspaceScoreSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, *snap)
	return nil
}

func (m *Mem) LatestSnapshot(_ context.Context, workspaceID string) (*datatypes.WorkspaceScoreSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *datatypes.WorkspaceScoreSnapshot
	for idx := range m.snapshots {
		s := &m.snapshots[idx]
		if s.WorkspaceID != workspaceID {
			continue
		}
		if latest == nil || s.CalculatedAt.After(latest.CalculatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	out := *latest
	return &out, nil
}

func (m *Mem) ListSnapshotsSince(_ context.Context, workspaceID string, since time.Time) ([]datatypes.WorkspaceScoreSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []datatypes.WorkspaceScoreSnapshot
	for _, s := range m.snapshots {
		if s.WorkspaceID == workspaceID && !s.CalculatedAt.Before(since) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CalculatedAt.Before(out[j].CalculatedAt) })
	return out, nil
}

// --- FrameworkScoreStore ---

func (m *Mem) UpsertFrameworkScore(_ context.Context, workspaceID string, framework datatypes.Framework, score int, passed bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := workspaceID + "/" + string(framework)
	fs, ok := m.fwScores[key]
	if !ok {
		fs = &datatypes.FrameworkScore{WorkspaceID: workspaceID, Framework: framework}
		m.fwScores[key] = fs
	}
	// Running average over all checks for the pair.
	fs.Score = (fs.Score*fs.ChecksTotal + score) / (fs.ChecksTotal + 1)
	fs.ChecksTotal++
	if passed {
		fs.ChecksPassed++
	} else {
		fs.ChecksFailed++
	}
	fs.LastCheckAt = at
	return nil
}

func (m *Mem) ListFrameworkScores(_ context.Context, workspaceID string) ([]datatypes.FrameworkScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []datatypes.FrameworkScore
	for _, fs := range m.fwScores {
		if fs.WorkspaceID == workspaceID {
			out = append(out, *fs)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Framework < out[j].Framework })
	return out, nil
}

func (m *Mem) GetFrameworkScore(_ context.Context, workspaceID string, framework datatypes.Framework) (*datatypes.FrameworkScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fs, ok := m.fwScores[workspaceID+"/"+string(framework)]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *fs
	return &out, nil
}

// --- DocumentSummaryStore ---

func (m *Mem) UpsertSummary(_ context.Context, summary *datatypes.DocumentComplianceSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := *summary
	m.summaries[summary.DocumentID+"/"+string(summary.Framework)] = &s
	return nil
}

func (m *Mem) GetFreshSummary(_ context.Context, documentID string, framework datatypes.Framework, now time.Time) (*datatypes.DocumentComplianceSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.summaries[documentID+"/"+string(framework)]
	if !ok || !s.ExpiresAt.After(now) {
		return nil, store.ErrNotFound
	}
	out := *s
	return &out, nil
}

// --- DocumentProvider ---

func (m *Mem) GetDocument(_ context.Context, documentID, workspaceID string) (*datatypes.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[documentID]
	if !ok || d.WorkspaceID != workspaceID {
		return nil, store.ErrNotFound
	}
	out := *d
	return &out, nil
}

func (m *Mem) GetDocumentText(_ context.Context, documentID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.texts[documentID]
	if !ok {
		return "", store.ErrNotFound
	}
	return text, nil
}

func (m *Mem) CountDocuments(_ context.Context, workspaceID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, d := range m.documents {
		if d.WorkspaceID == workspaceID {
			count++
		}
	}
	return count, nil
}

func (m *Mem) FilterMissing(_ context.Context, workspaceID string, documentIDs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var missing []string
	for _, id := range documentIDs {
		d, ok := m.documents[id]
		if !ok || d.WorkspaceID != workspaceID {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// --- AccessProvider fakes ---

// AllowAll grants every user the member role in every workspace.
type AllowAll struct{}

func (AllowAll) HasWorkspaceAccess(context.Context, string, string) (string, error) {
	return "member", nil
}

// DenyAll rejects every membership check.
type DenyAll struct{}

func (DenyAll) HasWorkspaceAccess(context.Context, string, string) (string, error) {
	return "", store.ErrAccessDenied
}

// --- helpers ---

func isOpen(s datatypes.IssueStatus) bool {
	return s == datatypes.IssueOpen || s == datatypes.IssueInProgress
}

func bump(c *datatypes.SeverityCounts, s datatypes.Severity) {
	switch s {
	case datatypes.SeverityCritical:
		c.Critical++
	case datatypes.SeverityHigh:
		c.High++
	case datatypes.SeverityMedium:
		c.Medium++
	case datatypes.SeverityLow:
		c.Low++
	case datatypes.SeverityInfo:
		c.Info++
	}
}

func sortChecksNewestFirst(checks []datatypes.ComplianceCheck) {
	sort.Slice(checks, func(i, j int) bool {
		return checks[i].CreatedAt.After(checks[j].CreatedAt)
	})
}
