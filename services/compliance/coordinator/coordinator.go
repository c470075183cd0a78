// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package coordinator owns the lifecycle of compliance checks: creation,
// analysis dispatch, issue persistence with priority stamping, status
// transitions, and the downstream refresh of framework tallies, the
// per-document summary row, and the workspace score.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/observability"
	"github.com/vantagecompliance/VantageCore/services/compliance/scoring"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

var tracer = otel.Tracer("vantage.compliance.coordinator")

const (
	// summaryTTL bounds how long a DocumentComplianceSummary row is served
	// before readers treat it as a miss.
	summaryTTL = time.Hour

	// passThreshold is the check score at or above which the check counts as
	// passed in the framework tally.
	passThreshold = 70

	// staleAfter is the reaper cutoff: checks stuck in processing longer
	// than this are forced to failed.
	staleAfter = 10 * time.Minute

	// defaultBatchWorkers bounds concurrent analyses dispatched by a batch.
	defaultBatchWorkers = 4
)

// Analyzer is the slice of the analysis orchestrator the coordinator calls.
type Analyzer interface {
	Analyze(ctx context.Context, documentText string, framework datatypes.Framework) []datatypes.ComplianceIssue
}

// Recalculator is the slice of the workspace score calculator the
// coordinator triggers after each completed check.
type Recalculator interface {
	Calculate(ctx context.Context, workspaceID, calculatedBy string) (*datatypes.WorkspaceScoreSnapshot, error)
}

// Coordinator drives check lifecycles end to end.
type Coordinator struct {
	store        store.Store
	access       store.AccessProvider
	analyzer     Analyzer
	recalculator Recalculator
	clock        cache.Clock
	workers      int
	priorityCtx  *scoring.PriorityContext
	inFlight     sync.WaitGroup
}

// Option tweaks coordinator construction.
type Option func(*Coordinator)

// WithWorkers bounds the batch worker pool.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithClock injects a test clock.
func WithClock(clock cache.Clock) Option {
	return func(c *Coordinator) { c.clock = clock }
}

// WithIndustryRisk sets the workspace industry risk fed to the priority
// scorer.
func WithIndustryRisk(risk scoring.IndustryRisk) Option {
	return func(c *Coordinator) {
		c.priorityCtx = &scoring.PriorityContext{IndustryRisk: risk}
	}
}

// New wires a coordinator.
func New(st store.Store, access store.AccessProvider, analyzer Analyzer,
	recalculator Recalculator, opts ...Option) *Coordinator {

	c := &Coordinator{
		store:        st,
		access:       access,
		analyzer:     analyzer,
		recalculator: recalculator,
		clock:        cache.SystemClock(),
		workers:      defaultBatchWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunCheck executes the single-check flow synchronously: validate access and
// document, create the check in processing, analyze, persist prioritized
// issues, complete the check, and refresh the downstream aggregates.
//
// Analysis-time failures never propagate to the caller: the check lands in
// failed (no score) and the error is logged.
func (c *Coordinator) RunCheck(ctx context.Context, documentID, workspaceID, userID string, framework datatypes.Framework) (*datatypes.ComplianceCheck, error) {
	ctx, span := tracer.Start(ctx, "Coordinator.RunCheck")
	defer span.End()
	span.SetAttributes(
		attribute.String("compliance.document_id", documentID),
		attribute.String("compliance.framework", string(framework)),
	)

	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	doc, err := c.store.GetDocument(ctx, documentID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("document lookup failed: %w", err)
	}

	check, err := c.createCheck(ctx, doc, workspaceID, userID, framework, nil)
	if err != nil {
		return nil, err
	}

	c.analyze(ctx, check, doc, userID)
	return c.store.GetCheck(ctx, check.ID, workspaceID)
}

// createCheck persists a new processing check, optionally tied to a batch.
func (c *Coordinator) createCheck(ctx context.Context, doc *datatypes.Document,
	workspaceID, userID string, framework datatypes.Framework, batchID *string) (*datatypes.ComplianceCheck, error) {

	check := &datatypes.ComplianceCheck{
		ID:          uuid.NewString(),
		DocumentID:  doc.ID,
		WorkspaceID: workspaceID,
		Framework:   framework,
		Status:      datatypes.CheckProcessing,
		BatchID:     batchID,
		CreatedBy:   userID,
		CreatedAt:   c.clock.Now().UTC(),
	}
	if err := c.store.CreateCheck(ctx, check); err != nil {
		return nil, fmt.Errorf("failed to create the check record: %w", err)
	}
	return check, nil
}

// analyze runs the orchestrator for one created check and lands the check in
// completed or failed. Never returns an error; a failed analysis must not
// corrupt workspace aggregates or abort sibling batch work.
func (c *Coordinator) analyze(ctx context.Context, check *datatypes.ComplianceCheck, doc *datatypes.Document, userID string) {
	text, err := c.store.GetDocumentText(ctx, doc.ID)
	if err != nil {
		slog.Error("failed to fetch document text, failing the check",
			"check_id", check.ID, "document_id", doc.ID, "error", err)
		c.failCheck(ctx, check.ID)
		return
	}

	issues := c.analyzer.Analyze(ctx, text, check.Framework)

	var counts datatypes.SeverityCounts
	now := c.clock.Now().UTC()
	for i := range issues {
		issue := issues[i]
		issue.ID = uuid.NewString()
		issue.CheckID = check.ID
		issue.DocumentID = doc.ID
		issue.WorkspaceID = check.WorkspaceID
		issue.Priority = scoring.Priority(issue, check.Framework, c.priorityContextFor(doc))
		issue.Status = datatypes.IssueOpen
		issue.IsActive = true
		issue.CreatedAt = now
		if err := c.store.CreateIssue(ctx, &issue); err != nil {
			slog.Error("failed to persist an issue, failing the check",
				"check_id", check.ID, "error", err)
			c.failCheck(ctx, check.ID)
			return
		}
		bumpCounts(&counts, issue.Severity)
	}

	metrics := observability.Default()
	metrics.RecordIssues(string(datatypes.SeverityCritical), counts.Critical)
	metrics.RecordIssues(string(datatypes.SeverityHigh), counts.High)
	metrics.RecordIssues(string(datatypes.SeverityMedium), counts.Medium)
	metrics.RecordIssues(string(datatypes.SeverityLow), counts.Low)
	metrics.RecordIssues(string(datatypes.SeverityInfo), counts.Info)

	score := scoring.ScoreFromCounts(counts)
	completedAt := c.clock.Now().UTC()
	if err := c.store.CompleteCheck(ctx, check.ID, datatypes.CheckCompleted, &score, counts.Total(), completedAt); err != nil {
		slog.Error("failed to complete the check", "check_id", check.ID, "error", err)
		return
	}
	slog.Info("compliance check completed",
		"check_id", check.ID,
		"document_id", doc.ID,
		"framework", check.Framework,
		"score", score,
		"issues", counts.Total(),
	)

	c.refreshAggregates(ctx, check, doc, score, counts, completedAt, userID)
}

// refreshAggregates folds one completed check into the framework tally, the
// per-document summary row, and the workspace score snapshot. Failures here
// are logged, not propagated; the check itself already completed.
func (c *Coordinator) refreshAggregates(ctx context.Context, check *datatypes.ComplianceCheck,
	doc *datatypes.Document, score int, counts datatypes.SeverityCounts, at time.Time, userID string) {

	if err := c.store.UpsertFrameworkScore(ctx, check.WorkspaceID, check.Framework, score, score >= passThreshold, at); err != nil {
		slog.Error("failed to update the framework tally", "check_id", check.ID, "error", err)
	}

	summary := &datatypes.DocumentComplianceSummary{
		DocumentID:  doc.ID,
		WorkspaceID: check.WorkspaceID,
		Framework:   check.Framework,
		Score:       score,
		RiskLevel:   scoring.RiskLevel(score, counts),
		IssueCounts: counts,
		CheckID:     check.ID,
		RefreshedAt: at,
		ExpiresAt:   at.Add(summaryTTL),
	}
	if err := c.store.UpsertSummary(ctx, summary); err != nil {
		slog.Error("failed to refresh the document summary", "check_id", check.ID, "error", err)
	}

	if _, err := c.recalculator.Calculate(ctx, check.WorkspaceID, userID); err != nil {
		slog.Error("failed to recalculate the workspace score", "workspace_id", check.WorkspaceID, "error", err)
	}
}

func (c *Coordinator) failCheck(ctx context.Context, checkID string) {
	if err := c.store.CompleteCheck(ctx, checkID, datatypes.CheckFailed, nil, 0, c.clock.Now().UTC()); err != nil {
		slog.Error("failed to mark the check failed", "check_id", checkID, "error", err)
	}
}

func (c *Coordinator) priorityContextFor(doc *datatypes.Document) *scoring.PriorityContext {
	if c.priorityCtx == nil && doc.DocType == "" {
		return nil
	}
	pctx := scoring.PriorityContext{DocumentType: doc.DocType}
	if c.priorityCtx != nil {
		pctx.IndustryRisk = c.priorityCtx.IndustryRisk
	}
	return &pctx
}

// ListDocumentChecks returns a document's check history newest first,
// opportunistically reaping stale processing checks beforehand.
func (c *Coordinator) ListDocumentChecks(ctx context.Context, documentID, workspaceID, userID string) ([]datatypes.ComplianceCheck, error) {
	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	if _, err := c.store.GetDocument(ctx, documentID, workspaceID); err != nil {
		return nil, fmt.Errorf("document lookup failed: %w", err)
	}

	c.ReapStale(ctx, workspaceID)
	return c.store.ListChecksByDocument(ctx, documentID, workspaceID)
}

// ReapStale forces checks stuck in processing past the timeout into failed.
// Errors are logged; reaping is best-effort cleanup.
func (c *Coordinator) ReapStale(ctx context.Context, workspaceID string) int {
	now := c.clock.Now().UTC()
	count, err := c.store.FailStaleChecks(ctx, workspaceID, now.Add(-staleAfter), now)
	if err != nil {
		slog.Error("failed to reap stale checks", "workspace_id", workspaceID, "error", err)
		return 0
	}
	if count > 0 {
		slog.Warn("reaped stale processing checks", "workspace_id", workspaceID, "count", count)
	}
	return count
}

func bumpCounts(c *datatypes.SeverityCounts, s datatypes.Severity) {
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
