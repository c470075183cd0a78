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

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/store"
)

// BatchResult is returned to the batch caller immediately after dispatch,
// before any individual analysis finishes.
type BatchResult struct {
	BatchID string                      `json:"batch_id"`
	Checks  []datatypes.ComplianceCheck `json:"checks"`
}

// RunBatch validates every document id up front (all-or-nothing: one missing
// id rejects the whole batch with a ValidationError and creates no checks),
// creates one processing check per document stamped with a shared batch id,
// and dispatches the analyses to a bounded worker pool. The call returns as
// soon as the checks exist; callers poll GetBatchStatus for completion.
func (c *Coordinator) RunBatch(ctx context.Context, documentIDs []string, workspaceID, userID string, framework datatypes.Framework) (*BatchResult, error) {
	ctx, span := tracer.Start(ctx, "Coordinator.RunBatch")
	defer span.End()

	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}
	if len(documentIDs) == 0 {
		return nil, &store.ValidationError{MissingDocumentIDs: nil}
	}

	missing, err := c.store.FilterMissing(ctx, workspaceID, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to validate batch documents: %w", err)
	}
	if len(missing) > 0 {
		return nil, &store.ValidationError{MissingDocumentIDs: missing}
	}

	batchID := uuid.NewString()
	result := &BatchResult{BatchID: batchID}

	type job struct {
		check *datatypes.ComplianceCheck
		doc   *datatypes.Document
	}
	var jobs []job
	for _, documentID := range documentIDs {
		doc, err := c.store.GetDocument(ctx, documentID, workspaceID)
		if err != nil {
			// Validated moments ago; a disappearing document still rejects
			// the remainder cleanly.
			return nil, fmt.Errorf("document lookup failed mid-batch: %w", err)
		}
		check, err := c.createCheck(ctx, doc, workspaceID, userID, framework, &batchID)
		if err != nil {
			return nil, err
		}
		result.Checks = append(result.Checks, *check)
		jobs = append(jobs, job{check: check, doc: doc})
	}

	slog.Info("batch dispatched",
		"batch_id", batchID,
		"workspace_id", workspaceID,
		"framework", framework,
		"documents", len(jobs),
	)

	// Analyses outlive the batch request; detach from its cancellation but
	// keep trace linkage.
	bgCtx := context.WithoutCancel(ctx)
	sem := semaphore.NewWeighted(int64(c.workers))
	for _, j := range jobs {
		j := j
		c.inFlight.Add(1)
		go func() {
			defer c.inFlight.Done()
			if err := sem.Acquire(bgCtx, 1); err != nil {
				slog.Error("batch worker acquisition failed", "check_id", j.check.ID, "error", err)
				c.failCheck(bgCtx, j.check.ID)
				return
			}
			defer sem.Release(1)
			c.analyze(bgCtx, j.check, j.doc, userID)
		}()
	}

	return result, nil
}

// GetBatchStatus reconstructs a batch's progress from the checks carrying its
// batch id. Stale processing checks are reaped first so a dead batch
// eventually reads as failed rather than processing forever.
func (c *Coordinator) GetBatchStatus(ctx context.Context, batchID, workspaceID, userID string) (*datatypes.BatchStatus, error) {
	if _, err := c.access.HasWorkspaceAccess(ctx, workspaceID, userID); err != nil {
		return nil, fmt.Errorf("workspace access check failed: %w", err)
	}

	c.ReapStale(ctx, workspaceID)

	checks, err := c.store.ListChecksByBatch(ctx, batchID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch checks: %w", err)
	}
	if len(checks) == 0 {
		return nil, fmt.Errorf("batch %s: %w", batchID, store.ErrNotFound)
	}

	status := &datatypes.BatchStatus{
		BatchID: batchID,
		Total:   len(checks),
		Checks:  checks,
	}
	for _, check := range checks {
		switch check.Status {
		case datatypes.CheckCompleted:
			status.Completed++
		case datatypes.CheckFailed:
			status.Failed++
		default:
			status.Processing++
		}
	}
	return status, nil
}

// Drain blocks until every dispatched batch analysis has finished. Called on
// shutdown so in-flight checks land in a terminal state instead of being
// abandoned to the reaper.
func (c *Coordinator) Drain() {
	c.inFlight.Wait()
}
