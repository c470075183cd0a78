// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scoring holds the two scoring algorithms of the engine: the
// per-issue priority scorer and the workspace score calculator.
//
// The two keep separate severity weight tables on purpose. Priority weights
// express urgency (how fast someone should look at a finding); deduction
// weights express damage (how much a finding drags the workspace score
// down). The numbers differ and must not be conflated.
package scoring

import (
	"math"
	"strings"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/frameworks"
)

// urgencyWeights is the base severity weighting for priority computation.
// Distinct from deductionWeights: urgency, not score damage.
var urgencyWeights = map[datatypes.Severity]float64{
	datatypes.SeverityCritical: 40,
	datatypes.SeverityHigh:     30,
	datatypes.SeverityMedium:   20,
	datatypes.SeverityLow:      10,
	datatypes.SeverityInfo:     5,
}

// defaultUrgencyWeight is applied when the severity is missing or unknown.
const defaultUrgencyWeight = 10

// defaultConfidence substitutes for a missing confidence value.
const defaultConfidence = 70

// highPriorityCategories are the curated keywords that add a flat +5 when
// the issue category mentions them.
var highPriorityCategories = []string{
	"encryption",
	"access control",
	"authentication",
	"consent",
	"retention",
	"incident response",
	"data breach",
}

// IndustryRisk classifies the workspace's industry for priority context.
type IndustryRisk string

const (
	IndustryRiskHigh   IndustryRisk = "high"
	IndustryRiskMedium IndustryRisk = "medium"
	IndustryRiskLow    IndustryRisk = "low"
)

// PriorityContext carries the optional workspace context that nudges an
// issue's priority up. The zero value contributes nothing.
type PriorityContext struct {
	IndustryRisk IndustryRisk
	// DocumentType is one of "policy", "contract", "code", or empty.
	DocumentType string
}

// Priority computes the 0-100 urgency score for a single issue.
//
// The algorithm: base severity weight, multiplied by the framework's
// regulatory-impact weighting and a confidence factor clamped to [0.5, 1.0]
// (low-confidence findings are dampened, never suppressed), plus flat
// context adjustments. The result is rounded and clamped to [0, 100].
//
// Priority never fails: missing or unknown inputs fall back to documented
// defaults (severity weight 10, framework weight 1.0, confidence 70).
func Priority(issue datatypes.ComplianceIssue, framework datatypes.Framework, pctx *PriorityContext) int {
	weight, ok := urgencyWeights[issue.Severity]
	if !ok {
		weight = defaultUrgencyWeight
	}

	multiplier := frameworks.Multiplier(framework)

	confidence := issue.Confidence
	if confidence <= 0 {
		confidence = defaultConfidence
	}
	factor := float64(confidence) / 100
	if factor < 0.5 {
		factor = 0.5
	}
	if factor > 1.0 {
		factor = 1.0
	}

	adjustment := contextAdjustment(issue.Category, pctx)

	score := math.Round(weight*multiplier*factor + adjustment)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

func contextAdjustment(category string, pctx *PriorityContext) float64 {
	var adj float64
	if pctx != nil {
		switch pctx.IndustryRisk {
		case IndustryRiskHigh:
			adj += 15
		case IndustryRiskMedium:
			adj += 8
		case IndustryRiskLow:
			adj += 3
		}
		switch pctx.DocumentType {
		case "policy":
			adj += 10
		case "contract":
			adj += 8
		case "code":
			adj += 5
		}
	}

	lower := strings.ToLower(category)
	for _, keyword := range highPriorityCategories {
		if strings.Contains(lower, keyword) {
			adj += 5
			break
		}
	}
	return adj
}
