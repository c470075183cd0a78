// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scoring

import "github.com/vantagecompliance/VantageCore/services/compliance/datatypes"

// deductionWeights express how much each open issue of a given severity
// subtracts from a 100-point score. Shared by the per-check overall score
// and the workspace score so the two stay comparable. Distinct from the
// priority scorer's urgencyWeights.
var deductionWeights = map[datatypes.Severity]int{
	datatypes.SeverityCritical: 20,
	datatypes.SeverityHigh:     10,
	datatypes.SeverityMedium:   5,
	datatypes.SeverityLow:      2,
	datatypes.SeverityInfo:     1,
}

// DeductionWeight returns the score deduction for one issue of the given
// severity. Unknown severities deduct nothing.
func DeductionWeight(s datatypes.Severity) int {
	return deductionWeights[s]
}

// ScoreFromCounts computes max(0, 100 - sum(count x weight)) over the
// severity buckets. Used for both a single check's overall score and the
// workspace aggregate.
func ScoreFromCounts(counts datatypes.SeverityCounts) int {
	deduction := counts.Critical*deductionWeights[datatypes.SeverityCritical] +
		counts.High*deductionWeights[datatypes.SeverityHigh] +
		counts.Medium*deductionWeights[datatypes.SeverityMedium] +
		counts.Low*deductionWeights[datatypes.SeverityLow] +
		counts.Info*deductionWeights[datatypes.SeverityInfo]
	score := 100 - deduction
	if score < 0 {
		return 0
	}
	return score
}

// RiskLevel derives the qualitative risk classification from a score and the
// open severity counts. The cascade is strict and evaluated in order; the
// first matching rule wins, so exactly one level is produced for any input.
func RiskLevel(score int, counts datatypes.SeverityCounts) datatypes.RiskLevel {
	switch {
	case score < 40 || counts.Critical > 0:
		return datatypes.RiskCritical
	case score < 60 || counts.High >= 3:
		return datatypes.RiskHigh
	case score < 80:
		return datatypes.RiskMedium
	case score < 90:
		return datatypes.RiskLow
	default:
		return datatypes.RiskMinimal
	}
}
