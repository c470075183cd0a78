// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
)

type modelIssue struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Recommendation string `json:"recommendation"`
	Confidence     *int   `json:"confidence"`
	Location       string `json:"location"`
}

type modelResponse struct {
	Issues []modelIssue `json:"issues"`
}

// parseIssues turns a raw model response into accepted issues. The response
// may arrive wrapped in a markdown code fence; fences are stripped before
// JSON parsing. Issues without a valid severity or a non-empty title are
// dropped with a log line, not an error. Missing confidence takes the
// pass-specific default.
func parseIssues(raw string, defaultConfidence int) ([]datatypes.ComplianceIssue, error) {
	cleaned := stripFences(raw)

	var resp modelResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("response is not valid issues JSON: %w", err)
	}

	var out []datatypes.ComplianceIssue
	for _, mi := range resp.Issues {
		severity := datatypes.Severity(strings.ToLower(strings.TrimSpace(mi.Severity)))
		title := strings.TrimSpace(mi.Title)
		if !severity.Valid() || title == "" {
			slog.Debug("dropping malformed model issue", "severity", mi.Severity, "title", mi.Title)
			continue
		}
		confidence := defaultConfidence
		if mi.Confidence != nil {
			confidence = clampInt(*mi.Confidence, 0, 100)
		}
		category := strings.TrimSpace(mi.Category)
		if category == "" {
			category = "general"
		}
		description := strings.TrimSpace(mi.Description)
		if mi.Location != "" {
			description = strings.TrimSpace(description + "\nLocation: " + mi.Location)
		}
		out = append(out, datatypes.ComplianceIssue{
			Severity:       severity,
			Category:       category,
			Title:          title,
			Description:    description,
			Recommendation: strings.TrimSpace(mi.Recommendation),
			Confidence:     confidence,
			Status:         datatypes.IssueOpen,
		})
	}
	return out, nil
}

// stripFences removes a single markdown code fence wrapping, with or without
// a language tag, and any prose the model emitted before the fence.
func stripFences(raw string) string {
	trimmed := strings.TrimSpace(raw)

	start := strings.Index(trimmed, "```")
	if start < 0 {
		return trimmed
	}
	rest := trimmed[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		// Drop the fence line itself (possibly "```json").
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "" || isFenceTag(firstLine) {
			rest = rest[nl+1:]
		}
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func isFenceTag(s string) bool {
	switch strings.ToLower(s) {
	case "json", "javascript", "txt", "text":
		return true
	}
	return false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
