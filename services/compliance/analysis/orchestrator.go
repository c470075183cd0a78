// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analysis drives the AI inference passes that turn a document's
// text plus a framework's rule set into structured compliance issues.
//
// The protocol is two-pass: a cheap quick screen over a short excerpt with
// the top rules only, then a deep pass with the full rule list when the
// screen finds anything. A clean quick pass short-circuits the deep pass
// entirely. Any model or parse failure degrades to a single fallback issue
// instead of surfacing an error; analysis always produces some signal.
package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/vantagecompliance/VantageCore/services/compliance/datatypes"
	"github.com/vantagecompliance/VantageCore/services/compliance/frameworks"
	"github.com/vantagecompliance/VantageCore/services/llm"
)

var tracer = otel.Tracer("vantage.compliance.analysis")

const (
	quickExcerptChars = 2000
	deepExcerptChars  = 12000
	quickRuleCount    = 5

	quickMaxTokens = 500
	deepMaxTokens  = 2000

	quickDefaultConfidence = 60
	deepDefaultConfidence  = 75
)

// Orchestrator runs the two-pass protocol against a pair of model backends.
type Orchestrator struct {
	quick   llm.LLMClient
	deep    llm.LLMClient
	limiter *rate.Limiter
}

// NewOrchestrator wires an orchestrator. A nil limiter disables throttling.
func NewOrchestrator(quick, deep llm.LLMClient, limiter *rate.Limiter) *Orchestrator {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Orchestrator{quick: quick, deep: deep, limiter: limiter}
}

// Analyze screens the document with the quick model and escalates to the
// deep model when the screen finds anything. The deep result replaces the
// quick result; they are never merged. The returned issues carry severity,
// category, title, description, recommendation, and confidence only; the
// coordinator stamps ids, priority, and ownership.
func (o *Orchestrator) Analyze(ctx context.Context, documentText string, framework datatypes.Framework) []datatypes.ComplianceIssue {
	ctx, span := tracer.Start(ctx, "Orchestrator.Analyze")
	defer span.End()
	span.SetAttributes(attribute.String("compliance.framework", string(framework)))

	catalog, err := frameworks.Load(framework)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Error("failed to load the framework catalog", "framework", framework, "error", err)
		return []datatypes.ComplianceIssue{fallbackIssue(framework)}
	}

	quickIssues, err := o.runPass(ctx, passQuick, documentText, catalog)
	if err != nil {
		span.RecordError(err)
		slog.Warn("quick analysis pass failed, returning the fallback issue",
			"framework", framework, "error", err)
		return []datatypes.ComplianceIssue{fallbackIssue(framework)}
	}
	span.SetAttributes(attribute.Int("compliance.quick_issues", len(quickIssues)))

	// Cost-saving short-circuit: a clean screen skips the deep model.
	if len(quickIssues) == 0 {
		slog.Debug("quick pass found no issues, skipping the deep pass", "framework", framework)
		return nil
	}

	deepIssues, err := o.runPass(ctx, passDeep, documentText, catalog)
	if err != nil {
		span.RecordError(err)
		slog.Warn("deep analysis pass failed, returning the fallback issue",
			"framework", framework, "error", err)
		return []datatypes.ComplianceIssue{fallbackIssue(framework)}
	}
	span.SetAttributes(attribute.Int("compliance.deep_issues", len(deepIssues)))
	return deepIssues
}

type passKind string

const (
	passQuick passKind = "quick"
	passDeep  passKind = "deep"
)

func (o *Orchestrator) runPass(ctx context.Context, kind passKind, documentText string, catalog frameworks.Catalog) ([]datatypes.ComplianceIssue, error) {
	ctx, span := tracer.Start(ctx, fmt.Sprintf("Orchestrator.%sPass", kind))
	defer span.End()

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	var (
		client     llm.LLMClient
		prompt     string
		maxTokens  int
		confidence int
	)
	switch kind {
	case passQuick:
		client = o.quick
		prompt = buildQuickPrompt(catalog, excerpt(documentText, quickExcerptChars))
		maxTokens = quickMaxTokens
		confidence = quickDefaultConfidence
	case passDeep:
		client = o.deep
		prompt = buildDeepPrompt(catalog, excerpt(documentText, deepExcerptChars))
		maxTokens = deepMaxTokens
		confidence = deepDefaultConfidence
	}

	temp := float32(0.1)
	raw, err := client.Generate(ctx, prompt, llm.GenerationParams{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s pass model call failed: %w", kind, err)
	}

	issues, err := parseIssues(raw, confidence)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("%s pass response unparseable: %w", kind, err)
	}
	return issues, nil
}

// excerpt truncates text to at most n characters, cutting on a rune
// boundary.
func excerpt(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}

func buildQuickPrompt(catalog frameworks.Catalog, excerpt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Screen the following document excerpt for %s compliance problems.\n\n", catalog.DisplayName)
	b.WriteString("Key rules:\n")
	for i, rule := range catalog.TopRules(quickRuleCount) {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\nRespond with JSON only: {\"issues\": [{\"severity\": \"critical|high|medium|low|info\", \"category\": \"...\", \"title\": \"...\", \"description\": \"...\"}]}\n")
	b.WriteString("Return an empty issues array if the excerpt raises no concerns.\n\n")
	b.WriteString("Document excerpt:\n")
	b.WriteString(excerpt)
	return b.String()
}

func buildDeepPrompt(catalog frameworks.Catalog, excerpt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perform a detailed %s compliance review of the following document.\n\n", catalog.DisplayName)
	b.WriteString("Rules to check:\n")
	for i, rule := range catalog.Rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\nRespond with JSON only: {\"issues\": [{\"severity\": \"critical|high|medium|low|info\", \"category\": \"...\", \"title\": \"...\", \"description\": \"...\", \"recommendation\": \"...\", \"confidence\": 0-100, \"location\": \"...\"}]}\n")
	b.WriteString("Report each distinct problem once, with a concrete recommendation and your confidence.\n\n")
	b.WriteString("Document:\n")
	b.WriteString(excerpt)
	return b.String()
}

// fallbackIssue is the fixed medium-severity issue produced when a pass
// fails outright. The check still completes with this signal instead of
// surfacing an empty pipeline failure.
func fallbackIssue(framework datatypes.Framework) datatypes.ComplianceIssue {
	name := strings.ToUpper(string(framework))
	if catalog, err := frameworks.Load(framework); err == nil && catalog.DisplayName != "" {
		name = catalog.DisplayName
	}
	return datatypes.ComplianceIssue{
		Severity: datatypes.SeverityMedium,
		Category: "analysis",
		Title:    fmt.Sprintf("Automated %s analysis could not be completed", name),
		Description: fmt.Sprintf("The automated compliance analysis against %s did not produce a usable result. "+
			"The document has not been cleared; treat this as an unverified state.", name),
		Recommendation: "Re-run the compliance check. If the problem persists, have the document reviewed manually.",
		Confidence:     quickDefaultConfidence,
		Status:         datatypes.IssueOpen,
	}
}
