// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the compliance
// engine: checks run, issues detected, LLM call latency and failures, and
// performance-cache effectiveness.
//
// All recorder methods are safe on a nil receiver, so instrumented packages
// can call observability.Default().RecordX unconditionally; before
// InitMetrics runs (tests, CLI tools) the calls are no-ops.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "vantage"

const complianceSubsystem = "compliance"

// EngineMetrics holds the Prometheus collectors for the compliance engine.
type EngineMetrics struct {
	// ChecksTotal counts finished compliance checks.
	// Labels: framework, status (completed, failed)
	ChecksTotal *prometheus.CounterVec

	// CheckDurationSeconds measures end-to-end single-check latency,
	// including both AI passes.
	// Labels: framework
	CheckDurationSeconds *prometheus.HistogramVec

	// IssuesDetectedTotal counts issues persisted by completed checks.
	// Labels: severity
	IssuesDetectedTotal *prometheus.CounterVec

	// BatchDocumentsTotal counts documents submitted through batch checks.
	BatchDocumentsTotal prometheus.Counter

	// LLMRequestsTotal counts model calls by backend and outcome.
	// Labels: backend (openai, ollama, anthropic), status (success, error)
	LLMRequestsTotal *prometheus.CounterVec

	// LLMRequestDurationSeconds measures model call latency.
	// Labels: backend
	LLMRequestDurationSeconds *prometheus.HistogramVec

	// CacheHitsTotal / CacheMissesTotal / CacheEvictionsTotal track the
	// performance cache.
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	CacheEvictionsTotal prometheus.Counter

	// CacheEntries is the current number of live cache entries.
	CacheEntries prometheus.Gauge
}

var (
	defaultMetrics *EngineMetrics
	initOnce       sync.Once
)

// Default returns the process-wide metrics instance, or nil before
// InitMetrics has run.
func Default() *EngineMetrics {
	return defaultMetrics
}

// InitMetrics registers all collectors with the default Prometheus registry.
// Call once at startup; repeated calls return the same instance.
func InitMetrics() *EngineMetrics {
	initOnce.Do(func() {
		defaultMetrics = &EngineMetrics{
			ChecksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: complianceSubsystem,
					Name:      "checks_total",
					Help:      "Total compliance checks finished, by framework and status",
				},
				[]string{"framework", "status"},
			),

			CheckDurationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: complianceSubsystem,
					Name:      "check_duration_seconds",
					Help:      "End-to-end duration of a single compliance check",
					Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
				},
				[]string{"framework"},
			),

			IssuesDetectedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: complianceSubsystem,
					Name:      "issues_detected_total",
					Help:      "Total issues persisted by completed checks, by severity",
				},
				[]string{"severity"},
			),

			BatchDocumentsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: complianceSubsystem,
					Name:      "batch_documents_total",
					Help:      "Total documents submitted through batch checks",
				},
			),

			LLMRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: "llm",
					Name:      "requests_total",
					Help:      "Total model calls by backend and outcome",
				},
				[]string{"backend", "status"},
			),

			LLMRequestDurationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: "llm",
					Name:      "request_duration_seconds",
					Help:      "Model call latency by backend",
					Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
				},
				[]string{"backend"},
			),

			CacheHitsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: "cache",
					Name:      "hits_total",
					Help:      "Performance cache hits",
				},
			),

			CacheMissesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: "cache",
					Name:      "misses_total",
					Help:      "Performance cache misses, including expired entries",
				},
			),

			CacheEvictionsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: "cache",
					Name:      "evictions_total",
					Help:      "Entries evicted to stay under capacity",
				},
			),

			CacheEntries: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: "cache",
					Name:      "entries",
					Help:      "Current live performance cache entries",
				},
			),
		}
	})
	return defaultMetrics
}

// RecordCheck records a finished compliance check.
func (m *EngineMetrics) RecordCheck(framework, status string, seconds float64) {
	if m == nil {
		return
	}
	m.ChecksTotal.WithLabelValues(framework, status).Inc()
	m.CheckDurationSeconds.WithLabelValues(framework).Observe(seconds)
}

// RecordIssues adds detected issue counts for one severity.
func (m *EngineMetrics) RecordIssues(severity string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.IssuesDetectedTotal.WithLabelValues(severity).Add(float64(count))
}

// RecordBatch records a batch submission of n documents.
func (m *EngineMetrics) RecordBatch(n int) {
	if m == nil {
		return
	}
	m.BatchDocumentsTotal.Add(float64(n))
}

// RecordLLMCall records one model call.
func (m *EngineMetrics) RecordLLMCall(backend string, seconds float64, failed bool) {
	if m == nil {
		return
	}
	status := "success"
	if failed {
		status = "error"
	}
	m.LLMRequestsTotal.WithLabelValues(backend, status).Inc()
	m.LLMRequestDurationSeconds.WithLabelValues(backend).Observe(seconds)
}

// RecordCacheHit / RecordCacheMiss / RecordCacheEviction track cache traffic.
func (m *EngineMetrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.CacheHitsTotal.Inc()
}

func (m *EngineMetrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMissesTotal.Inc()
}

func (m *EngineMetrics) RecordCacheEviction() {
	if m == nil {
		return
	}
	m.CacheEvictionsTotal.Inc()
}

// SetCacheEntries reports the current entry count.
func (m *EngineMetrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}
