// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/vantagecompliance/VantageCore/services/compliance/analysis"
	"github.com/vantagecompliance/VantageCore/services/compliance/cache"
	"github.com/vantagecompliance/VantageCore/services/compliance/coordinator"
	"github.com/vantagecompliance/VantageCore/services/compliance/gaps"
	"github.com/vantagecompliance/VantageCore/services/compliance/maturity"
	"github.com/vantagecompliance/VantageCore/services/compliance/middleware"
	"github.com/vantagecompliance/VantageCore/services/compliance/observability"
	"github.com/vantagecompliance/VantageCore/services/compliance/reports"
	"github.com/vantagecompliance/VantageCore/services/compliance/routes"
	"github.com/vantagecompliance/VantageCore/services/compliance/scoring"
	"github.com/vantagecompliance/VantageCore/services/compliance/store/postgres"
	"github.com/vantagecompliance/VantageCore/services/llm"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "vantage-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("compliance-service")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// buildLLMClients returns the quick-screen and deep-analysis clients for the
// configured backend. Both tiers share a backend; they differ by model.
func buildLLMClients() (llm.LLMClient, llm.LLMClient, error) {
	backend := os.Getenv("LLM_BACKEND_TYPE")
	switch backend {
	case "openai":
		slog.Info("Using OpenAI LLM backend")
		quick, err := llm.NewOpenAIClient(os.Getenv("OPENAI_QUICK_MODEL"), llm.TierQuick)
		if err != nil {
			return nil, nil, err
		}
		deep, err := llm.NewOpenAIClient(os.Getenv("OPENAI_DEEP_MODEL"), llm.TierDeep)
		if err != nil {
			return nil, nil, err
		}
		return quick, deep, nil
	case "claude", "anthropic":
		slog.Info("Using Anthropic (Claude) LLM backend")
		quick, err := llm.NewAnthropicClient(os.Getenv("ANTHROPIC_QUICK_MODEL"), llm.TierQuick)
		if err != nil {
			return nil, nil, err
		}
		deep, err := llm.NewAnthropicClient(os.Getenv("ANTHROPIC_DEEP_MODEL"), llm.TierDeep)
		if err != nil {
			return nil, nil, err
		}
		return quick, deep, nil
	case "ollama":
	default:
		slog.Warn("LLM_BACKEND_TYPE not set or invalid, defaulting to ollama")
	}
	slog.Info("Using Ollama LLM backend")
	quick, err := llm.NewOllamaClient(os.Getenv("OLLAMA_QUICK_MODEL"), llm.TierQuick)
	if err != nil {
		return nil, nil, err
	}
	deep, err := llm.NewOllamaClient(os.Getenv("OLLAMA_DEEP_MODEL"), llm.TierDeep)
	if err != nil {
		return nil, nil, err
	}
	return quick, deep, nil
}

func envInt(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
		slog.Warn("ignoring invalid integer environment variable", "name", name, "value", raw)
	}
	return fallback
}

func main() {
	port := os.Getenv("COMPLIANCE_PORT")
	if port == "" {
		port = "12310"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	observability.InitMetrics()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	ctx := context.Background()
	db, err := postgres.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatalf("failed to connect to Postgres: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	quick, deep, err := buildLLMClients()
	if err != nil {
		log.Fatalf("failed to initialize LLM clients: %v", err)
	}

	// One shared limiter covers both model tiers so batch workers cannot
	// overload the backend.
	limiter := rate.NewLimiter(rate.Limit(envInt("LLM_REQUESTS_PER_SECOND", 2)), 1)
	orchestrator := analysis.NewOrchestrator(quick, deep, limiter)

	perfCache := cache.New(envInt("CACHE_CAPACITY", cache.DefaultCapacity), nil)
	calculator := scoring.NewCalculator(db, db, db, db, perfCache, nil)
	assessor := maturity.NewAssessor(db, db, db, db, nil)
	gapAnalyzer := gaps.NewAnalyzer(db, nil)

	coord := coordinator.New(db, db, orchestrator, calculator,
		coordinator.WithWorkers(envInt("ANALYSIS_WORKERS", 4)))
	reporter := reports.New(db, db, calculator, assessor, gapAnalyzer, perfCache, nil)

	router := gin.Default()
	router.Use(otelgin.Middleware("compliance-service"))
	routes.SetupRoutes(router, coord, reporter, middleware.NopAuthProvider{})

	server := &http.Server{Addr: ":" + port, Handler: router}

	go func() {
		slog.Info("Starting the compliance server", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for a shutdown signal, then stop accepting requests and let any
	// in-flight batch analyses finish before exiting.
	stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	<-stop.Done()
	slog.Info("shutdown signal received, draining")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	coord.Drain()
	slog.Info("compliance server stopped")
}
