// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/vantagecompliance/VantageCore/services/compliance/observability"
)

const complianceSystemPrompt = "You are a compliance analyst. You review document text against regulatory rules and respond only with the JSON the user requests. Never include commentary outside the JSON."

type OpenAIClient struct {
	client *openai.Client
	model  string
	tier   Tier
}

// NewOpenAIClient builds a client pinned to one model. The API key comes from
// OPENAI_API_KEY or, when unset, from the container secret mount.
func NewOpenAIClient(model string, tier Tier) (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API key from the secret mount")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("no model configured for tier, defaulting to gpt-4o-mini", "tier", tier)
	}
	slog.Info("Initializing OpenAI client", "model", model, "tier", tier)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
		tier:   tier,
	}, nil
}

// Generate implements the LLMClient interface.
func (o *OpenAIClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	slog.Debug("Generating text via OpenAI", "model", o.model, "tier", o.tier)
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: complianceSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if params.Temperature != nil {
		req.Temperature = *params.Temperature
	}
	if params.MaxTokens != nil {
		req.MaxCompletionTokens = *params.MaxTokens
	}
	if params.TopP != nil {
		req.TopP = *params.TopP
	}
	if len(params.Stop) > 0 {
		req.Stop = params.Stop
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, req)
	observability.Default().RecordLLMCall("openai", time.Since(start).Seconds(), err != nil)
	if err != nil {
		slog.Error("OpenAI API call failed", "error", err, "tier", o.tier)
		return "", fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices or empty content")
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	slog.Debug("Received response from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
