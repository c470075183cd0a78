// Copyright (C) 2026 Vantage Compliance (dev@vantagecompliance.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOllamaClient_Generate verifies the request shape and response parsing
// against a fake Ollama server.
func TestOllamaClient_Generate(t *testing.T) {
	var gotReq ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ollamaGenerateResponse{
			Model:    gotReq.Model,
			Response: `{"issues":[]}`,
			Done:     true,
		})
	}))
	defer server.Close()

	t.Setenv("OLLAMA_BASE_URL", server.URL)
	client, err := NewOllamaClient("llama3.1", TierQuick)
	require.NoError(t, err)

	maxTokens := 500
	out, err := client.Generate(context.Background(), "screen this document", GenerationParams{
		MaxTokens: &maxTokens,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"issues":[]}`, out)
	assert.Equal(t, "llama3.1", gotReq.Model)
	assert.Equal(t, "screen this document", gotReq.Prompt)
	assert.False(t, gotReq.Stream)
	assert.EqualValues(t, 500, gotReq.Options["num_predict"])
	assert.NotEmpty(t, gotReq.System, "the compliance system prompt rides along")
}

// TestOllamaClient_ModelNotFound verifies the pull hint surfaces on a 404.
func TestOllamaClient_ModelNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "model 'missing' not found"})
	}))
	defer server.Close()

	t.Setenv("OLLAMA_BASE_URL", server.URL)
	client, err := NewOllamaClient("missing", TierDeep)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "prompt", GenerationParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama pull missing")
}

// TestNewOllamaClient_RequiresBaseURL verifies construction fails fast
// without a configured endpoint.
func TestNewOllamaClient_RequiresBaseURL(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "")
	_, err := NewOllamaClient("llama3.1", TierQuick)
	assert.Error(t, err)
}
