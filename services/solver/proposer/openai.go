// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package proposer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/quorumstep/services/solver/domain"
)

// OpenAIConfig configures the OpenAI-compatible chat backend.
type OpenAIConfig struct {
	// Model is the chat model name (default: "gpt-4o-mini").
	Model string

	// Temperature controls sampling randomness. Proposals are meant to be
	// independent samples, so a non-zero temperature is the useful default.
	Temperature float32

	// MaxTokens caps the completion length. Degenerate repetition loops
	// are cut off here and then red-flagged by the length check.
	MaxTokens int

	// BaseURL overrides the API endpoint for OpenAI-compatible servers
	// (Ollama, vLLM). Empty uses the public OpenAI endpoint.
	BaseURL string
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   512,
	}
}

// OpenAIProposer produces candidate transitions from an OpenAI-compatible
// chat completion API.
//
// Thread Safety: Safe for concurrent use; the underlying client is
// concurrency-safe and this type holds no mutable state.
type OpenAIProposer struct {
	client *openai.Client
	config OpenAIConfig
	logger *slog.Logger
}

// NewOpenAIProposer creates an OpenAI-backed proposer.
//
// The API key is read from the OPENAI_API_KEY environment variable.
//
// Inputs:
//   - config: Backend configuration.
//
// Outputs:
//   - *OpenAIProposer: Ready to use proposer.
//   - error: Non-nil if no API key is available.
func NewOpenAIProposer(config OpenAIConfig) (*OpenAIProposer, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if config.Model == "" {
		config.Model = DefaultOpenAIConfig().Model
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientCfg.BaseURL = config.BaseURL
	}
	return &OpenAIProposer{
		client: openai.NewClientWithConfig(clientCfg),
		config: config,
		logger: slog.Default(),
	}, nil
}

// WithLogger sets the logger.
func (p *OpenAIProposer) WithLogger(logger *slog.Logger) *OpenAIProposer {
	p.logger = logger
	return p
}

// Propose implements the Proposer interface.
func (p *OpenAIProposer) Propose(ctx context.Context, state domain.State, history History) (RawResponse, error) {
	start := time.Now()

	req := openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Temperature: p.config.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: RenderPrompt(state, history)},
		},
	}
	if p.config.MaxTokens > 0 {
		req.MaxCompletionTokens = p.config.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return RawResponse{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return RawResponse{}, fmt.Errorf("chat completion returned no choices")
	}

	p.logger.Debug("proposal received",
		slog.String("model", p.config.Model),
		slog.Duration("latency", time.Since(start)),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)))

	return RawResponse{
		ID:      "prop-" + uuid.NewString()[:8],
		Text:    resp.Choices[0].Message.Content,
		Latency: time.Since(start),
	}, nil
}
