// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/evidex/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const summarySystemPrompt = `You are an analyst assisting a digital forensics investigator.
You will be given a search query and excerpts of extracted device records.
Write a short, factual summary (3-4 sentences) of what the excerpts show that
is relevant to the query. Mention participants, amounts, identifiers, and
timing when present. Do not speculate beyond the excerpts.`

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client llms.Model
	logger *slog.Logger
}

// newSummarizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.SummaryHost),
		openai.WithToken("none"),
		openai.WithModel(config.SummaryModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client: client,
		logger: slog.Default().With("component", "openai-summarizer"),
	}, nil
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Summarize condenses the evidence excerpt into a short digest relevant to
// the query.
func (s *Summarizer) Summarize(ctx context.Context, query, evidence string) (string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(summarySystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart("Query: " + query + "\n\nRecords:\n" + evidence),
			},
		},
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		s.logger.Error("failed to generate summary", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		s.logger.Debug("no choices returned from model")
		return "", errors.New("summarizer returned no choices")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
