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

package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
)

const (
	lexicalLimit = 20
	semanticTopK = 10
	mergedCap    = 25
	summaryTopN  = 10

	defaultSummaryTimeout = 30 * time.Second
)

// SemanticIndex is the slice of the vector index the engine needs.
type SemanticIndex interface {
	Enabled() bool
	SemanticSearch(ctx context.Context, query string, topK int) ([]core.SimilarityMatch, error)
}

// Engine answers search queries over the record store. Queries naming
// cryptocurrency route to a structured pattern scan; everything else gets
// hybrid lexical + semantic ranking. The engine never fails a query
// because an optional layer (vector index, summarizer) is down.
type Engine struct {
	store      storage.MessageStore
	index      SemanticIndex
	summarizer ai.Summarizer
	logger     *slog.Logger

	summaryTimeout  time.Duration
	summaryFailures atomic.Int64
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSemanticIndex attaches a semantic index. Without one, relevance
// queries are lexical only.
func WithSemanticIndex(index SemanticIndex) EngineOption {
	return func(e *Engine) {
		e.index = index
	}
}

// WithSummarizer attaches a result summarizer.
func WithSummarizer(s ai.Summarizer) EngineOption {
	return func(e *Engine) {
		e.summarizer = s
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSummaryTimeout bounds how long a single summarization may take.
func WithSummaryTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.summaryTimeout = d
		}
	}
}

// NewEngine creates a search engine over the given message store.
func NewEngine(store storage.MessageStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store:          store,
		logger:         slog.Default(),
		summaryTimeout: defaultSummaryTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SummaryFailures returns how many summarization attempts failed.
func (e *Engine) SummaryFailures() int64 {
	return e.summaryFailures.Load()
}

// Search answers a query. Malformed queries, the empty query included,
// degrade to an empty response rather than an error.
func (e *Engine) Search(ctx context.Context, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Response{Query: query, Mode: ModeRelevance}, nil
	}

	if isPatternQuery(query) {
		return e.patternSearch(ctx, query)
	}
	return e.relevanceSearch(ctx, query)
}

// relevanceSearch runs the lexical and semantic legs concurrently and
// merges them, lexical first, deduplicated by record ID.
func (e *Engine) relevanceSearch(ctx context.Context, query string) (*Response, error) {
	var (
		wg          sync.WaitGroup
		lexical     []*core.Message
		lexicalErr  error
		semanticIDs []core.ID
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		lexical, lexicalErr = e.store.LexicalSearch(ctx, query, lexicalLimit)
	}()

	if e.index != nil && e.index.Enabled() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			matches, err := e.index.SemanticSearch(ctx, query, semanticTopK)
			if err != nil {
				e.logger.Debug("semantic leg unavailable", "err", err)
				return
			}
			for _, m := range matches {
				semanticIDs = append(semanticIDs, m.MessageID)
			}
		}()
	}
	wg.Wait()

	if lexicalErr != nil {
		return nil, lexicalErr
	}

	var semantic []*core.Message
	if len(semanticIDs) > 0 {
		msgs, err := e.store.GetMessages(ctx, semanticIDs...)
		if err != nil {
			e.logger.Warn("resolving semantic matches failed", "err", err)
		} else {
			semantic = msgs
		}
	}

	seen := make(map[core.ID]struct{})
	merged := make([]*core.Message, 0, len(lexical)+len(semantic))
	for _, m := range append(lexical, semantic...) {
		if _, ok := seen[m.ID]; ok {
			continue
		}
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
		if len(merged) == mergedCap {
			break
		}
	}

	resp := &Response{
		Query:   query,
		Mode:    ModeRelevance,
		Count:   len(merged),
		Results: merged,
	}
	resp.Summary = e.summarizeResults(ctx, query, merged)
	return resp, nil
}

// summarizeResults digests the top results. Failures leave the summary nil.
func (e *Engine) summarizeResults(ctx context.Context, query string, results []*core.Message) *string {
	if len(results) == 0 || e.summarizer == nil {
		return nil
	}

	top := results
	if len(top) > summaryTopN {
		top = top[:summaryTopN]
	}
	lines := make([]string, len(top))
	for i, m := range top {
		lines[i] = m.Sender + ": " + m.Text
	}

	summary, err := e.summarize(ctx, query, strings.Join(lines, "\n\n"))
	if err != nil {
		return nil
	}
	return &summary
}

// summarize calls the configured summarizer under the engine's timeout.
func (e *Engine) summarize(ctx context.Context, query, evidence string) (string, error) {
	sumCtx, cancel := context.WithTimeout(ctx, e.summaryTimeout)
	defer cancel()

	summary, err := e.summarizer.Summarize(sumCtx, query, evidence)
	if err != nil {
		e.summaryFailures.Add(1)
		e.logger.Warn("summarization failed",
			"err", fmt.Errorf("%w: %v", core.ErrSummarization, err))
		return "", err
	}
	return summary, nil
}
