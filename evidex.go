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

// Package evidex assembles the forensic record search system: archive
// ingestion, the SQLite record store with its lexical index, the optional
// semantic vector index, and the hybrid query engine.
package evidex

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/ai/openai"
	"github.com/poiesic/evidex/config"
	"github.com/poiesic/evidex/ingestion"
	"github.com/poiesic/evidex/search"
	"github.com/poiesic/evidex/storage"
	"github.com/poiesic/evidex/storage/sqlite"
	"github.com/poiesic/evidex/vector"
)

// Service wires the subsystems together over one data directory.
type Service struct {
	store    storage.RecordStore
	index    *vector.Index
	provider ai.AIProvider
	pipeline *ingestion.Pipeline
	engine   *search.Engine
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	provider ai.AIProvider
	logger   *slog.Logger
}

// WithProvider replaces the OpenAI-compatible AI provider, for tests.
func WithProvider(p ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = p
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open initializes the service from the given configuration. The embedder
// is probed once here; if it is unreachable the service still opens, with
// semantic search disabled.
func Open(ctx context.Context, cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}

	store, err := sqlite.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening record store: %w", err)
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(cfg.AIConfig())
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("creating AI provider: %w", err)
		}
	}

	index, err := vector.Open(ctx, cfg.DataDir, provider.Embedder(), store,
		vector.WithProbeTimeout(cfg.ProbeTimeout()),
		vector.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		store.Close()
		return nil, fmt.Errorf("opening vector index: %w", err)
	}

	pipeline, err := ingestion.NewPipeline(store,
		ingestion.WithReindexer(index),
		ingestion.WithLogger(options.logger))
	if err != nil {
		index.Close()
		provider.Close()
		store.Close()
		return nil, err
	}

	engine := search.NewEngine(store,
		search.WithSemanticIndex(index),
		search.WithSummarizer(provider.Summarizer()),
		search.WithLogger(options.logger))

	return &Service{
		store:    store,
		index:    index,
		provider: provider,
		pipeline: pipeline,
		engine:   engine,
		logger:   options.logger,
	}, nil
}

// Ingest ingests an extracted archive directory or a standalone descriptor
// file, depending on what path points at.
func (s *Service) Ingest(ctx context.Context, path string) (*ingestion.Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return s.pipeline.IngestArchive(ctx, path)
	}
	return s.pipeline.IngestDescriptor(ctx, path)
}

// Search answers a query through the hybrid engine.
func (s *Service) Search(ctx context.Context, query string) (*search.Response, error) {
	return s.engine.Search(ctx, query)
}

// Reindex rebuilds the semantic index from the stored records.
func (s *Service) Reindex(ctx context.Context) error {
	return s.index.ReindexAll(ctx)
}

// SemanticEnabled reports whether the vector index came up at Open.
func (s *Service) SemanticEnabled() bool {
	return s.index.Enabled()
}

// Store exposes the record store for direct queries.
func (s *Service) Store() storage.RecordStore {
	return s.store
}

// Close releases all resources.
func (s *Service) Close() error {
	s.pipeline.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.index.Close(); err != nil {
		s.logger.Error("error closing vector index", "err", err)
		return err
	}
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing record store", "err", err)
		return err
	}
	return nil
}
