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

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/evidex/classify"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/parse"
	"github.com/poiesic/evidex/storage"
)

// Reindexer is the slice of the vector index the pipeline needs: a
// best-effort full rebuild after records change.
type Reindexer interface {
	Enabled() bool
	ReindexAll(ctx context.Context) error
}

// Pipeline orchestrates archive ingestion: classification, concurrent
// parsing, batch persistence, and the post-ingest semantic reindex.
type Pipeline struct {
	store      storage.RecordStore
	classifier *classify.Classifier
	index      Reindexer
	pool       *ants.Pool
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent file parsing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithClassifier replaces the default classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(p *Pipeline) error {
		if c != nil {
			p.classifier = c
		}
		return nil
	}
}

// WithReindexer attaches the semantic index to rebuild after ingestion.
func WithReindexer(r Reindexer) Option {
	return func(p *Pipeline) error {
		p.index = r
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given record store.
func NewPipeline(store storage.RecordStore, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		store:      store,
		classifier: classify.New(),
		pool:       pool,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// IngestArchive ingests an extracted archive directory: classifies its
// files, parses every record file, persists the records, and triggers a
// semantic reindex.
func (p *Pipeline) IngestArchive(ctx context.Context, root string) (*Report, error) {
	manifest, err := p.classifier.BuildManifest(root)
	if err != nil {
		return nil, fmt.Errorf("classifying archive: %w", err)
	}
	return p.ingestManifest(ctx, manifest)
}

// IngestDescriptor ingests a standalone descriptor or record file without
// a surrounding archive directory.
func (p *Pipeline) IngestDescriptor(ctx context.Context, path string) (*Report, error) {
	manifest, err := p.classifier.ManifestForDescriptor(path)
	if err != nil {
		return nil, fmt.Errorf("classifying descriptor: %w", err)
	}
	return p.ingestManifest(ctx, manifest)
}

func (p *Pipeline) ingestManifest(ctx context.Context, manifest *core.Manifest) (*Report, error) {
	report := &Report{
		RunID:              uuid.New(),
		ManifestCounts:     manifest.Counts(),
		DescriptorFallback: manifest.DescriptorFallback,
	}
	p.logger.Info("ingestion started",
		"run_id", report.RunID,
		"chats", len(manifest.Chats),
		"calls", len(manifest.Calls),
		"contacts", len(manifest.Contacts),
		"media", len(manifest.Media))

	// Results are slotted by file position so record order, and therefore
	// assigned IDs, match the manifest regardless of worker scheduling.
	chatBatches := make([][]*core.Message, len(manifest.Chats))
	callBatches := make([][]*core.Call, len(manifest.Calls))
	contactBatches := make([][]*core.Contact, len(manifest.Contacts))

	var wg sync.WaitGroup
	var failures atomic.Int64

	submit := func(task func()) {
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			task()
		}); err != nil {
			// Pool unavailable; fall back to running inline.
			task()
			wg.Done()
		}
	}

	for i, path := range manifest.Chats {
		submit(func() {
			if ctx.Err() != nil {
				return
			}
			msgs, err := parse.Chats(path)
			if err != nil {
				failures.Add(1)
				p.logger.Warn("chat file malformed, keeping salvaged records",
					"file", path, "salvaged", len(msgs), "err", err)
			}
			chatBatches[i] = msgs
		})
	}
	for i, path := range manifest.Calls {
		submit(func() {
			if ctx.Err() != nil {
				return
			}
			calls, err := parse.Calls(path)
			if err != nil {
				failures.Add(1)
				p.logger.Warn("call file malformed, keeping salvaged records",
					"file", path, "salvaged", len(calls), "err", err)
			}
			callBatches[i] = calls
		})
	}
	for i, path := range manifest.Contacts {
		submit(func() {
			if ctx.Err() != nil {
				return
			}
			contacts, err := parse.Contacts(path)
			if err != nil {
				failures.Add(1)
				p.logger.Warn("contact file malformed, keeping salvaged records",
					"file", path, "salvaged", len(contacts), "err", err)
			}
			contactBatches[i] = contacts
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	report.ParseFailures = int(failures.Load())

	var messages []*core.Message
	for _, batch := range chatBatches {
		messages = append(messages, batch...)
	}
	// Call records become synthetic searchable messages.
	for _, batch := range callBatches {
		for _, call := range batch {
			messages = append(messages, call.AsMessage())
		}
	}
	var contacts []*core.Contact
	for _, batch := range contactBatches {
		contacts = append(contacts, batch...)
	}

	inserted, err := p.store.InsertMessages(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("storing messages: %w", err)
	}
	report.Messages = len(inserted)

	if err := p.store.InsertContacts(ctx, contacts); err != nil {
		return nil, fmt.Errorf("storing contacts: %w", err)
	}
	report.Contacts = len(contacts)

	media := make([]*core.MediaItem, len(manifest.Media))
	for i, path := range manifest.Media {
		media[i] = mediaItemFor(path)
	}
	if err := p.store.InsertMedia(ctx, media); err != nil {
		return nil, fmt.Errorf("storing media: %w", err)
	}
	report.Media = len(media)

	p.reindex(ctx, report.RunID)

	p.logger.Info("ingestion finished",
		"run_id", report.RunID,
		"messages", report.Messages,
		"contacts", report.Contacts,
		"media", report.Media,
		"parse_failures", report.ParseFailures)
	return report, nil
}

// reindex triggers a semantic rebuild. Failures are logged, never
// propagated: ingestion has already committed the records.
func (p *Pipeline) reindex(ctx context.Context, runID uuid.UUID) {
	if p.index == nil || !p.index.Enabled() {
		return
	}
	if err := p.index.ReindexAll(ctx); err != nil {
		p.logger.Warn("semantic reindex failed", "run_id", runID, "err", err)
	}
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
