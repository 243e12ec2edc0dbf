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

package vector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/poiesic/evidex/ai"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
)

const (
	// VectorsDir is the vector store's directory name inside the data directory.
	VectorsDir = "vectors"

	defaultProbeTimeout = 5 * time.Second
	defaultBatchSize    = 64

	embedMaxAttempts = 3
	embedBaseDelay   = 500 * time.Millisecond
)

// Index is the semantic search index. Availability is decided once, at
// Open, by probing the embedder: if the probe fails the index stays
// disabled for the process lifetime and every operation degrades rather
// than errors the caller's request.
type Index struct {
	store    *Store
	embedder ai.Embedder
	messages storage.MessageStore
	logger   *slog.Logger

	enabled   bool
	indexPath string
	batchSize int

	flatMu sync.RWMutex
	flat   *flatIndex

	// rebuildMu guards the rebuild state: rebuilding marks an in-flight
	// rebuild, rebuildQueued records requests that arrived while one ran.
	// The running rebuild re-checks the queued flag under the same mutex
	// before finishing, so a request can never be recorded and then lost.
	rebuildMu     sync.Mutex
	rebuilding    bool
	rebuildQueued bool
}

// IndexOption configures an Index.
type IndexOption func(*indexConfig)

type indexConfig struct {
	logger       *slog.Logger
	probeTimeout time.Duration
	batchSize    int
	inMemory     bool
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) IndexOption {
	return func(c *indexConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithProbeTimeout sets how long the availability probe may take.
func WithProbeTimeout(d time.Duration) IndexOption {
	return func(c *indexConfig) {
		if d > 0 {
			c.probeTimeout = d
		}
	}
}

// WithBatchSize sets how many texts are embedded per request during reindex.
func WithBatchSize(n int) IndexOption {
	return func(c *indexConfig) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithInMemory makes the vector store ephemeral, for tests.
func WithInMemory() IndexOption {
	return func(c *indexConfig) {
		c.inMemory = true
	}
}

// Open probes the embedder and, when it responds, opens the vector store
// under dataDir and loads (or rebuilds) the similarity structure. A failed
// probe or unusable persisted state yields a degraded or permanently
// disabled index, never an error.
func Open(ctx context.Context, dataDir string, embedder ai.Embedder, messages storage.MessageStore, opts ...IndexOption) (*Index, error) {
	cfg := &indexConfig{
		logger:       slog.Default(),
		probeTimeout: defaultProbeTimeout,
		batchSize:    defaultBatchSize,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	idx := &Index{
		embedder:  embedder,
		messages:  messages,
		logger:    cfg.logger,
		indexPath: filepath.Join(dataDir, IndexFile),
		batchSize: cfg.batchSize,
	}

	if !probeEmbedder(ctx, embedder, cfg.probeTimeout) {
		cfg.logger.Warn("embedding service unavailable, semantic search disabled")
		return idx, nil
	}
	idx.enabled = true

	store, err := OpenStore(filepath.Join(dataDir, VectorsDir), cfg.inMemory)
	if err != nil {
		// Unusable persisted artifacts are a recoverable condition: the
		// system degrades to lexical-only search instead of failing startup.
		cfg.logger.Warn("vector store unusable, semantic search disabled",
			"err", fmt.Errorf("%w: %v", core.ErrIndexUnavailable, err))
		idx.enabled = false
		return idx, nil
	}
	idx.store = store

	idx.loadOrRecover()
	return idx, nil
}

// probeEmbedder checks that the embedder answers with a non-empty vector.
func probeEmbedder(ctx context.Context, embedder ai.Embedder, timeout time.Duration) bool {
	if embedder == nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vec, err := embedder.EmbedText(probeCtx, "index availability probe")
	return err == nil && len(vec) > 0
}

// loadOrRecover loads the persisted similarity structure, falling back to
// rebuilding it from the stored normalized vectors when the file is
// missing or corrupt. When even the rebuild fails, the index stays enabled
// with no flat structure: queries run as a brute-force scan over the store
// until the next full reindex repairs it.
func (i *Index) loadOrRecover() {
	flat, err := loadFlatIndex(i.indexPath)
	if err == nil {
		i.flat = flat
		i.logger.Debug("similarity structure loaded", "entries", len(flat.ids))
		return
	}
	if !os.IsNotExist(err) {
		i.logger.Warn("similarity structure unreadable, rebuilding from store", "err", err)
	}

	ids, vecs, err := i.store.NormalizedAll()
	if err != nil {
		i.logger.Warn("stored vectors unreadable, queries fall back to a store scan",
			"err", fmt.Errorf("%w: %v", core.ErrIndexUnavailable, err))
		return
	}
	flat, err = newFlatIndex(ids, vecs)
	if err != nil {
		i.logger.Warn("similarity structure unbuildable, queries fall back to a store scan",
			"err", fmt.Errorf("%w: %v", core.ErrIndexUnavailable, err))
		return
	}
	i.flat = flat
	if len(ids) > 0 {
		if err := flat.save(i.indexPath); err != nil {
			i.logger.Warn("could not persist similarity structure", "err", err)
		}
	}
}

// Enabled reports whether semantic search is available. The answer never
// changes after Open.
func (i *Index) Enabled() bool {
	return i.enabled
}

// Count returns the number of indexed messages.
func (i *Index) Count() int {
	i.flatMu.RLock()
	defer i.flatMu.RUnlock()
	if i.flat == nil {
		return 0
	}
	return len(i.flat.ids)
}

// ReindexAll re-embeds every stored message and replaces the index
// contents. Concurrent calls coalesce: if a rebuild is already running the
// request is queued and the running rebuild re-runs once, covering all
// queued requests.
func (i *Index) ReindexAll(ctx context.Context) error {
	if !i.enabled {
		return core.ErrIndexUnavailable
	}

	i.rebuildMu.Lock()
	if i.rebuilding {
		// The in-flight rebuild checks this flag before it finishes and
		// re-runs once, covering this request.
		i.rebuildQueued = true
		i.rebuildMu.Unlock()
		return nil
	}
	i.rebuilding = true
	i.rebuildMu.Unlock()

	for {
		err := i.rebuildOnce(ctx)

		i.rebuildMu.Lock()
		if err != nil || !i.rebuildQueued {
			i.rebuilding = false
			i.rebuildMu.Unlock()
			return err
		}
		i.rebuildQueued = false
		i.rebuildMu.Unlock()
		i.logger.Debug("rebuild requests arrived during rebuild, running again")
	}
}

func (i *Index) rebuildOnce(ctx context.Context) error {
	started := time.Now()

	texts, err := i.messages.MessageTexts(ctx, 0)
	if err != nil {
		return fmt.Errorf("reading message texts: %w", err)
	}

	ids := make([]core.ID, 0, len(texts))
	raws := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += i.batchSize {
		end := min(start+i.batchSize, len(texts))
		batch := texts[start:end]

		inputs := make([]string, len(batch))
		for j, mt := range batch {
			inputs[j] = mt.Text
		}

		var vecs [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			vecs, err = i.embedder.EmbedTexts(ctx, inputs)
			return err
		}, embedMaxAttempts, embedBaseDelay)
		if err != nil {
			return fmt.Errorf("embedding batch at %d: %w", start, err)
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(batch))
		}

		for j, mt := range batch {
			ids = append(ids, mt.ID)
			raws = append(raws, vecs[j])
		}
	}

	// Full replace drops vectors for records that no longer exist.
	if err := i.store.Reset(); err != nil {
		return fmt.Errorf("resetting vector store: %w", err)
	}
	if err := i.store.PutBatch(ids, raws); err != nil {
		return fmt.Errorf("storing vectors: %w", err)
	}

	norms := make([][]float32, len(raws))
	for j, v := range raws {
		norms[j] = NormalizeVector(v)
	}
	flat, err := newFlatIndex(ids, norms)
	if err != nil {
		return err
	}
	if err := flat.save(i.indexPath); err != nil {
		i.logger.Warn("could not persist similarity structure", "err", err)
	}

	i.flatMu.Lock()
	i.flat = flat
	i.flatMu.Unlock()

	i.logger.Info("semantic index rebuilt",
		"messages", len(ids),
		"elapsed", time.Since(started))
	return nil
}

// SemanticSearch embeds the query and returns the topK most similar
// indexed message IDs, best first. Returns core.ErrIndexUnavailable when
// the index is disabled or the embedder fails.
func (i *Index) SemanticSearch(ctx context.Context, query string, topK int) ([]core.SimilarityMatch, error) {
	if !i.enabled {
		return nil, core.ErrIndexUnavailable
	}

	vec, err := i.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrIndexUnavailable, err)
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: embedder returned empty vector", core.ErrIndexUnavailable)
	}
	q := NormalizeVector(vec)

	i.flatMu.RLock()
	flat := i.flat
	i.flatMu.RUnlock()

	if flat != nil {
		return flat.search(q, topK), nil
	}
	return i.scanSearch(q, topK)
}

// Close closes the vector store, if one was opened.
func (i *Index) Close() error {
	if i.store == nil {
		return nil
	}
	return i.store.Close()
}
