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


package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
)

// DatabaseFile is the record store's file name inside the data directory.
const DatabaseFile = "records.db"

// schema creates the record tables and the FTS5 lexical index. The FTS
// table is external-content: it stores only the token index and resolves
// rows back through messages.id, so text is never duplicated on disk.
const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	thread TEXT,
	sender TEXT,
	receiver TEXT,
	timestamp TEXT,
	text TEXT NOT NULL,
	raw TEXT
);
CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(text, content='messages', content_rowid='id');
CREATE TABLE IF NOT EXISTS contacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT,
	phones TEXT,
	emails TEXT
);
CREATE TABLE IF NOT EXISTS media (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT,
	filename TEXT,
	mtype TEXT,
	timestamp TEXT,
	tags TEXT
);
`

// Store is the SQLite-backed record store. It owns canonical records and
// the lexical index; writes are serialized through a single writer mutex,
// reads go straight to the WAL-mode database.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger

	// writeMu enforces the single-writer discipline for insert batches.
	writeMu sync.Mutex
	closed  atomic.Bool

	// querySyntaxErrors counts malformed lexical queries that were degraded
	// to empty results.
	querySyntaxErrors atomic.Int64
}

var _ storage.RecordStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// Open opens (or creates) the record store in dataDir.
//
// Returns storage.RecordStore to enforce abstraction.
func Open(dataDir string, opts ...Option) (storage.RecordStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, DatabaseFile)
	s, err := open(dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", dbPath, opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenMemory opens a throwaway in-memory store, for tests.
func OpenMemory(opts ...Option) (storage.RecordStore, error) {
	s, err := open(":memory:", ":memory:", opts...)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func open(dsn, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{
		db:     db,
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection. Close is idempotent.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Store) checkOpen() error {
	if s.closed.Load() {
		return storage.ErrStorageClosed
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// QuerySyntaxErrors returns how many lexical queries were rejected by the
// index and degraded to empty results.
func (s *Store) QuerySyntaxErrors() int64 {
	return s.querySyntaxErrors.Load()
}

// classifyWriteErr maps driver failures onto the error taxonomy. Storage
// exhaustion is the one condition the caller must not swallow.
func classifyWriteErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "disk is full") || strings.Contains(msg, "database or disk is full") {
		return fmt.Errorf("%w: %v", core.ErrStoreExhausted, err)
	}
	return err
}
