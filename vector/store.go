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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/evidex/core"
)

// Store persists embedding vectors in BadgerDB. For every indexed message
// it keeps the raw embedder output and a unit-normalized copy, plus a
// single metadata entry recording the vector dimension. The store holds
// message IDs only; record content stays in the record store.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenStore opens a BadgerDB vector store at the specified path.
// Creates the directory if it doesn't exist.
func OpenStore(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsClosed returns true if the database is closed.
func (s *Store) IsClosed() bool {
	return s.db.IsClosed()
}

// Reset removes all stored vectors and the dimension metadata. Used by a
// full reindex to drop entries for records that no longer exist.
func (s *Store) Reset() error {
	if err := s.db.DropPrefix([]byte(vecRawPrefix+":"), []byte(vecNormPrefix+":")); err != nil {
		return err
	}
	return s.db.Update(func(tx *badger.Txn) error {
		err := tx.Delete([]byte(vecMetaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// PutBatch stores raw vectors and their normalized copies for the given
// IDs. All vectors in a batch must share one dimension, and that dimension
// must agree with any dimension already recorded.
func (s *Store) PutBatch(ids []core.ID, raws [][]float32) error {
	if len(ids) != len(raws) {
		return fmt.Errorf("ids and vectors disagree: %d vs %d", len(ids), len(raws))
	}
	if len(ids) == 0 {
		return nil
	}

	dim := len(raws[0])
	for _, v := range raws {
		if len(v) != dim {
			return fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(v), dim)
		}
	}
	stored, err := s.Dimension()
	if err != nil {
		return err
	}
	if stored != 0 && stored != dim {
		return fmt.Errorf("%w: stored %d, got %d", ErrDimensionMismatch, stored, dim)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, id := range ids {
		if err := wb.Set(makeVectorKey(vecRawPrefix, id), marshalVector(raws[i])); err != nil {
			return err
		}
		norm := NormalizeVector(raws[i])
		if err := wb.Set(makeVectorKey(vecNormPrefix, id), marshalVector(norm)); err != nil {
			return err
		}
	}
	if err := wb.Set([]byte(vecMetaKey), marshalID(core.ID(dim))); err != nil {
		return err
	}
	return wb.Flush()
}

// Dimension returns the recorded vector dimension, or 0 when the store is
// empty.
func (s *Store) Dimension() (int, error) {
	var dim int
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(vecMetaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id, err := unmarshalID(val)
			if err != nil {
				return err
			}
			dim = int(id)
			return nil
		})
	})
	return dim, err
}

// Normalized returns the unit-normalized vector for id, or nil if the id
// is not indexed.
func (s *Store) Normalized(id core.ID) ([]float32, error) {
	var vec []float32
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(vecNormPrefix, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vec, err = unmarshalVector(val)
			return err
		})
	})
	return vec, err
}

// NormalizedAll returns every indexed ID with its normalized vector, in
// ascending ID order.
func (s *Store) NormalizedAll() ([]core.ID, [][]float32, error) {
	var ids []core.ID
	var vecs [][]float32

	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vecNormPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()
			id, ok := idFromVectorKey(vecNormPrefix, item.Key())
			if !ok {
				continue
			}
			var vec []float32
			err := item.Value(func(val []byte) error {
				var err error
				vec, err = unmarshalVector(val)
				return err
			})
			if err != nil {
				return err
			}
			ids = append(ids, id)
			vecs = append(vecs, vec)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return ids, vecs, nil
}

// Count returns the number of indexed vectors.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vecNormPrefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			n++
		}
		return nil
	})
	return n, err
}
