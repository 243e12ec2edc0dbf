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
	"bytes"
	"fmt"
	"os"
	"slices"

	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/evidex/core"
)

// IndexFile is the similarity structure's file name inside the data directory.
const IndexFile = "embeddings.index"

// flatIndex is the in-memory similarity structure: parallel slices of
// message IDs and unit-normalized vectors. Search is an exhaustive dot
// product scan, which at this corpus scale beats maintaining a graph.
type flatIndex struct {
	dim     int
	ids     []core.ID
	vectors [][]float32
}

func newFlatIndex(ids []core.ID, vectors [][]float32) (*flatIndex, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("ids and vectors disagree: %d vs %d", len(ids), len(vectors))
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(v), dim)
		}
	}
	return &flatIndex{dim: dim, ids: ids, vectors: vectors}, nil
}

// search returns the topK most similar entries to the unit-normalized
// query, best first.
func (f *flatIndex) search(query []float32, topK int) []core.SimilarityMatch {
	if topK <= 0 || len(f.ids) == 0 {
		return nil
	}

	matches := make([]core.SimilarityMatch, 0, len(f.ids))
	for i, vec := range f.vectors {
		matches = append(matches, core.SimilarityMatch{
			MessageID: f.ids[i],
			Score:     dotProduct(query, vec),
		})
	}

	slices.SortFunc(matches, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// save writes the structure to path atomically (temp file + rename).
func (f *flatIndex) save(path string) error {
	var buf bytes.Buffer

	writeInt := func(v int64) {
		b := make([]byte, varint.Int64.Size(v))
		varint.Int64.Marshal(v, b)
		buf.Write(b)
	}

	writeInt(int64(len(f.ids)))
	writeInt(int64(f.dim))
	for i, id := range f.ids {
		buf.Write(marshalID(id))
		buf.Write(marshalVector(f.vectors[i]))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// loadFlatIndex reads a structure written by save. A missing file is
// reported via os.IsNotExist on the returned error; decode failures are
// wrapped in ErrCorruptIndex.
func loadFlatIndex(path string) (*flatIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	count, off, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	dim, n, err := varint.Int64.Unmarshal(data[off:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}
	off += n
	if count < 0 || dim < 0 {
		return nil, fmt.Errorf("%w: negative header", ErrCorruptIndex)
	}

	ids := make([]core.ID, 0, count)
	vectors := make([][]float32, 0, count)
	for i := int64(0); i < count; i++ {
		id, n, err := varint.Int64.Unmarshal(data[off:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
		}
		off += n

		vec, err := unmarshalVector(data[off:])
		if err != nil {
			return nil, err
		}
		if int64(len(vec)) != dim {
			return nil, fmt.Errorf("%w: entry dimension %d, header %d", ErrCorruptIndex, len(vec), dim)
		}
		off += vectorEncodedSize(vec)

		ids = append(ids, core.ID(id))
		vectors = append(vectors, vec)
	}

	return &flatIndex{dim: int(dim), ids: ids, vectors: vectors}, nil
}
