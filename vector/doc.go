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

// Package vector implements the optional semantic search index.
//
// The index keeps three artifacts under the data directory: raw embedding
// vectors and unit-normalized copies in a BadgerDB store (directory
// "vectors"), and a flat similarity structure serialized to
// "embeddings.index". The structure is the search path; the store is the
// durable source it can always be rebuilt from.
//
// Availability is decided exactly once, when Open probes the embedding
// service. A failed probe, or a vector store that cannot be opened,
// disables the index for the process lifetime: SemanticSearch and
// ReindexAll return core.ErrIndexUnavailable and the rest of the system
// falls back to lexical search. Lesser damage degrades instead of
// disabling: a missing or corrupt structure file is rebuilt from the
// store, and when even that fails queries scan the persisted vectors
// directly until the next reindex. Previously persisted artifacts are
// left untouched so a later restart with a reachable embedder picks them
// up again.
package vector
