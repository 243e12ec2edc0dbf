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

// Package ingestion turns extracted device archives into stored records.
//
// A run classifies the archive into a manifest, parses every record file
// on a worker pool, and persists the results in batches: chat messages and
// synthetic call messages into the message store, contacts and media
// metadata alongside. Malformed files never abort a run; their salvageable
// records are kept and the failure is counted in the report.
//
// After the records are committed the pipeline triggers a semantic reindex
// when a vector index is attached. The reindex is best-effort: its failure
// is logged and the ingestion still reports success, because lexical
// search over the committed records already works.
package ingestion
