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


package core

import "errors"

// Recoverable error taxonomy. None of these abort an ingestion or a query;
// callers log and count them, then continue on the degraded path.
var (
	// ErrDescriptorMalformed indicates the master descriptor file could not
	// be parsed. The classifier falls back to a full directory scan.
	ErrDescriptorMalformed = errors.New("descriptor malformed")

	// ErrFileMalformed indicates a per-file format mismatch during parsing.
	// The parser returns whatever records it produced before the failure.
	ErrFileMalformed = errors.New("file malformed")

	// ErrIndexUnavailable indicates the vector layer is disabled or its
	// persisted artifacts are missing or corrupt. Search degrades to
	// lexical-only results.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrQuerySyntax indicates a malformed lexical query. The store returns
	// an empty result set instead of surfacing the syntax error.
	ErrQuerySyntax = errors.New("query syntax error")

	// ErrSummarization indicates the summarization collaborator failed or
	// timed out. Only the summary field of a response is affected.
	ErrSummarization = errors.New("summarization failed")
)

// ErrStoreExhausted is the single unrecoverable condition: the record store
// cannot persist because storage is exhausted. It is surfaced to the caller
// rather than swallowed.
var ErrStoreExhausted = errors.New("record store exhausted")
