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

// Package ai defines the AI service abstractions used by evidex.
//
// Two services are defined: Embedder turns message text into vectors for
// the semantic index, and Summarizer condenses search results into an
// investigator-facing digest. Both are optional at runtime; the system
// degrades to lexical-only search and summary-free responses when the
// services are unreachable.
//
// Production implementations backed by OpenAI-compatible APIs live in
// ai/openai; deterministic test doubles live in ai/mock.
package ai
