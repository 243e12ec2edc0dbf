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

import "errors"

var (
	// ErrInvalidMaxAttempts indicates RetryWithBackoff was called with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")

	// ErrDimensionMismatch indicates a vector's dimension disagrees with the
	// dimension already recorded for the store.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrCorruptIndex indicates the persisted similarity structure could not
	// be decoded. Callers rebuild from the vector store.
	ErrCorruptIndex = errors.New("similarity index corrupt")
)
