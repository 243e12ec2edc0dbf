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


// Package storage defines the storage abstraction layer for evidex.
//
// The interfaces here decouple record persistence from the rest of the
// system. The production backend lives in storage/sqlite; tests use its
// in-memory constructor. Constructors return interfaces to keep consumers
// from coupling to backend specifics.
//
// Ownership: the record store exclusively owns canonical records and the
// lexical index. The vector layer (package vector) holds only message IDs;
// lookup keys, never record content.
package storage
