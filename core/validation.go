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

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidMediaItem indicates a MediaItem failed validation.
	ErrInvalidMediaItem = errors.New("invalid media item")
)

// ValidateMessage validates a Message before persistence.
//
// Validation rules:
//   - the message must not be nil
//   - ID must be zero (the store assigns IDs)
//
// Text is deliberately NOT required to be non-empty: an empty text field is
// a legitimate record (media-only messages, deleted bodies). Parsers
// guarantee the field is present; emptiness carries forensic meaning.
func ValidateMessage(m *Message) error {
	if m == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}
	if m.ID != 0 {
		return fmt.Errorf("%w: id %d already assigned", ErrInvalidMessage, m.ID)
	}
	return nil
}

// ValidateMediaItem validates a MediaItem before persistence.
func ValidateMediaItem(item *MediaItem) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidMediaItem)
	}
	if item.Path == "" {
		return fmt.Errorf("%w: path is empty", ErrInvalidMediaItem)
	}
	return nil
}
