package storage

import (
	"context"

	"github.com/poiesic/evidex/core"
)

// MessageStore owns canonical messages and the lexical index over their
// text. Implementations must be thread-safe; writes follow a single-writer
// discipline (one logical writer at a time), reads are never blocked
// indefinitely.
type MessageStore interface {
	// InsertMessages persists a batch of messages, assigning sequential IDs
	// and updating the lexical index in the same transaction. The input
	// records are returned with IDs populated.
	InsertMessages(ctx context.Context, messages []*core.Message) ([]*core.Message, error)

	// GetMessages retrieves messages by ID. Missing IDs are silently
	// skipped; the result preserves the order of the requested IDs.
	GetMessages(ctx context.Context, ids ...core.ID) ([]*core.Message, error)

	// LexicalSearch runs a full-text query over message text and returns up
	// to limit records in the index's native relevance order. limit must be
	// positive. A query the index cannot parse yields an empty result, never
	// an error.
	LexicalSearch(ctx context.Context, phrase string, limit int) ([]*core.Message, error)

	// MessageTexts returns up to limit (id, text) pairs in insertion order.
	// limit <= 0 means no limit.
	MessageTexts(ctx context.Context, limit int) ([]core.MessageText, error)

	// CountMessages returns the number of stored messages.
	CountMessages(ctx context.Context) (int64, error)
}

// ContactStore owns canonical contacts. Duplicates are preserved.
type ContactStore interface {
	InsertContacts(ctx context.Context, contacts []*core.Contact) error
	CountContacts(ctx context.Context) (int64, error)
}

// MediaStore owns media item metadata.
type MediaStore interface {
	InsertMedia(ctx context.Context, items []*core.MediaItem) error
}

// RecordStore aggregates the stores backed by one database.
type RecordStore interface {
	MessageStore
	ContactStore
	MediaStore

	// Close closes the underlying database and releases resources.
	Close() error
}
