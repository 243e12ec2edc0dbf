package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
)

const messageColumns = "id, thread, sender, receiver, timestamp, text, raw"

// InsertMessages persists a batch of messages. IDs are assigned by the
// database sequence; the lexical index is updated in the same transaction,
// so a committed message is always findable.
func (s *Store) InsertMessages(ctx context.Context, messages []*core.Message) ([]*core.Message, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return messages, nil
	}
	for _, m := range messages {
		if err := core.ValidateMessage(m); err != nil {
			return nil, err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classifyWriteErr(err)
	}
	defer tx.Rollback()

	insertMsg, err := tx.PrepareContext(ctx,
		"INSERT INTO messages (thread, sender, receiver, timestamp, text, raw) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return nil, classifyWriteErr(err)
	}
	defer insertMsg.Close()

	insertFts, err := tx.PrepareContext(ctx, "INSERT INTO messages_fts (rowid, text) VALUES (?, ?)")
	if err != nil {
		return nil, classifyWriteErr(err)
	}
	defer insertFts.Close()

	for _, m := range messages {
		res, err := insertMsg.ExecContext(ctx, m.Thread, m.Sender, m.Receiver, m.Timestamp, m.Text, m.Raw)
		if err != nil {
			return nil, classifyWriteErr(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		m.ID = core.ID(id)

		if _, err := insertFts.ExecContext(ctx, id, m.Text); err != nil {
			return nil, classifyWriteErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, classifyWriteErr(err)
	}
	return messages, nil
}

// GetMessages retrieves messages by ID, skipping IDs that no longer exist
// and preserving the requested order.
func (s *Store) GetMessages(ctx context.Context, ids ...core.ID) ([]*core.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = int64(id)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+messageColumns+" FROM messages WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[core.ID]*core.Message, len(ids))
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*core.Message, 0, len(byID))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// LexicalSearch runs an FTS5 MATCH query and returns records in the index's
// native relevance order (bm25). Multi-token phrases are passed through to
// the index untouched. Syntax the index rejects (unbalanced quotes, stray
// operators) degrades to an empty result and is counted, not surfaced.
func (s *Store) LexicalSearch(ctx context.Context, phrase string, limit int) ([]*core.Message, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", storage.ErrInvalidLimit, limit)
	}
	if strings.TrimSpace(phrase) == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.thread, m.sender, m.receiver, m.timestamp, m.text, m.raw
		FROM messages m
		JOIN messages_fts f ON f.rowid = m.id
		WHERE messages_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, phrase, limit)
	if err != nil {
		s.querySyntaxErrors.Add(1)
		s.logger.Warn("lexical query rejected by index",
			"phrase", phrase, "err", fmt.Errorf("%w: %v", core.ErrQuerySyntax, err))
		return nil, nil
	}
	defer rows.Close()

	var out []*core.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		// FTS syntax errors can also surface during iteration.
		s.querySyntaxErrors.Add(1)
		s.logger.Warn("lexical query rejected by index",
			"phrase", phrase, "err", fmt.Errorf("%w: %v", core.ErrQuerySyntax, err))
		return nil, nil
	}
	return out, nil
}

// MessageTexts returns (id, text) pairs in insertion order, up to limit.
func (s *Store) MessageTexts(ctx context.Context, limit int) ([]core.MessageText, error) {
	query := "SELECT id, text FROM messages ORDER BY id"
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []core.MessageText
	for rows.Next() {
		var mt core.MessageText
		if err := rows.Scan(&mt.ID, &mt.Text); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// CountMessages returns the number of stored messages.
func (s *Store) CountMessages(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(r rowScanner) (*core.Message, error) {
	var m core.Message
	var thread, sender, receiver, timestamp, raw sql.NullString
	if err := r.Scan(&m.ID, &thread, &sender, &receiver, &timestamp, &m.Text, &raw); err != nil {
		return nil, err
	}
	m.Thread = thread.String
	m.Sender = sender.String
	m.Receiver = receiver.String
	m.Timestamp = timestamp.String
	m.Raw = raw.String
	return &m, nil
}
