package sqlite

import (
	"context"
	"encoding/json"

	"github.com/poiesic/evidex/core"
)

// InsertContacts persists contacts. Duplicates across files are preserved
// deliberately: merging would hide which source claimed which identity.
func (s *Store) InsertContacts(ctx context.Context, contacts []*core.Contact) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if len(contacts) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyWriteErr(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO contacts (name, phones, emails) VALUES (?, ?, ?)")
	if err != nil {
		return classifyWriteErr(err)
	}
	defer stmt.Close()

	for _, c := range contacts {
		phones, err := json.Marshal(orEmpty(c.Phones))
		if err != nil {
			return err
		}
		emails, err := json.Marshal(orEmpty(c.Emails))
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, c.Name, string(phones), string(emails)); err != nil {
			return classifyWriteErr(err)
		}
	}
	return classifyWriteErr(tx.Commit())
}

// CountContacts returns the number of stored contacts.
func (s *Store) CountContacts(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM contacts").Scan(&n)
	return n, err
}

// InsertMedia persists media item metadata. Tags are stored as an opaque
// JSON sequence, order preserved.
func (s *Store) InsertMedia(ctx context.Context, items []*core.MediaItem) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for _, item := range items {
		if err := core.ValidateMediaItem(item); err != nil {
			return err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyWriteErr(err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO media (path, filename, mtype, timestamp, tags) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return classifyWriteErr(err)
	}
	defer stmt.Close()

	for _, item := range items {
		tags, err := json.Marshal(orEmpty(item.Tags))
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, item.Path, item.Filename, item.Type, item.Timestamp, string(tags)); err != nil {
			return classifyWriteErr(err)
		}
	}
	return classifyWriteErr(tx.Commit())
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
