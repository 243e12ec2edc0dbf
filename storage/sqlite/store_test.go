package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) storage.RecordStore {
	t.Helper()
	store, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInsertMessages_AssignsSequentialIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	msgs := []*core.Message{
		{Sender: "A", Text: "first"},
		{Sender: "B", Text: "second"},
		{Sender: "C", Text: "third"},
	}

	inserted, err := store.InsertMessages(ctx, msgs)
	require.NoError(t, err)
	require.Len(t, inserted, 3)

	assert.Equal(t, core.ID(1), inserted[0].ID)
	assert.Equal(t, core.ID(2), inserted[1].ID)
	assert.Equal(t, core.ID(3), inserted[2].ID)

	count, err := store.CountMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestInsertMessages_RejectsPreAssignedID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.InsertMessages(context.Background(), []*core.Message{{ID: 5, Text: "x"}})
	assert.ErrorIs(t, err, core.ErrInvalidMessage)
}

func TestGetMessages_SkipsMissingAndPreservesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.InsertMessages(ctx, []*core.Message{
		{Text: "one"}, {Text: "two"}, {Text: "three"},
	})
	require.NoError(t, err)

	got, err := store.GetMessages(ctx, 3, 99, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "three", got[0].Text)
	assert.Equal(t, "one", got[1].Text)
}

func TestLexicalSearch_SingleTokenFindsExactlyOneMessage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.InsertMessages(ctx, []*core.Message{
		{Sender: "A", Text: "transfer the ledger tonight"},
		{Sender: "B", Text: "dinner at eight"},
		{Sender: "C", Text: "see you at the gym"},
	})
	require.NoError(t, err)

	hits, err := store.LexicalSearch(ctx, "ledger", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "transfer the ledger tonight", hits[0].Text)
	assert.Equal(t, "A", hits[0].Sender)
}

func TestLexicalSearch_MultiTokenPhrase(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.InsertMessages(ctx, []*core.Message{
		{Text: "meet me at the usual place"},
		{Text: "the place is closed"},
		{Text: "nothing relevant"},
	})
	require.NoError(t, err)

	hits, err := store.LexicalSearch(ctx, "usual place", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "meet me at the usual place", hits[0].Text)
}

func TestLexicalSearch_LimitRespected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var msgs []*core.Message
	for i := 0; i < 10; i++ {
		msgs = append(msgs, &core.Message{Text: "shared token payload"})
	}
	_, err := store.InsertMessages(ctx, msgs)
	require.NoError(t, err)

	hits, err := store.LexicalSearch(ctx, "payload", 4)
	require.NoError(t, err)
	assert.Len(t, hits, 4)
}

func TestLexicalSearch_MalformedQueryReturnsEmpty(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.InsertMessages(ctx, []*core.Message{{Text: "content"}})
	require.NoError(t, err)

	for _, bad := range []string{`"unbalanced`, `AND`, `(((`} {
		hits, err := store.LexicalSearch(ctx, bad, 10)
		assert.NoError(t, err, "query %q must not surface an error", bad)
		assert.Empty(t, hits, "query %q must yield no results", bad)
	}

	s := store.(*Store)
	assert.Positive(t, s.QuerySyntaxErrors(), "rejected queries are counted")
}

func TestLexicalSearch_EmptyPhrase(t *testing.T) {
	store := newTestStore(t)

	hits, err := store.LexicalSearch(context.Background(), "   ", 10)
	assert.NoError(t, err)
	assert.Empty(t, hits)
}

func TestLexicalSearch_InvalidLimit(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LexicalSearch(context.Background(), "anything", 0)
	assert.ErrorIs(t, err, storage.ErrInvalidLimit)
}

func TestClosedStoreRejectsWrites(t *testing.T) {
	store, err := OpenMemory()
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close is idempotent")

	ctx := context.Background()
	_, err = store.InsertMessages(ctx, []*core.Message{{Text: "late"}})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, store.InsertContacts(ctx, []*core.Contact{{Name: "x"}}), storage.ErrStorageClosed)
	assert.ErrorIs(t, store.InsertMedia(ctx, []*core.MediaItem{{Path: "/p"}}), storage.ErrStorageClosed)
}

func TestMessageTexts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.InsertMessages(ctx, []*core.Message{
		{Text: "alpha"}, {Text: "beta"}, {Text: "gamma"},
	})
	require.NoError(t, err)

	all, err := store.MessageTexts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Text)
	assert.Equal(t, core.ID(1), all[0].ID)

	limited, err := store.MessageTexts(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestInsertContacts_PreservesDuplicates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	contacts := []*core.Contact{
		{Name: "Alice", Phones: []string{"+1"}, Emails: []string{"a@x.io"}},
		{Name: "Alice", Phones: []string{"+1"}, Emails: []string{"a@x.io"}},
	}
	require.NoError(t, store.InsertContacts(ctx, contacts))

	count, err := store.CountContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestInsertMedia(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.InsertMedia(ctx, []*core.MediaItem{
		{Path: "/x/a.jpg", Filename: "a.jpg", Type: "image", Tags: []string{"dcim", "camera"}},
		{Path: "/x/b.mp4", Filename: "b.mp4", Type: "video"},
	})
	require.NoError(t, err)

	err = store.InsertMedia(ctx, []*core.MediaItem{{Filename: "no-path"}})
	assert.ErrorIs(t, err, core.ErrInvalidMediaItem)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.(*Store).Path())
	_, err = store.InsertMessages(ctx, []*core.Message{{Text: "durable record"}})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	hits, err := reopened.LexicalSearch(ctx, "durable", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "durable record", hits[0].Text)
}

func TestIngestDeterminism_SameBatchSameCounts(t *testing.T) {
	ctx := context.Background()
	batch := func() []*core.Message {
		return []*core.Message{
			{Sender: "A", Text: "one"},
			{Sender: "B", Text: "two"},
		}
	}

	a := newTestStore(t)
	b := newTestStore(t)
	_, err := a.InsertMessages(ctx, batch())
	require.NoError(t, err)
	_, err = b.InsertMessages(ctx, batch())
	require.NoError(t, err)

	ca, _ := a.CountMessages(ctx)
	cb, _ := b.CountMessages(ctx)
	assert.Equal(t, ca, cb)
}
