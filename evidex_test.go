package evidex_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/evidex"
	"github.com/poiesic/evidex/ai/mock"
	"github.com/poiesic/evidex/config"
	"github.com/poiesic/evidex/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *evidex.Service {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	svc, err := evidex.Open(context.Background(), cfg, evidex.WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func writeFixtureArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	chat := `{"messages":[
		{"from":"A","to":"B","text":"meet at the harbor tonight","date":"t1"},
		{"from":"B","to":"A","text":"send it to 1BoatSLRHtKNngkdXEeobR76b53LETtpyT","date":"t2"}
	]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "chat_export.json"), []byte(chat), 0644))
	return root
}

func TestServiceEndToEnd(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	assert.True(t, svc.SemanticEnabled(), "mock embedder answers the probe")

	report, err := svc.Ingest(ctx, writeFixtureArchive(t))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Messages)

	// Relevance mode over the lexical index.
	resp, err := svc.Search(ctx, "harbor")
	require.NoError(t, err)
	assert.Equal(t, search.ModeRelevance, resp.Mode)
	require.GreaterOrEqual(t, resp.Count, 1)
	assert.Contains(t, resp.Results[0].Text, "harbor")
	require.NotNil(t, resp.Summary)

	// Pattern mode finds the address.
	resp, err = svc.Search(ctx, "any bitcoin activity")
	require.NoError(t, err)
	assert.Equal(t, search.ModePattern, resp.Mode)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "1BoatSLRHtKNngkdXEeobR76b53LETtpyT", resp.Hits[0].Match)

	require.NoError(t, svc.Reindex(ctx))
}

func TestServiceIngestStandaloneDescriptor(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "report.xml")
	descriptor := `<report>
  <Chats>
    <Conversation App="sms" ParticipantID="p9">
      <Message Direction="in"><Content>descriptor only path</Content></Message>
    </Conversation>
  </Chats>
</report>`
	require.NoError(t, os.WriteFile(path, []byte(descriptor), 0644))

	report, err := svc.Ingest(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Messages)

	resp, err := svc.Search(ctx, "descriptor")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestServiceIngestMissingPath(t *testing.T) {
	svc := newService(t)
	_, err := svc.Ingest(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
