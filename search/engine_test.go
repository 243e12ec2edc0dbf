package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/poiesic/evidex/ai/mock"
	"github.com/poiesic/evidex/core"
	"github.com/poiesic/evidex/storage"
	"github.com/poiesic/evidex/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreWithMessages(t *testing.T, texts ...string) storage.RecordStore {
	t.Helper()
	store, err := sqlite.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	msgs := make([]*core.Message, len(texts))
	for i, text := range texts {
		msgs[i] = &core.Message{Sender: fmt.Sprintf("S%d", i+1), Text: text}
	}
	_, err = store.InsertMessages(context.Background(), msgs)
	require.NoError(t, err)
	return store
}

// fakeIndex is an in-test SemanticIndex returning canned matches.
type fakeIndex struct {
	enabled bool
	matches []core.SimilarityMatch
	err     error
}

func (f *fakeIndex) Enabled() bool { return f.enabled }

func (f *fakeIndex) SemanticSearch(ctx context.Context, query string, topK int) ([]core.SimilarityMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.matches) > topK {
		return f.matches[:topK], nil
	}
	return f.matches, nil
}

func TestSearch_EmptyQueryYieldsEmptyResponse(t *testing.T) {
	engine := NewEngine(newStoreWithMessages(t, "anything"))

	resp, err := engine.Search(context.Background(), "   ")
	require.NoError(t, err, "malformed queries degrade, they do not error")
	assert.Equal(t, ModeRelevance, resp.Mode)
	assert.Zero(t, resp.Count)
	assert.Empty(t, resp.Results)
	assert.Nil(t, resp.Summary)
}

func TestSearch_PatternModeFindsBitcoinAddress(t *testing.T) {
	store := newStoreWithMessages(t,
		"send funds to 1BoatSLRHtKNngkdXEeobR76b53LETtpyT before friday",
		"lunch at noon",
	)
	engine := NewEngine(store)

	resp, err := engine.Search(context.Background(), "any bitcoin wallets?")
	require.NoError(t, err)

	assert.Equal(t, ModePattern, resp.Mode)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, core.ID(1), resp.Hits[0].ID)
	assert.Equal(t, "1BoatSLRHtKNngkdXEeobR76b53LETtpyT", resp.Hits[0].Match)
	assert.Empty(t, resp.Results)
	assert.Nil(t, resp.Summary)
}

func TestSearch_PatternModeFindsEthereumAddress(t *testing.T) {
	addr := "0x" + strings.Repeat("aB3f", 10)
	store := newStoreWithMessages(t, "wallet is "+addr)
	engine := NewEngine(store)

	resp, err := engine.Search(context.Background(), "ethereum transfers")
	require.NoError(t, err)

	require.Len(t, resp.Hits, 1)
	assert.Equal(t, addr, resp.Hits[0].Match)
}

func TestSearch_PatternModeNoMatches(t *testing.T) {
	store := newStoreWithMessages(t, "nothing of interest", "still nothing")
	engine := NewEngine(store)

	resp, err := engine.Search(context.Background(), "crypto activity")
	require.NoError(t, err)
	assert.Equal(t, ModePattern, resp.Mode)
	assert.Zero(t, resp.Count)
	assert.Empty(t, resp.Hits)
}

func TestSearch_AddressWithoutTriggerStaysRelevance(t *testing.T) {
	store := newStoreWithMessages(t, "pay 1BoatSLRHtKNngkdXEeobR76b53LETtpyT now")
	engine := NewEngine(store)

	resp, err := engine.Search(context.Background(), "payment schedule")
	require.NoError(t, err)
	assert.Equal(t, ModeRelevance, resp.Mode)
	assert.Empty(t, resp.Hits)
}

func TestSearch_RelevanceLexicalOnly(t *testing.T) {
	store := newStoreWithMessages(t,
		"the shipment arrives tuesday",
		"unrelated chatter",
		"more unrelated chatter",
	)
	engine := NewEngine(store)

	resp, err := engine.Search(context.Background(), "shipment")
	require.NoError(t, err)

	assert.Equal(t, ModeRelevance, resp.Mode)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "the shipment arrives tuesday", resp.Results[0].Text)
}

func TestSearch_RelevanceMergesSemanticAfterLexical(t *testing.T) {
	store := newStoreWithMessages(t,
		"invoice for the container",  // id 1, lexical hit
		"totally different subject",  // id 2, semantic-only hit
		"another unrelated sentence", // id 3
	)
	engine := NewEngine(store, WithSemanticIndex(&fakeIndex{
		enabled: true,
		matches: []core.SimilarityMatch{
			{MessageID: 2, Score: 0.9},
			{MessageID: 1, Score: 0.8}, // duplicate of lexical hit
		},
	}))

	resp, err := engine.Search(context.Background(), "invoice")
	require.NoError(t, err)

	require.Equal(t, 2, resp.Count)
	assert.Equal(t, core.ID(1), resp.Results[0].ID, "lexical hits come first")
	assert.Equal(t, core.ID(2), resp.Results[1].ID)
}

func TestSearch_RelevanceSkipsDeadSemanticIDs(t *testing.T) {
	store := newStoreWithMessages(t, "only message")
	engine := NewEngine(store, WithSemanticIndex(&fakeIndex{
		enabled: true,
		matches: []core.SimilarityMatch{
			{MessageID: 42, Score: 0.9}, // not in the store
			{MessageID: 1, Score: 0.5},
		},
	}))

	resp, err := engine.Search(context.Background(), "message")
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, core.ID(1), resp.Results[0].ID)
}

func TestSearch_RelevanceCapsMergedResults(t *testing.T) {
	texts := make([]string, 40)
	for i := range texts {
		if i < 20 {
			texts[i] = fmt.Sprintf("shared keyword payload number %d", i)
		} else {
			texts[i] = fmt.Sprintf("different subject line %d", i)
		}
	}
	store := newStoreWithMessages(t, texts...)

	// Semantic leg contributes IDs disjoint from the lexical hits.
	var matches []core.SimilarityMatch
	for id := core.ID(21); id <= 40; id++ {
		matches = append(matches, core.SimilarityMatch{MessageID: id, Score: 0.5})
	}
	engine := NewEngine(store, WithSemanticIndex(&fakeIndex{enabled: true, matches: matches}))

	resp, err := engine.Search(context.Background(), "payload")
	require.NoError(t, err)
	assert.Equal(t, mergedCap, resp.Count)
	assert.Len(t, resp.Results, mergedCap)
}

func TestSearch_SemanticFailureDegradesToLexical(t *testing.T) {
	store := newStoreWithMessages(t, "the answer is here")
	engine := NewEngine(store, WithSemanticIndex(&fakeIndex{
		enabled: true,
		err:     errors.New("embedder offline"),
	}))

	resp, err := engine.Search(context.Background(), "answer")
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "the answer is here", resp.Results[0].Text)
}

func TestSearch_DisabledIndexIsIgnored(t *testing.T) {
	store := newStoreWithMessages(t, "findable text")
	engine := NewEngine(store, WithSemanticIndex(&fakeIndex{enabled: false}))

	resp, err := engine.Search(context.Background(), "findable")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Count)
}

func TestSearch_SummaryOnRelevanceResults(t *testing.T) {
	store := newStoreWithMessages(t, "meeting about the contract")
	summarizer := mock.NewMockSummarizer()
	summarizer.SummarizeFunc = func(ctx context.Context, query, evidence string) (string, error) {
		assert.Contains(t, evidence, "meeting about the contract")
		return "they discussed the contract", nil
	}
	engine := NewEngine(store, WithSummarizer(summarizer))

	resp, err := engine.Search(context.Background(), "contract")
	require.NoError(t, err)
	require.NotNil(t, resp.Summary)
	assert.Equal(t, "they discussed the contract", *resp.Summary)
}

func TestSearch_SummaryFailureLeavesNil(t *testing.T) {
	store := newStoreWithMessages(t, "meeting about the contract")
	summarizer := mock.NewMockSummarizer()
	summarizer.SummarizeFunc = func(ctx context.Context, query, evidence string) (string, error) {
		return "", errors.New("model overloaded")
	}
	engine := NewEngine(store, WithSummarizer(summarizer))

	resp, err := engine.Search(context.Background(), "contract")
	require.NoError(t, err)
	assert.Nil(t, resp.Summary)
	assert.Equal(t, int64(1), engine.SummaryFailures())
}

func TestSearch_PatternSummaryFallsBackToExcerpt(t *testing.T) {
	text := "pay 1BoatSLRHtKNngkdXEeobR76b53LETtpyT today"
	store := newStoreWithMessages(t, text)
	summarizer := mock.NewMockSummarizer()
	summarizer.SummarizeFunc = func(ctx context.Context, query, evidence string) (string, error) {
		return "", errors.New("model overloaded")
	}
	engine := NewEngine(store, WithSummarizer(summarizer))

	resp, err := engine.Search(context.Background(), "bitcoin")
	require.NoError(t, err)
	require.NotNil(t, resp.Summary)
	assert.Contains(t, *resp.Summary, text)
}

func TestSearch_NoSummaryWithoutResults(t *testing.T) {
	store := newStoreWithMessages(t, "something")
	summarizer := mock.NewMockSummarizer()
	engine := NewEngine(store, WithSummarizer(summarizer))

	resp, err := engine.Search(context.Background(), "zzzznomatch")
	require.NoError(t, err)
	assert.Zero(t, resp.Count)
	assert.Nil(t, resp.Summary)
	assert.Zero(t, summarizer.CallCount())
}

func TestIsPatternQuery(t *testing.T) {
	assert.True(t, isPatternQuery("any CRYPTO here"))
	assert.True(t, isPatternQuery("bitcoin"))
	assert.True(t, isPatternQuery("show wallet addresses"))
	assert.False(t, isPatternQuery("payments to ethel"))
	assert.False(t, isPatternQuery("bank transfer"))
}
