package search

import "github.com/poiesic/evidex/core"

// Mode identifies which strategy answered a query.
type Mode string

const (
	// ModePattern is the structured-pattern scan triggered by
	// cryptocurrency-related queries.
	ModePattern Mode = "pattern"

	// ModeRelevance is the hybrid lexical + semantic ranking.
	ModeRelevance Mode = "relevance"
)

// PatternHit is one message matched by a structured pattern.
type PatternHit struct {
	ID    core.ID `json:"id"`
	Text  string  `json:"text"`
	Match string  `json:"match"`
}

// Response is the answer to a search query. Results is populated in
// relevance mode, Hits in pattern mode. Summary is nil when no summarizer
// is configured or summarization failed.
type Response struct {
	Query   string          `json:"query"`
	Mode    Mode            `json:"mode"`
	Count   int             `json:"count"`
	Results []*core.Message `json:"results,omitempty"`
	Hits    []PatternHit    `json:"hits,omitempty"`
	Summary *string         `json:"summary"`
}
