package mock

import (
	"context"
	"fmt"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via a function field.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, uses default deterministic behavior.
	SummarizeFunc func(ctx context.Context, query, evidence string) (string, error)

	callCount int
}

// NewMockSummarizer creates a mock summarizer with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockSummarizer().
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns a deterministic canned summary derived from the query.
func (m *MockSummarizer) Summarize(ctx context.Context, query, evidence string) (string, error) {
	m.callCount++

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, query, evidence)
	}

	return fmt.Sprintf("summary for %q over %d bytes of evidence", query, len(evidence)), nil
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and any injected behavior.
func (m *MockSummarizer) Reset() {
	m.callCount = 0
	m.SummarizeFunc = nil
}
