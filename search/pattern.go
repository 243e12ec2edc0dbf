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

package search

import (
	"context"
	"regexp"
	"strings"
)

// patternTriggers are query tokens that route a search to the structured
// pattern scan instead of relevance ranking.
var patternTriggers = []string{"crypto", "bitcoin", "ethereum", "wallet"}

// Address patterns. BTC is legacy base58 (P2PKH/P2SH), ETH is the 20-byte
// hex form.
var cryptoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b[13][A-HJ-NP-Za-km-z1-9]{25,34}\b`),
	regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`),
}

// patternScanLimit caps how many stored messages a pattern scan reads.
const patternScanLimit = 20000

// isPatternQuery reports whether the query should be answered by the
// pattern scan.
func isPatternQuery(query string) bool {
	q := strings.ToLower(query)
	for _, trigger := range patternTriggers {
		if strings.Contains(q, trigger) {
			return true
		}
	}
	return false
}

// firstCryptoMatch returns the first address found in text, or "".
func firstCryptoMatch(text string) string {
	for _, pat := range cryptoPatterns {
		if m := pat.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// patternSearch scans stored message texts for cryptocurrency addresses.
func (e *Engine) patternSearch(ctx context.Context, query string) (*Response, error) {
	texts, err := e.store.MessageTexts(ctx, patternScanLimit)
	if err != nil {
		return nil, err
	}

	var hits []PatternHit
	for _, mt := range texts {
		if m := firstCryptoMatch(mt.Text); m != "" {
			hits = append(hits, PatternHit{ID: mt.ID, Text: mt.Text, Match: m})
		}
	}

	resp := &Response{
		Query: query,
		Mode:  ModePattern,
		Count: len(hits),
		Hits:  hits,
	}
	resp.Summary = e.summarizeHits(ctx, query, hits)
	return resp, nil
}

// summarizeHits digests the top pattern hits. If the summarizer fails, the
// joined excerpt itself (truncated) stands in, so pattern responses always
// carry context when matches exist.
func (e *Engine) summarizeHits(ctx context.Context, query string, hits []PatternHit) *string {
	if len(hits) == 0 || e.summarizer == nil {
		return nil
	}

	top := hits
	if len(top) > summaryTopN {
		top = top[:summaryTopN]
	}
	lines := make([]string, len(top))
	for i, h := range top {
		lines[i] = h.Text
	}
	joined := strings.Join(lines, "\n")

	summary, err := e.summarize(ctx, query, joined)
	if err != nil {
		if len(joined) > 1000 {
			joined = joined[:1000]
		}
		return &joined
	}
	return &summary
}
