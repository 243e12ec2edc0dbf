// Package search implements the hybrid query engine.
//
// A query runs in one of two modes. Queries mentioning cryptocurrency
// (crypto, bitcoin, ethereum, wallet) trigger a structured pattern scan
// that matches BTC and ETH address shapes against stored message texts.
// All other queries run relevance ranking: a lexical full-text leg and a
// semantic similarity leg execute concurrently and merge, lexical results
// first, deduplicated by record ID.
//
// Both optional layers degrade silently. A disabled vector index reduces
// relevance mode to lexical-only; a failing summarizer leaves the response
// summary empty. Neither condition fails the query.
package search
