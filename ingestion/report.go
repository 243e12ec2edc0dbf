package ingestion

import "github.com/google/uuid"

// Report summarizes one ingestion run.
type Report struct {
	// RunID uniquely identifies this run in logs and downstream tooling.
	RunID uuid.UUID `json:"run_id"`

	// Messages is the number of message records stored, including
	// synthetic messages derived from call records.
	Messages int `json:"messages"`

	// Contacts is the number of contact records stored.
	Contacts int `json:"contacts"`

	// Media is the number of media metadata records stored.
	Media int `json:"media"`

	// ManifestCounts holds the per-role file counts from classification.
	ManifestCounts map[string]int `json:"manifest_counts"`

	// ParseFailures counts files that were malformed. Their salvageable
	// records are still included in the totals above.
	ParseFailures int `json:"parse_failures"`

	// DescriptorFallback is true when classification relied on the
	// directory scan alone, because no descriptor was found or the one
	// found was malformed.
	DescriptorFallback bool `json:"descriptor_fallback"`
}
