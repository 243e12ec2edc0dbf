package core

import "fmt"

// ID is a store-assigned identifier for persisted records.
// The record store allocates IDs sequentially; 0 means "not yet persisted".
type ID int64

// Message is the canonical shape every chat-bearing source converges on.
// Timestamp is kept as an opaque string: extraction formats do not share a
// clock or a date format, and normalizing them would destroy evidence.
type Message struct {
	ID        ID
	Thread    string // opaque grouping key, empty when the source has none
	Sender    string
	Receiver  string
	Timestamp string
	Text      string // always present, possibly empty, never "absent"
	Raw       string // original source fragment, preserved verbatim for audit
}

// Contact is the canonical contact shape. Duplicate contacts across files
// are preserved as-is; the store never merges them.
type Contact struct {
	Name   string
	Phones []string
	Emails []string
}

// Call is the canonical call-log shape. Type is free-text: vendors disagree
// on direction vocabulary ("outgoing", "MISSED", "2", ...).
type Call struct {
	Number    string
	Type      string
	Timestamp string
	Duration  string
}

// AsMessage converts a call record into the synthetic message form under
// which calls are persisted. Calls share the lexical index with chat
// messages, so an investigator query like "missed call" hits both.
func (c *Call) AsMessage() *Message {
	return &Message{
		Sender:    c.Number,
		Timestamp: c.Timestamp,
		Text:      fmt.Sprintf("Call record type:%s duration:%s", c.Type, c.Duration),
	}
}

// MediaItem describes a media file referenced by an archive.
type MediaItem struct {
	Path      string
	Filename  string
	Type      string
	Timestamp string
	Tags      []string
}

// FileRole classifies an extracted file by the kind of records it carries.
type FileRole int

const (
	RoleChat FileRole = iota + 1
	RoleCall
	RoleContact
	RoleMedia
)

// String returns the lowercase role name.
func (r FileRole) String() string {
	switch r {
	case RoleChat:
		return "chat"
	case RoleCall:
		return "call"
	case RoleContact:
		return "contact"
	case RoleMedia:
		return "media"
	default:
		return "unknown"
	}
}

// Manifest is the classification result for one unpacked archive. It is
// built once per ingestion, is immutable after construction, and a file may
// legitimately appear under several roles (a descriptor that both references
// files and embeds records, for example).
type Manifest struct {
	Root       string
	Descriptor string // path of the master descriptor file, empty when absent
	Chats      []string
	Calls      []string
	Contacts   []string
	Media      []string

	// DescriptorFallback is true when classification relied on the
	// directory scan alone: no descriptor was found, or the one found was
	// malformed.
	DescriptorFallback bool
}

// Files returns the file list for a role.
func (m *Manifest) Files(role FileRole) []string {
	switch role {
	case RoleChat:
		return m.Chats
	case RoleCall:
		return m.Calls
	case RoleContact:
		return m.Contacts
	case RoleMedia:
		return m.Media
	default:
		return nil
	}
}

// Counts returns the per-role file counts, keyed by role name.
func (m *Manifest) Counts() map[string]int {
	return map[string]int{
		"chats":    len(m.Chats),
		"calls":    len(m.Calls),
		"contacts": len(m.Contacts),
		"media":    len(m.Media),
	}
}

// Dedupe removes duplicate paths from every role list, preserving
// first-seen order.
func (m *Manifest) Dedupe() {
	m.Chats = dedupe(m.Chats)
	m.Calls = dedupe(m.Calls)
	m.Contacts = dedupe(m.Contacts)
	m.Media = dedupe(m.Media)
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// MessageText pairs a message id with its text. Used by the vector index
// and the pattern scanner, which never need the full record.
type MessageText struct {
	ID   ID
	Text string
}

// SimilarityMatch is one hit from vector similarity search.
type SimilarityMatch struct {
	MessageID ID
	Score     float32
}
