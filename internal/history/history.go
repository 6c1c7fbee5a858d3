package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Message senders. The honeypot only ever talks to one of these two.
const (
	SenderScammer = "scammer"
	SenderUser    = "user"
)

// Message is a single conversation turn. Immutable once created.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// Valid reports whether the message has a known sender and non-blank text.
func (m Message) Valid() bool {
	if m.Sender != SenderScammer && m.Sender != SenderUser {
		return false
	}
	return strings.TrimSpace(m.Text) != ""
}

// key identifies a message for dedup during merge.
func (m Message) key() string {
	return fmt.Sprintf("%d|%s|%s", m.Timestamp, strings.TrimSpace(m.Text), strings.ToLower(strings.TrimSpace(m.Sender)))
}

// Merge combines message sequences into one history: invalid entries are
// skipped, duplicates (same timestamp, trimmed text, lowercased sender)
// collapse, and the result is sorted ascending by timestamp. Merging the
// same inputs twice yields the same sequence.
func Merge(sequences ...[]Message) []Message {
	var merged []Message
	seen := make(map[string]struct{})

	for _, seq := range sequences {
		for _, msg := range seq {
			if !msg.Valid() {
				continue
			}
			k := msg.key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, msg)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp < merged[j].Timestamp
	})
	return merged
}

// ContextText renders a history as "sender: text" lines for use as an
// extraction haystack.
func ContextText(messages []Message) string {
	var b strings.Builder
	for _, msg := range messages {
		if msg.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(msg.Sender)
		b.WriteString(": ")
		b.WriteString(msg.Text)
	}
	return b.String()
}

// Store persists full conversation histories keyed by session id.
type Store interface {
	// Load returns the persisted history, empty if the session is unknown.
	Load(ctx context.Context, sessionID string) ([]Message, error)
	// Replace overwrites the persisted history for a session.
	Replace(ctx context.Context, sessionID string, messages []Message) error
}
