package pipeline

import (
	"fmt"
	"strings"

	"github.com/beespeak/honeypot/internal/history"
	"github.com/beespeak/honeypot/internal/intel"
	"github.com/beespeak/honeypot/internal/session"
)

// ValidationError reports a rejected request field. The handler maps it to a
// 400 response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IncomingMessage is a single turn as submitted by the caller. Timestamp is
// optional; an omitted timestamp sorts to the front of the merged history.
type IncomingMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp *int64 `json:"timestamp,omitempty"`
}

func (m IncomingMessage) toHistory() history.Message {
	var ts int64
	if m.Timestamp != nil {
		ts = *m.Timestamp
	}
	return history.Message{
		Sender:    strings.ToLower(strings.TrimSpace(m.Sender)),
		Text:      m.Text,
		Timestamp: ts,
	}
}

func (m IncomingMessage) validate(field string) *ValidationError {
	sender := strings.ToLower(strings.TrimSpace(m.Sender))
	if sender != history.SenderScammer && sender != history.SenderUser {
		return invalid(field+".sender", `must be "scammer" or "user"`)
	}
	if strings.TrimSpace(m.Text) == "" {
		return invalid(field+".text", "must not be empty")
	}
	return nil
}

// Request is the inbound payload for one processing turn.
type Request struct {
	SessionID           string            `json:"sessionId"`
	Message             IncomingMessage   `json:"message"`
	ConversationHistory []IncomingMessage `json:"conversationHistory,omitempty"`
	Metadata            session.Metadata  `json:"metadata"`
}

// Validate enforces the request contract. The first violation wins.
func (r Request) Validate() error {
	if strings.TrimSpace(r.SessionID) == "" {
		return invalid("sessionId", "must not be empty")
	}
	if err := r.Message.validate("message"); err != nil {
		return err
	}
	for i, msg := range r.ConversationHistory {
		if err := msg.validate(fmt.Sprintf("conversationHistory[%d]", i)); err != nil {
			return err
		}
	}
	if strings.TrimSpace(r.Metadata.Channel) == "" {
		return invalid("metadata.channel", "must not be empty")
	}
	if strings.TrimSpace(r.Metadata.Language) == "" {
		return invalid("metadata.language", "must not be empty")
	}
	if strings.TrimSpace(r.Metadata.Locale) == "" {
		return invalid("metadata.locale", "must not be empty")
	}
	return nil
}

// SessionContext echoes the engagement metadata back to the caller.
type SessionContext struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Locale   string `json:"locale"`
}

// Response is the verdict returned for one processing turn.
type Response struct {
	SessionID         string           `json:"sessionId"`
	IsScam            bool             `json:"is_scam"`
	DecisionSource    string           `json:"decision_source"`
	ConfidenceScore   float64          `json:"confidence_score"`
	Category          *string          `json:"category"`
	ExtractedEntities intel.Indicators `json:"extracted_entities"`
	SessionContext    SessionContext   `json:"session_context"`
	AgentNotes        string           `json:"agent_notes"`
	Reply             string           `json:"reply,omitempty"`
}
