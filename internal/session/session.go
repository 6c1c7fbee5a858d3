package session

import (
	"context"
	"errors"
	"time"

	"github.com/beespeak/honeypot/internal/intel"
)

// ErrNotFound is returned when a session id has no stored state.
var ErrNotFound = errors.New("session: not found")

// Metadata carries the request-level engagement context. Values are
// overwritten on every turn (last-write-wins).
type Metadata struct {
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Locale   string `json:"locale"`
}

// CallbackState tracks final-callback delivery for one session.
// Sent transitions false to true at most once; the idempotency key is
// stable once assigned.
type CallbackState struct {
	Sent           bool       `json:"sent"`
	SentAt         *time.Time `json:"sentAt,omitempty"`
	IdempotencyKey string     `json:"idempotencyKey,omitempty"`
	LastAttemptAt  *time.Time `json:"lastAttemptAt,omitempty"`
	LastStatus     string     `json:"lastStatus,omitempty"`
}

// CallbackUpdate applies partial changes to CallbackState; nil fields are
// left untouched.
type CallbackUpdate struct {
	Sent           *bool
	SentAt         *time.Time
	IdempotencyKey *string
	LastAttemptAt  *time.Time
	LastStatus     *string
}

func (c *CallbackState) apply(u CallbackUpdate) {
	if u.Sent != nil {
		c.Sent = *u.Sent
	}
	if u.SentAt != nil {
		t := *u.SentAt
		c.SentAt = &t
	}
	if u.IdempotencyKey != nil {
		c.IdempotencyKey = *u.IdempotencyKey
	}
	if u.LastAttemptAt != nil {
		t := *u.LastAttemptAt
		c.LastAttemptAt = &t
	}
	if u.LastStatus != nil {
		c.LastStatus = *u.LastStatus
	}
}

// State is the per-session aggregate built up across turns.
type State struct {
	SessionID            string           `json:"sessionId"`
	Channel              string           `json:"channel"`
	Language             string           `json:"language"`
	Locale               string           `json:"locale"`
	CreatedAt            time.Time        `json:"createdAt"`
	UpdatedAt            time.Time        `json:"updatedAt"`
	TurnCount            int              `json:"turnCount"`
	LatestScamConfidence float64          `json:"latestScamConfidence"`
	LatestScamDetected   bool             `json:"latestScamDetected"`
	Indicators           intel.Indicators `json:"extractedIndicators"`
	FinalCallback        CallbackState    `json:"finalCallback"`
}

func (s State) clone() State {
	out := s
	out.Indicators = s.Indicators.Clone()
	if s.FinalCallback.SentAt != nil {
		t := *s.FinalCallback.SentAt
		out.FinalCallback.SentAt = &t
	}
	if s.FinalCallback.LastAttemptAt != nil {
		t := *s.FinalCallback.LastAttemptAt
		out.FinalCallback.LastAttemptAt = &t
	}
	return out
}

// applyTurn folds one pipeline turn into the aggregate: metadata
// last-write-wins, turn count incremented, latest verdict overwritten,
// indicators union-merged.
func (s *State) applyTurn(meta Metadata, scamConfidence float64, scamDetected bool, indicators intel.Indicators, now time.Time) {
	s.Channel = meta.Channel
	s.Language = meta.Language
	s.Locale = meta.Locale
	s.TurnCount++
	s.LatestScamConfidence = scamConfidence
	s.LatestScamDetected = scamDetected
	s.Indicators.Merge(indicators)
	s.UpdatedAt = now
}

func newState(sessionID string, now time.Time) State {
	return State{
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store aggregates per-session evidence. Implementations serialize access
// per session id; distinct sessions never contend. All returned state is a
// snapshot copy.
type Store interface {
	// StoreTurn records one turn and returns the updated aggregate.
	StoreTurn(ctx context.Context, sessionID string, meta Metadata, scamConfidence float64, scamDetected bool, indicators intel.Indicators) (State, error)
	// GetCallbackStatus returns the callback state, creating the session
	// lazily if needed.
	GetCallbackStatus(ctx context.Context, sessionID string) (CallbackState, error)
	// UpdateCallbackStatus applies a partial update and returns the result.
	UpdateCallbackStatus(ctx context.Context, sessionID string, update CallbackUpdate) (CallbackState, error)
	// Clear drops a session entirely.
	Clear(ctx context.Context, sessionID string) error
}
