package session

import (
	"context"
	"sync"
	"time"

	"github.com/beespeak/honeypot/internal/intel"
)

// MemoryStore keeps session aggregates in process memory. Each session has
// its own lock so concurrent turns for the same id serialize without
// blocking other sessions.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*memorySession

	now func() time.Time
}

type memorySession struct {
	mu    sync.Mutex
	state State
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
		now:      time.Now,
	}
}

func (s *MemoryStore) session(sessionID string) *memorySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		entry = &memorySession{state: newState(sessionID, s.now().UTC())}
		s.sessions[sessionID] = entry
	}
	return entry
}

// StoreTurn records one turn and returns a snapshot of the aggregate.
func (s *MemoryStore) StoreTurn(_ context.Context, sessionID string, meta Metadata, scamConfidence float64, scamDetected bool, indicators intel.Indicators) (State, error) {
	entry := s.session(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.state.applyTurn(meta, scamConfidence, scamDetected, indicators, s.now().UTC())
	return entry.state.clone(), nil
}

// GetCallbackStatus returns a copy of the callback state.
func (s *MemoryStore) GetCallbackStatus(_ context.Context, sessionID string) (CallbackState, error) {
	entry := s.session(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.state.clone().FinalCallback, nil
}

// UpdateCallbackStatus applies a partial update and returns the result.
func (s *MemoryStore) UpdateCallbackStatus(_ context.Context, sessionID string, update CallbackUpdate) (CallbackState, error) {
	entry := s.session(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.state.FinalCallback.apply(update)
	entry.state.UpdatedAt = s.now().UTC()
	return entry.state.clone().FinalCallback, nil
}

// Clear drops a session's state entirely.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

var _ Store = (*MemoryStore)(nil)
