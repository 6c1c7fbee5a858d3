package history

import (
	"context"
	"sync"
)

// MemoryStore keeps conversation histories in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]Message)}
}

// Load returns a copy of the persisted history, empty if unknown.
func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.sessions[sessionID]...), nil
}

// Replace overwrites the persisted history for a session.
func (s *MemoryStore) Replace(_ context.Context, sessionID string, messages []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append([]Message(nil), messages...)
	return nil
}

var _ Store = (*MemoryStore)(nil)
