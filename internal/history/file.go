package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"
)

// FileStore persists conversation histories as a single JSON document on
// disk, written atomically. An advisory file lock guards against a second
// process touching the same store; the mutex serializes goroutines within
// this one.
type FileStore struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// NewFileStore creates a file-backed history store at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("history: file store path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: failed to create store dir: %w", err)
	}
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

func (s *FileStore) readAll() (map[string][]Message, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string][]Message), nil
		}
		return nil, fmt.Errorf("history: failed to read store: %w", err)
	}

	store := make(map[string][]Message)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &store); err != nil {
			return nil, fmt.Errorf("history: failed to decode store: %w", err)
		}
	}
	return store, nil
}

// Load returns the persisted history, empty if the session is unknown.
func (s *FileStore) Load(_ context.Context, sessionID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("history: failed to acquire read lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	store, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return append([]Message(nil), store[sessionID]...), nil
}

// Replace overwrites the persisted history for a session and rewrites the
// store file atomically.
func (s *FileStore) Replace(_ context.Context, sessionID string, messages []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("history: failed to acquire write lock: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	store, err := s.readAll()
	if err != nil {
		return err
	}
	store[sessionID] = append([]Message(nil), messages...)

	encoded, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("history: failed to encode store: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(encoded)); err != nil {
		return fmt.Errorf("history: failed to write store: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
