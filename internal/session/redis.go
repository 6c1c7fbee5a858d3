package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/beespeak/honeypot/internal/intel"
)

// maxTxRetries bounds the optimistic WATCH loop on contended sessions.
const maxTxRetries = 5

// RedisStore keeps session aggregates in Redis as JSON values with a TTL.
// Read-modify-write sequences run inside a WATCH transaction and retry on
// conflict, so concurrent turns for the same session serialize while
// distinct sessions never contend.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("honeypot.internal.session.redis"),
		now:    time.Now,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("honeypot:session:%s", id)
}

// mutate loads the session (creating it if absent), applies fn, and writes
// the result back atomically. Retries on WATCH conflicts.
func (s *RedisStore) mutate(ctx context.Context, sessionID string, fn func(*State)) (State, error) {
	key := sessionKey(sessionID)
	var result State

	txn := func(tx *redis.Tx) error {
		state := newState(sessionID, s.now().UTC())
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &state); err != nil {
				return fmt.Errorf("session: failed to decode state: %w", err)
			}
		case errors.Is(err, redis.Nil):
			// first reference; start from zeroed defaults
		default:
			return fmt.Errorf("session: failed to load state: %w", err)
		}

		fn(&state)
		result = state.clone()

		encoded, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("session: failed to encode state: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err := s.redis.Watch(ctx, txn, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return State{}, err
	}
	return State{}, fmt.Errorf("session: watch conflict persisted for %s", sessionID)
}

// StoreTurn records one turn and returns a snapshot of the aggregate.
func (s *RedisStore) StoreTurn(ctx context.Context, sessionID string, meta Metadata, scamConfidence float64, scamDetected bool, indicators intel.Indicators) (State, error) {
	ctx, span := s.tracer.Start(ctx, "session.store_turn")
	defer span.End()

	state, err := s.mutate(ctx, sessionID, func(st *State) {
		st.applyTurn(meta, scamConfidence, scamDetected, indicators, s.now().UTC())
	})
	if err != nil {
		span.RecordError(err)
	}
	return state, err
}

// GetCallbackStatus returns a copy of the callback state, creating the
// session lazily if needed.
func (s *RedisStore) GetCallbackStatus(ctx context.Context, sessionID string) (CallbackState, error) {
	ctx, span := s.tracer.Start(ctx, "session.get_callback_status")
	defer span.End()

	state, err := s.mutate(ctx, sessionID, func(*State) {})
	if err != nil {
		span.RecordError(err)
		return CallbackState{}, err
	}
	return state.FinalCallback, nil
}

// UpdateCallbackStatus applies a partial update and returns the result.
func (s *RedisStore) UpdateCallbackStatus(ctx context.Context, sessionID string, update CallbackUpdate) (CallbackState, error) {
	ctx, span := s.tracer.Start(ctx, "session.update_callback_status")
	defer span.End()

	state, err := s.mutate(ctx, sessionID, func(st *State) {
		st.FinalCallback.apply(update)
		st.UpdatedAt = s.now().UTC()
	})
	if err != nil {
		span.RecordError(err)
		return CallbackState{}, err
	}
	return state.FinalCallback, nil
}

// Clear drops a session's state entirely.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "session.clear")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: failed to clear %s: %w", sessionID, err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
