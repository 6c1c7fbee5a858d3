package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisStore persists conversation histories in Redis as JSON lists with a TTL.
type RedisStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed history store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("history: redis client cannot be nil")
	}
	return &RedisStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("honeypot.internal.history.redis"),
	}
}

func historyKey(id string) string {
	return fmt.Sprintf("honeypot:history:%s", id)
}

// Load returns the persisted history, empty if the session is unknown.
func (s *RedisStore) Load(ctx context.Context, sessionID string) ([]Message, error) {
	ctx, span := s.tracer.Start(ctx, "history.load")
	defer span.End()

	data, err := s.redis.Get(ctx, historyKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("history: failed to load: %w", err)
	}

	var messages []Message
	if err := json.Unmarshal(data, &messages); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("history: failed to decode: %w", err)
	}
	return messages, nil
}

// Replace overwrites the persisted history for a session.
func (s *RedisStore) Replace(ctx context.Context, sessionID string, messages []Message) error {
	ctx, span := s.tracer.Start(ctx, "history.replace")
	defer span.End()

	data, err := json.Marshal(messages)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("history: failed to encode: %w", err)
	}
	if err := s.redis.Set(ctx, historyKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("history: failed to persist: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
