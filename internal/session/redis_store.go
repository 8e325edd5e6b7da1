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
)

// RedisStore persists profiles as JSON with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStore panics on a nil client; a missing Redis is a wiring bug.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if client == nil {
		panic("session: redis client cannot be nil")
	}
	return &RedisStore{
		client: client,
		ttl:    ttl,
		tracer: otel.Tracer("vitalpoint.internal.session"),
	}
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (Profile, error) {
	ctx, span := s.tracer.Start(ctx, "session.load")
	defer span.End()

	data, err := s.client.Get(ctx, profileKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Profile{}, ErrNotFound
		}
		span.RecordError(err)
		return Profile{}, fmt.Errorf("session: load profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		span.RecordError(err)
		return Profile{}, fmt.Errorf("session: decode profile: %w", err)
	}
	return p, nil
}

func (s *RedisStore) Save(ctx context.Context, p Profile) error {
	ctx, span := s.tracer.Start(ctx, "session.save")
	defer span.End()

	if p.SessionID == "" {
		return errors.New("session: profile has no session id")
	}
	data, err := json.Marshal(p)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: encode profile: %w", err)
	}
	if err := s.client.Set(ctx, profileKey(p.SessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: persist profile: %w", err)
	}
	return nil
}

func profileKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
