package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

// SessionStore keeps one pending booking per browser id. The TTL only
// collects abandoned records; it never stands for a state change.
type SessionStore struct {
	c   *redis.Client
	ttl time.Duration
}

func NewSessionStore(c *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{c: c, ttl: ttl}
}

func pendingKey(browserID string) string { return "pending:" + browserID }

func (s *SessionStore) Get(ctx context.Context, browserID string) (*domain.PendingBooking, error) {
	if browserID == "" {
		observability.ObserveSessionStore("miss")
		return nil, nil
	}
	b, err := s.c.Get(ctx, pendingKey(browserID)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveSessionStore("miss")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec domain.PendingBooking
	if err := json.Unmarshal(b, &rec); err != nil {
		// a record we cannot read is as good as no record
		observability.ObserveSessionStore("corrupt")
		log.Warn().Err(err).Msg("discarding unreadable pending booking")
		return nil, nil
	}
	observability.ObserveSessionStore("hit")
	return &rec, nil
}

func (s *SessionStore) Set(ctx context.Context, browserID string, rec domain.PendingBooking) error {
	if browserID == "" {
		return errors.New("session store: empty browser id")
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	observability.ObserveSessionStore("set")
	return s.c.Set(ctx, pendingKey(browserID), b, s.ttl).Err()
}

func (s *SessionStore) Clear(ctx context.Context, browserID string) error {
	if browserID == "" {
		return nil
	}
	observability.ObserveSessionStore("clear")
	return s.c.Del(ctx, pendingKey(browserID)).Err()
}

var _ domain.SessionStore = (*SessionStore)(nil)
