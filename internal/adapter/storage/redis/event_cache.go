package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// EventCache implements ports.EventCache as a read-then-write pair
// over a keyed TTL entry. It is a best-effort fast path: the orders
// unique constraint in Postgres is the authority for duplicate
// payment events.
type EventCache struct {
	client *goredis.Client
	prefix string
}

// NewEventCache creates a new Redis-backed event cache.
func NewEventCache(client *goredis.Client) *EventCache {
	return &EventCache{
		client: client,
		prefix: "event:",
	}
}

// Seen reports whether the payment reference was already recorded. It
// is a pure read: references are recorded only by MarkSeen, once the
// settlement committed, so a failed settlement never poisons retries.
func (s *EventCache) Seen(ctx context.Context, paymentReference string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+paymentReference).Result()
	if err != nil {
		return false, fmt.Errorf("redis event check: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records a settled payment reference for ttl.
func (s *EventCache) MarkSeen(ctx context.Context, paymentReference string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+paymentReference, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis event mark: %w", err)
	}
	return nil
}
