package repositories

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers checkout keys so a retried request does not
// create a second order.
type IdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *IdempotencyStore) Key(sessionID, requestKey string) string {
	return "idem:checkout:" + sessionID + ":" + requestKey
}

// Claim reserves key. It reports false when the key was already claimed.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "pending", s.ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "claim idempotency key")
	}
	return ok, nil
}

// Complete stores the response body for a claimed key.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, body []byte) error {
	return s.rdb.Set(ctx, key, body, s.ttl).Err()
}

// Result returns the stored response, or nil while the first request is
// still in flight.
func (s *IdempotencyStore) Result(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get idempotency result")
	}
	if string(raw) == "pending" {
		return nil, nil
	}
	return raw, nil
}

// Release frees a key after a failed attempt so the client may retry.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
