package repositories

import (
	"context"
	"encoding/json"
	"time"

	"furniture-shop/models"
	"furniture-shop/services"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cartKeyPrefix = "cart:"

// CartRepository keeps one JSON document per session in redis. Writes are
// guarded by the cart version under WATCH.
type CartRepository struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewCartRepository(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CartRepository {
	return &CartRepository{rdb: rdb, ttl: ttl, log: log}
}

func cartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}

// LoadCart returns (nil, nil) for a session without a cart.
func (r *CartRepository) LoadCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	raw, err := r.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "get cart")
	}
	var cart models.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return &cart, nil
}

func (r *CartRepository) PersistCart(ctx context.Context, sessionID string, cart models.Cart, expectedVersion int64) error {
	key := cartKey(sessionID)
	payload, err := json.Marshal(cart)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}

	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != expectedVersion {
			return services.ErrStaleCart
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case errors.Is(err, redis.TxFailedErr), errors.Is(err, services.ErrStaleCart):
		r.log.Info("stale cart write rejected",
			zap.String("session_id", sessionID),
			zap.Int64("expected_version", expectedVersion))
		return services.ErrStaleCart
	case err != nil:
		return errors.Wrap(err, "persist cart")
	}
	return nil
}

func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "get cart")
	}
	var head struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return 0, errors.Wrap(err, "decode cart version")
	}
	return head.Version, nil
}
