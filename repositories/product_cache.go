package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"furniture-shop/models"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedProducts fronts ProductRepository with short-lived redis copies.
// Cache failures fall through to the database.
type CachedProducts struct {
	repo *ProductRepository
	rdb  *redis.Client
	ttl  time.Duration
	log  *zap.Logger
}

func NewCachedProducts(repo *ProductRepository, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedProducts {
	return &CachedProducts{repo: repo, rdb: rdb, ttl: ttl, log: log}
}

type productPage struct {
	Products []models.Product `json:"products"`
	Total    int              `json:"total"`
}

func (c *CachedProducts) FetchProduct(ctx context.Context, slug string) (models.Product, error) {
	key := "product:" + slug
	var p models.Product
	if c.get(ctx, key, &p) {
		return p, nil
	}
	p, err := c.repo.FetchProduct(ctx, slug)
	if err != nil {
		return p, err
	}
	c.set(ctx, key, p)
	return p, nil
}

func (c *CachedProducts) ListCategory(ctx context.Context, categoryID string, page, limit int) ([]models.Product, int, error) {
	key := fmt.Sprintf("products_list_%s_p%d_l%d", categoryID, page, limit)
	var cached productPage
	if c.get(ctx, key, &cached) {
		return cached.Products, cached.Total, nil
	}
	products, total, err := c.repo.ListCategory(ctx, categoryID, page, limit)
	if err != nil {
		return nil, 0, err
	}
	c.set(ctx, key, productPage{Products: products, Total: total})
	return products, total, nil
}

// Invalidate drops every cached product and listing.
func (c *CachedProducts) Invalidate(ctx context.Context) error {
	for _, pattern := range []string{"product:*", "products_list_*"} {
		iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return errors.Wrap(err, "delete cache key")
			}
		}
		if err := iter.Err(); err != nil {
			return errors.Wrap(err, "scan cache keys")
		}
	}
	return nil
}

func (c *CachedProducts) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("product cache read", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.log.Warn("product cache decode", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedProducts) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.Warn("product cache write", zap.String("key", key), zap.Error(err))
	}
}
