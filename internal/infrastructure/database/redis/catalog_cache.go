// internal/infrastructure/database/redis/catalog_cache.go
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/domain/catalog"
)

const catalogKeyPrefix = "catalog:product:"

// CatalogCache is a read-through cache for product lookups by handle.
// Redis failures are logged and the lookup falls through to the next repository.
type CatalogCache struct {
	client *Client
	next   catalog.Repository
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCatalogCache wraps next with a product cache
func NewCatalogCache(client *Client, next catalog.Repository, ttl time.Duration, logger *logrus.Logger) *CatalogCache {
	return &CatalogCache{
		client: client,
		next:   next,
		ttl:    ttl,
		logger: logger,
	}
}

// GetByHandle serves the product from redis, loading and storing it on a miss
func (c *CatalogCache) GetByHandle(ctx context.Context, handle string) (*catalog.Product, error) {
	key := catalogKeyPrefix + handle

	var cached catalog.Product
	err := c.client.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, redis.Nil) {
		c.logger.WithError(err).WithField("key", key).Warn("product cache read failed")
	}

	product, err := c.next.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}

	if err := c.client.SetJSON(ctx, key, product, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("product cache write failed")
	}
	return product, nil
}

// List is not cached
func (c *CatalogCache) List(ctx context.Context, limit int) ([]catalog.Product, error) {
	return c.next.List(ctx, limit)
}

// Upsert writes through and drops the cached entry
func (c *CatalogCache) Upsert(ctx context.Context, product *catalog.Product) error {
	if err := c.next.Upsert(ctx, product); err != nil {
		return err
	}

	key := catalogKeyPrefix + product.Handle
	if err := c.client.Redis.Del(ctx, key).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("product cache invalidation failed")
	}
	return nil
}
