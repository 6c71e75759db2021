// Package cache provides an optional Redis read-through cache for product
// views. Lookups survive a cache outage: callers treat any cache error as a
// miss and fall back to the store.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pkrawiec/catalog-import/internal/importer"
)

const viewKeyPrefix = "product:view:"

// ViewCache caches ProductViews in Redis with a bounded TTL.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis using a redis:// URL and verifies the connection.
func New(ctx context.Context, redisURL string, ttl time.Duration) (*ViewCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &ViewCache{client: client, ttl: ttl}, nil
}

func key(sku string) string {
	return viewKeyPrefix + sku
}

// Get returns the cached view for a SKU, or nil on a miss.
func (c *ViewCache) Get(ctx context.Context, sku string) (*importer.ProductView, error) {
	data, err := c.client.Get(ctx, key(sku)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var view importer.ProductView
	if err := json.Unmarshal([]byte(data), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Set stores a view under its SKU with the configured TTL.
func (c *ViewCache) Set(ctx context.Context, view *importer.ProductView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(view.SKU), data, c.ttl).Err()
}

// Invalidate removes all cached views. Called after a successful import,
// since every view may have changed under the full reload.
func (c *ViewCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, viewKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close releases the underlying Redis connection.
func (c *ViewCache) Close() error {
	return c.client.Close()
}
