package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/notifycenter/pkg/cache"
)

// Cache implements cache.Cache on top of a Redis client.
type Cache struct {
	db     redis.UniversalClient
	prefix string
}

var _ cache.Cache = (*Cache)(nil)

// NewCache wraps client; every key is stored as prefix+key.
func NewCache(client redis.UniversalClient, prefix string) *Cache {
	return &Cache{db: client, prefix: prefix}
}

// Get returns cache.ErrMiss for absent keys.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.db.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cache.ErrMiss
	}
	if err != nil {
		return nil, errors.Join(ErrCacheOperation, err)
	}
	return val, nil
}

// Set stores value; ttl <= 0 stores it without expiration.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.db.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return errors.Join(ErrCacheOperation, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	if err := c.db.Del(ctx, prefixed...).Err(); err != nil {
		return errors.Join(ErrCacheOperation, err)
	}
	return nil
}
