package kvstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cached fronts a primary store with a Redis read-through cache. Cache
// failures are ignored; the primary store is the source of truth.
type Cached struct {
	primary Store
	redis   *redis.Client
	prefix  string
	ttl     time.Duration
}

func NewCached(primary Store, rdb *redis.Client, prefix string, ttl time.Duration) *Cached {
	return &Cached{primary: primary, redis: rdb, prefix: prefix + "cache:", ttl: ttl}
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if cached, err := c.redis.Get(ctx, c.prefix+key).Bytes(); err == nil {
		return cached, nil
	}

	value, err := c.primary.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.redis.Set(ctx, c.prefix+key, value, c.ttl)
	return value, nil
}

func (c *Cached) Put(ctx context.Context, key string, value []byte) error {
	if err := c.primary.Put(ctx, key, value); err != nil {
		return err
	}
	// Invalidate; the next Get repopulates from the primary.
	c.redis.Del(ctx, c.prefix+key)
	return nil
}

func (c *Cached) Close() error {
	err := c.primary.Close()
	c.redis.Close()
	return err
}
