package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TransientCache is a shared expiring key/value cache. Values are stored as JSON.
type TransientCache struct {
	rdb    *redis.Client
	prefix string
}

func NewTransientCache(rdb *redis.Client, prefix string) *TransientCache {
	return &TransientCache{rdb: rdb, prefix: prefix}
}

func (c *TransientCache) key(name string) string {
	return c.prefix + "transient:" + name
}

// Get decodes the cached value into dest and reports whether it was found.
func (c *TransientCache) Get(ctx context.Context, name string, dest interface{}) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *TransientCache) Set(ctx context.Context, name string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(name), raw, ttl).Err()
}

func (c *TransientCache) Delete(ctx context.Context, name string) error {
	return c.rdb.Del(ctx, c.key(name)).Err()
}
