package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin key/value layer over redis for short-lived request state.
type Cache struct {
	RDB    *redis.Client
	Prefix string
}

func New(addr, pass string, db int) *Cache {
	return &Cache{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
	}
}

func (c *Cache) key(k string) string { return c.Prefix + k }

func (c *Cache) Ping(ctx context.Context) error { return c.RDB.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.RDB.Close() }

func (c *Cache) Put(ctx context.Context, key string, b []byte, ttl time.Duration) error {
	return c.RDB.Set(ctx, c.key(key), b, ttl).Err()
}

// Take reads and deletes key atomically; a missing key yields (nil, nil).
func (c *Cache) Take(ctx context.Context, key string) ([]byte, error) {
	b, err := c.RDB.GetDel(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}
