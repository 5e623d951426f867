package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// TTLSetting applies to public settings, which are also invalidated on write
const TTLSetting = 1 * time.Minute

// PrefixPublicSetting namespaces cached public setting lookups
const PrefixPublicSetting = "wiki:setting:public:"

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

// Service is a JSON value cache
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// IsAvailable reports whether the backing store is reachable
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache is the Redis backed implementation
type redisCache struct {
	client *redis.Client
}

// NewService creates a Redis backed cache. A nil client yields a cache that stores nothing.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // no redis, nothing to store
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// memoryCache keeps JSON encoded values in process memory
type memoryCache struct {
	store *gocache.Cache
}

// NewMemoryService creates an in-process cache, used when Redis is not configured
func NewMemoryService(defaultTTL time.Duration) Service {
	return &memoryCache{store: gocache.New(defaultTTL, 2*defaultTTL)}
}

func (c *memoryCache) IsAvailable() bool { return true }

func (c *memoryCache) Ping(context.Context) error { return nil }

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := c.store.Get(key)
	if !ok {
		return ErrMiss
	}
	data, ok := raw.([]byte)
	if !ok {
		return ErrMiss
	}
	return json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.Set(key, data, ttl)
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.store.Delete(k)
	}
	return nil
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.store.Get(key)
	return ok, nil
}
