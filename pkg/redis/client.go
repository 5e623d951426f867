package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection
type Options struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Enabled reports whether a Redis host is configured
func (o Options) Enabled() bool {
	return o.Host != ""
}

// NewClient connects to Redis and verifies the connection with a ping
func NewClient(opts Options) (*redis.Client, error) {
	if !opts.Enabled() {
		return nil, fmt.Errorf("redis host not configured")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	// fail fast when the server is unreachable
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
