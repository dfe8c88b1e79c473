package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Client holds the Redis client
type Client struct {
	Redis  *redis.Client
	prefix string
}

// NewClient creates a new Redis client and checks the connection. Keys are
// namespaced under prefix.
func NewClient(ctx context.Context, redisURL, prefix string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	return &Client{Redis: client, prefix: prefix}, nil
}

// NewFromRedis wraps an existing go-redis client.
func NewFromRedis(client *redis.Client, prefix string) *Client {
	return &Client{Redis: client, prefix: prefix}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.Redis.Close()
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

// GetJSON decodes the value stored under key into dst.
func (c *Client) GetJSON(ctx context.Context, key string, dst any) error {
	raw, err := c.Redis.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// SetJSON stores value as JSON under key with expiration.
func (c *Client) SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := c.Redis.Set(ctx, c.key(key), raw, expiration).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete deletes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.Redis.Del(ctx, full...).Err()
}
