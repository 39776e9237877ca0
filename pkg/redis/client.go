package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/liga/backend/pkg/config"
)

// clientName shows up in CLIENT LIST next to the API and scheduler connections
const clientName = "liga"

// Client wraps the Redis client used for the standings cache and rate limits.
// A disabled client turns every cache call into a miss and every limit into an allow.
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New connects to Redis when REDIS_ENABLED is set, otherwise returns a disabled client
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{enabled: false}, nil
	}

	rdb := redis.NewClient(newOptions(cfg))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", cfg.RedisAddr(), err)
	}

	return &Client{
		rdb:     rdb,
		enabled: true,
	}, nil
}

// 순위 재계산은 짧은 요청 위주라 타임아웃을 짧게 둔다
func newOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		ClientName:   clientName,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
}

// NewFromClient wraps an existing go-redis client; nil gives a disabled client
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb, enabled: rdb != nil}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled returns whether Redis is enabled
func (c *Client) Enabled() bool {
	return c.enabled
}

// Mode describes the client for health output
func (c *Client) Mode() string {
	if !c.enabled {
		return "disabled"
	}
	return "redis " + c.rdb.Options().Addr
}

// Ping checks the server; a disabled client has nothing to check
func (c *Client) Ping(ctx context.Context) error {
	if !c.enabled {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Redis returns the underlying redis client for advanced usage
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
