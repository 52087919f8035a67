package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/scorecard/pkg/config"
)

// connectTimeout bounds the initial PING
const connectTimeout = 3 * time.Second

// ErrDisabled is returned by operations that need a live connection
var ErrDisabled = errors.New("redis is disabled")

// Client wraps the Redis client shared by the fact cache and the rate limiter.
// REDIS_ENABLED=false면 연결 없이 no-op 클라이언트 (캐시 미적중, 제한 없음)
// ⭐ SSOT: Redis 연결은 여기서만 관리
type Client struct {
	rdb     *redis.Client
	addr    string
	enabled bool
}

// New connects to Redis and verifies the connection with PING
func New(cfg *config.Config) (*Client, error) {
	addr := fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)
	if !cfg.Redis.Enabled {
		return &Client{addr: addr}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	c := &Client{rdb: rdb, addr: addr, enabled: true}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if _, err := c.Ping(ctx); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection to %s failed: %w", addr, err)
	}

	return c, nil
}

// Ping measures a round trip to the server
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	if !c.enabled {
		return 0, ErrDisabled
	}
	start := time.Now()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Close closes the connection; a disabled client has nothing to close
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// Enabled reports whether caching and distributed rate limiting are active
func (c *Client) Enabled() bool {
	return c.enabled
}

// Addr returns host:port of the configured server
func (c *Client) Addr() string {
	return c.addr
}

// Redis returns the underlying client for cache and rate-limit scripts
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
