// Package kv holds the Redis-backed login throttle.
package kv

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter counts attempts per key in a fixed window.
type Limiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	prefix string
}

// NewLimiter connects to redisURL (redis:// or rediss://) and checks the
// connection with PING.
func NewLimiter(ctx context.Context, redisURL string, limit int, window time.Duration) (*Limiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("kv: parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("kv: ping: %w", err)
	}
	return NewLimiterWithClient(client, limit, window), nil
}

func NewLimiterWithClient(client *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{client: client, limit: int64(limit), window: window, prefix: "certportal:login:"}
}

// Allow increments the counter for key and reports whether it is still
// within the limit. Every attempt pushes the window expiry forward.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.prefix + key
	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("kv: allow: %w", err)
	}
	return incr.Val() <= l.limit, nil
}

// Reset clears the counter for key, used after a successful login.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.prefix+key).Err()
}

func (l *Limiter) Close() error {
	return l.client.Close()
}
