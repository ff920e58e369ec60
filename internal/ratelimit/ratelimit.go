// Package ratelimit implements a fixed window request limiter on Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Result describes the caller's standing in the current window.
type Result struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

type Limiter struct {
	client *redis.Client
	window time.Duration
	max    int
	prefix string
}

func New(client *redis.Client, window time.Duration, max int) *Limiter {
	return &Limiter{client: client, window: window, max: max, prefix: "ratelimit"}
}

// NewFromURL parses a redis:// URL and pings the server.
func NewFromURL(ctx context.Context, url string, window time.Duration, max int) (*Limiter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, window, max), nil
}

func (l *Limiter) key(subject string) string {
	return fmt.Sprintf("%s:%s", l.prefix, subject)
}

// Allow counts one request for subject.
func (l *Limiter) Allow(ctx context.Context, subject string) (Result, error) {
	key := l.key(subject)

	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return Result{}, err
	}
	if n == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return Result{}, err
		}
	}
	ttl, err := l.client.PTTL(ctx, key).Result()
	if err != nil {
		return Result{}, err
	}

	count := int(n)
	reset := ttl
	if reset < 0 {
		reset = l.window
	}
	remaining := l.max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: count <= l.max, Remaining: remaining, ResetIn: reset}, nil
}

func (l *Limiter) Max() int { return l.max }

func (l *Limiter) Close() error {
	return l.client.Close()
}
