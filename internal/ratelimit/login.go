// Package ratelimit throttles failed login attempts with fixed-window Redis
// counters, keyed per email and optionally per client IP.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLoginRateLimited is returned when an identifier or IP has exhausted
	// its failed-attempt budget for the current window.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRedisUnavailable wraps transport failures talking to Redis.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds limiter tuning parameters.
type Config struct {
	MaxAttempts int
	Cooldown    time.Duration
	PerIP       bool
}

// LoginLimiter enforces the failed-login budget. A nil *LoginLimiter is a
// valid no-op limiter, so callers need no feature flag.
type LoginLimiter struct {
	redis  redis.UniversalClient
	config Config
}

// NewLoginLimiter creates a limiter backed by the given Redis client.
func NewLoginLimiter(client redis.UniversalClient, cfg Config) *LoginLimiter {
	return &LoginLimiter{redis: client, config: cfg}
}

// Check returns ErrLoginRateLimited when the email or IP is over budget.
func (l *LoginLimiter) Check(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	if err := l.checkCounter(ctx, emailKey(email)); err != nil {
		return err
	}
	if l.config.PerIP && ip != "" {
		return l.checkCounter(ctx, ipKey(ip))
	}
	return nil
}

// RecordFailure counts a failed attempt against the email and IP.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	if err := l.increment(ctx, emailKey(email)); err != nil {
		return err
	}
	if l.config.PerIP && ip != "" {
		return l.increment(ctx, ipKey(ip))
	}
	return nil
}

// Reset clears the counters after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email, ip string) error {
	if l == nil {
		return nil
	}

	keys := []string{emailKey(email)}
	if l.config.PerIP && ip != "" {
		keys = append(keys, ipKey(ip))
	}
	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *LoginLimiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrLoginRateLimited
	}
	return nil
}

func (l *LoginLimiter) increment(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	// Fixed-window semantics: only the first hit in a window arms the TTL.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return nil
}

func emailKey(email string) string { return "nexthr:login:email:" + email }
func ipKey(ip string) string       { return "nexthr:login:ip:" + ip }
