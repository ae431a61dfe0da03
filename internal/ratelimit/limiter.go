// Package ratelimit throttles moderation traffic per donor using a Redis
// fixed window (INCR + EXPIRE on first hit). A Redis outage never blocks a
// submission: every error path allows the request.
package ratelimit

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule is a throttling policy: key prefix, requests allowed per window and
// the window length.
type Rule struct {
	Key    string
	Limit  int
	Window time.Duration
}

var (
	// RuleModerate allows 20 moderation requests per minute per donor.
	RuleModerate = Rule{Key: "rl:moderate:", Limit: 20, Window: time.Minute}

	// RuleRiskLookup allows 60 risk lookups per minute per caller.
	RuleRiskLookup = Rule{Key: "rl:risk:", Limit: 60, Window: time.Minute}
)

// WithLimit returns a copy of r with a different limit and window. Zero
// values keep the original setting.
func (r Rule) WithLimit(limit int, window time.Duration) Rule {
	if limit > 0 {
		r.Limit = limit
	}
	if window > 0 {
		r.Window = window
	}
	return r
}

// Limiter performs rate limit checks against Redis.
type Limiter struct {
	client *redis.Client
}

// NewLimiter creates a Limiter backed by the given Redis client.
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow counts one request for identifier under rule and reports whether it
// is within the limit. On Redis errors it logs, returns the error and
// allows the request.
func (l *Limiter) Allow(ctx context.Context, identifier string, rule Rule) (bool, error) {
	key := rule.Key + identifier

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[ratelimit] redis INCR error key=%s: %v (failing open)", key, err)
		return true, err
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, rule.Window).Err(); err != nil {
			log.Printf("[ratelimit] redis EXPIRE error key=%s: %v (failing open)", key, err)
			// Without a TTL the counter would never reset.
			l.client.Del(ctx, key)
			return true, err
		}
	}

	return int(count) <= rule.Limit, nil
}

// Remaining returns how many requests identifier has left in the current
// window. Missing keys and Redis errors report the full limit.
func (l *Limiter) Remaining(ctx context.Context, identifier string, rule Rule) (int, error) {
	key := rule.Key + identifier

	count, err := l.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return rule.Limit, nil
	}
	if err != nil {
		log.Printf("[ratelimit] redis GET error key=%s: %v (failing open)", key, err)
		return rule.Limit, err
	}

	remaining := rule.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
