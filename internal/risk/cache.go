package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// CachePrefix is the Redis key prefix for cached risk profiles.
	CachePrefix = "risk:profile:"

	// GenerationPrefix is the Redis key prefix for per-donor invalidation
	// counters.
	GenerationPrefix = "risk:gen:"

	// DefaultCacheTTL bounds how stale a cached profile can get if an
	// invalidation is lost.
	DefaultCacheTTL = 5 * time.Minute

	// generationTTL outlives any in-flight assessment by a wide margin.
	generationTTL = 24 * time.Hour
)

// setIfGeneration stores ARGV[2] at KEYS[2] with a PX of ARGV[3] only when
// the counter at KEYS[1] (missing counts as 0) equals ARGV[1].
var setIfGeneration = redis.NewScript(`
local current = redis.call("GET", KEYS[1]) or "0"
if current ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
return 1
`)

// RedisCache stores profiles as JSON strings with a TTL, guarded by a
// per-donor generation counter:
//
//	Key:   risk:profile:<user_id>  Value: JSON-encoded Profile
//	Key:   risk:gen:<user_id>      Value: invalidation counter
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache backed by client. A non-positive ttl uses
// DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached profile for userID, if any, together with the
// donor's current generation. Both are read in one MGET.
func (c *RedisCache) Get(ctx context.Context, userID string) (CacheEntry, error) {
	vals, err := c.client.MGet(ctx, CachePrefix+userID, GenerationPrefix+userID).Result()
	if err != nil {
		return CacheEntry{}, fmt.Errorf("risk: cache get: %w", err)
	}

	var e CacheEntry
	if s, ok := vals[1].(string); ok {
		e.Generation, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return CacheEntry{}, fmt.Errorf("risk: cache generation: %w", err)
		}
	}
	if s, ok := vals[0].(string); ok {
		if err := json.Unmarshal([]byte(s), &e.Profile); err != nil {
			return CacheEntry{}, fmt.Errorf("risk: cache decode: %w", err)
		}
		e.Found = true
	}
	return e, nil
}

// Set caches p if the donor's generation still equals generation. Unknown
// profiles are never cached so a recovered store is consulted on the next
// call.
func (c *RedisCache) Set(ctx context.Context, p Profile, generation int64) error {
	if p.RiskLevel == LevelUnknown {
		return nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("risk: cache encode: %w", err)
	}

	keys := []string{GenerationPrefix + p.UserID, CachePrefix + p.UserID}
	err = setIfGeneration.Run(ctx, c.client, keys, strconv.FormatInt(generation, 10), data, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("risk: cache set: %w", err)
	}
	return nil
}

// Invalidate advances the donor's generation and removes the cached
// profile in one transaction.
func (c *RedisCache) Invalidate(ctx context.Context, userID string) error {
	genKey := GenerationPrefix + userID
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, CachePrefix+userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("risk: cache invalidate: %w", err)
	}
	return nil
}
