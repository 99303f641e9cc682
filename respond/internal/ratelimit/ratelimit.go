// Package ratelimit provides a redis-backed sliding window rate limiter.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/axisir/axisir-stack/respond/internal/metrics"
)

type RateLimiter interface {
	// Allow records a hit for key within scope and reports whether it is under the limit.
	Allow(ctx context.Context, scope, key string) (bool, error)
	Close() error
}

// slidingWindow keeps one sorted-set member per request scored by its
// timestamp. Members older than the window are dropped before counting.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)

	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('EXPIRE', key, ttl)
		return 1
	end
	return 0
`)

type redisRateLimiter struct {
	client *redis.Client
	limits map[string]int64
	limit  int64
	window time.Duration
	now    func() time.Time
}

// Limits configures the limiter. Scoped overrides Limit for the named scopes.
type Limits struct {
	Limit  int
	Window time.Duration
	Scoped map[string]int
}

// NewRedisRateLimiter connects to redisURL. A disabled limiter never touches redis.
func NewRedisRateLimiter(redisURL string, limits Limits, disabled bool) (RateLimiter, error) {
	if disabled {
		return &NoOpRateLimiter{}, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return newRedisRateLimiter(client, limits), nil
}

func newRedisRateLimiter(client *redis.Client, limits Limits) *redisRateLimiter {
	scoped := make(map[string]int64, len(limits.Scoped))
	for scope, n := range limits.Scoped {
		scoped[scope] = int64(n)
	}
	return &redisRateLimiter{
		client: client,
		limits: scoped,
		limit:  int64(limits.Limit),
		window: limits.Window,
		now:    time.Now,
	}
}

func (r *redisRateLimiter) limitFor(scope string) int64 {
	if n, ok := r.limits[scope]; ok {
		return n
	}
	return r.limit
}

// Allow implements sliding window rate limiting using Redis
func (r *redisRateLimiter) Allow(ctx context.Context, scope, key string) (bool, error) {
	now := r.now().UnixNano()
	windowStart := now - r.window.Nanoseconds()
	ttl := int64(math.Ceil(r.window.Seconds()))
	if ttl < 1 {
		ttl = 1
	}
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	result, err := slidingWindow.Run(ctx, r.client,
		[]string{"ratelimit:" + scope + ":" + key},
		now, windowStart, r.limitFor(scope), ttl, member,
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	allowed := result == 1
	if !allowed {
		metrics.RateLimitHits.WithLabelValues(scope).Inc()
	}
	return allowed, nil
}

func (r *redisRateLimiter) Close() error {
	return r.client.Close()
}

// NoOpRateLimiter always allows requests (for testing or disabled rate limiting)
type NoOpRateLimiter struct{}

func (n *NoOpRateLimiter) Allow(ctx context.Context, scope, key string) (bool, error) {
	return true, nil
}

func (n *NoOpRateLimiter) Close() error {
	return nil
}
