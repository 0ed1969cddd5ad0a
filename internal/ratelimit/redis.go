package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "ratelimit:"

// slideScript runs the prune/count/record/expire sequence server-side so the
// whole update is atomic per key. The attempt is recorded unconditionally;
// the returned count is the pre-record count the limiter compares against.
var slideScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local member = ARGV[3]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)

return count
`)

// RedisStore is a Redis-backed Store for multi-instance deployments. Each
// key's window is a sorted set of request timestamps.
type RedisStore struct {
	client    redis.UniversalClient
	memberSeq atomic.Uint64
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// DialRedis connects to a Redis URL and verifies the connection.
func DialRedis(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client), nil
}

func (s *RedisStore) Slide(ctx context.Context, key string, now time.Time, window time.Duration) (int, error) {
	// Members must be unique per attempt or concurrent ZADDs collapse into
	// one entry and undercount.
	member := fmt.Sprintf("%d-%d", now.UnixNano(), s.memberSeq.Add(1))

	res, err := slideScript.Run(ctx, s.client,
		[]string{redisKeyPrefix + key},
		now.UnixMilli(), window.Milliseconds(), member,
	).Int()
	if err != nil {
		return 0, fmt.Errorf("run slide script: %w", err)
	}
	return res, nil
}

func (s *RedisStore) Count(ctx context.Context, key string, now time.Time, window time.Duration) (int, error) {
	redisKey := redisKeyPrefix + key
	windowStart := now.Add(-window).UnixMilli()

	if err := s.client.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%d", windowStart)).Err(); err != nil {
		return 0, fmt.Errorf("prune window: %w", err)
	}
	count, err := s.client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count window: %w", err)
	}
	return int(count), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset key: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
