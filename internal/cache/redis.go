// Package cache provides the Redis-backed stats cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asltutor/apiserver/types"
	"github.com/redis/go-redis/v9"
)

const topRequestedKeyPrefix = "asltutor:stats:top-requested:"

// RedisCache stores top-N lists as JSON with a fixed TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// NewClient accepts either a redis:// URL or a bare host:port address.
func NewClient(redisURL string) (*redis.Client, error) {
	if strings.Contains(redisURL, "://") {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

func topRequestedKey(limit int) string {
	return fmt.Sprintf("%s%d", topRequestedKeyPrefix, limit)
}

// GetTopRequested returns the cached list for limit. A miss is not an error.
func (c *RedisCache) GetTopRequested(ctx context.Context, limit int) ([]types.DictionaryEntry, bool, error) {
	val, err := c.rdb.Get(ctx, topRequestedKey(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries []types.DictionaryEntry
	if err := json.Unmarshal(val, &entries); err != nil {
		return nil, false, fmt.Errorf("decode cached entries: %w", err)
	}
	return entries, true, nil
}

func (c *RedisCache) SetTopRequested(ctx context.Context, limit int, entries []types.DictionaryEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, topRequestedKey(limit), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
