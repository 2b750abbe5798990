package cache

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type RedisReportCache struct {
	client *redis.Client
}

func NewRedisReportCache(addr string, password string, db int) *RedisReportCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisReportCache{client: client}
}

func (c *RedisReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisReportCache) Close() error {
	return c.client.Close()
}

func (c *RedisReportCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisReportCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if len(payload) == 0 {
		return nil
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisReportCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	// Report keys carry a period suffix, so expand prefixed keys with SCAN.
	expanded := make([]string, 0, len(keys))
	for _, key := range keys {
		if key != KeySalesReportPrefix {
			expanded = append(expanded, key)
			continue
		}
		iter := c.client.Scan(ctx, 0, KeySalesReportPrefix+"*", 64).Iterator()
		for iter.Next(ctx) {
			expanded = append(expanded, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	if len(expanded) == 0 {
		return nil
	}
	return c.client.Del(ctx, expanded...).Err()
}
