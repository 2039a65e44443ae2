package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "scoreboard:"

type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
	}
}

// NewRedisClient connects and pings within five seconds.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 20,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	return client, nil
}

func (c *RedisCache) genKey() string {
	return c.prefix + "gen"
}

func (c *RedisCache) entryKey(gen uint64, key string) string {
	return c.prefix + strconv.FormatUint(gen, 10) + ":" + key
}

func (c *RedisCache) Generation(ctx context.Context) (uint64, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("c.client.Get -> %w", err)
	}

	return gen, nil
}

func (c *RedisCache) Get(ctx context.Context, gen uint64, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("c.client.Get -> %w", err)
	}

	if err = json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("json.Unmarshal -> %w", err)
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, gen uint64, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	if err = c.client.Set(ctx, c.entryKey(gen, key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("c.client.Set -> %w", err)
	}
	return nil
}

// Invalidate bumps the generation, then removes the entries of older ones.
// Leftovers expire with their TTL if the cleanup is interrupted.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	gen, err := c.client.Incr(ctx, c.genKey()).Result()
	if err != nil {
		return fmt.Errorf("c.client.Incr -> %w", err)
	}

	current := c.entryKey(uint64(gen), "")
	iter := c.client.Scan(ctx, 0, c.prefix+"*:*", 100).Iterator()
	var stale []string
	for iter.Next(ctx) {
		k := iter.Val()
		if !strings.HasPrefix(k, current) {
			stale = append(stale, k)
		}
	}
	if err = iter.Err(); err != nil {
		return fmt.Errorf("iter.Err -> %w", err)
	}

	if len(stale) > 0 {
		if err = c.client.Del(ctx, stale...).Err(); err != nil {
			return fmt.Errorf("c.client.Del -> %w", err)
		}
	}
	return nil
}
