package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisReviewCache implements ReviewCache using Redis. Keys never expire.
type RedisReviewCache struct {
	client *redis.Client
	prefix string
}

type RedisConfig struct {
	Prefix string
}

// NewRedisReviewCache creates a Redis-backed store.
func NewRedisReviewCache(client *redis.Client, config RedisConfig) *RedisReviewCache {
	return &RedisReviewCache{
		client: client,
		prefix: config.Prefix,
	}
}

// key builds the final Redis key: <prefix>:review:<sha256(prompt)>.
func (c *RedisReviewCache) key(prompt string) string {
	k := "review:" + PromptHash(prompt)
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

// Find retrieves the review stored for prompt.
func (c *RedisReviewCache) Find(ctx context.Context, prompt string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("context error: %w", err)
	}

	raw, err := c.client.Get(ctx, c.key(prompt)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return "", false, fmt.Errorf("redis decode entry: %w", err)
	}
	// a hash collision is not a hit
	if entry.Prompt != prompt {
		return "", false, nil
	}

	return entry.Review, true, nil
}

// Insert stores the pair with SETNX so an existing entry is never replaced.
func (c *RedisReviewCache) Insert(ctx context.Context, prompt, review string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	raw, err := json.Marshal(Entry{Prompt: prompt, Review: review})
	if err != nil {
		return fmt.Errorf("redis encode entry: %w", err)
	}

	ok, err := c.client.SetNX(ctx, c.key(prompt), raw, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx failed: %w", err)
	}
	if !ok {
		return ErrDuplicate
	}
	return nil
}

// Ping checks if the Redis connection is healthy.
func (c *RedisReviewCache) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *RedisReviewCache) Close() error {
	return c.client.Close()
}
