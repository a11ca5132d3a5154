package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	// Backend is one of "sqlserver", "postgres", "sqlite", "redis" or "memory".
	Backend     string
	DSN         string
	Prefix      string
	AutoMigrate bool
}

// New builds the store selected by cfg.Backend. redisClient is only used by
// the redis backend.
func New(ctx context.Context, cfg Config, redisClient *redis.Client) (ReviewCache, error) {
	switch cfg.Backend {
	case "sqlserver", "postgres", "sqlite":
		store, err := OpenSQLReviewCache(ctx, SQLConfig{
			Dialect:     cfg.Backend,
			DSN:         cfg.DSN,
			AutoMigrate: cfg.AutoMigrate,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis backend requires a client")
		}
		return NewRedisReviewCache(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		}), nil
	case "memory", "":
		return NewMemoryReviewCache(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
