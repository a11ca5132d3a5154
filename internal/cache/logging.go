package cache

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"winereview/internal/metrics"
	"winereview/pkg/logging/logging"
)

// LoggingReviewCache wraps a ReviewCache with logging + metrics.
type LoggingReviewCache struct {
	inner ReviewCache
}

// NewLoggingReviewCache returns a store that logs and records metrics.
func NewLoggingReviewCache(inner ReviewCache) ReviewCache {
	return &LoggingReviewCache{inner: inner}
}

func (c *LoggingReviewCache) Find(ctx context.Context, prompt string) (string, bool, error) {
	start := time.Now()
	review, ok, err := c.inner.Find(ctx, prompt)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	result := "miss"
	switch {
	case err != nil:
		result = "error"
		metrics.StoreErrorsTotal.WithLabelValues("find").Inc()
	case ok:
		result = "hit"
		metrics.CacheHitsTotal.Inc()
	default:
		metrics.CacheMissesTotal.Inc()
	}

	fields := []zap.Field{
		zap.String("prompt_hash", PromptHash(prompt)),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	logger := logging.L(ctx)
	if err != nil {
		logger.Error("review_cache_find", append(fields, zap.Error(err))...)
	} else {
		logger.Info("review_cache_find", fields...)
	}

	return review, ok, err
}

func (c *LoggingReviewCache) Insert(ctx context.Context, prompt, review string) error {
	start := time.Now()
	err := c.inner.Insert(ctx, prompt, review)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	fields := []zap.Field{
		zap.String("prompt_hash", PromptHash(prompt)),
		zap.Int("review_bytes", len(review)),
		zap.Float64("latency_ms", latencyMs),
	}

	logger := logging.L(ctx)
	switch {
	case errors.Is(err, ErrDuplicate):
		logger.Warn("review_cache_insert_duplicate", fields...)
	case err != nil:
		metrics.StoreErrorsTotal.WithLabelValues("insert").Inc()
		logger.Error("review_cache_insert", append(fields, zap.Error(err))...)
	default:
		logger.Info("review_cache_insert", fields...)
	}

	return err
}

// Ping forwards to the wrapped store.
func (c *LoggingReviewCache) Ping(ctx context.Context) error {
	return Ping(ctx, c.inner)
}

// Close forwards to the wrapped store.
func (c *LoggingReviewCache) Close() error {
	return Close(c.inner)
}
