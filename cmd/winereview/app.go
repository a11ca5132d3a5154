package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"winereview/internal/cache"
	"winereview/internal/config"
	"winereview/internal/llm"
	"winereview/internal/review"
	"winereview/internal/secrets"
	"winereview/pkg/logging/logging"
)

// app holds the wired collaborators shared by serve and review.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   cache.ReviewCache
	llm     llm.Client
	service *review.Service
}

func newLogger() (*zap.Logger, error) {
	return logging.NewLogger(logging.Options{Level: logLevel})
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func storeDSN(cfg *config.Config) string {
	switch cfg.Store.Backend {
	case "sqlserver":
		return cache.SQLServerDSN(
			cfg.Store.SQLServerName,
			cfg.Store.SQLDatabaseName,
			cfg.Store.SQLUsername,
			cfg.Store.SQLPassword,
		)
	case "postgres":
		return cfg.Store.DatabaseURL
	case "sqlite":
		return cfg.Store.SQLitePath
	default:
		return ""
	}
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	// ----- Review store -----
	var redisClient *redis.Client
	if cfg.Store.Backend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.Store.RedisAddr,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		logger.Info("redis connection established", zap.String("addr", cfg.Store.RedisAddr))
	}

	store, err := cache.New(ctx, cache.Config{
		Backend:     cfg.Store.Backend,
		DSN:         storeDSN(cfg),
		Prefix:      cfg.Store.RedisPrefix,
		AutoMigrate: cfg.Store.AutoMigrate,
	}, redisClient)
	if err != nil {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("review store: %w", err)
	}
	store = cache.NewLoggingReviewCache(store)
	logger.Info("review store ready", zap.String("backend", cfg.Store.Backend))

	// ----- Secrets -----
	secretProvider, err := secrets.New(ctx, secrets.Config{
		Backend:      cfg.Secrets.Backend,
		KeyVaultName: cfg.Secrets.KeyVaultName,
		AWSRegion:    cfg.Secrets.AWSRegion,
	})
	if err != nil {
		_ = cache.Close(store)
		return nil, fmt.Errorf("secret provider: %w", err)
	}

	// ----- LLM client -----
	llmClient, err := llm.NewClient(llm.Config{
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		UpstreamTimeout: cfg.LLM.UpstreamTimeout,
	}, logger)
	if err != nil {
		_ = cache.Close(store)
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		llm:     llmClient,
		service: review.NewService(store, secretProvider, llmClient, cfg.Secrets.SecretName),
	}, nil
}

func (a *app) Close() {
	if closer, ok := a.llm.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	if err := cache.Close(a.store); err != nil {
		a.logger.Warn("review store close failed", zap.Error(err))
	}
}
