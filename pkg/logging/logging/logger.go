package logging

import (
	"context"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey int

// prevents collisions with other packages' context keys
const loggerKey ctxKey = iota

const serviceName = "winereview"

var (
	defaultLogger     *zap.Logger
	defaultLoggerOnce sync.Once
)

// Options control logger construction. Empty fields fall back to the ENV and
// LOG_LEVEL environment variables.
type Options struct {
	Env   string // "dev"/"development" selects the console encoder
	Level string // debug | info | warn | error
}

// NewLogger builds a zap logger: JSON in production, colored console in dev.
func NewLogger(opts Options) (*zap.Logger, error) {
	env := opts.Env
	if env == "" {
		env = os.Getenv("ENV")
	}
	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}

	var config zap.Config
	if env == "dev" || env == "development" {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "ts"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err == nil {
			config.Level = zap.NewAtomicLevelAt(lvl)
		}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// DefaultLogger returns the process-wide logger, built from the environment
// on first use.
func DefaultLogger() *zap.Logger {
	defaultLoggerOnce.Do(func() {
		logger, err := NewLogger(Options{})
		if err != nil {
			_, _ = os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
			os.Exit(1)
		}
		defaultLogger = logger
	})
	return defaultLogger
}

// WithLogger attaches a logger to ctx.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the request-scoped logger, or the default logger.
func FromContext(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return DefaultLogger()
	}
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return DefaultLogger()
}

func L(ctx context.Context) *zap.Logger {
	return FromContext(ctx)
}

// WithFields adds structured fields to the logger in context.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(fields...))
}

// Millis encodes d as fractional milliseconds under key.
func Millis(key string, d time.Duration) zap.Field {
	return zap.Float64(key, float64(d.Microseconds())/1000)
}
