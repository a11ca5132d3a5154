package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"winereview/internal/cache"
	"winereview/internal/handlers"
	"winereview/internal/httpserver"
	"winereview/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server exposing POST /generate-review",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// ----- Logger -----
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg, err := loadConfig()
	if err != nil {
		logger.Error("config error", zap.Error(err))
		return err
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("secret_backend", cfg.Secrets.Backend),
		zap.String("secret_name", cfg.Secrets.SecretName),
		zap.String("llm_base_url", cfg.LLM.BaseURL),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Duration("request_timeout", cfg.RequestTimeout),
	)

	// ----- Collaborators -----
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, handlers.NewReviewHandler(a.service), httpserver.Options{
		RequestTimeout: cfg.RequestTimeout,
		Health: func(ctx context.Context) error {
			return cache.Ping(ctx, a.store)
		},
	})

	// ----- HTTP server -----
	// No write timeout: generation calls are not bounded unless
	// REQUEST_TIMEOUT is set.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
