package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"winereview/internal/handlers"
	"winereview/internal/metrics"
	"winereview/internal/middleware"
	"winereview/pkg/logging/logging"
)

const maxBodyBytes = 512 * 1024

type Options struct {
	// RequestTimeout bounds request handling; zero disables it.
	RequestTimeout time.Duration
	// Health is checked by /healthz; nil always reports ok.
	Health func(context.Context) error
}

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, reviewHandler *handlers.ReviewHandler, opts Options) {
	r.Use(metrics.Middleware)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(opts.RequestTimeout))
	r.Use(middleware.MaxBodySize(maxBodyBytes))

	r.Post("/generate-review", reviewHandler.GenerateReview)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Health != nil {
			if err := opts.Health(r.Context()); err != nil {
				logging.L(r.Context()).Warn("health check failed", zap.Error(err))
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
