package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter: reviews served from the store.
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_cache_hits_total",
			Help: "Total number of review cache hits.",
		},
	)

	// Counter: prompts that had to be generated.
	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "review_cache_misses_total",
			Help: "Total number of review cache misses.",
		},
	)

	// Counter: store failures by operation (find | insert).
	StoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "review_store_errors_total",
			Help: "Total number of review store errors.",
		},
		[]string{"op"},
	)

	// Histogram: generation API latency in seconds.
	GenerationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "review_generation_seconds",
			Help:    "Latency of review generation calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"result"},
	)

	// Histogram: HTTP latency in seconds.
	RequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"path", "method", "status_code"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		CacheHitsTotal,
		CacheMissesTotal,
		StoreErrorsTotal,
		GenerationSeconds,
		RequestDurationSeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures latency for each HTTP request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		RequestDurationSeconds.
			WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
