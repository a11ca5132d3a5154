package middleware

import (
	"net/http"
	"time"
)

// Timeout bounds request handling to d. A zero or negative d leaves requests
// unbounded, which is the default: the generation call has no imposed deadline.
func Timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.TimeoutHandler(next, d, `{"error":"request timed out"}`)
	}
}
