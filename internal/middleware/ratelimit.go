package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/SARVESHVARADKAR123/courtroom/internal/transport"
)

// RateLimit limits requests per client IP. A non-positive request count disables it.
func RateLimit(requests int, window time.Duration) func(next http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if window <= 0 {
		window = time.Minute
	}

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			transport.WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
		}),
	)
}
