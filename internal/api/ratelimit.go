package api

import (
	"net"
	"net/http"
	"time"

	"github.com/ndquoc/library-notify/internal/engine"
)

// rateLimit guards a route with a per-client sliding window. The key is
// the route name plus the caller's address (RealIP middleware has already
// rewritten RemoteAddr when forwarded headers are present).
func rateLimit(rl *engine.RateLimiter, name string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !rl.Allow(r.Context(), name+":"+host, limit, window) {
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
