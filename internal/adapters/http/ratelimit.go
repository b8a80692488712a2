package httpadapter

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/Tanish196/mini-RAG/internal/config"
)

// rateLimitMiddleware is a process-wide token bucket. RPS <= 0 disables
// it entirely.
func rateLimitMiddleware(cfg config.Config, next http.Handler) http.Handler {
	if cfg.APIRateLimitRPS <= 0 {
		return next
	}
	burst := cfg.APIRateLimitBurst
	if burst <= 0 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.APIRateLimitRPS), burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
