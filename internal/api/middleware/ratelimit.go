package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/api/response"
)

// RateLimit returns a middleware sharing one token bucket across all requests
// it wraps. Requests beyond rps (with the given burst) get 429 Too Many Requests.
// A non-positive rps disables limiting.
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				w.Header().Set("Retry-After", "1")
				response.RespondError(w, http.StatusTooManyRequests, "rate limit exceeded", "too many analytics writes, retry later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
