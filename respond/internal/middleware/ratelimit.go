package middleware

import (
	"net/http"

	"github.com/axisir/axisir-stack/common/httputil"
	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/respond/internal/ratelimit"
)

// RateLimit limits requests per client IP within scope. When the limiter
// itself fails the request is let through.
func RateLimit(limiter ratelimit.RateLimiter, scope string, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), scope, httputil.GetClientIP(r))
			if err != nil {
				logger.WarnContext(r.Context(), "rate limit check failed", "scope", scope, logging.Error(err))
			} else if !allowed {
				httputil.WriteJSONAPITooManyRequests(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
