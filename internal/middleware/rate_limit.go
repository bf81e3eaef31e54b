package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BradenHooton/tiktok-automation/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig
}

// DefaultAuthRateLimit returns the limit applied to credential endpoints
func DefaultAuthRateLimit(requestsPerMinute int, ipConfig *pkghttp.IPConfig) RateLimitConfig {
	if requestsPerMinute < 1 {
		requestsPerMinute = 10
	}
	return RateLimitConfig{
		RequestsPerMinute: requestsPerMinute,
		IPConfig:          ipConfig,
	}
}

// RateLimitByIP creates a middleware that rate limits requests by client IP.
// Forwarding headers are only trusted from configured proxies.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
		}),
	)
}
