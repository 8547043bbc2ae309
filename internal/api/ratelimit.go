package api

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/streamviewapp/streamview-server/internal/ratelimit"
)

// RateLimiter wraps KeyedRateLimiter for API use.
type RateLimiter = ratelimit.KeyedRateLimiter

// NewRateLimiter creates a new rate limiter.
// ratePerInterval: number of requests allowed per interval
// interval: time period for rate (e.g., time.Minute)
// burst: maximum burst size
func NewRateLimiter(ratePerInterval int, interval time.Duration, burst int) *RateLimiter {
	rps := float64(ratePerInterval) / interval.Seconds()
	return ratelimit.New(rps, burst)
}

// checkAuthRateLimit applies per-IP rate limiting to credential endpoints.
// ip may be empty when no forwarding headers are present, in which case
// all anonymous callers share one bucket.
func (s *Server) checkAuthRateLimit(ip string) error {
	if s.authRateLimiter == nil {
		return nil
	}
	if !s.authRateLimiter.Allow(ip) {
		s.logger.Warn("auth rate limit exceeded", "ip", ip)
		return huma.Error429TooManyRequests("Too many attempts. Please try again later.")
	}
	return nil
}
