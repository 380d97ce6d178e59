package utils

import "golang.org/x/time/rate"

// RateLimiter caps how many requests per second the API accepts
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a token bucket refilling perSecond tokens with the given burst.
// A non-positive perSecond disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Allow reports whether a request may proceed now
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}
