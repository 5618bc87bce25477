// Package ratelimit provides request pacing for the docs scraper.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces outgoing requests. A zero rate means unlimited.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing requestsPerSecond with the given
// burst. requestsPerSecond <= 0 disables pacing.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(toLimit(requestsPerSecond), normalizeBurst(burst))}
}

// Unlimited returns a limiter that never blocks.
func Unlimited() *Limiter {
	return NewLimiter(0, 1)
}

// Wait blocks until a request is allowed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Rate returns the current rate in requests per second, 0 if unlimited.
func (l *Limiter) Rate() float64 {
	if l.limiter.Limit() == rate.Inf {
		return 0
	}
	return float64(l.limiter.Limit())
}

func toLimit(requestsPerSecond float64) rate.Limit {
	if requestsPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(requestsPerSecond)
}

func normalizeBurst(burst int) int {
	if burst < 1 {
		return 1
	}
	return burst
}
