// Package ratelimit provides a token-bucket throttle for provider calls.
//
// One Limiter is constructed per configured provider; a provider's
// throttling suspends only its own call path, never another provider's
// concurrent slot. The bucket refills continuously from wall-clock
// time rather than on a fixed tick, so fractional rates are exact:
// a rate of 0.5 req/s yields one token every 2 seconds.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket with capacity max(1, requestsPerSecond)
// and a continuous refill of requestsPerSecond tokens per second.
type Limiter struct {
	limiter *rate.Limiter
	rps     float64
}

// New creates a limiter for the given requests-per-second rate.
// Rates below 1 keep a capacity of a single token. Non-positive rates
// disable throttling entirely.
func New(requestsPerSecond float64) *Limiter {
	if requestsPerSecond <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1), rps: 0}
	}

	capacity := int(requestsPerSecond)
	if capacity < 1 {
		capacity = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), capacity),
		rps:     requestsPerSecond,
	}
}

// Acquire blocks until a token is available or the context is done.
// When a token is available it is consumed immediately; otherwise the
// caller suspends for exactly the remaining refill time.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// TryAcquire consumes a token if one is available and reports whether
// it did. It never blocks.
func (l *Limiter) TryAcquire() bool {
	return l.limiter.Allow()
}

// Rate returns the configured requests-per-second rate (0 = unlimited).
func (l *Limiter) Rate() float64 {
	return l.rps
}

// PerProvider builds one independent limiter per provider name. The
// returned map is owned by the caller (typically the orchestrator
// construction step) and passed by reference to the fetcher; there is
// no package-level registry.
func PerProvider(rates map[string]float64) map[string]*Limiter {
	limiters := make(map[string]*Limiter, len(rates))
	for name, rps := range rates {
		limiters[name] = New(rps)
	}
	return limiters
}
