// Package ratelimit throttles outbound calls to the upstream APIs.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a token bucket shared by every goroutine calling one endpoint
type Limiter struct {
	mu     sync.Mutex
	rate   float64 // tokens per second
	burst  float64
	tokens float64
	last   time.Time
	now    func() time.Time
}

// New creates a limiter allowing rps requests per second with a burst of rps
func New(rps float64) *Limiter {
	return NewWithBurst(rps, rps)
}

// NewWithBurst creates a limiter with an explicit bucket size
func NewWithBurst(rps, burst float64) *Limiter {
	if rps <= 0 {
		rps = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		rate:   rps,
		burst:  burst,
		tokens: burst,
		last:   time.Now(),
		now:    time.Now,
	}
}

// Wait blocks until a token is available or ctx is done
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		wait := l.reserve()
		if wait <= 0 {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// reserve takes a token if one is available and otherwise returns how long
// until the bucket refills to one token.
func (l *Limiter) reserve() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.tokens += now.Sub(l.last).Seconds() * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
	l.last = now

	if l.tokens >= 1 {
		l.tokens--
		return 0
	}

	deficit := 1 - l.tokens
	return time.Duration(deficit / l.rate * float64(time.Second))
}
