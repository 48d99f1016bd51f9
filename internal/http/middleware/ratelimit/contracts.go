package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request under key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

// RealClock is the default clock.
type RealClock struct{}

// Now returns current time.
func (RealClock) Now() time.Time { return time.Now() }

// NopLimiter lets everything through.
type NopLimiter struct{}

// Allow always returns true.
func (NopLimiter) Allow(context.Context, string) bool { return true }
