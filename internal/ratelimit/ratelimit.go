// Package ratelimit throttles authentication attempts per client with a
// sliding window. Stores keep one window per key and are safe for
// concurrent use.
package ratelimit

import (
	"context"
	"math"
	"time"
)

// Result describes the state of a window after an Allow call.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is the number of whole seconds until the oldest request
	// leaves the window. Zero when Allowed.
	RetryAfter int
}

// Store records requests against a key and reports whether another one fits
// in the window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
	Reset(ctx context.Context, key string) error
}

// Rule caps requests to Limit per Window. A zero Limit disables the rule.
type Rule struct {
	Limit  int
	Window time.Duration
}

func (r Rule) Enabled() bool {
	return r.Limit > 0 && r.Window > 0
}

func retryAfter(now, resetAt time.Time) int {
	d := resetAt.Sub(now)
	if d <= 0 {
		return 1
	}
	return int(math.Ceil(d.Seconds()))
}
