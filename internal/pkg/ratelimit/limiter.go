// Package ratelimit implements a sliding-window counter over a pluggable store.
//
// Each key keeps the count of the current fixed window and of the previous
// one; the effective count is the previous count weighted by how much of the
// previous window still overlaps the sliding window, plus the current count.
package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"
)

// Policy is a named request budget.
type Policy struct {
	Name   string
	Limit  int
	Window time.Duration
}

// Presets used by the HTTP layer.
var (
	PolicyForm    = Policy{Name: "form", Limit: 5, Window: time.Minute}
	PolicyAuth    = Policy{Name: "auth", Limit: 10, Window: time.Minute}
	PolicySearch  = Policy{Name: "search", Limit: 30, Window: time.Minute}
	PolicyAPI     = Policy{Name: "api", Limit: 60, Window: time.Minute}
	PolicyWebhook = Policy{Name: "webhook", Limit: 100, Window: time.Minute}
)

// Counts are the raw window counters of one key after recording a hit.
type Counts struct {
	Current     int64
	Previous    int64
	WindowStart time.Time
}

// Store records hits per key and fixed window.
type Store interface {
	Hit(ctx context.Context, key string, window time.Duration, now time.Time) (Counts, error)
}

// Result describes the limiter decision for one request.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter evaluates policies against a store.
type Limiter struct {
	store Store
	now   func() time.Time
}

// New builds a limiter over store.
func New(store Store) *Limiter {
	return &Limiter{store: store, now: time.Now}
}

var errInvalidPolicy = errors.New("rate limit policy must have positive limit and window")

// Allow records a request for key under policy and reports whether it fits the budget.
func (l *Limiter) Allow(ctx context.Context, policy Policy, key string) (Result, error) {
	if policy.Limit <= 0 || policy.Window <= 0 {
		return Result{}, errInvalidPolicy
	}
	now := l.now()
	counts, err := l.store.Hit(ctx, policy.Name+":"+key, policy.Window, now)
	if err != nil {
		return Result{}, err
	}

	elapsed := now.Sub(counts.WindowStart)
	overlap := 1 - float64(elapsed)/float64(policy.Window)
	if overlap < 0 {
		overlap = 0
	}
	effective := float64(counts.Previous)*overlap + float64(counts.Current)

	resetAt := counts.WindowStart.Add(policy.Window)
	res := Result{
		Allowed: effective <= float64(policy.Limit),
		Limit:   policy.Limit,
		ResetAt: resetAt,
	}
	if remaining := policy.Limit - int(math.Ceil(effective)); remaining > 0 {
		res.Remaining = remaining
	}
	if !res.Allowed {
		res.RetryAfter = resetAt.Sub(now)
		if res.RetryAfter < time.Second {
			res.RetryAfter = time.Second
		}
	}
	return res, nil
}

func windowStart(now time.Time, window time.Duration) time.Time {
	return now.Truncate(window)
}
