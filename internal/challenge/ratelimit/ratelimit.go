// Package ratelimit caps how many challenges an identity may be issued inside
// a trailing window. The counter lives in the challenge store, so every
// replica sees the same budget.
package ratelimit

import (
	"context"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
	"github.com/openwrench/passcode/internal/pkg/clock"
)

// RecentCounter counts challenges created after a given instant.
type RecentCounter interface {
	CountRecentChallenges(ctx context.Context, identity string, purpose entity.ChallengePurpose, since time.Time) (int64, error)
}

// Limiter is a trailing-window issuance limiter.
//
// The window trails the current instant; precision is advisory. A burst that
// slips through under concurrent issuance is acceptable, a storage failure is
// not (the caller must treat an error as a hard stop, never as an allow).
type Limiter struct {
	counter RecentCounter
	clock   clock.Clocker
	window  time.Duration
	max     int64
}

// NewLimiter builds a Limiter over the given counter.
func NewLimiter(counter RecentCounter, clk clock.Clocker, window time.Duration, max int64) *Limiter {
	return &Limiter{
		counter: counter,
		clock:   clk,
		window:  window,
		max:     max,
	}
}

// Allow reports whether one more challenge may be issued to the identity for
// the purpose. A challenge created exactly window ago has left the window.
func (l *Limiter) Allow(ctx context.Context, identity string, purpose entity.ChallengePurpose) (bool, error) {
	since := l.clock.Now().Add(-l.window)

	n, err := l.counter.CountRecentChallenges(ctx, identity, purpose, since)
	if err != nil {
		return false, err
	}

	return n < l.max, nil
}
