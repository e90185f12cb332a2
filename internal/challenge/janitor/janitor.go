// Package janitor removes expired challenges in the background. Verification
// never depends on it: the store's claim already refuses expired rows, so the
// sweep only reclaims storage.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/openwrench/passcode/internal/pkg/clock"
	"github.com/openwrench/passcode/internal/pkg/instrument"
)

// Sweeper deletes challenges that expired at or before the given instant.
type Sweeper interface {
	DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error)
}

// Janitor periodically sweeps expired challenges.
type Janitor struct {
	sweeper  Sweeper
	clock    clock.Clocker
	ins      instrument.Instrumentation
	interval time.Duration
}

// New builds a Janitor sweeping at the given interval.
func New(sweeper Sweeper, clk clock.Clocker, ins instrument.Instrumentation, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Janitor{
		sweeper:  sweeper,
		clock:    clk,
		ins:      ins,
		interval: interval,
	}
}

// Run sweeps on a ticker until the context is canceled. A failed sweep is
// logged and retried on the next tick; it never stops the loop.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "challenge janitor started", "interval", j.interval.String())

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "challenge janitor stopped")
			return nil
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	ctx, span := j.ins.Tracer("challenge.janitor").Start(ctx, "Sweep")
	defer span.End()

	n, err := j.sweeper.DeleteExpiredChallenges(ctx, j.clock.Now())
	if err != nil {
		span.RecordError(err)
		slog.ErrorContext(ctx, "failed to sweep expired challenges", "error", err)
		return
	}

	if n > 0 {
		slog.InfoContext(ctx, "swept expired challenges", "count", n)
	}
}
