package janitor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openwrench/passcode/internal/pkg/clock"
	"github.com/openwrench/passcode/internal/pkg/instrument"
)

type countingSweeper struct {
	calls atomic.Int64
	err   error
}

func (c *countingSweeper) DeleteExpiredChallenges(context.Context, time.Time) (int64, error) {
	c.calls.Add(1)
	return 0, c.err
}

func TestJanitor_SweepsUntilCanceled(t *testing.T) {
	sweeper := &countingSweeper{}
	j := New(sweeper, clock.New(), instrument.NewNoop(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	deadline := time.After(time.Second)
	for sweeper.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("only %d sweeps before deadline", sweeper.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestJanitor_SurvivesSweepFailure(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("connection refused")}
	j := New(sweeper, clock.New(), instrument.NewNoop(), 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Run(ctx) }()

	deadline := time.After(time.Second)
	for sweeper.calls.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("loop died after %d failing sweeps", sweeper.calls.Load())
		case <-time.After(time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run returned %v", err)
	}
}

func TestJanitor_DefaultInterval(t *testing.T) {
	j := New(&countingSweeper{}, clock.New(), instrument.NewNoop(), 0)
	if j.interval != 5*time.Minute {
		t.Fatalf("interval = %v, want 5m default", j.interval)
	}
}
