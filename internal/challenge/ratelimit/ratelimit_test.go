package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

type stubCounter struct {
	n     int64
	err   error
	since time.Time
}

func (s *stubCounter) CountRecentChallenges(_ context.Context, _ string, _ entity.ChallengePurpose, since time.Time) (int64, error) {
	s.since = since
	return s.n, s.err
}

func TestLimiter_Allow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		count int64
		want  bool
	}{
		{"empty window", 0, true},
		{"under cap", 4, true},
		{"at cap", 5, false},
		{"over cap", 9, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			counter := &stubCounter{n: tc.count}
			limiter := NewLimiter(counter, fixedClock{now: now}, time.Hour, 5)

			got, err := limiter.Allow(context.Background(), "user@example.com", entity.ChallengePurposeLogin)
			if err != nil {
				t.Fatalf("allow: %v", err)
			}
			if got != tc.want {
				t.Fatalf("allow with count %d = %v, want %v", tc.count, got, tc.want)
			}
			if want := now.Add(-time.Hour); !counter.since.Equal(want) {
				t.Fatalf("window start = %v, want %v", counter.since, want)
			}
		})
	}
}

func TestLimiter_CounterErrorIsNotAllow(t *testing.T) {
	counter := &stubCounter{err: errors.New("connection refused")}
	limiter := NewLimiter(counter, fixedClock{now: time.Now()}, time.Hour, 5)

	got, err := limiter.Allow(context.Background(), "user@example.com", entity.ChallengePurposeLogin)
	if err == nil {
		t.Fatal("expected error")
	}
	if got {
		t.Fatal("storage failure must not report allow")
	}
}
