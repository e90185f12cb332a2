package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
	"github.com/openwrench/passcode/internal/pkg/goerror"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newChallenge(id int64, identity, code string, purpose entity.ChallengePurpose, createdAt time.Time) entity.Challenge {
	return entity.Challenge{
		ID:        id,
		Identity:  identity,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(2 * time.Minute),
	}
}

func TestClaimIfValid_SingleWinnerUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	ch := newChallenge(1, "user@example.com", "4821", entity.ChallengePurposeLogin, baseTime)
	if err := store.CreateChallenge(ctx, ch); err != nil {
		t.Fatalf("create: %v", err)
	}

	const claimants = 64
	var wins, losses atomic.Int64
	var wg sync.WaitGroup
	wg.Add(claimants)

	start := make(chan struct{})
	for range claimants {
		go func() {
			defer wg.Done()
			<-start

			_, err := store.ClaimIfValid(ctx, "user@example.com", entity.ChallengePurposeLogin, "4821", baseTime.Add(time.Second))
			switch {
			case err == nil:
				wins.Add(1)
			case err == goerror.ErrNotFound:
				losses.Add(1)
			default:
				t.Errorf("unexpected claim error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("wins = %d, want exactly 1", wins.Load())
	}
	if losses.Load() != claimants-1 {
		t.Fatalf("losses = %d, want %d", losses.Load(), claimants-1)
	}
}

func TestClaimIfValid_ExpiredNeverClaimable(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	ch := newChallenge(1, "user@example.com", "4821", entity.ChallengePurposeLogin, baseTime)
	if err := store.CreateChallenge(ctx, ch); err != nil {
		t.Fatalf("create: %v", err)
	}

	// at expiry boundary the challenge is already dead
	if _, err := store.ClaimIfValid(ctx, "user@example.com", entity.ChallengePurposeLogin, "4821", ch.ExpiresAt); err != goerror.ErrNotFound {
		t.Fatalf("claim at expiry = %v, want ErrNotFound", err)
	}
	if _, err := store.ClaimIfValid(ctx, "user@example.com", entity.ChallengePurposeLogin, "4821", ch.ExpiresAt.Add(time.Hour)); err != goerror.ErrNotFound {
		t.Fatalf("claim after expiry = %v, want ErrNotFound", err)
	}

	// one nanosecond before expiry it still wins
	if _, err := store.ClaimIfValid(ctx, "user@example.com", entity.ChallengePurposeLogin, "4821", ch.ExpiresAt.Add(-time.Nanosecond)); err != nil {
		t.Fatalf("claim before expiry: %v", err)
	}
}

func TestClaimIfValid_PurposeIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	ch := newChallenge(1, "user@example.com", "4821", entity.ChallengePurposeLogin, baseTime)
	if err := store.CreateChallenge(ctx, ch); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := store.ClaimIfValid(ctx, "user@example.com", entity.ChallengePurposePasswordReset, "4821", baseTime.Add(time.Second)); err != goerror.ErrNotFound {
		t.Fatalf("cross-purpose claim = %v, want ErrNotFound", err)
	}

	if _, err := store.ClaimIfValid(ctx, "user@example.com", entity.ChallengePurposeLogin, "4821", baseTime.Add(time.Second)); err != nil {
		t.Fatalf("same-purpose claim: %v", err)
	}
}

func TestClaimIfValid_NewestMatchWins(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	older := newChallenge(1, "user@example.com", "4821", entity.ChallengePurposeLogin, baseTime)
	newer := newChallenge(2, "user@example.com", "4821", entity.ChallengePurposeLogin, baseTime.Add(30*time.Second))
	if err := store.CreateChallenge(ctx, older); err != nil {
		t.Fatalf("create older: %v", err)
	}
	if err := store.CreateChallenge(ctx, newer); err != nil {
		t.Fatalf("create newer: %v", err)
	}

	claimed, err := store.ClaimIfValid(ctx, "user@example.com", entity.ChallengePurposeLogin, "4821", baseTime.Add(time.Minute))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.ID != 2 {
		t.Fatalf("claimed id = %d, want newest (2)", claimed.ID)
	}
}

func TestCountRecentChallenges(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for i, offset := range []time.Duration{0, 10 * time.Minute, 2 * time.Hour} {
		ch := newChallenge(int64(i+1), "user@example.com", "1000", entity.ChallengePurposeLogin, baseTime.Add(offset))
		if err := store.CreateChallenge(ctx, ch); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	// used and expired rows still count against the window
	if _, err := store.ClaimIfValid(ctx, "user@example.com", entity.ChallengePurposeLogin, "1000", baseTime.Add(1*time.Second)); err != nil {
		t.Fatalf("claim: %v", err)
	}

	n, err := store.CountRecentChallenges(ctx, "user@example.com", entity.ChallengePurposeLogin, baseTime.Add(2*time.Hour).Add(-time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count in last hour = %d, want 1", n)
	}

	n, err = store.CountRecentChallenges(ctx, "user@example.com", entity.ChallengePurposeLogin, baseTime.Add(-time.Hour))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count overall = %d, want 3", n)
	}
}

func TestDeleteExpiredChallenges_LeavesLiveRows(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	expired := newChallenge(1, "a@example.com", "1111", entity.ChallengePurposeLogin, baseTime.Add(-time.Hour))
	live := newChallenge(2, "b@example.com", "2222", entity.ChallengePurposeLogin, baseTime)
	if err := store.CreateChallenge(ctx, expired); err != nil {
		t.Fatalf("create expired: %v", err)
	}
	if err := store.CreateChallenge(ctx, live); err != nil {
		t.Fatalf("create live: %v", err)
	}

	n, err := store.DeleteExpiredChallenges(ctx, baseTime.Add(time.Minute))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept %d rows, want 1", n)
	}

	if _, err := store.ClaimIfValid(ctx, "b@example.com", entity.ChallengePurposeLogin, "2222", baseTime.Add(time.Minute)); err != nil {
		t.Fatalf("live challenge gone after sweep: %v", err)
	}
}

func TestDeleteChallenge_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	ch := newChallenge(1, "user@example.com", "4821", entity.ChallengePurposeLogin, baseTime)
	if err := store.CreateChallenge(ctx, ch); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.DeleteChallenge(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteChallenge(ctx, 1); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
