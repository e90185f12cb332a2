// Package memory provides an in-memory challenge store with the same claim
// semantics as the Postgres store. It backs local development and tests; data
// does not survive a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
	"github.com/openwrench/passcode/internal/pkg/goerror"
)

type Store struct {
	mu         sync.Mutex
	challenges map[int64]*entity.Challenge
}

func NewStore() *Store {
	return &Store{
		challenges: make(map[int64]*entity.Challenge),
	}
}

func (s *Store) CreateChallenge(_ context.Context, ch entity.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.challenges[ch.ID]; ok {
		return goerror.ErrConflict
	}

	s.challenges[ch.ID] = &ch
	return nil
}

func (s *Store) CountRecentChallenges(
	_ context.Context,
	identity string,
	purpose entity.ChallengePurpose,
	since time.Time,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, ch := range s.challenges {
		if ch.Identity == identity && ch.Purpose == purpose && ch.CreatedAt.After(since) {
			n++
		}
	}

	return n, nil
}

// ClaimIfValid is the compare-and-swap twin of the SQL claim: find the newest
// live match and flip used under one lock, so concurrent claimants see exactly
// one winner.
func (s *Store) ClaimIfValid(
	_ context.Context,
	identity string,
	purpose entity.ChallengePurpose,
	code string,
	now time.Time,
) (*entity.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var newest *entity.Challenge
	for _, ch := range s.challenges {
		if ch.Identity != identity || ch.Purpose != purpose || ch.Code != code {
			continue
		}
		if !ch.IsClaimable(now) {
			continue
		}
		if newest == nil || ch.CreatedAt.After(newest.CreatedAt) {
			newest = ch
		}
	}

	if newest == nil {
		return nil, goerror.ErrNotFound
	}

	newest.Used = true
	claimed := *newest
	return &claimed, nil
}

func (s *Store) DeleteChallenge(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, id)
	return nil
}

func (s *Store) DeleteExpiredChallenges(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, ch := range s.challenges {
		if !ch.ExpiresAt.After(now) {
			delete(s.challenges, id)
			n++
		}
	}

	return n, nil
}
