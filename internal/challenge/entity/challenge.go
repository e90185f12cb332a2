package entity

import "time"

// Challenge is one outstanding one-time code issued to an identity.
//
// The code value is a shared secret; it must never appear in logs or events.
type Challenge struct {
	ID        int64
	Identity  string
	Code      string
	Purpose   ChallengePurpose
	SubjectID int64
	CreatedAt time.Time
	ExpiresAt time.Time
	Used      bool
}

// ExpiresIn reports how long the challenge remains claimable relative to now.
func (c Challenge) ExpiresIn(now time.Time) time.Duration {
	return c.ExpiresAt.Sub(now)
}

// IsClaimable reports whether the challenge could still win a claim at the
// given instant. The store enforces this atomically; this helper exists for
// the in-memory driver and for presentation.
func (c Challenge) IsClaimable(now time.Time) bool {
	return !c.Used && c.ExpiresAt.After(now)
}
