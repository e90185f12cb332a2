package db

import (
	"context"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
)

const countRecentChallengesSQL = `
SELECT COUNT(*) FROM challenges
WHERE identity = $1
  AND purpose = $2
  AND created_at > $3`

// CountRecentChallenges counts challenges created for the identity and purpose
// after the given instant, regardless of used or expired state.
func (s *DB) CountRecentChallenges(
	ctx context.Context,
	identity string,
	purpose entity.ChallengePurpose,
	since time.Time,
) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountRecentChallenges")
	defer func() { s.endSpan(span, err) }()

	var n int64
	if err = s.conn.QueryRow(ctx, countRecentChallengesSQL, identity, purpose, since).Scan(&n); err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}
