package db

import (
	"context"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
)

// The claim must be a single conditional write: concurrent callers presenting
// the same code race on one row, and exactly one of them may win it. The inner
// select locks the newest matching row (SKIP LOCKED keeps losers from queuing
// on it), and the outer used = FALSE guard rejects a row another transaction
// already burned.
const claimChallengeSQL = `
UPDATE challenges
SET used = TRUE
WHERE id = (
	SELECT id FROM challenges
	WHERE identity = $1
	  AND purpose = $2
	  AND code = $3
	  AND used = FALSE
	  AND expires_at > $4
	ORDER BY created_at DESC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
AND used = FALSE
RETURNING id, identity, code, purpose, subject_id, created_at, expires_at, used`

// ClaimIfValid marks the newest live challenge matching the tuple as used and
// returns it. It returns goerror.ErrNotFound when no challenge matches, is
// expired, or was already claimed; callers cannot distinguish those cases.
func (s *DB) ClaimIfValid(
	ctx context.Context,
	identity string,
	purpose entity.ChallengePurpose,
	code string,
	now time.Time,
) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "ClaimIfValid")
	defer func() { s.endSpan(span, err) }()

	var ch entity.Challenge
	err = s.conn.QueryRow(ctx, claimChallengeSQL, identity, purpose, code, now).Scan(
		&ch.ID,
		&ch.Identity,
		&ch.Code,
		&ch.Purpose,
		&ch.SubjectID,
		&ch.CreatedAt,
		&ch.ExpiresAt,
		&ch.Used,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &ch, nil
}
