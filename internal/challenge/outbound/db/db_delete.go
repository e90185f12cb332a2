package db

import (
	"context"
	"time"
)

const deleteChallengeSQL = `DELETE FROM challenges WHERE id = $1`

// DeleteChallenge removes one challenge by id. Used to compensate an issuance
// whose delivery failed; deleting an already-deleted id is not an error.
func (s *DB) DeleteChallenge(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, deleteChallengeSQL, id)
	err = s.mapError(err)
	return err
}

const deleteExpiredChallengesSQL = `DELETE FROM challenges WHERE expires_at <= $1`

// DeleteExpiredChallenges removes every challenge whose expiry is at or before
// the given instant, used or not. Live challenges are never touched.
func (s *DB) DeleteExpiredChallenges(ctx context.Context, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpiredChallenges")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, deleteExpiredChallengesSQL, now)
	if err != nil {
		return 0, s.mapError(err)
	}

	return tag.RowsAffected(), nil
}
