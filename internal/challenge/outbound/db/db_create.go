package db

import (
	"context"

	"github.com/openwrench/passcode/internal/challenge/entity"
)

const createChallengeSQL = `
INSERT INTO challenges (id, identity, code, purpose, subject_id, created_at, expires_at, used)
VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)`

func (s *DB) CreateChallenge(ctx context.Context, ch entity.Challenge) (err error) {
	ctx, span := s.startSpan(ctx, "CreateChallenge")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, createChallengeSQL,
		ch.ID,
		ch.Identity,
		ch.Code,
		ch.Purpose,
		ch.SubjectID,
		ch.CreatedAt,
		ch.ExpiresAt,
	)

	err = s.mapError(err)
	return err
}
