package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
	"github.com/openwrench/passcode/internal/pkg/goerror"
)

type VerifyInput struct {
	Identity string `validate:"required,identity"`
	Purpose  string `validate:"required"`
	Code     string `validate:"required,numeric"`
}

type VerifyOutput struct {
	ChallengeID int64
	SubjectID   int64
	VerifiedAt  time.Time
}

// Verify claims the challenge matching the submitted tuple.
//
// The store's conditional claim is the entire decision: wrong code, expired
// code, already-used code and no code at all collapse into one negative
// answer, so a caller probing the endpoint learns nothing about which it was.
func (s *Usecase) Verify(ctx context.Context, in VerifyInput) (*VerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "Verify")
	defer span.End()

	in.Identity = normalizeIdentity(in.Identity)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	purpose := entity.ChallengePurposeFromString(in.Purpose)
	if purpose.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "purpose", "purpose must be LOGIN or PASSWORD_RESET")
	}

	claimed, err := s.repoDB.ClaimIfValid(ctx, in.Identity, purpose, in.Code, s.clock.Now())
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "challenge verification rejected", "identity", in.Identity, "purpose", purpose.String())
		return nil, goerror.NewBusiness("invalid or expired code", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo claim challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishChallengeVerified(ctx, ChallengeVerifiedEvent{
			ChallengeID: claimed.ID,
			Identity:    claimed.Identity,
			Purpose:     claimed.Purpose,
			SubjectID:   claimed.SubjectID,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish challenge verified", "challenge_id", claimed.ID, "error", err)
		}
		return nil
	})

	return &VerifyOutput{
		ChallengeID: claimed.ID,
		SubjectID:   claimed.SubjectID,
		VerifiedAt:  s.clock.Now(),
	}, nil
}
