package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
	"github.com/openwrench/passcode/internal/challenge/outbound/delivery"
	"github.com/openwrench/passcode/internal/pkg/goerror"
	"github.com/openwrench/passcode/internal/pkg/idempotency"
)

type IssueInput struct {
	Identity  string `validate:"required,identity"`
	Purpose   string `validate:"required"`
	SubjectID int64  `validate:"omitempty,gt=0"`

	// IdempotencyKey deduplicates retried submissions. Optional.
	IdempotencyKey string `validate:"-"`
}

type IssueOutput struct {
	ChallengeID int64
	ExpiresAt   time.Time
}

// Issue creates a challenge and delivers its code.
//
// Order matters: the channel must be usable and the rate budget free before
// any code exists, and a code that could not be delivered is removed again so
// it never counts against the identity.
func (s *Usecase) Issue(ctx context.Context, in IssueInput) (*IssueOutput, error) {
	ctx, span := s.startSpan(ctx, "Issue")
	defer span.End()

	in.Identity = normalizeIdentity(in.Identity)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	purpose := entity.ChallengePurposeFromString(in.Purpose)
	if purpose.IsUnknown() {
		return nil, goerror.NewInvalidInput(nil, "purpose", "purpose must be LOGIN or PASSWORD_RESET")
	}

	if in.IdempotencyKey == "" {
		return s.issue(ctx, in, purpose)
	}

	var out *IssueOutput
	err := s.idemp.Exec(ctx, "challenge:issue:"+in.IdempotencyKey, func(ctx context.Context) error {
		var issueErr error
		out, issueErr = s.issue(ctx, in, purpose)
		return issueErr
	})
	if errors.Is(err, idempotency.ErrAlreadyInProgress) || errors.Is(err, idempotency.ErrAlreadyCompleted) {
		return nil, goerror.NewBusiness("request already processed", goerror.CodeConflict)
	}
	if errors.Is(err, idempotency.ErrAlreadyFailed) {
		return nil, goerror.NewBusiness("request already failed, use a new idempotency key", goerror.CodeConflict)
	}
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Usecase) issue(ctx context.Context, in IssueInput, purpose entity.ChallengePurpose) (*IssueOutput, error) {
	channel := s.delivery.Resolve(in.Identity)
	if !channel.Available() {
		slog.WarnContext(ctx, "challenge requested over unavailable channel", "identity", in.Identity, "purpose", purpose.String())
		return nil, goerror.NewBusiness("delivery channel is not available", goerror.CodeUnavailable)
	}

	allowed, err := s.limiter.Allow(ctx, in.Identity, purpose)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check issuance rate", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !allowed {
		slog.WarnContext(ctx, "challenge issuance rate exceeded", "identity", in.Identity, "purpose", purpose.String())
		return nil, goerror.NewBusiness("too many codes requested, try again later", goerror.CodeTooManyRequest)
	}

	code, err := s.codes.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	validity := s.cfg.GetMinute("modules.challenge.code_ttl_minutes")
	ch := entity.Challenge{
		ID:        s.uid.Generate(),
		Identity:  in.Identity,
		Code:      code,
		Purpose:   purpose,
		SubjectID: in.SubjectID,
		CreatedAt: now,
		ExpiresAt: now.Add(validity),
	}

	if err := s.repoDB.CreateChallenge(ctx, ch); err != nil {
		slog.ErrorContext(ctx, "failed to repo create challenge", "identity", in.Identity, "error", err)
		return nil, goerror.NewServer(err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.GetSecond("modules.challenge.delivery_timeout_seconds"))
	defer cancel()

	if err := channel.Send(sendCtx, in.Identity, delivery.CodeMessage(code, validity)); err != nil {
		slog.ErrorContext(ctx, "failed to deliver challenge code", "identity", in.Identity, "challenge_id", ch.ID, "error", err)

		// best effort: an orphaned row is expired by the janitor anyway
		if delErr := s.repoDB.DeleteChallenge(ctx, ch.ID); delErr != nil {
			slog.WarnContext(ctx, "failed to compensate undelivered challenge", "challenge_id", ch.ID, "error", delErr)
		}

		return nil, goerror.NewBusiness("could not deliver the code", goerror.CodeUnavailable)
	}

	// detached from the request: a client hangup must not lose the event
	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishChallengeIssued(ctx, ChallengeIssuedEvent{
			ChallengeID: ch.ID,
			Identity:    ch.Identity,
			Purpose:     ch.Purpose,
			SubjectID:   ch.SubjectID,
			ExpiresAt:   ch.ExpiresAt,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish challenge issued", "challenge_id", ch.ID, "error", err)
		}
		return nil
	})

	return &IssueOutput{ChallengeID: ch.ID, ExpiresAt: ch.ExpiresAt}, nil
}
