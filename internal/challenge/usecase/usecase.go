package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
	"github.com/openwrench/passcode/internal/challenge/outbound/delivery"
	"github.com/openwrench/passcode/internal/pkg/clock"
	"github.com/openwrench/passcode/internal/pkg/config"
	"github.com/openwrench/passcode/internal/pkg/goroutine"
	"github.com/openwrench/passcode/internal/pkg/idempotency"
	"github.com/openwrench/passcode/internal/pkg/instrument"
	"github.com/openwrench/passcode/internal/pkg/otc"
	"github.com/openwrench/passcode/internal/pkg/uid"
	"github.com/openwrench/passcode/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type ChallengeIssuedEvent struct {
	ChallengeID int64
	Identity    string
	Purpose     entity.ChallengePurpose
	SubjectID   int64
	ExpiresAt   time.Time
}

type ChallengeVerifiedEvent struct {
	ChallengeID int64
	Identity    string
	Purpose     entity.ChallengePurpose
	SubjectID   int64
}

type repoMessaging interface {
	PublishChallengeIssued(ctx context.Context, msg ChallengeIssuedEvent) error
	PublishChallengeVerified(ctx context.Context, msg ChallengeVerifiedEvent) error
}

type repoDB interface {
	CreateChallenge(ctx context.Context, in entity.Challenge) error
	ClaimIfValid(ctx context.Context, identity string, purpose entity.ChallengePurpose, code string, now time.Time) (*entity.Challenge, error)
	DeleteChallenge(ctx context.Context, id int64) error
}

type limiter interface {
	Allow(ctx context.Context, identity string, purpose entity.ChallengePurpose) (bool, error)
}

type channelResolver interface {
	Resolve(destination string) delivery.Channel
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	limiter       limiter
	delivery      channelResolver
	codes         otc.Generator
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Limiter       limiter
	Delivery      channelResolver
	Codes         otc.Generator
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		limiter:       dep.Limiter,
		delivery:      dep.Delivery,
		codes:         dep.Codes,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("challenge.usecase").Start(ctx, name)
}

// normalizeIdentity trims the destination and lowercases email addresses.
// Phone numbers pass through untouched; E.164 has no case.
func normalizeIdentity(identity string) string {
	identity = strings.TrimSpace(identity)
	if strings.Contains(identity, "@") {
		return strings.ToLower(identity)
	}
	return identity
}
