package challenge

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openwrench/passcode/internal/challenge/entity"
	"github.com/openwrench/passcode/internal/challenge/inbound"
	"github.com/openwrench/passcode/internal/challenge/janitor"
	"github.com/openwrench/passcode/internal/challenge/outbound/db"
	"github.com/openwrench/passcode/internal/challenge/outbound/delivery"
	"github.com/openwrench/passcode/internal/challenge/outbound/memory"
	"github.com/openwrench/passcode/internal/challenge/outbound/mq"
	"github.com/openwrench/passcode/internal/challenge/ratelimit"
	"github.com/openwrench/passcode/internal/challenge/usecase"
	"github.com/openwrench/passcode/internal/pkg/clock"
	"github.com/openwrench/passcode/internal/pkg/config"
	"github.com/openwrench/passcode/internal/pkg/goroutine"
	"github.com/openwrench/passcode/internal/pkg/idempotency"
	"github.com/openwrench/passcode/internal/pkg/instrument"
	"github.com/openwrench/passcode/internal/pkg/mail"
	"github.com/openwrench/passcode/internal/pkg/messaging"
	"github.com/openwrench/passcode/internal/pkg/otc"
	"github.com/openwrench/passcode/internal/pkg/router"
	"github.com/openwrench/passcode/internal/pkg/uid"
	"github.com/openwrench/passcode/internal/pkg/validator"
)

// store is everything the module needs from a challenge store. Both the
// Postgres and the in-memory implementation satisfy it.
type store interface {
	CreateChallenge(ctx context.Context, in entity.Challenge) error
	CountRecentChallenges(ctx context.Context, identity string, purpose entity.ChallengePurpose, since time.Time) (int64, error)
	ClaimIfValid(ctx context.Context, identity string, purpose entity.ChallengePurpose, code string, now time.Time) (*entity.Challenge, error)
	DeleteChallenge(ctx context.Context, id int64) error
	DeleteExpiredChallenges(ctx context.Context, now time.Time) (int64, error)
}

type Dependency struct {
	DBConn      *pgxpool.Pool              // nil when the memory driver is selected
	Mail        mail.Mail                  // nil when email delivery is not configured
	Goroutine   *goroutine.Manager         `validate:"required"`
	Router      *router.Router             `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UID         uid.NumberID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
}

// New wires the challenge module and returns the janitor for the app to run.
func New(dep Dependency) (*janitor.Janitor, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	var repo store
	if dep.Config.GetString("modules.challenge.store_driver") == "memory" {
		repo = memory.NewStore()
	} else {
		repo = db.NewDB(dep.DBConn, dep.Instrument)
	}

	codes, err := otc.NewNumericCode(dep.Config.GetInt("modules.challenge.code_length"))
	if err != nil {
		return nil, err
	}

	sms := delivery.NewSMS(delivery.SMSConfig{
		AccountSID: dep.Config.GetString("twilio.account_sid"),
		AuthToken:  dep.Config.GetString("twilio.auth_token"),
		From:       dep.Config.GetString("twilio.from"),
	})
	email := delivery.NewEmail(dep.Mail, dep.Config.GetString("modules.challenge.email_subject"))

	limiter := ratelimit.NewLimiter(
		repo,
		dep.Clock,
		dep.Config.GetHour("modules.challenge.rate_window_hours"),
		dep.Config.GetInt64("modules.challenge.rate_max"),
	)

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repo,
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Limiter:       limiter,
		Delivery:      delivery.NewSelector(sms, email),
		Codes:         codes,
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	jan := janitor.New(
		repo,
		dep.Clock,
		dep.Instrument,
		dep.Config.GetMinute("modules.challenge.janitor_interval_minutes"),
	)

	return jan, nil
}
