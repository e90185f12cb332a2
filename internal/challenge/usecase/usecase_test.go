package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/openwrench/passcode/internal/challenge/entity"
	"github.com/openwrench/passcode/internal/challenge/outbound/delivery"
	"github.com/openwrench/passcode/internal/pkg/goerror"
	"github.com/openwrench/passcode/internal/pkg/goroutine"
	"github.com/openwrench/passcode/internal/pkg/instrument"
	"github.com/openwrench/passcode/internal/pkg/validator"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

type fakeUID struct{ next int64 }

func (f *fakeUID) Generate() int64 {
	f.next++
	return f.next
}

type fakeCodes struct {
	code string
	err  error
}

func (f *fakeCodes) Generate() (string, error) { return f.code, f.err }
func (f *fakeCodes) Length() int               { return len(f.code) }

type fakeDB struct {
	mu sync.Mutex

	created   []entity.Challenge
	createErr error

	claimOut *entity.Challenge
	claimErr error

	deleted   []int64
	deleteErr error
}

func (f *fakeDB) CreateChallenge(_ context.Context, in entity.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, in)
	return nil
}

func (f *fakeDB) ClaimIfValid(_ context.Context, _ string, _ entity.ChallengePurpose, _ string, _ time.Time) (*entity.Challenge, error) {
	return f.claimOut, f.claimErr
}

func (f *fakeDB) DeleteChallenge(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

type fakeLimiter struct {
	allow bool
	err   error
}

func (f *fakeLimiter) Allow(context.Context, string, entity.ChallengePurpose) (bool, error) {
	return f.allow, f.err
}

type fakeChannel struct {
	mu        sync.Mutex
	available bool
	sendErr   error
	sent      []string
	messages  []string
}

func (f *fakeChannel) Available() bool { return f.available }

func (f *fakeChannel) Send(_ context.Context, destination, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, destination)
	f.messages = append(f.messages, message)
	return nil
}

type fakeResolver struct{ channel *fakeChannel }

func (f *fakeResolver) Resolve(string) delivery.Channel { return f.channel }

type fakeMessaging struct {
	mu       sync.Mutex
	issued   []ChallengeIssuedEvent
	verified []ChallengeVerifiedEvent
	err      error
}

func (f *fakeMessaging) PublishChallengeIssued(_ context.Context, msg ChallengeIssuedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.issued = append(f.issued, msg)
	return nil
}

func (f *fakeMessaging) PublishChallengeVerified(_ context.Context, msg ChallengeVerifiedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.verified = append(f.verified, msg)
	return nil
}

type fixture struct {
	uc        *Usecase
	db        *fakeDB
	limiter   *fakeLimiter
	channel   *fakeChannel
	messaging *fakeMessaging
	goroutine *goroutine.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	f := &fixture{
		db:        &fakeDB{},
		limiter:   &fakeLimiter{allow: true},
		channel:   &fakeChannel{available: true},
		messaging: &fakeMessaging{},
		goroutine: goroutine.NewManager(4),
	}

	f.uc = New(Dependency{
		RepoDB:        f.db,
		RepoMessaging: f.messaging,
		Limiter:       f.limiter,
		Delivery:      &fakeResolver{channel: f.channel},
		Codes:         &fakeCodes{code: "4821"},
		Validator:     v10,
		Config:        testConfig{},
		UID:           &fakeUID{},
		Clock:         &fakeClock{now: testNow},
		Instrument:    instrument.NewNoop(),
		Goroutine:     f.goroutine,
	})

	return f
}

// testConfig serves the handful of keys the usecase reads.
type testConfig struct{}

func (testConfig) GetBool(string) bool              { return false }
func (testConfig) GetString(string) string          { return "" }
func (testConfig) GetBinary(string) []byte          { return nil }
func (testConfig) GetArray(string) []string         { return nil }
func (testConfig) GetMap(string) map[string]string  { return nil }
func (testConfig) GetInt(string) int                { return 0 }
func (testConfig) GetInt32(string) int32            { return 0 }
func (testConfig) GetInt64(string) int64            { return 0 }
func (testConfig) GetUint(string) uint              { return 0 }
func (testConfig) GetUint16(string) uint16          { return 0 }
func (testConfig) GetUint32(string) uint32          { return 0 }
func (testConfig) GetUint64(string) uint64          { return 0 }
func (testConfig) GetFloat32(string) float32        { return 0 }
func (testConfig) GetFloat64(string) float64        { return 0 }
func (testConfig) GetSecond(key string) time.Duration {
	if key == "modules.challenge.delivery_timeout_seconds" {
		return 5 * time.Second
	}
	return time.Second
}
func (testConfig) GetMinute(key string) time.Duration {
	if key == "modules.challenge.code_ttl_minutes" {
		return 2 * time.Minute
	}
	return time.Minute
}
func (testConfig) GetHour(string) time.Duration { return time.Hour }
func (testConfig) GetDay(string) time.Duration  { return 24 * time.Hour }

func asGoError(t *testing.T, err error) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error %v is not a goerror", err)
	}
	return gerr
}
