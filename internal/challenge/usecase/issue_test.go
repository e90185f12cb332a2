package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/openwrench/passcode/internal/pkg/goerror"
	"github.com/openwrench/passcode/internal/pkg/idempotency"
)

func TestIssue_Success(t *testing.T) {
	f := newFixture(t)

	out, err := f.uc.Issue(context.Background(), IssueInput{
		Identity: "User@Example.com ",
		Purpose:  "LOGIN",
	})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if len(f.db.created) != 1 {
		t.Fatalf("created %d challenges, want 1", len(f.db.created))
	}

	ch := f.db.created[0]
	if ch.Identity != "user@example.com" {
		t.Errorf("identity = %q, want normalized", ch.Identity)
	}
	if ch.Code != "4821" {
		t.Errorf("code = %q, want generator output", ch.Code)
	}
	if !ch.ExpiresAt.Equal(testNow.Add(2 * time.Minute)) {
		t.Errorf("expires at = %v, want created + 2m", ch.ExpiresAt)
	}
	if ch.Used {
		t.Error("new challenge must not be used")
	}

	if out.ChallengeID != ch.ID {
		t.Errorf("output id = %d, want %d", out.ChallengeID, ch.ID)
	}
	if !out.ExpiresAt.Equal(ch.ExpiresAt) {
		t.Errorf("output expiry = %v, want %v", out.ExpiresAt, ch.ExpiresAt)
	}

	if len(f.channel.messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(f.channel.messages))
	}
	if want := "Your verification code is 4821. Valid for 2 minutes."; f.channel.messages[0] != want {
		t.Errorf("message = %q, want %q", f.channel.messages[0], want)
	}

	if err := f.goroutine.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(f.messaging.issued) != 1 {
		t.Fatalf("published %d issued events, want 1", len(f.messaging.issued))
	}
	if f.messaging.issued[0].ChallengeID != ch.ID {
		t.Errorf("event challenge id = %d, want %d", f.messaging.issued[0].ChallengeID, ch.ID)
	}
}

func TestIssue_ChannelUnavailable(t *testing.T) {
	f := newFixture(t)
	f.channel.available = false

	_, err := f.uc.Issue(context.Background(), IssueInput{Identity: "user@example.com", Purpose: "LOGIN"})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", gerr.StatusCode())
	}

	if len(f.db.created) != 0 {
		t.Fatal("nothing may be persisted when the channel is down")
	}
}

func TestIssue_RateLimited(t *testing.T) {
	f := newFixture(t)
	f.limiter.allow = false

	_, err := f.uc.Issue(context.Background(), IssueInput{Identity: "+14155552671", Purpose: "LOGIN"})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", gerr.StatusCode())
	}

	if len(f.db.created) != 0 {
		t.Fatal("rate-limited request must not persist a challenge")
	}
	if len(f.channel.sent) != 0 {
		t.Fatal("rate-limited request must not send anything")
	}
}

func TestIssue_LimiterFailureIsServerError(t *testing.T) {
	f := newFixture(t)
	f.limiter.err = errors.New("connection refused")

	_, err := f.uc.Issue(context.Background(), IssueInput{Identity: "user@example.com", Purpose: "LOGIN"})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", gerr.StatusCode())
	}
	if len(f.db.created) != 0 {
		t.Fatal("limiter failure must not persist a challenge")
	}
}

func TestIssue_PersistFailure(t *testing.T) {
	f := newFixture(t)
	f.db.createErr = errors.New("disk full")

	_, err := f.uc.Issue(context.Background(), IssueInput{Identity: "user@example.com", Purpose: "LOGIN"})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", gerr.StatusCode())
	}
	if len(f.channel.sent) != 0 {
		t.Fatal("unpersisted challenge must not be delivered")
	}
}

func TestIssue_DeliveryFailureCompensates(t *testing.T) {
	f := newFixture(t)
	f.channel.sendErr = errors.New("gateway timeout")

	_, err := f.uc.Issue(context.Background(), IssueInput{Identity: "user@example.com", Purpose: "PASSWORD_RESET"})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", gerr.StatusCode())
	}

	if len(f.db.created) != 1 {
		t.Fatalf("created %d challenges, want 1", len(f.db.created))
	}
	if len(f.db.deleted) != 1 || f.db.deleted[0] != f.db.created[0].ID {
		t.Fatalf("undelivered challenge was not compensated: deleted %v", f.db.deleted)
	}

	if err := f.goroutine.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(f.messaging.issued) != 0 {
		t.Fatal("compensated issuance must not publish an event")
	}
}

func TestIssue_CompensationFailureStillReportsDelivery(t *testing.T) {
	f := newFixture(t)
	f.channel.sendErr = errors.New("gateway timeout")
	f.db.deleteErr = errors.New("connection lost")

	_, err := f.uc.Issue(context.Background(), IssueInput{Identity: "user@example.com", Purpose: "LOGIN"})
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 even when compensation fails", gerr.StatusCode())
	}
}

func TestIssue_InvalidInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		in   IssueInput
	}{
		{"empty identity", IssueInput{Purpose: "LOGIN"}},
		{"malformed identity", IssueInput{Identity: "not-a-destination", Purpose: "LOGIN"}},
		{"bare number", IssueInput{Identity: "14155552671", Purpose: "LOGIN"}},
		{"empty purpose", IssueInput{Identity: "user@example.com"}},
		{"unknown purpose", IssueInput{Identity: "user@example.com", Purpose: "MFA"}},
		{"lowercase purpose", IssueInput{Identity: "user@example.com", Purpose: "login"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.uc.Issue(context.Background(), tc.in)
			gerr := asGoError(t, err)
			if gerr.Type() != goerror.TypeValidation {
				t.Fatalf("error type = %v, want validation", gerr.Type())
			}
			if len(f.db.created) != 0 {
				t.Fatal("invalid input must not persist a challenge")
			}
		})
	}
}

type fakeIdempotency struct {
	seen map[string]bool
}

func (f *fakeIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}
func (f *fakeIdempotency) MarkCompleted(context.Context, string, time.Duration) error { return nil }
func (f *fakeIdempotency) MarkFailed(context.Context, string, time.Duration) error    { return nil }

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	if f.seen[key] {
		return idempotency.ErrAlreadyCompleted
	}
	f.seen[key] = true
	return fn(ctx)
}

func TestIssue_DuplicateIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	f.uc.idemp = &fakeIdempotency{seen: map[string]bool{}}

	in := IssueInput{Identity: "user@example.com", Purpose: "LOGIN", IdempotencyKey: "abc-123"}

	if _, err := f.uc.Issue(context.Background(), in); err != nil {
		t.Fatalf("first issue: %v", err)
	}

	_, err := f.uc.Issue(context.Background(), in)
	gerr := asGoError(t, err)
	if gerr.StatusCode() != http.StatusConflict {
		t.Fatalf("status = %d, want 409", gerr.StatusCode())
	}

	if len(f.db.created) != 1 {
		t.Fatalf("created %d challenges, want 1 (duplicate must not burn budget)", len(f.db.created))
	}
}
