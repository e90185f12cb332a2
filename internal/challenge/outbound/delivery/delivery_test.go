package delivery

import (
	"context"
	"strings"
	"testing"
	"time"
)

type stubChannel struct{ name string }

func (s *stubChannel) Available() bool                    { return true }
func (s *stubChannel) Send(context.Context, string, string) error { return nil }

func TestSelector_Resolve(t *testing.T) {
	sms := &stubChannel{name: "sms"}
	email := &stubChannel{name: "email"}
	sel := NewSelector(sms, email)

	tests := []struct {
		destination string
		want        *stubChannel
	}{
		{"+14155552671", sms},
		{"+6281234567890", sms},
		{"user@example.com", email},
		{"14155552671", email},    // missing plus, not E.164
		{"+04155552671", email},   // leading zero, not E.164
	}

	for _, tc := range tests {
		if got := sel.Resolve(tc.destination); got != tc.want {
			t.Errorf("Resolve(%q) = %v, want %v", tc.destination, got.(*stubChannel).name, tc.want.name)
		}
	}
}

func TestCodeMessage(t *testing.T) {
	msg := CodeMessage("4821", 2*time.Minute)
	want := "Your verification code is 4821. Valid for 2 minutes."
	if msg != want {
		t.Fatalf("message = %q, want %q", msg, want)
	}

	if got := CodeMessage("1000", 30*time.Second); !strings.Contains(got, "1 minutes") {
		t.Fatalf("sub-minute validity should round up to 1, got %q", got)
	}
}

func TestSMS_UnconfiguredIsUnavailable(t *testing.T) {
	sms := NewSMS(SMSConfig{})
	if sms.Available() {
		t.Fatal("empty config should be unavailable")
	}
	if err := sms.Send(context.Background(), "+14155552671", "hi"); err == nil {
		t.Fatal("send on unconfigured channel should fail")
	}
}

func TestEmail_UnconfiguredIsUnavailable(t *testing.T) {
	email := NewEmail(nil, "")
	if email.Available() {
		t.Fatal("nil mailer should be unavailable")
	}
	if err := email.Send(context.Background(), "user@example.com", "hi"); err == nil {
		t.Fatal("send on unconfigured channel should fail")
	}
}
