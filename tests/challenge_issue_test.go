package tests

import (
	"net/http"
	"testing"
	"time"
)

func TestChallengeIssue(t *testing.T) {
	requireServer(t)

	data := mustIssue(t, uniqueEmail("issue"), "LOGIN")

	if data.ChallengeID == 0 {
		t.Error("missing challenge_id")
	}
	if !data.ExpiresAt.After(time.Now()) {
		t.Errorf("expires_at %v is not in the future", data.ExpiresAt)
	}
}

func TestChallengeIssue_Validation(t *testing.T) {
	requireServer(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"empty identity", map[string]any{"identity": "", "purpose": "LOGIN"}},
		{"malformed identity", map[string]any{"identity": "not-a-phone-or-email", "purpose": "LOGIN"}},
		{"missing purpose", map[string]any{"identity": uniqueEmail("val")}},
		{"unknown purpose", map[string]any{"identity": uniqueEmail("val"), "purpose": "SIGNUP"}},
		{"negative subject", map[string]any{"identity": uniqueEmail("val"), "purpose": "LOGIN", "subject_id": -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPost, "/api/v1/challenges/issue", tc.payload, nil)
			if status != http.StatusUnprocessableEntity && status != http.StatusBadRequest {
				errEnv := decodeError(t, body)
				t.Fatalf("status=%d message=%q, want a validation rejection", status, errEnv.Message)
			}
		})
	}
}

func TestChallengeIssue_RateLimit(t *testing.T) {
	requireServer(t)

	identity := uniqueEmail("ratelimit")

	var limited bool
	for range 6 {
		status, body := issue(t, identity, "LOGIN", nil)
		switch status {
		case http.StatusServiceUnavailable:
			t.Skip("no delivery channel configured on this deployment")
		case http.StatusTooManyRequests:
			errEnv := decodeError(t, body)
			if errEnv.Message == "" {
				t.Error("rate limit rejection has no message")
			}
			limited = true
		}
		if limited {
			break
		}
	}

	if !limited {
		t.Error("six issuances for one identity never hit the rate limit")
	}
}

func TestChallengeIssue_IdempotencyKey(t *testing.T) {
	requireServer(t)

	identity := uniqueEmail("idem")
	headers := map[string]string{"Idempotency-Key": "live-" + identity}

	status, _ := issue(t, identity, "LOGIN", headers)
	if status == http.StatusServiceUnavailable {
		t.Skip("no delivery channel configured on this deployment")
	}
	if status != http.StatusOK {
		t.Fatalf("first issuance status=%d, want 200", status)
	}

	status, body := issue(t, identity, "LOGIN", headers)
	if status != http.StatusConflict {
		errEnv := decodeError(t, body)
		t.Fatalf("replayed key: status=%d message=%q, want 409", status, errEnv.Message)
	}
}
