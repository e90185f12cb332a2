package tests

import (
	"net/http"
	"testing"
)

// The code value never leaves the delivery channel, so a live verification can
// only assert the rejection contract.
func TestChallengeVerify_UniformRejection(t *testing.T) {
	requireServer(t)

	identity := uniqueEmail("verify")
	mustIssue(t, identity, "LOGIN")

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"wrong code", map[string]any{"identity": identity, "purpose": "LOGIN", "code": "0000"}},
		{"wrong purpose", map[string]any{"identity": identity, "purpose": "PASSWORD_RESET", "code": "1234"}},
		{"unknown identity", map[string]any{"identity": uniqueEmail("ghost"), "purpose": "LOGIN", "code": "1234"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPost, "/api/v1/challenges/verify", tc.payload, nil)
			if status != http.StatusUnauthorized {
				t.Fatalf("status=%d, want 401", status)
			}

			errEnv := decodeError(t, body)
			if errEnv.Message != "invalid or expired code" {
				t.Errorf("message=%q, want the uniform rejection", errEnv.Message)
			}
		})
	}
}

func TestChallengeVerify_Validation(t *testing.T) {
	requireServer(t)

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"missing code", map[string]any{"identity": uniqueEmail("val"), "purpose": "LOGIN"}},
		{"non numeric code", map[string]any{"identity": uniqueEmail("val"), "purpose": "LOGIN", "code": "12a4"}},
		{"empty identity", map[string]any{"identity": "", "purpose": "LOGIN", "code": "1234"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPost, "/api/v1/challenges/verify", tc.payload, nil)
			if status != http.StatusUnprocessableEntity && status != http.StatusBadRequest {
				errEnv := decodeError(t, body)
				t.Fatalf("status=%d message=%q, want a validation rejection", status, errEnv.Message)
			}
		})
	}
}
