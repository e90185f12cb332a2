package tests

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

type issueData struct {
	ChallengeID int64     `json:"challenge_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type verifyData struct {
	ChallengeID int64     `json:"challenge_id"`
	SubjectID   int64     `json:"subject_id"`
	VerifiedAt  time.Time `json:"verified_at"`
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// issue posts an issuance request. A 503 is tolerated because deployments
// without a configured SMTP or Twilio channel report delivery as unavailable.
func issue(t *testing.T, identity, purpose string, headers map[string]string) (int, []byte) {
	t.Helper()

	payload := map[string]any{
		"identity": identity,
		"purpose":  purpose,
	}

	status, body := doJSON(t, http.MethodPost, "/api/v1/challenges/issue", payload, headers)
	if status != http.StatusOK && status != http.StatusServiceUnavailable &&
		status != http.StatusTooManyRequests && status != http.StatusConflict {
		errEnv := decodeError(t, body)
		t.Fatalf("issue failed: status=%d message=%q", status, errEnv.Message)
	}

	return status, body
}

// mustIssue skips the test when the deployment has no working delivery channel.
func mustIssue(t *testing.T, identity, purpose string) issueData {
	t.Helper()

	status, body := issue(t, identity, purpose, nil)
	if status == http.StatusServiceUnavailable {
		t.Skip("no delivery channel configured on this deployment")
	}
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("issue failed: status=%d message=%q", status, errEnv.Message)
	}

	var data issueData
	decodeSuccess(t, body, &data)

	return data
}
