package event

const ChallengeIssuedDestination string = "challenge_issued"

// ChallengeIssuedMessage announces that a code was issued and delivered.
// It never carries the code value.
type ChallengeIssuedMessage struct {
	ChallengeID int64  `json:"challenge_id"`
	Identity    string `json:"identity"`
	Purpose     string `json:"purpose"`
	SubjectID   int64  `json:"subject_id,omitempty"`
	ExpiresAt   int64  `json:"expires_at"`
}
