package event

const ChallengeVerifiedDestination string = "challenge_verified"

// ChallengeVerifiedMessage announces that a challenge was claimed.
// It never carries the code value.
type ChallengeVerifiedMessage struct {
	ChallengeID int64  `json:"challenge_id"`
	Identity    string `json:"identity"`
	Purpose     string `json:"purpose"`
	SubjectID   int64  `json:"subject_id,omitempty"`
}
