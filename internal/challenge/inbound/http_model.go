package inbound

import "time"

type IssueRequest struct {
	Identity  string `json:"identity"`
	Purpose   string `json:"purpose"`
	SubjectID int64  `json:"subject_id,omitempty"`
}

type IssueResponse struct {
	ChallengeID int64     `json:"challenge_id"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (IssueResponse) Message() string {
	return "A verification code has been sent."
}

type VerifyRequest struct {
	Identity string `json:"identity"`
	Purpose  string `json:"purpose"`
	Code     string `json:"code"`
}

type VerifyResponse struct {
	ChallengeID int64     `json:"challenge_id"`
	SubjectID   int64     `json:"subject_id,omitempty"`
	VerifiedAt  time.Time `json:"verified_at"`
}

func (VerifyResponse) Message() string {
	return "Code verified."
}
