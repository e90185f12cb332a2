package inbound

import (
	"github.com/openwrench/passcode/internal/challenge/usecase"
	"github.com/openwrench/passcode/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for issuing and verifying one-time codes.
type HTTPEndpoint struct {
	uc uc
}

// Issue creates a one-time code challenge and delivers it to the identity.
// @Summary Issue a one-time code
// @Description Generates a code, stores the challenge and delivers the code by SMS or email. Retried submissions may pass an Idempotency-Key header.
// @Tags Challenge
// @Accept json
// @Produce json
// @Param request body IssueRequest true "Issue payload"
// @Success 200 {object} router.successResponse{data=IssueResponse} "Issuance result"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many codes requested"
// @Failure 503 {object} router.errorResponse "Delivery channel unavailable"
// @Router /api/v1/challenges/issue [post]
func (h *HTTPEndpoint) Issue(r *router.Request) (any, error) {
	var req IssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Issue(r.Context(), usecase.IssueInput{
		Identity:       req.Identity,
		Purpose:        req.Purpose,
		SubjectID:      req.SubjectID,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return nil, err
	}

	return IssueResponse{
		ChallengeID: resp.ChallengeID,
		ExpiresAt:   resp.ExpiresAt.UTC(),
	}, nil
}

// Verify claims a previously issued one-time code.
// @Summary Verify a one-time code
// @Description Atomically claims the challenge matching identity, purpose and code. Any mismatch yields one uniform rejection.
// @Tags Challenge
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} router.successResponse{data=VerifyResponse} "Verification result"
// @Failure 401 {object} router.errorResponse "Invalid or expired code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Router /api/v1/challenges/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Verify(r.Context(), usecase.VerifyInput{
		Identity: req.Identity,
		Purpose:  req.Purpose,
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		ChallengeID: resp.ChallengeID,
		SubjectID:   resp.SubjectID,
		VerifiedAt:  resp.VerifiedAt.UTC(),
	}, nil
}
