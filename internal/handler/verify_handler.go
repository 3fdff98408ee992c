package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Dequr01/fair-ticket/internal/dto"
	"github.com/Dequr01/fair-ticket/internal/middleware"
	"github.com/Dequr01/fair-ticket/internal/service"
	"github.com/Dequr01/fair-ticket/pkg/response"
)

// VerifyHandler handles the challenge-response verification endpoints
type VerifyHandler struct {
	verifier service.VerifierService
}

// NewVerifyHandler creates a new VerifyHandler
func NewVerifyHandler(verifier service.VerifierService) *VerifyHandler {
	return &VerifyHandler{verifier: verifier}
}

// IssueChallenge handles POST /tickets/:id/challenge
func (h *VerifyHandler) IssueChallenge(c *gin.Context) {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	challenge, err := h.verifier.IssueChallenge(c.Request.Context(), middleware.CallerAddress(c), ticketID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.ToChallengeResponse(challenge))
}

// GetChallenge handles GET /challenges/:id
func (h *VerifyHandler) GetChallenge(c *gin.Context) {
	challengeID := c.Param("id")
	if challengeID == "" {
		response.BadRequest(c, "Challenge ID is required")
		return
	}

	challenge, err := h.verifier.GetChallenge(c.Request.Context(), middleware.CallerAddress(c), challengeID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.ToChallengeResponse(challenge))
}

// Verify handles POST /tickets/:id/verify. A completed verification is a
// 200 regardless of outcome; the body carries scanned, failed or locked.
// Errors mean the submission itself was rejected and left no trace.
func (h *VerifyHandler) Verify(c *gin.Context) {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.VerifyTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	result, err := h.verifier.VerifyTicket(c.Request.Context(), middleware.CallerAddress(c), req.ToVerifyRequest(ticketID))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.ToVerificationResultResponse(result))
}

// GuestCheckIn handles POST /tickets/:id/guest-checkin
func (h *VerifyHandler) GuestCheckIn(c *gin.Context) {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.GuestCheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	nameHash, studentIDHash, err := req.IdentityHashes()
	if err != nil {
		response.BadRequest(c, "Invalid identity hashes")
		return
	}

	result, err := h.verifier.CheckInGuest(c.Request.Context(), middleware.CallerAddress(c), ticketID, nameHash, studentIDHash)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.ToVerificationResultResponse(result))
}
