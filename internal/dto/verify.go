package dto

import (
	"encoding/base64"
	"time"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/identity"
	"github.com/Dequr01/fair-ticket/internal/repository"
	"github.com/Dequr01/fair-ticket/internal/service"
)

// ChallengeResponse represents an issued verification challenge
type ChallengeResponse struct {
	ChallengeID string    `json:"challenge_id"`
	TicketID    uint64    `json:"ticket_id"`
	Nonce       uint64    `json:"nonce"`
	Deadline    time.Time `json:"deadline"`
	IssuedAt    time.Time `json:"issued_at"`
}

// ToChallengeResponse converts a stored challenge to a ChallengeResponse
func ToChallengeResponse(c *repository.Challenge) *ChallengeResponse {
	return &ChallengeResponse{
		ChallengeID: c.ID,
		TicketID:    c.TicketID,
		Nonce:       c.Nonce,
		Deadline:    c.Deadline,
		IssuedAt:    c.IssuedAt,
	}
}

// VerifyTicketRequest represents a submitted challenge proof
type VerifyTicketRequest struct {
	Nonce    uint64 `json:"nonce" binding:"required"`
	Deadline int64  `json:"deadline" binding:"required"`
	Proof    string `json:"proof" binding:"required"`
}

// Validate validates the VerifyTicketRequest
func (r *VerifyTicketRequest) Validate() (bool, string) {
	proof, err := base64.StdEncoding.DecodeString(r.Proof)
	if err != nil {
		return false, "Proof must be base64-encoded"
	}
	if len(proof) != identity.ProofLen {
		return false, "Proof has invalid length"
	}
	return true, ""
}

// ToVerifyRequest converts the request into service input. Call Validate
// first; an undecodable proof yields an empty byte slice here.
func (r *VerifyTicketRequest) ToVerifyRequest(ticketID uint64) *service.VerifyRequest {
	proof, _ := base64.StdEncoding.DecodeString(r.Proof)
	return &service.VerifyRequest{
		TicketID: ticketID,
		Nonce:    r.Nonce,
		Deadline: r.Deadline,
		Proof:    proof,
	}
}

// GuestCheckInRequest represents a guest check-in by physical identity.
// Raw text or pre-computed hashes, same contract as AssignTicketRequest.
type GuestCheckInRequest struct {
	HolderName    string `json:"holder_name"`
	StudentID     string `json:"student_id"`
	NameHash      string `json:"name_hash"`
	StudentIDHash string `json:"student_id_hash"`
}

// Validate validates the GuestCheckInRequest
func (r *GuestCheckInRequest) Validate() (bool, string) {
	hasRaw := r.HolderName != "" && r.StudentID != ""
	hasHashes := r.NameHash != "" && r.StudentIDHash != ""
	if hasRaw == hasHashes {
		return false, "Provide either holder_name and student_id, or name_hash and student_id_hash"
	}
	return true, ""
}

// IdentityHashes resolves the presented identity to its hash pair.
func (r *GuestCheckInRequest) IdentityHashes() (domain.Hash, domain.Hash, error) {
	if r.HolderName != "" {
		nameHash, studentIDHash := identity.HashIdentity(r.HolderName, r.StudentID)
		return nameHash, studentIDHash, nil
	}
	nameHash, err := domain.ParseHash(r.NameHash)
	if err != nil {
		return domain.ZeroHash, domain.ZeroHash, err
	}
	studentIDHash, err := domain.ParseHash(r.StudentIDHash)
	if err != nil {
		return domain.ZeroHash, domain.ZeroHash, err
	}
	return nameHash, studentIDHash, nil
}

// VerificationResultResponse represents a completed verification outcome
type VerificationResultResponse struct {
	TicketID       uint64     `json:"ticket_id"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason,omitempty"`
	FailedAttempts uint32     `json:"failed_attempts,omitempty"`
	LockoutExpiry  *time.Time `json:"lockout_expiry,omitempty"`
	ScannedBy      string     `json:"scanned_by,omitempty"`
	ScannedAt      *time.Time `json:"scanned_at,omitempty"`
}

// ToVerificationResultResponse converts a domain result to a response
func ToVerificationResultResponse(result *domain.VerificationResult) *VerificationResultResponse {
	resp := &VerificationResultResponse{
		TicketID:       result.TicketID,
		Status:         string(result.Status),
		Reason:         result.Reason,
		FailedAttempts: result.FailedAttempts,
	}
	if !result.LockoutExpiry.IsZero() {
		expiry := result.LockoutExpiry
		resp.LockoutExpiry = &expiry
	}
	if result.Status == domain.VerificationScanned {
		resp.ScannedBy = result.ScannedBy.String()
		scannedAt := result.ScannedAt
		resp.ScannedAt = &scannedAt
	}
	return resp
}
