package dto

import (
	"time"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/identity"
)

// MintTicketRequest represents the request to mint a ticket
type MintTicketRequest struct {
	Recipient string `json:"recipient" binding:"required"`
}

// Validate validates the MintTicketRequest
func (r *MintTicketRequest) Validate() (bool, string) {
	if _, err := domain.ParseAddress(r.Recipient); err != nil {
		return false, "Invalid recipient address"
	}
	return true, ""
}

// AssignTicketRequest represents the request to issue an identity-locked
// ticket. The holder identity arrives either as raw text, hashed
// server-side, or as pre-computed hashes; exactly one form is required.
type AssignTicketRequest struct {
	Recipient     string `json:"recipient"`
	HolderName    string `json:"holder_name"`
	StudentID     string `json:"student_id"`
	NameHash      string `json:"name_hash"`
	StudentIDHash string `json:"student_id_hash"`
}

// Validate validates the AssignTicketRequest
func (r *AssignTicketRequest) Validate() (bool, string) {
	hasRaw := r.HolderName != "" && r.StudentID != ""
	hasHashes := r.NameHash != "" && r.StudentIDHash != ""
	if hasRaw == hasHashes {
		return false, "Provide either holder_name and student_id, or name_hash and student_id_hash"
	}
	return true, ""
}

// IdentityHashes resolves the holder identity to its hash pair.
func (r *AssignTicketRequest) IdentityHashes() (domain.Hash, domain.Hash, error) {
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

// Owner resolves the ticket owner address. Wallet-less guests get a
// deterministic address derived from their identity hashes.
func (r *AssignTicketRequest) Owner(nameHash, studentIDHash domain.Hash) (domain.Address, error) {
	if r.Recipient == "" {
		return identity.GuestAddress(nameHash, studentIDHash), nil
	}
	return domain.ParseAddress(r.Recipient)
}

// TicketResponse represents the response for a ticket
type TicketResponse struct {
	ID               uint64     `json:"id"`
	EventID          uint64     `json:"event_id"`
	Owner            string     `json:"owner"`
	NameHash         string     `json:"name_hash,omitempty"`
	StudentIDHash    string     `json:"student_id_hash,omitempty"`
	IsIdentityLocked bool       `json:"is_identity_locked"`
	IsScanned        bool       `json:"is_scanned"`
	ScannedBy        string     `json:"scanned_by,omitempty"`
	ScannedAt        *time.Time `json:"scanned_at,omitempty"`
	MintedAt         time.Time  `json:"minted_at"`
}

// ToTicketResponse converts a domain ticket to a TicketResponse
func ToTicketResponse(ticket *domain.Ticket) *TicketResponse {
	resp := &TicketResponse{
		ID:               ticket.ID,
		EventID:          ticket.EventID,
		Owner:            ticket.Owner.String(),
		IsIdentityLocked: ticket.IsIdentityLocked(),
		IsScanned:        ticket.IsScanned,
		MintedAt:         ticket.MintedAt,
	}
	if ticket.IsIdentityLocked() {
		resp.NameHash = ticket.HolderNameHash.String()
		resp.StudentIDHash = ticket.HolderStudentIDHash.String()
	}
	if ticket.IsScanned {
		resp.ScannedBy = ticket.ScannedBy.String()
		scannedAt := ticket.ScannedAt
		resp.ScannedAt = &scannedAt
	}
	return resp
}
