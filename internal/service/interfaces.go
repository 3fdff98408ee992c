package service

import (
	"context"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/repository"
)

// TicketService exposes the event/ticket ledger operations, each gated
// by an explicit role check before any mutation.
type TicketService interface {
	// CreateEvent creates an event and grants the caller the organizer
	// role. Anyone may create an event.
	CreateEvent(ctx context.Context, caller domain.Address, name string, maxSupply uint64) (*domain.Event, error)

	// MintTicket issues a ticket to recipient. Caller must be the
	// event's organizer.
	MintTicket(ctx context.Context, caller domain.Address, eventID uint64, recipient domain.Address) (*domain.Ticket, error)

	// AssignTicket issues an identity-locked ticket. Caller must hold
	// the booth-operator role.
	AssignTicket(ctx context.Context, caller domain.Address, eventID uint64, recipient domain.Address, nameHash, studentIDHash domain.Hash) (*domain.Ticket, error)

	// UpdateTicketMetadata sets identity hashes on an existing ticket;
	// shares the write-once guard with AssignTicket.
	UpdateTicketMetadata(ctx context.Context, caller domain.Address, ticketID uint64, nameHash, studentIDHash domain.Hash) (*domain.Ticket, error)

	// SetEventActive opens or closes an event for minting and
	// verification. Caller must be the event's organizer.
	SetEventActive(ctx context.Context, caller domain.Address, eventID uint64, active bool) (*domain.Event, error)

	GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error)
	GetTicketDetails(ctx context.Context, ticketID uint64) (*domain.Ticket, error)
	GetEventTickets(ctx context.Context, eventID uint64) ([]uint64, error)
	GetOrganizerEvents(ctx context.Context, organizer domain.Address) ([]uint64, error)

	// GrantRole grants a role. Admin may grant anything; an organizer
	// may grant the booth-operator role.
	GrantRole(ctx context.Context, caller domain.Address, role domain.Role, identity domain.Address) error
	HasRole(ctx context.Context, identity domain.Address, role domain.Role) (bool, error)
}

// VerifyRequest is a submitted challenge proof.
type VerifyRequest struct {
	TicketID uint64
	Nonce    uint64
	Deadline int64 // unix seconds
	Proof    []byte
}

// VerifierService is the challenge-response verification core.
type VerifierService interface {
	// IssueChallenge generates a single-use nonce and deadline for a
	// ticket. Caller must be the event's organizer.
	IssueChallenge(ctx context.Context, caller domain.Address, ticketID uint64) (*repository.Challenge, error)

	// GetChallenge returns a previously issued challenge by ID for
	// audit, gated by the same organizer check as issuance.
	GetChallenge(ctx context.Context, caller domain.Address, challengeID string) (*repository.Challenge, error)

	// VerifyTicket runs the verification state machine. An error means
	// the call itself was rejected (authorization, expiry, lockout,
	// already scanned); a returned result means the call completed and
	// carries the outcome, including proof rejection.
	VerifyTicket(ctx context.Context, caller domain.Address, req *VerifyRequest) (*domain.VerificationResult, error)

	// CheckInGuest is the signature-free path for wallet-less tickets,
	// authenticated by exact identity-hash comparison.
	CheckInGuest(ctx context.Context, caller domain.Address, ticketID uint64, nameHash, studentIDHash domain.Hash) (*domain.VerificationResult, error)
}
