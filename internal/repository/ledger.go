package repository

import (
	"context"
	"time"

	"github.com/Dequr01/fair-ticket/internal/domain"
)

// Ledger is the authoritative store of events, tickets, roles, and
// per-ticket verification attempt state. Every mutating operation is
// atomic: it either fully commits or fails with no observable effect.
// Implementations must serialize mutations so that concurrent calls on
// the same ticket resolve by strict ordering.
type Ledger interface {
	// CreateEvent appends a new event and assigns its sequential ID.
	CreateEvent(ctx context.Context, organizer domain.Address, maxSupply uint64) (*domain.Event, error)

	// GetEvent returns a copy of the event record.
	GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error)

	// EventsByOrganizer lists event IDs created by the organizer, in
	// creation order.
	EventsByOrganizer(ctx context.Context, organizer domain.Address) ([]uint64, error)

	// SetEventActive toggles the event's active flag. Idempotent.
	SetEventActive(ctx context.Context, eventID uint64, active bool) (*domain.Event, error)

	// MintTicket issues the next globally sequential ticket for the
	// event, enforcing the active and supply preconditions.
	MintTicket(ctx context.Context, eventID uint64, recipient domain.Address) (*domain.Ticket, error)

	// AssignTicket mints a ticket with write-once identity hashes in a
	// single atomic step.
	AssignTicket(ctx context.Context, eventID uint64, recipient domain.Address, nameHash, studentIDHash domain.Hash, assignedBy domain.Address) (*domain.Ticket, error)

	// UpdateTicketMetadata sets identity hashes on an existing ticket,
	// sharing the write-once guard with AssignTicket.
	UpdateTicketMetadata(ctx context.Context, ticketID uint64, nameHash, studentIDHash domain.Hash, assignedBy domain.Address) (*domain.Ticket, error)

	// GetTicket returns a copy of the ticket record.
	GetTicket(ctx context.Context, ticketID uint64) (*domain.Ticket, error)

	// TicketsByEvent lists ticket IDs for the event in mint order.
	TicketsByEvent(ctx context.Context, eventID uint64) ([]uint64, error)

	// ScanTicket performs the terminal false-to-true scanned transition.
	ScanTicket(ctx context.Context, ticketID uint64, scannedBy domain.Address, at time.Time) (*domain.Ticket, error)

	// GetAttempt returns the verification attempt state for a ticket;
	// a ticket with no prior attempts yields a zero-valued record.
	GetAttempt(ctx context.Context, ticketID uint64) (*domain.VerificationAttempt, error)

	// RecordFailure increments the ticket's failure counter and opens
	// the lockout window at the threshold. Returns the updated state and
	// whether this failure triggered the lock.
	RecordFailure(ctx context.Context, ticketID uint64, now time.Time, lockout time.Duration) (*domain.VerificationAttempt, bool, error)

	// HasRole reports whether the identity holds the role.
	HasRole(ctx context.Context, identity domain.Address, role domain.Role) (bool, error)

	// GrantRole adds the role to the identity's tag set. Idempotent.
	GrantRole(ctx context.Context, identity domain.Address, role domain.Role) error
}
