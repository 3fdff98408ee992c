package domain

import "time"

// FactType identifies an emitted ledger fact. Facts are the durable,
// append-only record consumed by off-chain indexers; verification
// failures are facts too, because a rejected proof is a normal outcome
// that must be recorded, not an exceptional condition.
type FactType string

const (
	FactEventCreated       FactType = "event_created"
	FactTicketMinted       FactType = "ticket_minted"
	FactTicketAssigned     FactType = "ticket_assigned"
	FactTicketScanned      FactType = "ticket_scanned"
	FactVerificationFailed FactType = "verification_failed"
	FactTicketLocked       FactType = "ticket_locked"
)

// Fact is the envelope published to the fact stream.
type Fact struct {
	ID         string     `json:"id"`
	Type       FactType   `json:"type"`
	OccurredAt time.Time  `json:"occurred_at"`
	EventID    uint64     `json:"event_id,omitempty"`
	TicketID   uint64     `json:"ticket_id,omitempty"`
	Organizer  Address    `json:"organizer,omitempty"`
	Owner      Address    `json:"owner,omitempty"`
	ScannedBy  Address    `json:"scanned_by,omitempty"`
	Name       string     `json:"name,omitempty"`
	NameHash   *Hash      `json:"name_hash,omitempty"`
	StudentID  *Hash      `json:"student_id_hash,omitempty"`
	Nonce      uint64     `json:"nonce"`
	Reason     string     `json:"reason,omitempty"`
	Expiry     *time.Time `json:"lockout_expiry,omitempty"`
}

// EventCreatedFact carries the event name; the name is not kept in
// mutable ledger state.
func EventCreatedFact(id string, eventID uint64, organizer Address, name string, at time.Time) Fact {
	return Fact{
		ID:         id,
		Type:       FactEventCreated,
		OccurredAt: at,
		EventID:    eventID,
		Organizer:  organizer,
		Name:       name,
	}
}

func TicketMintedFact(id string, eventID, ticketID uint64, owner Address, at time.Time) Fact {
	return Fact{
		ID:         id,
		Type:       FactTicketMinted,
		OccurredAt: at,
		EventID:    eventID,
		TicketID:   ticketID,
		Owner:      owner,
	}
}

func TicketAssignedFact(id string, eventID, ticketID uint64, owner Address, nameHash, studentIDHash Hash, at time.Time) Fact {
	return Fact{
		ID:         id,
		Type:       FactTicketAssigned,
		OccurredAt: at,
		EventID:    eventID,
		TicketID:   ticketID,
		Owner:      owner,
		NameHash:   &nameHash,
		StudentID:  &studentIDHash,
	}
}

// TicketScannedFact records a successful scan. Guest check-ins pass a
// zero nonce, distinguishing them from signature-based scans.
func TicketScannedFact(id string, eventID, ticketID uint64, scannedBy Address, nonce uint64, at time.Time) Fact {
	return Fact{
		ID:         id,
		Type:       FactTicketScanned,
		OccurredAt: at,
		EventID:    eventID,
		TicketID:   ticketID,
		ScannedBy:  scannedBy,
		Nonce:      nonce,
	}
}

func VerificationFailedFact(id string, ticketID uint64, reason string, at time.Time) Fact {
	return Fact{
		ID:         id,
		Type:       FactVerificationFailed,
		OccurredAt: at,
		TicketID:   ticketID,
		Reason:     reason,
	}
}

func TicketLockedFact(id string, ticketID uint64, expiry time.Time, at time.Time) Fact {
	return Fact{
		ID:         id,
		Type:       FactTicketLocked,
		OccurredAt: at,
		TicketID:   ticketID,
		Expiry:     &expiry,
	}
}
