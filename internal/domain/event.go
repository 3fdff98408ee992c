package domain

import "time"

// Event is an organizer-owned collection of tickets with a supply cap.
// The ledger is append-only: events are never deleted, and MintedCount
// only grows. The event name is not stored here; it travels in the
// EventCreated fact for off-chain indexing.
type Event struct {
	ID          uint64    `json:"id"`
	Organizer   Address   `json:"organizer"`
	MaxSupply   uint64    `json:"max_supply"`
	MintedCount uint64    `json:"minted_count"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewEvent creates an event owned by organizer. ID assignment belongs to
// the ledger.
func NewEvent(organizer Address, maxSupply uint64) (*Event, error) {
	if maxSupply < 1 {
		return nil, ErrInvalidMaxSupply
	}
	return &Event{
		Organizer: organizer,
		MaxSupply: maxSupply,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// HasCapacity reports whether another ticket can be issued.
func (e *Event) HasCapacity() bool {
	return e.MintedCount < e.MaxSupply
}

// RecordMint increments the minted counter, preserving the
// MintedCount <= MaxSupply invariant.
func (e *Event) RecordMint() error {
	if !e.IsActive {
		return ErrEventNotActive
	}
	if !e.HasCapacity() {
		return ErrEventSoldOut
	}
	e.MintedCount++
	return nil
}
