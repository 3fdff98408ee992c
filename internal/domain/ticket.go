package domain

import "time"

// Ticket is a uniquely owned admission record. IsScanned flips exactly
// once, false to true, and is terminal. The identity hashes are
// write-once; a ticket whose owner equals the deterministic guest address
// of its hashes is a guest ticket. Guest-ness is derived, never stored.
type Ticket struct {
	ID                  uint64    `json:"id"`
	EventID             uint64    `json:"event_id"`
	Owner               Address   `json:"owner"`
	HolderNameHash      Hash      `json:"holder_name_hash"`
	HolderStudentIDHash Hash      `json:"holder_student_id_hash"`
	AssignedBy          Address   `json:"assigned_by,omitempty"`
	IsScanned           bool      `json:"is_scanned"`
	ScannedBy           Address   `json:"scanned_by,omitempty"`
	ScannedAt           time.Time `json:"scanned_at,omitempty"`
	MintedAt            time.Time `json:"minted_at"`
}

// NewTicket creates an unscanned ticket. ID assignment belongs to the
// ledger.
func NewTicket(eventID uint64, owner Address) *Ticket {
	return &Ticket{
		EventID:  eventID,
		Owner:    owner,
		MintedAt: time.Now().UTC(),
	}
}

// IsIdentityLocked reports whether holder identity hashes have been set.
func (t *Ticket) IsIdentityLocked() bool {
	return !t.HolderNameHash.IsZero() || !t.HolderStudentIDHash.IsZero()
}

// AssignIdentity sets the holder identity hashes. Both hashes are set
// together and at most once; a second write fails with ErrAlreadyAssigned
// and leaves the stored hashes untouched.
func (t *Ticket) AssignIdentity(nameHash, studentIDHash Hash, assignedBy Address) error {
	if t.IsIdentityLocked() {
		return ErrAlreadyAssigned
	}
	t.HolderNameHash = nameHash
	t.HolderStudentIDHash = studentIDHash
	t.AssignedBy = assignedBy
	return nil
}

// MarkScanned performs the single terminal transition.
func (t *Ticket) MarkScanned(scannedBy Address, at time.Time) error {
	if t.IsScanned {
		return ErrTicketAlreadyScanned
	}
	t.IsScanned = true
	t.ScannedBy = scannedBy
	t.ScannedAt = at.UTC()
	return nil
}

// MatchesIdentity compares supplied hashes against the stored assignment.
func (t *Ticket) MatchesIdentity(nameHash, studentIDHash Hash) bool {
	return t.HolderNameHash == nameHash && t.HolderStudentIDHash == studentIDHash
}
