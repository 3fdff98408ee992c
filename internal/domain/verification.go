package domain

import "time"

// Verification policy constants. The attempt counter is per ticket and
// monotonic; the third failure opens a lockout window during which every
// submission short-circuits before signature evaluation.
const (
	MaxFailedAttempts      = 3
	DefaultLockoutDuration = 10 * time.Minute
)

// VerificationAttempt tracks per-ticket failure state. It is created
// implicitly on the first attempt and never reset, even after the ticket
// is scanned (further attempts fail at the already-scanned check).
type VerificationAttempt struct {
	TicketID       uint64    `json:"ticket_id"`
	FailedAttempts uint32    `json:"failed_attempts"`
	LockoutExpiry  time.Time `json:"lockout_expiry,omitempty"`
}

// IsLockedOut reports whether the lockout window is open at now.
func (a *VerificationAttempt) IsLockedOut(now time.Time) bool {
	return now.Before(a.LockoutExpiry)
}

// RegisterFailure increments the counter and, on reaching the threshold,
// opens the lockout window. Returns true when this failure triggered the
// lock.
func (a *VerificationAttempt) RegisterFailure(now time.Time, lockout time.Duration) bool {
	a.FailedAttempts++
	if a.FailedAttempts >= MaxFailedAttempts {
		a.LockoutExpiry = now.Add(lockout)
		return true
	}
	return false
}

// VerificationStatus is the outcome of a completed (non-aborted)
// verification call.
type VerificationStatus string

const (
	VerificationScanned VerificationStatus = "scanned"
	VerificationFailed  VerificationStatus = "failed"
	VerificationLocked  VerificationStatus = "locked"
)

// VerificationResult distinguishes "the call was rejected" (an error)
// from "the call completed and the proof was rejected" (a result with a
// non-scanned status). Gatekeepers branch on this, not on call success.
type VerificationResult struct {
	TicketID       uint64             `json:"ticket_id"`
	Status         VerificationStatus `json:"status"`
	Reason         string             `json:"reason,omitempty"`
	FailedAttempts uint32             `json:"failed_attempts,omitempty"`
	LockoutExpiry  time.Time          `json:"lockout_expiry,omitempty"`
	ScannedBy      Address            `json:"scanned_by,omitempty"`
	ScannedAt      time.Time          `json:"scanned_at,omitempty"`
}
