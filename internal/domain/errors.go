package domain

import (
	"errors"
	"fmt"
	"time"
)

// Precondition and authorization failures. These abort the whole call with
// no state change; handlers branch on them with errors.Is.
var (
	ErrUnauthorizedOrganizer = errors.New("caller is not an authorized organizer")
	ErrUnauthorizedRole      = errors.New("caller lacks the required role")
	ErrEventNotFound         = errors.New("event not found")
	ErrEventNotActive        = errors.New("event is not active")
	ErrEventSoldOut          = errors.New("event is sold out")
	ErrInvalidMaxSupply      = errors.New("max supply must be at least 1")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketAlreadyScanned  = errors.New("ticket already scanned")
	ErrAlreadyAssigned       = errors.New("ticket identity already assigned")
	ErrInvalidGuestIdentity  = errors.New("guest identity hashes do not match")
	ErrChallengeExpired      = errors.New("challenge deadline has passed")
	ErrChallengeNotFound     = errors.New("challenge not found")
)

// LockedOutError aborts verification while a ticket's lockout window is
// open. It carries the expiry so gatekeepers can display the cooldown.
type LockedOutError struct {
	TicketID uint64
	Expiry   time.Time
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("ticket %d locked out until %s", e.TicketID, e.Expiry.UTC().Format(time.RFC3339))
}

// ErrTicketLockedOut is the sentinel for errors.Is matching; use
// errors.As with *LockedOutError to read the expiry.
var ErrTicketLockedOut = errors.New("ticket locked out")

func (e *LockedOutError) Is(target error) bool {
	return target == ErrTicketLockedOut
}
