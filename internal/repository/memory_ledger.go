package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dequr01/fair-ticket/internal/domain"
)

// MemoryLedger implements Ledger as a single owned store of maps behind
// one mutex. All mutations pass through this lock, which gives the
// atomicity and strict-ordering guarantees the verifier depends on:
// whichever of two racing scans acquires the lock first flips the ticket,
// the second fails deterministically at the already-scanned check.
type MemoryLedger struct {
	mu sync.RWMutex

	events       map[uint64]*domain.Event
	tickets      map[uint64]*domain.Ticket
	attempts     map[uint64]*domain.VerificationAttempt
	roles        map[domain.Address]map[domain.Role]struct{}
	byOrganizer  map[domain.Address][]uint64 // organizer -> event IDs, creation order
	byEvent      map[uint64][]uint64         // event ID -> ticket IDs, mint order
	nextEventID  uint64
	nextTicketID uint64
}

// NewMemoryLedger creates an empty ledger. IDs start at 1 and are never
// reused.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		events:       make(map[uint64]*domain.Event),
		tickets:      make(map[uint64]*domain.Ticket),
		attempts:     make(map[uint64]*domain.VerificationAttempt),
		roles:        make(map[domain.Address]map[domain.Role]struct{}),
		byOrganizer:  make(map[domain.Address][]uint64),
		byEvent:      make(map[uint64][]uint64),
		nextEventID:  1,
		nextTicketID: 1,
	}
}

func (l *MemoryLedger) CreateEvent(ctx context.Context, organizer domain.Address, maxSupply uint64) (*domain.Event, error) {
	event, err := domain.NewEvent(organizer, maxSupply)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	event.ID = l.nextEventID
	l.nextEventID++
	l.events[event.ID] = event
	l.byOrganizer[organizer] = append(l.byOrganizer[organizer], event.ID)
	l.grantLocked(organizer, domain.RoleOrganizer)

	e := *event
	return &e, nil
}

func (l *MemoryLedger) GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	event, ok := l.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	e := *event
	return &e, nil
}

func (l *MemoryLedger) EventsByOrganizer(ctx context.Context, organizer domain.Address) ([]uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.byOrganizer[organizer]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out, nil
}

func (l *MemoryLedger) SetEventActive(ctx context.Context, eventID uint64, active bool) (*domain.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	event, ok := l.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	event.IsActive = active
	e := *event
	return &e, nil
}

func (l *MemoryLedger) MintTicket(ctx context.Context, eventID uint64, recipient domain.Address) (*domain.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mintLocked(eventID, recipient)
}

func (l *MemoryLedger) AssignTicket(ctx context.Context, eventID uint64, recipient domain.Address, nameHash, studentIDHash domain.Hash, assignedBy domain.Address) (*domain.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ticket, err := l.mintLocked(eventID, recipient)
	if err != nil {
		return nil, err
	}
	stored := l.tickets[ticket.ID]
	if err := stored.AssignIdentity(nameHash, studentIDHash, assignedBy); err != nil {
		// Freshly minted tickets have zero hashes; unreachable in
		// practice but the guard stays shared with metadata updates.
		return nil, err
	}
	t := *stored
	return &t, nil
}

func (l *MemoryLedger) UpdateTicketMetadata(ctx context.Context, ticketID uint64, nameHash, studentIDHash domain.Hash, assignedBy domain.Address) (*domain.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if err := ticket.AssignIdentity(nameHash, studentIDHash, assignedBy); err != nil {
		return nil, err
	}
	t := *ticket
	return &t, nil
}

func (l *MemoryLedger) GetTicket(ctx context.Context, ticketID uint64) (*domain.Ticket, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	t := *ticket
	return &t, nil
}

func (l *MemoryLedger) TicketsByEvent(ctx context.Context, eventID uint64) ([]uint64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.events[eventID]; !ok {
		return nil, domain.ErrEventNotFound
	}
	ids := l.byEvent[eventID]
	out := make([]uint64, len(ids))
	copy(out, ids)
	return out, nil
}

func (l *MemoryLedger) ScanTicket(ctx context.Context, ticketID uint64, scannedBy domain.Address, at time.Time) (*domain.Ticket, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ticket, ok := l.tickets[ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if err := ticket.MarkScanned(scannedBy, at); err != nil {
		return nil, err
	}
	t := *ticket
	return &t, nil
}

func (l *MemoryLedger) GetAttempt(ctx context.Context, ticketID uint64) (*domain.VerificationAttempt, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	attempt, ok := l.attempts[ticketID]
	if !ok {
		return &domain.VerificationAttempt{TicketID: ticketID}, nil
	}
	a := *attempt
	return &a, nil
}

func (l *MemoryLedger) RecordFailure(ctx context.Context, ticketID uint64, now time.Time, lockout time.Duration) (*domain.VerificationAttempt, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.tickets[ticketID]; !ok {
		return nil, false, domain.ErrTicketNotFound
	}
	attempt, ok := l.attempts[ticketID]
	if !ok {
		attempt = &domain.VerificationAttempt{TicketID: ticketID}
		l.attempts[ticketID] = attempt
	}
	locked := attempt.RegisterFailure(now, lockout)
	a := *attempt
	return &a, locked, nil
}

func (l *MemoryLedger) HasRole(ctx context.Context, identity domain.Address, role domain.Role) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tags, ok := l.roles[identity]
	if !ok {
		return false, nil
	}
	_, has := tags[role]
	return has, nil
}

func (l *MemoryLedger) GrantRole(ctx context.Context, identity domain.Address, role domain.Role) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.grantLocked(identity, role)
	return nil
}

func (l *MemoryLedger) mintLocked(eventID uint64, recipient domain.Address) (*domain.Ticket, error) {
	event, ok := l.events[eventID]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	if err := event.RecordMint(); err != nil {
		return nil, err
	}

	ticket := domain.NewTicket(eventID, recipient)
	ticket.ID = l.nextTicketID
	l.nextTicketID++
	l.tickets[ticket.ID] = ticket
	l.byEvent[eventID] = append(l.byEvent[eventID], ticket.ID)

	t := *ticket
	return &t, nil
}

func (l *MemoryLedger) grantLocked(identity domain.Address, role domain.Role) {
	tags, ok := l.roles[identity]
	if !ok {
		tags = make(map[domain.Role]struct{})
		l.roles[identity] = tags
	}
	tags[role] = struct{}{}
}
