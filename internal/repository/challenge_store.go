package repository

import (
	"context"
	"sync"
	"time"

	"github.com/Dequr01/fair-ticket/internal/domain"
)

// Challenge is a single-use nonce and deadline issued for one ticket.
// The store only provides audit and expiry housekeeping; the verifier
// itself trusts the deadline and signature, not the store.
type Challenge struct {
	ID       string    `json:"id"`
	TicketID uint64    `json:"ticket_id"`
	Nonce    uint64    `json:"nonce"`
	Deadline time.Time `json:"deadline"`
	IssuedAt time.Time `json:"issued_at"`
}

// ChallengeStore persists issued challenges until their deadline.
type ChallengeStore interface {
	Put(ctx context.Context, ch *Challenge) error
	Get(ctx context.Context, id string) (*Challenge, error)
}

// MemoryChallengeStore keeps challenges in a map, dropping expired
// entries lazily on read.
type MemoryChallengeStore struct {
	mu         sync.RWMutex
	challenges map[string]*Challenge
}

func NewMemoryChallengeStore() *MemoryChallengeStore {
	return &MemoryChallengeStore{challenges: make(map[string]*Challenge)}
}

func (s *MemoryChallengeStore) Put(ctx context.Context, ch *Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *ch
	s.challenges[ch.ID] = &c
	return nil
}

func (s *MemoryChallengeStore) Get(ctx context.Context, id string) (*Challenge, error) {
	s.mu.RLock()
	ch, ok := s.challenges[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	if time.Now().After(ch.Deadline) {
		s.mu.Lock()
		delete(s.challenges, id)
		s.mu.Unlock()
		return nil, domain.ErrChallengeNotFound
	}
	c := *ch
	return &c, nil
}
