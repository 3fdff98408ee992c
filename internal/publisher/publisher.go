// Package publisher delivers emitted ledger facts to the fact stream
// consumed by off-chain indexers.
package publisher

import (
	"context"
	"sync"

	"github.com/Dequr01/fair-ticket/internal/domain"
)

// FactPublisher publishes ledger facts. Publishing happens after the
// ledger mutation commits; the ledger never rolls back on publish
// failure, so implementations should retry rather than error eagerly.
type FactPublisher interface {
	Publish(ctx context.Context, fact domain.Fact) error
	Close()
}

// MemoryFactPublisher collects facts in memory. It backs single-node
// deployments without a broker and the test suites.
type MemoryFactPublisher struct {
	mu    sync.RWMutex
	facts []domain.Fact
}

func NewMemoryFactPublisher() *MemoryFactPublisher {
	return &MemoryFactPublisher{}
}

func (p *MemoryFactPublisher) Publish(ctx context.Context, fact domain.Fact) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.facts = append(p.facts, fact)
	return nil
}

// Facts returns a snapshot of everything published so far.
func (p *MemoryFactPublisher) Facts() []domain.Fact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]domain.Fact, len(p.facts))
	copy(out, p.facts)
	return out
}

// LastFact returns the most recent fact, or nil.
func (p *MemoryFactPublisher) LastFact() *domain.Fact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.facts) == 0 {
		return nil
	}
	f := p.facts[len(p.facts)-1]
	return &f
}

func (p *MemoryFactPublisher) Close() {}
