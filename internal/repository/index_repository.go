package repository

import (
	"context"

	"github.com/Dequr01/fair-ticket/internal/domain"
)

// IndexRepository is the off-chain mirror of emitted facts: a queryable
// log of events, tickets, and verification outcomes. It is downstream of
// the ledger and never authoritative.
type IndexRepository interface {
	// ApplyFact folds one fact into the mirror and reports whether it
	// was applied. A replayed fact ID commits nothing and returns false
	// (the fact ID is the idempotency key).
	ApplyFact(ctx context.Context, fact *domain.Fact) (bool, error)
}
