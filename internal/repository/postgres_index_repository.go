package repository

import (
	"context"
	"fmt"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/pkg/database"
)

// PostgresIndexRepository implements IndexRepository on PostgreSQL.
// Schema (see migrations/001_indexer.sql): indexed_events,
// indexed_tickets, verification_logs, applied_facts.
type PostgresIndexRepository struct {
	db *database.PostgresDB
}

func NewPostgresIndexRepository(db *database.PostgresDB) *PostgresIndexRepository {
	return &PostgresIndexRepository{db: db}
}

func (r *PostgresIndexRepository) ApplyFact(ctx context.Context, fact *domain.Fact) (bool, error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Dedup on fact ID; replayed facts commit nothing.
	tag, err := tx.Exec(ctx,
		`INSERT INTO applied_facts (fact_id) VALUES ($1) ON CONFLICT (fact_id) DO NOTHING`,
		fact.ID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record fact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	switch fact.Type {
	case domain.FactEventCreated:
		_, err = tx.Exec(ctx,
			`INSERT INTO indexed_events (id, organizer, name, created_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			fact.EventID, fact.Organizer.String(), fact.Name, fact.OccurredAt,
		)

	case domain.FactTicketMinted:
		_, err = tx.Exec(ctx,
			`INSERT INTO indexed_tickets (id, event_id, owner, is_scanned, minted_at)
			 VALUES ($1, $2, $3, false, $4)
			 ON CONFLICT (id) DO NOTHING`,
			fact.TicketID, fact.EventID, fact.Owner.String(), fact.OccurredAt,
		)

	case domain.FactTicketAssigned:
		_, err = tx.Exec(ctx,
			`INSERT INTO indexed_tickets (id, event_id, owner, name_hash, student_id_hash, is_scanned, minted_at)
			 VALUES ($1, $2, $3, $4, $5, false, $6)
			 ON CONFLICT (id) DO UPDATE SET name_hash = EXCLUDED.name_hash, student_id_hash = EXCLUDED.student_id_hash`,
			fact.TicketID, fact.EventID, fact.Owner.String(),
			hashString(fact.NameHash), hashString(fact.StudentID), fact.OccurredAt,
		)

	case domain.FactTicketScanned:
		_, err = tx.Exec(ctx,
			`UPDATE indexed_tickets SET is_scanned = true, scanned_by = $2, scanned_at = $3 WHERE id = $1`,
			fact.TicketID, fact.ScannedBy.String(), fact.OccurredAt,
		)
		if err == nil {
			_, err = tx.Exec(ctx,
				`INSERT INTO verification_logs (fact_id, ticket_id, success, nonce, occurred_at)
				 VALUES ($1, $2, true, $3, $4)`,
				fact.ID, fact.TicketID, fact.Nonce, fact.OccurredAt,
			)
		}

	case domain.FactVerificationFailed:
		_, err = tx.Exec(ctx,
			`INSERT INTO verification_logs (fact_id, ticket_id, success, reason, occurred_at)
			 VALUES ($1, $2, false, $3, $4)`,
			fact.ID, fact.TicketID, fact.Reason, fact.OccurredAt,
		)

	case domain.FactTicketLocked:
		_, err = tx.Exec(ctx,
			`INSERT INTO verification_logs (fact_id, ticket_id, success, reason, lockout_expiry, occurred_at)
			 VALUES ($1, $2, false, 'locked', $3, $4)`,
			fact.ID, fact.TicketID, fact.Expiry, fact.OccurredAt,
		)

	default:
		// Unknown fact types are skipped, not failed; the stream may
		// carry newer types than this worker understands.
	}
	if err != nil {
		return false, fmt.Errorf("failed to apply fact %s: %w", fact.Type, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit fact: %w", err)
	}
	return true, nil
}

func hashString(h *domain.Hash) *string {
	if h == nil {
		return nil
	}
	s := h.String()
	return &s
}
