package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Dequr01/fair-ticket/pkg/telemetry"
)

var (
	// Ticket lifecycle counters
	EventsCreated   *telemetry.Counter
	TicketsMinted   *telemetry.Counter
	TicketsAssigned *telemetry.Counter

	// Verification outcome counters
	VerificationsScanned *telemetry.Counter
	VerificationsFailed  *telemetry.Counter
	VerificationsLocked  *telemetry.Counter
	GuestCheckIns        *telemetry.Counter

	// Indexer counters
	FactsIndexed *telemetry.Counter
	FactsSkipped *telemetry.Counter

	// Histograms
	RequestDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all fair-ticket metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	EventsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_events_created_total",
		Description: "Total number of events created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsMinted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_tickets_minted_total",
		Description: "Total number of tickets minted",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsAssigned, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_tickets_assigned_total",
		Description: "Total number of tickets bound to a holder identity",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	VerificationsScanned, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_verifications_scanned_total",
		Description: "Total number of successful ticket scans",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	VerificationsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_verifications_failed_total",
		Description: "Total number of rejected proofs",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	VerificationsLocked, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_verifications_locked_total",
		Description: "Total number of tickets locked out after repeated failures",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	GuestCheckIns, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_guest_checkins_total",
		Description: "Total number of guest check-ins",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	FactsIndexed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_facts_indexed_total",
		Description: "Total number of facts applied by the indexer",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	FactsSkipped, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "fairticket_facts_skipped_total",
		Description: "Total number of facts the indexer skipped (replays and malformed records)",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RequestDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "fairticket_request_duration_seconds",
		Description: "HTTP request duration in seconds",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}) // 5ms to 5s
	if err != nil {
		return err
	}

	return nil
}

// IncEventsCreated records an event creation
func IncEventsCreated(ctx context.Context) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx)
	}
}

// IncTicketsMinted records a ticket mint
func IncTicketsMinted(ctx context.Context) {
	if TicketsMinted != nil {
		TicketsMinted.Inc(ctx)
	}
}

// IncTicketsAssigned records an identity assignment
func IncTicketsAssigned(ctx context.Context) {
	if TicketsAssigned != nil {
		TicketsAssigned.Inc(ctx)
	}
}

// IncVerificationsScanned records a successful proof scan
func IncVerificationsScanned(ctx context.Context) {
	if VerificationsScanned != nil {
		VerificationsScanned.Inc(ctx)
	}
}

// IncVerificationsFailed records a rejected proof
func IncVerificationsFailed(ctx context.Context) {
	if VerificationsFailed != nil {
		VerificationsFailed.Inc(ctx)
	}
}

// IncVerificationsLocked records a lockout
func IncVerificationsLocked(ctx context.Context) {
	if VerificationsLocked != nil {
		VerificationsLocked.Inc(ctx)
	}
}

// IncGuestCheckIns records a guest check-in
func IncGuestCheckIns(ctx context.Context) {
	if GuestCheckIns != nil {
		GuestCheckIns.Inc(ctx)
	}
}

// RecordFactIndexed records an applied or skipped fact by type
func RecordFactIndexed(ctx context.Context, factType string, skipped bool) {
	if skipped {
		if FactsSkipped != nil {
			FactsSkipped.Inc(ctx, attribute.String("fact_type", factType))
		}
		return
	}
	if FactsIndexed != nil {
		FactsIndexed.Inc(ctx, attribute.String("fact_type", factType))
	}
}

// RecordRequestDuration records HTTP request duration
func RecordRequestDuration(ctx context.Context, operation string, durationSeconds float64) {
	if RequestDuration != nil {
		RequestDuration.Record(ctx, durationSeconds,
			attribute.String("operation", operation),
		)
	}
}
