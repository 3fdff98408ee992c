package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dequr01/fair-ticket/internal/domain"
)

var (
	testOrganizer = domain.Address("0x1000000000000000000000000000000000000001")
	testHolder    = domain.Address("0x2000000000000000000000000000000000000002")
	testOperator  = domain.Address("0x3000000000000000000000000000000000000003")
)

func TestMemoryLedgerCreateEvent(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	event, err := ledger.CreateEvent(ctx, testOrganizer, 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.ID)
	assert.True(t, event.IsActive)

	// Creating an event grants the organizer role
	has, err := ledger.HasRole(ctx, testOrganizer, domain.RoleOrganizer)
	require.NoError(t, err)
	assert.True(t, has)

	second, err := ledger.CreateEvent(ctx, testOrganizer, 5)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.ID)

	ids, err := ledger.EventsByOrganizer(ctx, testOrganizer)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)
}

func TestMemoryLedgerMintTicket(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	event, err := ledger.CreateEvent(ctx, testOrganizer, 2)
	require.NoError(t, err)

	first, err := ledger.MintTicket(ctx, event.ID, testHolder)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.ID)
	assert.False(t, first.IsScanned)

	second, err := ledger.MintTicket(ctx, event.ID, testHolder)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.ID)

	// Capacity is exhausted
	_, err = ledger.MintTicket(ctx, event.ID, testHolder)
	assert.ErrorIs(t, err, domain.ErrEventSoldOut)

	updated, err := ledger.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), updated.MintedCount)

	ids, err := ledger.TicketsByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)
}

func TestMemoryLedgerMintUnknownEvent(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	_, err := ledger.MintTicket(ctx, 99, testHolder)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestMemoryLedgerAssignTicket(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	event, err := ledger.CreateEvent(ctx, testOrganizer, 10)
	require.NoError(t, err)

	nameHash := domain.Hash{0x11}
	studentHash := domain.Hash{0x22}

	ticket, err := ledger.AssignTicket(ctx, event.ID, testHolder, nameHash, studentHash, testOperator)
	require.NoError(t, err)
	assert.True(t, ticket.IsIdentityLocked())
	assert.Equal(t, testOperator, ticket.AssignedBy)
	assert.True(t, ticket.MatchesIdentity(nameHash, studentHash))
}

func TestMemoryLedgerUpdateTicketMetadataWriteOnce(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	event, err := ledger.CreateEvent(ctx, testOrganizer, 10)
	require.NoError(t, err)
	ticket, err := ledger.MintTicket(ctx, event.ID, testHolder)
	require.NoError(t, err)

	nameHash := domain.Hash{0x11}
	studentHash := domain.Hash{0x22}

	updated, err := ledger.UpdateTicketMetadata(ctx, ticket.ID, nameHash, studentHash, testOperator)
	require.NoError(t, err)
	assert.True(t, updated.IsIdentityLocked())

	_, err = ledger.UpdateTicketMetadata(ctx, ticket.ID, domain.Hash{0x33}, domain.Hash{0x44}, testOperator)
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)

	// The stored hashes survived the rejected second write
	stored, err := ledger.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, stored.MatchesIdentity(nameHash, studentHash))
}

func TestMemoryLedgerScanTicket(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	event, err := ledger.CreateEvent(ctx, testOrganizer, 10)
	require.NoError(t, err)
	ticket, err := ledger.MintTicket(ctx, event.ID, testHolder)
	require.NoError(t, err)

	at := time.Now()
	scanned, err := ledger.ScanTicket(ctx, ticket.ID, testOrganizer, at)
	require.NoError(t, err)
	assert.True(t, scanned.IsScanned)
	assert.Equal(t, testOrganizer, scanned.ScannedBy)

	_, err = ledger.ScanTicket(ctx, ticket.ID, testOrganizer, at.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrTicketAlreadyScanned)
}

func TestMemoryLedgerRecordFailure(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	event, err := ledger.CreateEvent(ctx, testOrganizer, 10)
	require.NoError(t, err)
	ticket, err := ledger.MintTicket(ctx, event.ID, testHolder)
	require.NoError(t, err)

	// Absent attempts read as zero-valued
	attempt, err := ledger.GetAttempt(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), attempt.FailedAttempts)

	now := time.Now()
	for i := 1; i <= 2; i++ {
		attempt, locked, err := ledger.RecordFailure(ctx, ticket.ID, now, 10*time.Minute)
		require.NoError(t, err)
		assert.False(t, locked)
		assert.Equal(t, uint32(i), attempt.FailedAttempts)
	}

	attempt2, locked, err := ledger.RecordFailure(ctx, ticket.ID, now, 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Equal(t, uint32(3), attempt2.FailedAttempts)
	assert.Equal(t, now.Add(10*time.Minute), attempt2.LockoutExpiry)

	_, _, err = ledger.RecordFailure(ctx, 99, now, 10*time.Minute)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestMemoryLedgerReturnsClones(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	event, err := ledger.CreateEvent(ctx, testOrganizer, 10)
	require.NoError(t, err)
	ticket, err := ledger.MintTicket(ctx, event.ID, testHolder)
	require.NoError(t, err)

	// Mutating a returned copy must not leak into the store
	ticket.IsScanned = true
	stored, err := ledger.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsScanned)
}

func TestMemoryLedgerRoles(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	has, err := ledger.HasRole(ctx, testOperator, domain.RoleBoothOperator)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, ledger.GrantRole(ctx, testOperator, domain.RoleBoothOperator))
	has, err = ledger.HasRole(ctx, testOperator, domain.RoleBoothOperator)
	require.NoError(t, err)
	assert.True(t, has)

	// Granting a role does not imply others
	has, err = ledger.HasRole(ctx, testOperator, domain.RoleAdmin)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMemoryChallengeStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryChallengeStore()

	challenge := &Challenge{
		ID:       "ch-1",
		TicketID: 1,
		Nonce:    42,
		Deadline: time.Now().Add(time.Minute),
		IssuedAt: time.Now(),
	}
	require.NoError(t, store.Put(ctx, challenge))

	got, err := store.Get(ctx, "ch-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(42), got.Nonce)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestMemoryChallengeStoreExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryChallengeStore()

	expired := &Challenge{
		ID:       "ch-old",
		TicketID: 1,
		Nonce:    42,
		Deadline: time.Now().Add(-time.Second),
		IssuedAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Put(ctx, expired))

	_, err := store.Get(ctx, "ch-old")
	assert.ErrorIs(t, err, domain.ErrChallengeNotFound)
}
