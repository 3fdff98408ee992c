package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/identity"
	"github.com/Dequr01/fair-ticket/internal/publisher"
	"github.com/Dequr01/fair-ticket/internal/repository"
)

var (
	organizerAddr = domain.Address("0x1000000000000000000000000000000000000001")
	holderAddr    = domain.Address("0x2000000000000000000000000000000000000002")
	operatorAddr  = domain.Address("0x3000000000000000000000000000000000000003")
	adminAddr     = domain.Address("0x4000000000000000000000000000000000000004")
	strangerAddr  = domain.Address("0x9000000000000000000000000000000000000009")
)

func newTicketService(t *testing.T) (TicketService, *repository.MemoryLedger, *publisher.MemoryFactPublisher) {
	t.Helper()
	ledger := repository.NewMemoryLedger()
	facts := publisher.NewMemoryFactPublisher()
	return NewTicketService(ledger, facts), ledger, facts
}

func TestCreateEventGrantsOrganizerRole(t *testing.T) {
	ctx := context.Background()
	svc, ledger, facts := newTicketService(t)

	event, err := svc.CreateEvent(ctx, organizerAddr, "Spring Concert", 100)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.ID)
	assert.Equal(t, organizerAddr, event.Organizer)

	has, err := ledger.HasRole(ctx, organizerAddr, domain.RoleOrganizer)
	require.NoError(t, err)
	assert.True(t, has)

	// The event name travels only in the fact
	fact := facts.LastFact()
	require.NotNil(t, fact)
	assert.Equal(t, domain.FactEventCreated, fact.Type)
	assert.Equal(t, "Spring Concert", fact.Name)
}

func TestCreateEventRejectsZeroSupply(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTicketService(t)

	_, err := svc.CreateEvent(ctx, organizerAddr, "Empty", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidMaxSupply)
}

func TestMintTicketRequiresEventOrganizer(t *testing.T) {
	ctx := context.Background()
	svc, ledger, facts := newTicketService(t)

	event, err := svc.CreateEvent(ctx, organizerAddr, "Spring Concert", 100)
	require.NoError(t, err)

	_, err = svc.MintTicket(ctx, strangerAddr, event.ID, holderAddr)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedOrganizer)

	// Holding the organizer role for a different event is not enough
	other, err := svc.CreateEvent(ctx, strangerAddr, "Other", 10)
	require.NoError(t, err)
	_, err = svc.MintTicket(ctx, strangerAddr, event.ID, holderAddr)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedOrganizer)
	_ = other

	ticket, err := svc.MintTicket(ctx, organizerAddr, event.ID, holderAddr)
	require.NoError(t, err)
	assert.Equal(t, holderAddr, ticket.Owner)

	fact := facts.LastFact()
	require.NotNil(t, fact)
	assert.Equal(t, domain.FactTicketMinted, fact.Type)

	// Admins may mint for any event
	require.NoError(t, ledger.GrantRole(ctx, adminAddr, domain.RoleAdmin))
	_, err = svc.MintTicket(ctx, adminAddr, event.ID, holderAddr)
	assert.NoError(t, err)
}

func TestAssignTicketRequiresBoothOperator(t *testing.T) {
	ctx := context.Background()
	svc, ledger, facts := newTicketService(t)

	event, err := svc.CreateEvent(ctx, organizerAddr, "Spring Concert", 100)
	require.NoError(t, err)

	nameHash, studentHash := identity.HashIdentity("Alice Example", "S-12345")
	guest := identity.GuestAddress(nameHash, studentHash)

	_, err = svc.AssignTicket(ctx, organizerAddr, event.ID, guest, nameHash, studentHash)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedRole)

	require.NoError(t, ledger.GrantRole(ctx, operatorAddr, domain.RoleBoothOperator))
	ticket, err := svc.AssignTicket(ctx, operatorAddr, event.ID, guest, nameHash, studentHash)
	require.NoError(t, err)
	assert.True(t, ticket.IsIdentityLocked())
	assert.Equal(t, guest, ticket.Owner)

	fact := facts.LastFact()
	require.NotNil(t, fact)
	assert.Equal(t, domain.FactTicketAssigned, fact.Type)
}

func TestAssignTicketRejectsZeroHashes(t *testing.T) {
	ctx := context.Background()
	svc, ledger, _ := newTicketService(t)

	event, err := svc.CreateEvent(ctx, organizerAddr, "Spring Concert", 100)
	require.NoError(t, err)
	require.NoError(t, ledger.GrantRole(ctx, operatorAddr, domain.RoleBoothOperator))

	nameHash, _ := identity.HashIdentity("Alice Example", "S-12345")
	_, err = svc.AssignTicket(ctx, operatorAddr, event.ID, holderAddr, nameHash, domain.ZeroHash)
	assert.ErrorIs(t, err, domain.ErrInvalidGuestIdentity)
	_, err = svc.AssignTicket(ctx, operatorAddr, event.ID, holderAddr, domain.ZeroHash, domain.ZeroHash)
	assert.ErrorIs(t, err, domain.ErrInvalidGuestIdentity)
}

func TestUpdateTicketMetadataWriteOnce(t *testing.T) {
	ctx := context.Background()
	svc, ledger, _ := newTicketService(t)

	event, err := svc.CreateEvent(ctx, organizerAddr, "Spring Concert", 100)
	require.NoError(t, err)
	require.NoError(t, ledger.GrantRole(ctx, operatorAddr, domain.RoleBoothOperator))

	ticket, err := svc.MintTicket(ctx, organizerAddr, event.ID, holderAddr)
	require.NoError(t, err)

	nameHash, studentHash := identity.HashIdentity("Alice Example", "S-12345")
	updated, err := svc.UpdateTicketMetadata(ctx, operatorAddr, ticket.ID, nameHash, studentHash)
	require.NoError(t, err)
	assert.True(t, updated.IsIdentityLocked())

	otherName, otherStudent := identity.HashIdentity("Bob", "S-67890")
	_, err = svc.UpdateTicketMetadata(ctx, operatorAddr, ticket.ID, otherName, otherStudent)
	assert.ErrorIs(t, err, domain.ErrAlreadyAssigned)
}

func TestSetEventActive(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTicketService(t)

	event, err := svc.CreateEvent(ctx, organizerAddr, "Spring Concert", 100)
	require.NoError(t, err)

	_, err = svc.SetEventActive(ctx, strangerAddr, event.ID, false)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedOrganizer)

	closed, err := svc.SetEventActive(ctx, organizerAddr, event.ID, false)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)

	// Minting against a closed event aborts
	_, err = svc.MintTicket(ctx, organizerAddr, event.ID, holderAddr)
	assert.ErrorIs(t, err, domain.ErrEventNotActive)

	reopened, err := svc.SetEventActive(ctx, organizerAddr, event.ID, true)
	require.NoError(t, err)
	assert.True(t, reopened.IsActive)
}

func TestGrantRolePolicy(t *testing.T) {
	ctx := context.Background()
	svc, ledger, _ := newTicketService(t)

	require.NoError(t, ledger.GrantRole(ctx, adminAddr, domain.RoleAdmin))

	// Admin grants anything
	require.NoError(t, svc.GrantRole(ctx, adminAddr, domain.RoleOrganizer, organizerAddr))
	require.NoError(t, svc.GrantRole(ctx, adminAddr, domain.RoleAdmin, strangerAddr))

	// An organizer may delegate booth operation only
	require.NoError(t, svc.GrantRole(ctx, organizerAddr, domain.RoleBoothOperator, operatorAddr))
	err := svc.GrantRole(ctx, organizerAddr, domain.RoleAdmin, operatorAddr)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedRole)

	// Unprivileged callers grant nothing
	err = svc.GrantRole(ctx, holderAddr, domain.RoleBoothOperator, holderAddr)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedRole)

	// Unknown roles are rejected outright
	err = svc.GrantRole(ctx, adminAddr, domain.Role("janitor"), holderAddr)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedRole)
}

func TestGetters(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTicketService(t)

	event, err := svc.CreateEvent(ctx, organizerAddr, "Spring Concert", 100)
	require.NoError(t, err)
	ticket, err := svc.MintTicket(ctx, organizerAddr, event.ID, holderAddr)
	require.NoError(t, err)

	got, err := svc.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	gotTicket, err := svc.GetTicketDetails(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, gotTicket.ID)

	ids, err := svc.GetEventTickets(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{ticket.ID}, ids)

	eventIDs, err := svc.GetOrganizerEvents(ctx, organizerAddr)
	require.NoError(t, err)
	assert.Equal(t, []uint64{event.ID}, eventIDs)

	_, err = svc.GetEvent(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
	_, err = svc.GetTicketDetails(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}
