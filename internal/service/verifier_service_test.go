package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/identity"
	"github.com/Dequr01/fair-ticket/internal/publisher"
	"github.com/Dequr01/fair-ticket/internal/repository"
)

const (
	testChainID  = uint64(31337)
	testVerifier = domain.Address("0x5fbdb2315678afecb367f032d93f642f64180aa3")
)

var testGatekeeper = domain.Address("0x1000000000000000000000000000000000000001")

type verifierFixture struct {
	ledger   *repository.MemoryLedger
	facts    *publisher.MemoryFactPublisher
	verifier *verifierService
	now      time.Time

	eventID  uint64
	ticketID uint64
	holder   domain.Address
	priv     ed25519.PrivateKey
}

// newVerifierFixture builds a ledger with one event and one ticket owned
// by a fresh keypair, and a verifier pinned to a fixed clock.
func newVerifierFixture(t *testing.T) *verifierFixture {
	t.Helper()
	ctx := context.Background()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	holder := identity.AddressFromPublicKey(pub)

	ledger := repository.NewMemoryLedger()
	event, err := ledger.CreateEvent(ctx, testGatekeeper, 10)
	require.NoError(t, err)
	ticket, err := ledger.MintTicket(ctx, event.ID, holder)
	require.NoError(t, err)

	facts := publisher.NewMemoryFactPublisher()
	svc := NewVerifierService(ledger, repository.NewMemoryChallengeStore(), facts, &VerifierConfig{
		Address:         testVerifier,
		ChainID:         testChainID,
		ChallengeTTL:    time.Minute,
		LockoutDuration: 10 * time.Minute,
	}).(*verifierService)

	f := &verifierFixture{
		ledger:   ledger,
		facts:    facts,
		verifier: svc,
		now:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		eventID:  event.ID,
		ticketID: ticket.ID,
		holder:   holder,
		priv:     priv,
	}
	svc.now = func() time.Time { return f.now }
	return f
}

// signedRequest builds a valid proof for the fixture holder.
func (f *verifierFixture) signedRequest(nonce uint64, deadline int64) *VerifyRequest {
	digest := identity.ChallengeDigest(f.ticketID, nonce, deadline, testVerifier, testChainID)
	return &VerifyRequest{
		TicketID: f.ticketID,
		Nonce:    nonce,
		Deadline: deadline,
		Proof:    identity.SignChallenge(f.priv, digest),
	}
}

// forgedRequest builds a proof signed by a key that does not own the
// ticket.
func (f *verifierFixture) forgedRequest(t *testing.T, nonce uint64, deadline int64) *VerifyRequest {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	digest := identity.ChallengeDigest(f.ticketID, nonce, deadline, testVerifier, testChainID)
	return &VerifyRequest{
		TicketID: f.ticketID,
		Nonce:    nonce,
		Deadline: deadline,
		Proof:    identity.SignChallenge(priv, digest),
	}
}

func TestIssueChallenge(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	challenge, err := f.verifier.IssueChallenge(ctx, testGatekeeper, f.ticketID)
	require.NoError(t, err)
	assert.NotEmpty(t, challenge.ID)
	assert.Equal(t, f.ticketID, challenge.TicketID)
	assert.Equal(t, f.now, challenge.IssuedAt)
	assert.Equal(t, f.now.Add(time.Minute), challenge.Deadline)
}

func TestIssueChallengeRequiresOrganizer(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	_, err := f.verifier.IssueChallenge(ctx, domain.Address("0x9000000000000000000000000000000000000009"), f.ticketID)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedOrganizer)
}

func TestIssueChallengeUnknownTicket(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	_, err := f.verifier.IssueChallenge(ctx, testGatekeeper, 99)
	assert.ErrorIs(t, err, domain.ErrTicketNotFound)
}

func TestGetChallengeReturnsIssued(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	issued, err := f.verifier.IssueChallenge(ctx, testGatekeeper, f.ticketID)
	require.NoError(t, err)

	challenge, err := f.verifier.GetChallenge(ctx, testGatekeeper, issued.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.Nonce, challenge.Nonce)
	assert.Equal(t, issued.TicketID, challenge.TicketID)
	assert.Equal(t, issued.Deadline, challenge.Deadline)
}

func TestGetChallengeRequiresOrganizer(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	issued, err := f.verifier.IssueChallenge(ctx, testGatekeeper, f.ticketID)
	require.NoError(t, err)

	_, err = f.verifier.GetChallenge(ctx, domain.Address("0x9000000000000000000000000000000000000009"), issued.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorizedOrganizer)
}

func TestGetChallengeUnknownID(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	_, err := f.verifier.GetChallenge(ctx, testGatekeeper, "no-such-challenge")
	assert.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestVerifyTicketValidProofScans(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	deadline := f.now.Add(time.Minute).Unix()
	result, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.signedRequest(7, deadline))
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationScanned, result.Status)
	assert.Equal(t, testGatekeeper, result.ScannedBy)

	ticket, err := f.ledger.GetTicket(ctx, f.ticketID)
	require.NoError(t, err)
	assert.True(t, ticket.IsScanned)

	fact := f.facts.LastFact()
	require.NotNil(t, fact)
	assert.Equal(t, domain.FactTicketScanned, fact.Type)
	assert.Equal(t, uint64(7), fact.Nonce)
}

func TestVerifyTicketWrongSignerFailsSoftly(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	deadline := f.now.Add(time.Minute).Unix()
	result, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.forgedRequest(t, 7, deadline))
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationFailed, result.Status)
	assert.Equal(t, "Invalid Signature or Owner", result.Reason)
	assert.Equal(t, uint32(1), result.FailedAttempts)

	// Ticket remains unscanned, failure is recorded
	ticket, err := f.ledger.GetTicket(ctx, f.ticketID)
	require.NoError(t, err)
	assert.False(t, ticket.IsScanned)

	fact := f.facts.LastFact()
	require.NotNil(t, fact)
	assert.Equal(t, domain.FactVerificationFailed, fact.Type)
}

func TestVerifyTicketMalformedProofFailsSoftly(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	deadline := f.now.Add(time.Minute).Unix()
	result, err := f.verifier.VerifyTicket(ctx, testGatekeeper, &VerifyRequest{
		TicketID: f.ticketID,
		Nonce:    7,
		Deadline: deadline,
		Proof:    []byte("garbage"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationFailed, result.Status)
	assert.Equal(t, uint32(1), result.FailedAttempts)
}

func TestVerifyTicketThirdFailureLocks(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	deadline := f.now.Add(time.Minute).Unix()
	for i := 0; i < 2; i++ {
		result, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.forgedRequest(t, 7, deadline))
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationFailed, result.Status)
	}

	result, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.forgedRequest(t, 7, deadline))
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationLocked, result.Status)
	assert.Equal(t, uint32(3), result.FailedAttempts)
	assert.Equal(t, f.now.Add(10*time.Minute), result.LockoutExpiry)

	fact := f.facts.LastFact()
	require.NotNil(t, fact)
	assert.Equal(t, domain.FactTicketLocked, fact.Type)

	// While locked, even a valid proof aborts before evaluation
	_, err = f.verifier.VerifyTicket(ctx, testGatekeeper, f.signedRequest(8, deadline))
	var lockedOut *domain.LockedOutError
	require.ErrorAs(t, err, &lockedOut)
	assert.Equal(t, f.now.Add(10*time.Minute), lockedOut.Expiry)
}

func TestVerifyTicketLockoutExpiresThenScans(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	deadline := f.now.Add(time.Hour).Unix()
	for i := 0; i < 3; i++ {
		_, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.forgedRequest(t, 7, deadline))
		require.NoError(t, err)
	}

	// Advance past the lockout window
	f.now = f.now.Add(10 * time.Minute)

	result, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.signedRequest(8, deadline))
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationScanned, result.Status)
}

func TestVerifyTicketExpiredDeadlineDoesNotCount(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	deadline := f.now.Add(-time.Second).Unix()
	_, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.forgedRequest(t, 7, deadline))
	assert.ErrorIs(t, err, domain.ErrChallengeExpired)

	// The aborted call left the counter untouched
	attempt, err := f.ledger.GetAttempt(ctx, f.ticketID)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), attempt.FailedAttempts)
	assert.Nil(t, f.facts.LastFact())
}

func TestVerifyTicketDeadlineBoundaryIsValid(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	// now == deadline still verifies
	deadline := f.now.Unix()
	result, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.signedRequest(7, deadline))
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationScanned, result.Status)
}

func TestVerifyTicketAlreadyScannedAborts(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	deadline := f.now.Add(time.Minute).Unix()
	_, err := f.verifier.VerifyTicket(ctx, testGatekeeper, f.signedRequest(7, deadline))
	require.NoError(t, err)

	_, err = f.verifier.VerifyTicket(ctx, testGatekeeper, f.signedRequest(8, deadline))
	assert.ErrorIs(t, err, domain.ErrTicketAlreadyScanned)
}

func TestVerifyTicketInactiveEventAborts(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	_, err := f.ledger.SetEventActive(ctx, f.eventID, false)
	require.NoError(t, err)

	deadline := f.now.Add(time.Minute).Unix()
	_, err = f.verifier.VerifyTicket(ctx, testGatekeeper, f.signedRequest(7, deadline))
	assert.ErrorIs(t, err, domain.ErrEventNotActive)
}

func TestVerifyTicketRequiresOrganizer(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	deadline := f.now.Add(time.Minute).Unix()
	_, err := f.verifier.VerifyTicket(ctx, domain.Address("0x9000000000000000000000000000000000000009"), f.signedRequest(7, deadline))
	assert.ErrorIs(t, err, domain.ErrUnauthorizedOrganizer)
}

func TestVerifyTicketAdminMayVerify(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	admin := domain.Address("0x4000000000000000000000000000000000000004")
	require.NoError(t, f.ledger.GrantRole(ctx, admin, domain.RoleAdmin))

	deadline := f.now.Add(time.Minute).Unix()
	result, err := f.verifier.VerifyTicket(ctx, admin, f.signedRequest(7, deadline))
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationScanned, result.Status)
	assert.Equal(t, admin, result.ScannedBy)
}

func TestVerifyTicketReplayedProofOtherDeployment(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	// Proof signed for a different chain ID fails here
	deadline := f.now.Add(time.Minute).Unix()
	digest := identity.ChallengeDigest(f.ticketID, 7, deadline, testVerifier, testChainID+1)
	req := &VerifyRequest{
		TicketID: f.ticketID,
		Nonce:    7,
		Deadline: deadline,
		Proof:    identity.SignChallenge(f.priv, digest),
	}

	result, err := f.verifier.VerifyTicket(ctx, testGatekeeper, req)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationFailed, result.Status)
}

func TestCheckInGuest(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	nameHash, studentHash := identity.HashIdentity("Alice Example", "S-12345")
	guest := identity.GuestAddress(nameHash, studentHash)

	ticket, err := f.ledger.AssignTicket(ctx, f.eventID, guest, nameHash, studentHash, testGatekeeper)
	require.NoError(t, err)

	result, err := f.verifier.CheckInGuest(ctx, testGatekeeper, ticket.ID, nameHash, studentHash)
	require.NoError(t, err)
	assert.Equal(t, domain.VerificationScanned, result.Status)

	// Guest scans carry a zero nonce
	fact := f.facts.LastFact()
	require.NotNil(t, fact)
	assert.Equal(t, domain.FactTicketScanned, fact.Type)
	assert.Equal(t, uint64(0), fact.Nonce)

	// Terminal: a second check-in aborts
	_, err = f.verifier.CheckInGuest(ctx, testGatekeeper, ticket.ID, nameHash, studentHash)
	assert.ErrorIs(t, err, domain.ErrTicketAlreadyScanned)
}

func TestCheckInGuestMismatchAborts(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	nameHash, studentHash := identity.HashIdentity("Alice Example", "S-12345")
	guest := identity.GuestAddress(nameHash, studentHash)
	ticket, err := f.ledger.AssignTicket(ctx, f.eventID, guest, nameHash, studentHash, testGatekeeper)
	require.NoError(t, err)

	wrongName, wrongStudent := identity.HashIdentity("Mallory", "S-99999")
	_, err = f.verifier.CheckInGuest(ctx, testGatekeeper, ticket.ID, wrongName, wrongStudent)
	assert.ErrorIs(t, err, domain.ErrInvalidGuestIdentity)

	// Hard abort: the ticket stays unscanned and no fact was emitted
	stored, err := f.ledger.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsScanned)
	assert.Nil(t, f.facts.LastFact())
}

func TestCheckInGuestUnassignedTicketAborts(t *testing.T) {
	ctx := context.Background()
	f := newVerifierFixture(t)

	// The plain ticket has zero hashes; presenting zero hashes must not
	// slip through the comparison
	_, err := f.verifier.CheckInGuest(ctx, testGatekeeper, f.ticketID, domain.ZeroHash, domain.ZeroHash)
	assert.ErrorIs(t, err, domain.ErrInvalidGuestIdentity)
}
