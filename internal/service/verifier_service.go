package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/identity"
	"github.com/Dequr01/fair-ticket/internal/metrics"
	"github.com/Dequr01/fair-ticket/internal/publisher"
	"github.com/Dequr01/fair-ticket/internal/repository"
)

// invalidProofReason is the reason reported for every rejected proof.
// Deliberately unspecific: it must not tell an attacker whether the
// signature or the owner binding failed.
const invalidProofReason = "Invalid Signature or Owner"

// VerifierConfig holds the verifier's identity and policy.
type VerifierConfig struct {
	// Address and ChainID are bound into every challenge digest so a
	// proof for one deployment cannot be replayed against another.
	Address domain.Address
	ChainID uint64

	ChallengeTTL    time.Duration
	LockoutDuration time.Duration
}

// verifierService implements the challenge-response state machine.
type verifierService struct {
	ledger     repository.Ledger
	challenges repository.ChallengeStore
	facts      publisher.FactPublisher
	config     *VerifierConfig

	// now is swappable for deterministic tests.
	now func() time.Time
}

// NewVerifierService creates a new VerifierService.
func NewVerifierService(
	ledger repository.Ledger,
	challenges repository.ChallengeStore,
	facts publisher.FactPublisher,
	config *VerifierConfig,
) VerifierService {
	if config.ChallengeTTL <= 0 {
		config.ChallengeTTL = time.Minute
	}
	if config.LockoutDuration <= 0 {
		config.LockoutDuration = domain.DefaultLockoutDuration
	}
	return &verifierService{
		ledger:     ledger,
		challenges: challenges,
		facts:      facts,
		config:     config,
		now:        time.Now,
	}
}

func (s *verifierService) IssueChallenge(ctx context.Context, caller domain.Address, ticketID uint64) (*repository.Challenge, error) {
	ticket, err := s.ledger.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEventOrganizer(ctx, caller, ticket.EventID); err != nil {
		return nil, err
	}
	if ticket.IsScanned {
		return nil, domain.ErrTicketAlreadyScanned
	}

	nonce, err := randomNonce()
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := s.now().UTC()
	challenge := &repository.Challenge{
		ID:       uuid.NewString(),
		TicketID: ticketID,
		Nonce:    nonce,
		Deadline: now.Add(s.config.ChallengeTTL),
		IssuedAt: now,
	}
	if err := s.challenges.Put(ctx, challenge); err != nil {
		return nil, err
	}
	return challenge, nil
}

func (s *verifierService) GetChallenge(ctx context.Context, caller domain.Address, challengeID string) (*repository.Challenge, error) {
	challenge, err := s.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.ledger.GetTicket(ctx, challenge.TicketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEventOrganizer(ctx, caller, ticket.EventID); err != nil {
		return nil, err
	}
	return challenge, nil
}

// VerifyTicket runs the ordered precondition chain and then evaluates
// the proof. Precondition violations abort with no state change; a bad
// proof completes the call, commits the failure counter, and reports the
// outcome through a fact.
func (s *verifierService) VerifyTicket(ctx context.Context, caller domain.Address, req *VerifyRequest) (*domain.VerificationResult, error) {
	ticket, err := s.ledger.GetTicket(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}

	// 1. Only an authorized gatekeeper may submit proofs.
	if err := s.requireEventOrganizer(ctx, caller, ticket.EventID); err != nil {
		return nil, err
	}

	// 2. Event active, ticket not yet scanned.
	event, err := s.ledger.GetEvent(ctx, ticket.EventID)
	if err != nil {
		return nil, err
	}
	if !event.IsActive {
		return nil, domain.ErrEventNotActive
	}
	if ticket.IsScanned {
		return nil, domain.ErrTicketAlreadyScanned
	}

	now := s.now()

	// 3. Deadline, strictly before the signature is even looked at: an
	// expired proof must not move the failure counter.
	if now.Unix() > req.Deadline {
		return nil, domain.ErrChallengeExpired
	}

	// 4. Open lockout window short-circuits everything else.
	attempt, err := s.ledger.GetAttempt(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}
	if attempt.IsLockedOut(now) {
		return nil, &domain.LockedOutError{TicketID: req.TicketID, Expiry: attempt.LockoutExpiry}
	}

	// 5-6. Reconstruct the digest, recover the signer, compare to the
	// current owner.
	digest := identity.ChallengeDigest(req.TicketID, req.Nonce, req.Deadline, s.config.Address, s.config.ChainID)
	signer, sigErr := identity.RecoverSigner(req.Proof, digest)
	if sigErr == nil && signer == ticket.Owner {
		scanned, err := s.ledger.ScanTicket(ctx, req.TicketID, caller, now)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, domain.TicketScannedFact(uuid.NewString(), ticket.EventID, req.TicketID, caller, req.Nonce, scanned.ScannedAt))
		metrics.IncVerificationsScanned(ctx)
		return &domain.VerificationResult{
			TicketID:  req.TicketID,
			Status:    domain.VerificationScanned,
			ScannedBy: caller,
			ScannedAt: scanned.ScannedAt,
		}, nil
	}

	// 7. Soft failure: the call completes, the counter commits.
	updated, locked, err := s.ledger.RecordFailure(ctx, req.TicketID, now, s.config.LockoutDuration)
	if err != nil {
		return nil, err
	}

	if locked {
		s.publish(ctx, domain.TicketLockedFact(uuid.NewString(), req.TicketID, updated.LockoutExpiry, now))
		metrics.IncVerificationsLocked(ctx)
		return &domain.VerificationResult{
			TicketID:       req.TicketID,
			Status:         domain.VerificationLocked,
			Reason:         invalidProofReason,
			FailedAttempts: updated.FailedAttempts,
			LockoutExpiry:  updated.LockoutExpiry,
		}, nil
	}

	s.publish(ctx, domain.VerificationFailedFact(uuid.NewString(), req.TicketID, invalidProofReason, now))
	metrics.IncVerificationsFailed(ctx)
	return &domain.VerificationResult{
		TicketID:       req.TicketID,
		Status:         domain.VerificationFailed,
		Reason:         invalidProofReason,
		FailedAttempts: updated.FailedAttempts,
	}, nil
}

// CheckInGuest authenticates by hash comparison instead of signature.
// A mismatch aborts hard and never touches the failure counter; the
// lockout applies to signature proofs only.
func (s *verifierService) CheckInGuest(ctx context.Context, caller domain.Address, ticketID uint64, nameHash, studentIDHash domain.Hash) (*domain.VerificationResult, error) {
	ticket, err := s.ledger.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEventOrganizer(ctx, caller, ticket.EventID); err != nil {
		return nil, err
	}
	if ticket.IsScanned {
		return nil, domain.ErrTicketAlreadyScanned
	}
	if !ticket.IsIdentityLocked() || !ticket.MatchesIdentity(nameHash, studentIDHash) {
		return nil, domain.ErrInvalidGuestIdentity
	}

	now := s.now()
	scanned, err := s.ledger.ScanTicket(ctx, ticketID, caller, now)
	if err != nil {
		return nil, err
	}

	// Zero nonce marks a guest scan in the fact stream.
	s.publish(ctx, domain.TicketScannedFact(uuid.NewString(), ticket.EventID, ticketID, caller, 0, scanned.ScannedAt))
	metrics.IncGuestCheckIns(ctx)
	return &domain.VerificationResult{
		TicketID:  ticketID,
		Status:    domain.VerificationScanned,
		ScannedBy: caller,
		ScannedAt: scanned.ScannedAt,
	}, nil
}

func (s *verifierService) requireEventOrganizer(ctx context.Context, caller domain.Address, eventID uint64) error {
	event, err := s.ledger.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if event.Organizer == caller {
		return nil
	}
	isAdmin, err := s.ledger.HasRole(ctx, caller, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.ErrUnauthorizedOrganizer
	}
	return nil
}

func (s *verifierService) publish(ctx context.Context, fact domain.Fact) {
	_ = s.facts.Publish(ctx, fact)
}

func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}
