package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/metrics"
	"github.com/Dequr01/fair-ticket/internal/publisher"
	"github.com/Dequr01/fair-ticket/internal/repository"
)

// ticketService implements TicketService on top of the ledger.
type ticketService struct {
	ledger repository.Ledger
	facts  publisher.FactPublisher
}

// NewTicketService creates a new TicketService.
func NewTicketService(ledger repository.Ledger, facts publisher.FactPublisher) TicketService {
	return &ticketService{
		ledger: ledger,
		facts:  facts,
	}
}

func (s *ticketService) CreateEvent(ctx context.Context, caller domain.Address, name string, maxSupply uint64) (*domain.Event, error) {
	if caller.IsZero() {
		return nil, domain.ErrUnauthorizedOrganizer
	}

	event, err := s.ledger.CreateEvent(ctx, caller, maxSupply)
	if err != nil {
		return nil, err
	}

	// The event name lives only in this fact; mutable state stays
	// minimal.
	s.publish(ctx, domain.EventCreatedFact(uuid.NewString(), event.ID, caller, name, event.CreatedAt))
	metrics.IncEventsCreated(ctx)
	return event, nil
}

func (s *ticketService) MintTicket(ctx context.Context, caller domain.Address, eventID uint64, recipient domain.Address) (*domain.Ticket, error) {
	if err := s.requireEventOrganizer(ctx, caller, eventID); err != nil {
		return nil, err
	}

	ticket, err := s.ledger.MintTicket(ctx, eventID, recipient)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TicketMintedFact(uuid.NewString(), eventID, ticket.ID, recipient, ticket.MintedAt))
	metrics.IncTicketsMinted(ctx)
	return ticket, nil
}

func (s *ticketService) AssignTicket(ctx context.Context, caller domain.Address, eventID uint64, recipient domain.Address, nameHash, studentIDHash domain.Hash) (*domain.Ticket, error) {
	if err := s.requireRole(ctx, caller, domain.RoleBoothOperator); err != nil {
		return nil, err
	}
	if nameHash.IsZero() || studentIDHash.IsZero() {
		return nil, fmt.Errorf("both identity hashes are required: %w", domain.ErrInvalidGuestIdentity)
	}

	ticket, err := s.ledger.AssignTicket(ctx, eventID, recipient, nameHash, studentIDHash, caller)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TicketAssignedFact(uuid.NewString(), eventID, ticket.ID, recipient, nameHash, studentIDHash, ticket.MintedAt))
	metrics.IncTicketsMinted(ctx)
	metrics.IncTicketsAssigned(ctx)
	return ticket, nil
}

func (s *ticketService) UpdateTicketMetadata(ctx context.Context, caller domain.Address, ticketID uint64, nameHash, studentIDHash domain.Hash) (*domain.Ticket, error) {
	if err := s.requireRole(ctx, caller, domain.RoleBoothOperator); err != nil {
		return nil, err
	}
	if nameHash.IsZero() || studentIDHash.IsZero() {
		return nil, fmt.Errorf("both identity hashes are required: %w", domain.ErrInvalidGuestIdentity)
	}

	ticket, err := s.ledger.UpdateTicketMetadata(ctx, ticketID, nameHash, studentIDHash, caller)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TicketAssignedFact(uuid.NewString(), ticket.EventID, ticket.ID, ticket.Owner, nameHash, studentIDHash, time.Now().UTC()))
	return ticket, nil
}

func (s *ticketService) SetEventActive(ctx context.Context, caller domain.Address, eventID uint64, active bool) (*domain.Event, error) {
	if err := s.requireEventOrganizer(ctx, caller, eventID); err != nil {
		return nil, err
	}
	return s.ledger.SetEventActive(ctx, eventID, active)
}

func (s *ticketService) GetEvent(ctx context.Context, eventID uint64) (*domain.Event, error) {
	return s.ledger.GetEvent(ctx, eventID)
}

func (s *ticketService) GetTicketDetails(ctx context.Context, ticketID uint64) (*domain.Ticket, error) {
	return s.ledger.GetTicket(ctx, ticketID)
}

func (s *ticketService) GetEventTickets(ctx context.Context, eventID uint64) ([]uint64, error) {
	return s.ledger.TicketsByEvent(ctx, eventID)
}

func (s *ticketService) GetOrganizerEvents(ctx context.Context, organizer domain.Address) ([]uint64, error) {
	return s.ledger.EventsByOrganizer(ctx, organizer)
}

func (s *ticketService) GrantRole(ctx context.Context, caller domain.Address, role domain.Role, identity domain.Address) error {
	if !role.Valid() {
		return fmt.Errorf("unknown role %q: %w", role, domain.ErrUnauthorizedRole)
	}

	isAdmin, err := s.ledger.HasRole(ctx, caller, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		// Organizers may delegate booth operation, nothing else.
		if role != domain.RoleBoothOperator {
			return domain.ErrUnauthorizedRole
		}
		isOrganizer, err := s.ledger.HasRole(ctx, caller, domain.RoleOrganizer)
		if err != nil {
			return err
		}
		if !isOrganizer {
			return domain.ErrUnauthorizedRole
		}
	}

	return s.ledger.GrantRole(ctx, identity, role)
}

func (s *ticketService) HasRole(ctx context.Context, identity domain.Address, role domain.Role) (bool, error) {
	return s.ledger.HasRole(ctx, identity, role)
}

// requireEventOrganizer passes for the event's organizer and for admins.
func (s *ticketService) requireEventOrganizer(ctx context.Context, caller domain.Address, eventID uint64) error {
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

func (s *ticketService) requireRole(ctx context.Context, caller domain.Address, role domain.Role) error {
	has, err := s.ledger.HasRole(ctx, caller, role)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	isAdmin, err := s.ledger.HasRole(ctx, caller, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return domain.ErrUnauthorizedRole
	}
	return nil
}

func (s *ticketService) publish(ctx context.Context, fact domain.Fact) {
	// Fact delivery is downstream of the committed mutation; a publish
	// failure must not roll the ledger back.
	_ = s.facts.Publish(ctx, fact)
}
