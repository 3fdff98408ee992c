package di

import (
	"context"
	"fmt"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/handler"
	"github.com/Dequr01/fair-ticket/internal/publisher"
	"github.com/Dequr01/fair-ticket/internal/repository"
	"github.com/Dequr01/fair-ticket/internal/service"
	"github.com/Dequr01/fair-ticket/pkg/config"
	"github.com/Dequr01/fair-ticket/pkg/database"
	"github.com/Dequr01/fair-ticket/pkg/redis"
)

// Container holds all dependencies for the verification service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	Ledger     repository.Ledger
	Challenges repository.ChallengeStore

	// Facts
	Facts publisher.FactPublisher

	// Services
	TicketService   service.TicketService
	VerifierService service.VerifierService

	// Handlers
	HealthHandler *handler.HealthHandler
	EventHandler  *handler.EventHandler
	TicketHandler *handler.TicketHandler
	VerifyHandler *handler.VerifyHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *redis.Client
	Facts  publisher.FactPublisher
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *ContainerConfig) (*Container, error) {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
		Facts: cfg.Facts,
	}
	if c.Facts == nil {
		c.Facts = publisher.NewMemoryFactPublisher()
	}

	// The ledger is the authoritative store; Redis only backs the
	// short-lived challenge records.
	c.Ledger = repository.NewMemoryLedger()
	if c.Redis != nil {
		c.Challenges = repository.NewRedisChallengeStore(c.Redis)
	} else {
		c.Challenges = repository.NewMemoryChallengeStore()
	}

	verifierAddress, err := domain.ParseAddress(cfg.Config.Verifier.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid verifier address: %w", err)
	}

	c.TicketService = service.NewTicketService(c.Ledger, c.Facts)
	c.VerifierService = service.NewVerifierService(c.Ledger, c.Challenges, c.Facts, &service.VerifierConfig{
		Address:         verifierAddress,
		ChainID:         cfg.Config.Verifier.ChainID,
		ChallengeTTL:    cfg.Config.Verifier.ChallengeTTL,
		LockoutDuration: cfg.Config.Verifier.LockoutDuration,
	})

	// Bootstrap the admin role so the first organizer and booth
	// operator grants have a grantor.
	if adminRaw := cfg.Config.Verifier.AdminAddress; adminRaw != "" {
		admin, err := domain.ParseAddress(adminRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid admin address: %w", err)
		}
		if err := c.Ledger.GrantRole(ctx, admin, domain.RoleAdmin); err != nil {
			return nil, fmt.Errorf("failed to grant admin role: %w", err)
		}
	}

	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.EventHandler = handler.NewEventHandler(c.TicketService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService)
	c.VerifyHandler = handler.NewVerifyHandler(c.VerifierService)

	return c, nil
}
