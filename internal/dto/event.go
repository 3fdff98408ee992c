package dto

import (
	"time"

	"github.com/Dequr01/fair-ticket/internal/domain"
)

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	MaxSupply uint64 `json:"max_supply" binding:"required,min=1"`
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if r.Name == "" {
		return false, "Event name is required"
	}
	if r.MaxSupply < 1 {
		return false, "Max supply must be at least 1"
	}
	return true, ""
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID          uint64    `json:"id"`
	Organizer   string    `json:"organizer"`
	MaxSupply   uint64    `json:"max_supply"`
	MintedCount uint64    `json:"minted_count"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToEventResponse converts a domain event to an EventResponse
func ToEventResponse(event *domain.Event) *EventResponse {
	return &EventResponse{
		ID:          event.ID,
		Organizer:   event.Organizer.String(),
		MaxSupply:   event.MaxSupply,
		MintedCount: event.MintedCount,
		IsActive:    event.IsActive,
		CreatedAt:   event.CreatedAt,
	}
}

// GrantRoleRequest represents the request to grant a role to an address
type GrantRoleRequest struct {
	Role    string `json:"role" binding:"required"`
	Address string `json:"address" binding:"required"`
}

// Validate validates the GrantRoleRequest
func (r *GrantRoleRequest) Validate() (bool, string) {
	if !domain.Role(r.Role).Valid() {
		return false, "Unknown role"
	}
	if _, err := domain.ParseAddress(r.Address); err != nil {
		return false, "Invalid address"
	}
	return true, ""
}
