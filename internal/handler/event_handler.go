package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/dto"
	"github.com/Dequr01/fair-ticket/internal/middleware"
	"github.com/Dequr01/fair-ticket/internal/service"
	"github.com/Dequr01/fair-ticket/pkg/response"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	tickets service.TicketService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(tickets service.TicketService) *EventHandler {
	return &EventHandler{tickets: tickets}
}

// Create handles POST /events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	event, err := h.tickets.CreateEvent(c.Request.Context(), middleware.CallerAddress(c), req.Name, req.MaxSupply)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.ToEventResponse(event))
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.tickets.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.ToEventResponse(event))
}

// Activate handles POST /events/:id/activate
func (h *EventHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate handles POST /events/:id/deactivate
func (h *EventHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *EventHandler) setActive(c *gin.Context, active bool) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	event, err := h.tickets.SetEventActive(c.Request.Context(), middleware.CallerAddress(c), eventID, active)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.ToEventResponse(event))
}

// ListTickets handles GET /events/:id/tickets
func (h *EventHandler) ListTickets(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticketIDs, err := h.tickets.GetEventTickets(c.Request.Context(), eventID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"event_id": eventID, "ticket_ids": ticketIDs})
}

// ListByOrganizer handles GET /organizers/:address/events
func (h *EventHandler) ListByOrganizer(c *gin.Context) {
	organizer, err := domain.ParseAddress(c.Param("address"))
	if err != nil {
		response.BadRequest(c, "Invalid organizer address")
		return
	}

	eventIDs, err := h.tickets.GetOrganizerEvents(c.Request.Context(), organizer)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"organizer": organizer.String(), "event_ids": eventIDs})
}

// GrantRole handles POST /roles
func (h *EventHandler) GrantRole(c *gin.Context) {
	var req dto.GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	grantee, _ := domain.ParseAddress(req.Address)
	err := h.tickets.GrantRole(c.Request.Context(), middleware.CallerAddress(c), domain.Role(req.Role), grantee)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, gin.H{"role": req.Role, "address": grantee.String()})
}

// pathID parses a numeric path parameter, writing the error response on
// failure.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

// writeServiceError maps ledger and verification errors onto HTTP
// responses.
func writeServiceError(c *gin.Context, err error) {
	var lockedOut *domain.LockedOutError
	switch {
	case errors.Is(err, domain.ErrEventNotFound),
		errors.Is(err, domain.ErrTicketNotFound),
		errors.Is(err, domain.ErrChallengeNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorizedOrganizer),
		errors.Is(err, domain.ErrUnauthorizedRole):
		response.Forbidden(c, err.Error())
	case errors.As(err, &lockedOut):
		response.Error(c, 423, "TICKET_LOCKED_OUT", err.Error(), lockedOut.Expiry.UTC().Format("2006-01-02T15:04:05Z07:00"))
	case errors.Is(err, domain.ErrTicketAlreadyScanned):
		response.Conflict(c, "TICKET_ALREADY_SCANNED", err.Error())
	case errors.Is(err, domain.ErrAlreadyAssigned):
		response.Conflict(c, "TICKET_ALREADY_ASSIGNED", err.Error())
	case errors.Is(err, domain.ErrEventSoldOut):
		response.Conflict(c, "EVENT_SOLD_OUT", err.Error())
	case errors.Is(err, domain.ErrEventNotActive):
		response.Conflict(c, "EVENT_NOT_ACTIVE", err.Error())
	case errors.Is(err, domain.ErrChallengeExpired):
		response.Error(c, 410, "CHALLENGE_EXPIRED", err.Error(), "")
	case errors.Is(err, domain.ErrInvalidGuestIdentity),
		errors.Is(err, domain.ErrInvalidMaxSupply):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
