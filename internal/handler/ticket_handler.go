package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Dequr01/fair-ticket/internal/domain"
	"github.com/Dequr01/fair-ticket/internal/dto"
	"github.com/Dequr01/fair-ticket/internal/middleware"
	"github.com/Dequr01/fair-ticket/internal/service"
	"github.com/Dequr01/fair-ticket/pkg/response"
)

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	tickets service.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(tickets service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// Mint handles POST /events/:id/tickets
func (h *TicketHandler) Mint(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.MintTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	recipient, _ := domain.ParseAddress(req.Recipient)
	ticket, err := h.tickets.MintTicket(c.Request.Context(), middleware.CallerAddress(c), eventID, recipient)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.ToTicketResponse(ticket))
}

// Assign handles POST /events/:id/tickets/assign
func (h *TicketHandler) Assign(c *gin.Context) {
	eventID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	nameHash, studentIDHash, err := req.IdentityHashes()
	if err != nil {
		response.BadRequest(c, "Invalid identity hashes")
		return
	}
	owner, err := req.Owner(nameHash, studentIDHash)
	if err != nil {
		response.BadRequest(c, "Invalid recipient address")
		return
	}

	ticket, err := h.tickets.AssignTicket(c.Request.Context(), middleware.CallerAddress(c), eventID, owner, nameHash, studentIDHash)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Created(c, dto.ToTicketResponse(ticket))
}

// UpdateMetadata handles PUT /tickets/:id/metadata
func (h *TicketHandler) UpdateMetadata(c *gin.Context) {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if ok, msg := req.Validate(); !ok {
		response.BadRequest(c, msg)
		return
	}

	nameHash, studentIDHash, err := req.IdentityHashes()
	if err != nil {
		response.BadRequest(c, "Invalid identity hashes")
		return
	}

	ticket, err := h.tickets.UpdateTicketMetadata(c.Request.Context(), middleware.CallerAddress(c), ticketID, nameHash, studentIDHash)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.ToTicketResponse(ticket))
}

// Get handles GET /tickets/:id
func (h *TicketHandler) Get(c *gin.Context) {
	ticketID, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.tickets.GetTicketDetails(c.Request.Context(), ticketID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, dto.ToTicketResponse(ticket))
}
