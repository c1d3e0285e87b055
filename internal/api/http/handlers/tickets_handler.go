package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/helpdesk-bot/internal/api/dto"
	"github.com/support-kit/helpdesk-bot/internal/service"
	apperrors "github.com/support-kit/helpdesk-bot/pkg/util"
)

// TicketsHandler manages the end-user ticket endpoints, called by the
// bot's presentation layer.
type TicketsHandler struct {
	service      *service.TicketService
	askMinLength int
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, askMinLength int) *TicketsHandler {
	return &TicketsHandler{service: ticketService, askMinLength: askMinLength}
}

// Open POST /tickets.
func (h *TicketsHandler) Open(c *fiber.Ctx) error {
	var req dto.OpenTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError("invalid payload", validationDetails(err))
	}
	message := strings.TrimSpace(req.Message)
	if len([]rune(message)) < h.askMinLength {
		return apperrors.NewValidationError("message too short",
			map[string]any{"min_length": h.askMinLength})
	}

	ticket, err := h.service.Open(c.UserContext(), req.SubjectID, message)
	if err != nil {
		return mapDomainError(err)
	}
	snap, err := h.service.Snapshot(c.UserContext(), ticket.ID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromSnapshot(snap)})
}

// Reply POST /tickets/:id/reply.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	var req dto.UserReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError("invalid payload", validationDetails(err))
	}

	ticketID := c.Params("id")
	ticket, err := h.service.Get(c.UserContext(), ticketID)
	if err != nil {
		return mapDomainError(err)
	}
	if ticket.SubjectID != req.SubjectID {
		return apperrors.NewForbidden("ticket belongs to another subject")
	}

	if _, err := h.service.UserReply(c.UserContext(), ticketID, strings.TrimSpace(req.Message)); err != nil {
		return mapDomainError(err)
	}
	snap, err := h.service.Snapshot(c.UserContext(), ticketID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(snap)})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	snap, err := h.service.Snapshot(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(snap)})
}

// Active GET /tickets/active/:subject_id.
func (h *TicketsHandler) Active(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseInt(c.Params("subject_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid subject id", nil)
	}
	ticket, err := h.service.ActiveBySubject(c.UserContext(), subjectID)
	if err != nil {
		return mapDomainError(err)
	}
	if ticket == nil {
		return apperrors.NewNotFound("active ticket", nil)
	}
	snap, err := h.service.Snapshot(c.UserContext(), ticket.ID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(snap)})
}

// Rate POST /tickets/:id/rate.
func (h *TicketsHandler) Rate(c *fiber.Ctx) error {
	var req dto.RateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError("invalid payload", validationDetails(err))
	}

	ticketID := c.Params("id")
	ticket, err := h.service.Get(c.UserContext(), ticketID)
	if err != nil {
		return mapDomainError(err)
	}
	if ticket.SubjectID != req.SubjectID {
		return apperrors.NewForbidden("ticket belongs to another subject")
	}

	if _, err := h.service.Rate(c.UserContext(), ticketID, req.Stars); err != nil {
		return mapDomainError(err)
	}
	snap, err := h.service.Snapshot(c.UserContext(), ticketID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(snap)})
}
