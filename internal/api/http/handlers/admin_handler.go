package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/helpdesk-bot/internal/api/dto"
	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/scheduler"
	"github.com/support-kit/helpdesk-bot/internal/service"
	"github.com/support-kit/helpdesk-bot/internal/store"
	apperrors "github.com/support-kit/helpdesk-bot/pkg/util"
)

// AdminHandler serves the authenticated admin surface: working tickets,
// statistics and scheduler introspection.
type AdminHandler struct {
	tickets   *service.TicketService
	stats     *service.StatsService
	scheduler *scheduler.Scheduler
}

// NewAdminHandler constructs handler.
func NewAdminHandler(tickets *service.TicketService, stats *service.StatsService, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{tickets: tickets, stats: stats, scheduler: sched}
}

// ListTickets GET /admin/tickets. An optional ?status= filter accepts a
// comma-separated list of statuses.
func (h *AdminHandler) ListTickets(c *fiber.Ctx) error {
	filter := store.TicketFilter{}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part)))
			switch status {
			case domain.TicketStatusNew, domain.TicketStatusInProgress, domain.TicketStatusClosed:
				filter.Statuses = append(filter.Statuses, status)
			default:
				return apperrors.NewValidationError("unknown status filter",
					map[string]any{"status": part})
			}
		}
	}

	tickets, err := h.tickets.List(c.UserContext(), filter)
	if err != nil {
		return mapDomainError(err)
	}
	responses := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		snap, err := h.tickets.Snapshot(c.UserContext(), tickets[i].ID)
		if err != nil {
			return mapDomainError(err)
		}
		responses = append(responses, dto.FromSnapshot(snap))
	}
	return c.JSON(fiber.Map{"data": responses, "meta": fiber.Map{"count": len(responses)}})
}

// Take POST /admin/tickets/:id/take.
func (h *AdminHandler) Take(c *fiber.Ctx) error {
	if _, err := h.tickets.Take(c.UserContext(), c.Params("id")); err != nil {
		return mapDomainError(err)
	}
	return h.respondSnapshot(c, c.Params("id"))
}

// Reply POST /admin/tickets/:id/reply.
func (h *AdminHandler) Reply(c *fiber.Ctx) error {
	var req dto.AdminReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError("invalid payload", validationDetails(err))
	}

	if _, err := h.tickets.AdminReply(c.UserContext(), c.Params("id"), strings.TrimSpace(req.Message)); err != nil {
		return mapDomainError(err)
	}
	return h.respondSnapshot(c, c.Params("id"))
}

// Close POST /admin/tickets/:id/close.
func (h *AdminHandler) Close(c *fiber.Ctx) error {
	if _, err := h.tickets.Close(c.UserContext(), c.Params("id"), domain.CloseReasonManual); err != nil {
		return mapDomainError(err)
	}
	return h.respondSnapshot(c, c.Params("id"))
}

// Stats GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Collect(c.UserContext())
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"data": stats})
}

// Jobs GET /admin/jobs.
func (h *AdminHandler) Jobs(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.scheduler.Jobs()})
}

// Job GET /admin/jobs/:id.
func (h *AdminHandler) Job(c *fiber.Ctx) error {
	status, ok := h.scheduler.JobStatus(c.Params("id"))
	if !ok {
		return apperrors.NewNotFound("job", nil)
	}
	return c.JSON(fiber.Map{"data": status})
}

func (h *AdminHandler) respondSnapshot(c *fiber.Ctx, ticketID string) error {
	snap, err := h.tickets.Snapshot(c.UserContext(), ticketID)
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromSnapshot(snap)})
}
