package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/helpdesk-bot/internal/api/dto"
	"github.com/support-kit/helpdesk-bot/internal/service"
	apperrors "github.com/support-kit/helpdesk-bot/pkg/util"
)

// BansHandler manages the admin ban list.
type BansHandler struct {
	service *service.BanService
}

// NewBansHandler constructs handler.
func NewBansHandler(banService *service.BanService) *BansHandler {
	return &BansHandler{service: banService}
}

// List GET /admin/bans.
func (h *BansHandler) List(c *fiber.Ctx) error {
	bans := h.service.List()
	responses := make([]dto.BanResponse, 0, len(bans))
	for _, b := range bans {
		responses = append(responses, dto.BanResponse{SubjectID: b.SubjectID, Reason: b.Reason})
	}
	return c.JSON(fiber.Map{"data": responses, "meta": fiber.Map{"count": len(responses)}})
}

// Ban POST /admin/bans.
func (h *BansHandler) Ban(c *fiber.Ctx) error {
	var req dto.BanRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError("invalid payload", validationDetails(err))
	}

	if err := h.service.Ban(req.SubjectID, req.Reason); err != nil {
		return apperrors.NewInternalError(err)
	}
	reason, _ := h.service.Reason(req.SubjectID)
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.BanResponse{SubjectID: req.SubjectID, Reason: reason},
	})
}

// Unban DELETE /admin/bans/:subject_id.
func (h *BansHandler) Unban(c *fiber.Ctx) error {
	subjectID, err := strconv.ParseInt(c.Params("subject_id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid subject id", nil)
	}
	if err := h.service.Unban(subjectID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"subject_id": subjectID, "banned": false}})
}
