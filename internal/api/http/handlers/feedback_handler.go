package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/helpdesk-bot/internal/api/dto"
	"github.com/support-kit/helpdesk-bot/internal/domain"
	"github.com/support-kit/helpdesk-bot/internal/service"
	apperrors "github.com/support-kit/helpdesk-bot/pkg/util"
)

// FeedbackHandler manages user suggestions and reviews.
type FeedbackHandler struct {
	service *service.FeedbackService
}

// NewFeedbackHandler constructs handler.
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: feedbackService}
}

// Submit POST /feedback. A subject on cooldown receives 429 with the
// remaining wait rather than an error envelope.
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError("invalid payload", validationDetails(err))
	}

	submission, err := h.service.Submit(c.UserContext(), req.SubjectID,
		domain.FeedbackKind(req.Kind), strings.TrimSpace(req.Text))
	if err != nil {
		return mapDomainError(err)
	}
	if !submission.Granted {
		return c.Status(http.StatusTooManyRequests).JSON(fiber.Map{
			"data": dto.CooldownResponse{
				CooldownActive: true,
				RetryAfterSec:  int64(submission.RetryAfter.Seconds()),
			},
		})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.FromFeedback(submission.Feedback)})
}

// List GET /admin/feedback.
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	feedbacks, err := h.service.List(c.UserContext())
	if err != nil {
		return mapDomainError(err)
	}
	responses := make([]dto.FeedbackResponse, 0, len(feedbacks))
	for i := range feedbacks {
		responses = append(responses, dto.FromFeedback(&feedbacks[i]))
	}
	return c.JSON(fiber.Map{"data": responses, "meta": fiber.Map{"count": len(responses)}})
}

// Thank POST /admin/feedback/:id/thank.
func (h *FeedbackHandler) Thank(c *fiber.Ctx) error {
	fb, err := h.service.Thank(c.UserContext(), c.Params("id"))
	if err != nil {
		return mapDomainError(err)
	}
	return c.JSON(fiber.Map{"data": dto.FromFeedback(fb)})
}
