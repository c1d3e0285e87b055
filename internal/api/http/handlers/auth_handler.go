package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/helpdesk-bot/internal/api/dto"
	"github.com/support-kit/helpdesk-bot/internal/auth"
	apperrors "github.com/support-kit/helpdesk-bot/pkg/util"
)

// AuthHandler authenticates the single admin.
type AuthHandler struct {
	tokens       *auth.TokenManager
	passwordHash string
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, adminPasswordHash string) *AuthHandler {
	return &AuthHandler{tokens: tokens, passwordHash: adminPasswordHash}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(req); err != nil {
		return apperrors.NewValidationError("invalid payload", validationDetails(err))
	}
	if h.passwordHash == "" {
		return apperrors.NewUnauthorized("admin login not configured")
	}
	if err := auth.ComparePassword(h.passwordHash, req.Password); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := h.tokens.GenerateToken()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{Token: token, ExpiresAt: expiresAt}})
}
