package handlers

import (
	"errors"
	"strings"
	"time"

	"racing-career/server/internal/services/auth"
	"racing-career/server/internal/services/career"
	"racing-career/server/pkg/config"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthHandlers struct {
	service auth.Service
	config  config.Config
	logger  *zap.Logger
}

func NewAuthHandlers(service auth.Service, cfg config.Config, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		service: service,
		config:  cfg,
		logger:  logger,
	}
}

type SessionRequest struct {
	Username string `json:"username"`
}

type SessionResponse struct {
	Token     string                 `json:"token"`
	ExpiresAt time.Time              `json:"expires_at"`
	Career    *career.PlayerProgress `json:"career"`
}

// StartSession handles POST /session
func (h *AuthHandlers) StartSession(c *fiber.Ctx) error {
	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.Username) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username is required",
		})
	}

	ctx := c.Context()
	token, player, err := h.service.StartSession(ctx, req.Username)
	if err != nil {
		if errors.Is(err, career.ErrInvalidUsername) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "username is required",
			})
		}
		h.logger.Error("failed to start session", zap.Error(err), zap.String("username", req.Username))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	return c.Status(fiber.StatusOK).JSON(SessionResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.config.JWT.SessionExpiration).UTC(),
		Career:    player,
	})
}
