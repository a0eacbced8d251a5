package handlers

import (
	"errors"

	"racing-career/server/internal/middleware"
	"racing-career/server/internal/services/career"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CareerHandlers struct {
	careerSvc career.Service
	logger    *zap.Logger
}

func NewCareerHandlers(careerSvc career.Service, logger *zap.Logger) *CareerHandlers {
	return &CareerHandlers{
		careerSvc: careerSvc,
		logger:    logger,
	}
}

type UpdateProgressRequest struct {
	CurrentLevel    *int  `json:"current_level"`
	CompletedLevels []int `json:"completed_levels"`
}

type CompleteLevelRequest struct {
	CoinsCollected int64 `json:"coins_collected"`
}

type AwardCurrencyRequest struct {
	Amount float64 `json:"amount"`
}

type PurchaseItemRequest struct {
	ItemID int     `json:"item_id"`
	Cost   float64 `json:"cost"`
}

// GetCareer handles GET /career
func (h *CareerHandlers) GetCareer(c *fiber.Ctx) error {
	player, ok := middleware.GetCareer(c)
	if !ok {
		h.logger.Error("career missing from context")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return c.Status(fiber.StatusOK).JSON(player)
}

// UpdateProgress handles PUT /career/progress
func (h *CareerHandlers) UpdateProgress(c *fiber.Ctx) error {
	username, ok := middleware.GetUsername(c)
	if !ok {
		return unauthorized(c)
	}
	var req UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.CurrentLevel == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "current_level is required",
		})
	}
	if req.CompletedLevels == nil {
		req.CompletedLevels = []int{}
	}

	if err := h.careerSvc.UpdateProgress(c.Context(), username, *req.CurrentLevel, req.CompletedLevels); err != nil {
		return h.fail(c, "failed to update progress", username, err)
	}
	return h.respondCareer(c, username)
}

// CompleteLevel handles POST /career/levels/:level/complete
func (h *CareerHandlers) CompleteLevel(c *fiber.Ctx) error {
	username, ok := middleware.GetUsername(c)
	if !ok {
		return unauthorized(c)
	}
	level, err := c.ParamsInt("level")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid level",
		})
	}
	var req CompleteLevelRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.careerSvc.CompleteLevel(c.Context(), username, level, req.CoinsCollected); err != nil {
		return h.fail(c, "failed to complete level", username, err)
	}
	return h.respondCareer(c, username)
}

// AwardCurrency handles POST /career/currency
func (h *CareerHandlers) AwardCurrency(c *fiber.Ctx) error {
	username, ok := middleware.GetUsername(c)
	if !ok {
		return unauthorized(c)
	}
	var req AwardCurrencyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.careerSvc.AwardCurrency(c.Context(), username, req.Amount); err != nil {
		return h.fail(c, "failed to award currency", username, err)
	}
	return h.respondCareer(c, username)
}

// PurchaseItem handles POST /career/items/purchase
func (h *CareerHandlers) PurchaseItem(c *fiber.Ctx) error {
	username, ok := middleware.GetUsername(c)
	if !ok {
		return unauthorized(c)
	}
	var req PurchaseItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	purchased, err := h.careerSvc.PurchaseItem(c.Context(), username, req.ItemID, req.Cost)
	if err != nil {
		return h.fail(c, "failed to purchase item", username, err)
	}
	if !purchased {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error": "insufficient balance or item already owned",
		})
	}
	return h.respondCareer(c, username)
}

// ListLevels handles GET /levels
func (h *CareerHandlers) ListLevels(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(career.Levels())
}

// GetLevel handles GET /levels/:level
func (h *CareerHandlers) GetLevel(c *fiber.Ctx) error {
	level, err := c.ParamsInt("level")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid level",
		})
	}
	spawn, ok := career.Spawn(level)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "level not found",
		})
	}
	return c.Status(fiber.StatusOK).JSON(spawn)
}

// respondCareer replies with the current stored record for username.
func (h *CareerHandlers) respondCareer(c *fiber.Ctx, username string) error {
	player, ok := h.careerSvc.FindPlayer(c.Context(), username)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": middleware.ErrNoCareer.Error(),
		})
	}
	return c.Status(fiber.StatusOK).JSON(player)
}

func (h *CareerHandlers) fail(c *fiber.Ctx, msg, username string, err error) error {
	switch {
	case errors.Is(err, career.ErrInvalidLevel),
		errors.Is(err, career.ErrNegativeAmount),
		errors.Is(err, career.ErrInvalidUsername):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	h.logger.Error(msg, zap.Error(err), zap.String("username", username))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}
