package handlers

import (
	"context"

	"racing-career/server/internal/services/leaderboard"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxLimit = 100

type LeaderboardHandlers struct {
	service leaderboard.Service
	logger  *zap.Logger
}

func NewLeaderboardHandlers(service leaderboard.Service, logger *zap.Logger) *LeaderboardHandlers {
	return &LeaderboardHandlers{
		service: service,
		logger:  logger,
	}
}

// GetCoinsLeaderboard handles GET /leaderboards/coins
func (h *LeaderboardHandlers) GetCoinsLeaderboard(c *fiber.Ctx) error {
	return h.respond(c, "coins", h.service.GetCoinsLeaderboard)
}

// GetProgressLeaderboard handles GET /leaderboards/progress
func (h *LeaderboardHandlers) GetProgressLeaderboard(c *fiber.Ctx) error {
	return h.respond(c, "progress", h.service.GetProgressLeaderboard)
}

// GetDailyLeaderboard handles GET /leaderboards/daily
func (h *LeaderboardHandlers) GetDailyLeaderboard(c *fiber.Ctx) error {
	return h.respond(c, "daily", h.service.GetDailyLeaderboard)
}

func (h *LeaderboardHandlers) respond(c *fiber.Ctx, board string, get func(context.Context, int) []*leaderboard.Entry) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must not be negative",
		})
	}
	limit = min(limit, maxLimit)

	entries := get(c.Context(), limit)
	h.logger.Debug("Served leaderboard", zap.String("board", board), zap.Int("entries", len(entries)))
	return c.Status(fiber.StatusOK).JSON(entries)
}
