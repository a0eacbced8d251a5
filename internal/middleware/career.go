package middleware

import (
	"errors"

	"racing-career/server/internal/services/career"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CareerKey is the key used to store the session's career record in Fiber's locals.
const CareerKey = "career"

var (
	// ErrNoCareer indicates the session's username has no stored career.
	ErrNoCareer = errors.New("career not found")
)

// CareerMiddleware requires the session's career record to exist.
// It expects AuthMiddleware to have stored the username in locals.
func CareerMiddleware(careerSvc career.Service, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, ok := GetUsername(c)
		if !ok {
			logger.Debug("missing username in career middleware")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication required",
			})
		}

		player, found := careerSvc.FindPlayer(c.Context(), username)
		if !found {
			logger.Debug("no career for session", zap.String("username", username))
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": ErrNoCareer.Error(),
			})
		}

		c.Locals(CareerKey, player)
		return c.Next()
	}
}

// GetCareer retrieves the career record loaded by CareerMiddleware.
func GetCareer(c *fiber.Ctx) (*career.PlayerProgress, bool) {
	player, ok := c.Locals(CareerKey).(*career.PlayerProgress)
	return player, ok
}
