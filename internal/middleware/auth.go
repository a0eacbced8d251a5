package middleware

import (
	"errors"
	"strings"

	"racing-career/server/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// UsernameKey is the key used to store the session username in Fiber's locals.
	UsernameKey = "username"
	// ClaimsKey is the key used to store JWT claims in Fiber's locals.
	ClaimsKey = "claims"
)

var (
	// ErrMissingToken indicates the Authorization header is missing or malformed.
	ErrMissingToken = errors.New("missing or malformed authorization header")
	// ErrInvalidToken indicates the token is invalid or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AuthMiddleware creates a middleware that validates session tokens.
func AuthMiddleware(authService auth.Service, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.Debug("missing Authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrMissingToken.Error(),
			})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			logger.Debug("malformed Authorization header", zap.String("header", authHeader))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrMissingToken.Error(),
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			logger.Debug("token validation failed", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrInvalidToken.Error(),
			})
		}

		// Store username and claims in locals for downstream handlers
		c.Locals(UsernameKey, claims.Subject)
		c.Locals(ClaimsKey, claims)

		logger.Debug("token validated", zap.String("username", claims.Subject))
		return c.Next()
	}
}

// GetUsername retrieves the session username from Fiber's locals.
func GetUsername(c *fiber.Ctx) (string, bool) {
	username, ok := c.Locals(UsernameKey).(string)
	return username, ok && username != ""
}

// GetClaims retrieves JWT claims from Fiber's locals.
func GetClaims(c *fiber.Ctx) (*jwt.RegisteredClaims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*jwt.RegisteredClaims)
	return claims, ok
}
