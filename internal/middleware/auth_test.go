package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"racing-career/server/internal/middleware"
	"racing-career/server/internal/services/auth"
	"racing-career/server/internal/services/career"
	"racing-career/server/internal/testutils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap/zaptest"
)

func setupApp(t *testing.T) (*fiber.App, auth.Service) {
	logger := zaptest.NewLogger(t)
	cfg := testutils.GetTestConfig()
	slot := testutils.SetupTestSlot(t)
	careerSvc := career.NewCareerService(cfg, logger, slot)
	authService := auth.NewAuthService(cfg, logger, careerSvc)

	testutils.CreateTestPlayer(t, slot, "Ayrton")

	app := fiber.New()
	app.Get("/test", middleware.AuthMiddleware(authService, logger), func(c *fiber.Ctx) error {
		username, ok := middleware.GetUsername(c)
		if !ok {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "username not found",
			})
		}
		if _, ok := middleware.GetClaims(c); !ok {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "claims not found",
			})
		}
		return c.JSON(fiber.Map{"username": username})
	})
	app.Get("/career",
		middleware.AuthMiddleware(authService, logger),
		middleware.CareerMiddleware(careerSvc, logger),
		func(c *fiber.Ctx) error {
			player, ok := middleware.GetCareer(c)
			if !ok {
				return c.SendStatus(fiber.StatusInternalServerError)
			}
			return c.JSON(player)
		})
	return app, authService
}

func TestAuthMiddleware(t *testing.T) {
	app, authService := setupApp(t)

	token, err := authService.GenerateToken("Ayrton")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	otherCfg := testutils.GetTestConfig()
	otherCfg.JWT.Secret = "another-secret"
	foreign, err := auth.NewAuthService(otherCfg, zaptest.NewLogger(t), nil).GenerateToken("Ayrton")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	expiredCfg := testutils.GetTestConfig()
	expiredCfg.JWT.SessionExpiration = -time.Minute
	expired, err := auth.NewAuthService(expiredCfg, zaptest.NewLogger(t), nil).GenerateToken("Ayrton")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, fiber.StatusOK},
		{"missing authorization header", "", fiber.StatusUnauthorized},
		{"malformed authorization header", "Invalid " + token, fiber.StatusUnauthorized},
		{"empty token", "Bearer ", fiber.StatusUnauthorized},
		{"invalid token", "Bearer invalid-token", fiber.StatusUnauthorized},
		{"wrong signing key", "Bearer " + foreign, fiber.StatusUnauthorized},
		{"expired token", "Bearer " + expired, fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.want {
				t.Errorf("Expected status %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestCareerMiddleware(t *testing.T) {
	app, authService := setupApp(t)

	t.Run("existing career", func(t *testing.T) {
		// Lookup is case-insensitive
		token, _ := authService.GenerateToken("ayrton")
		req := httptest.NewRequest("GET", "/career", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != fiber.StatusOK {
			t.Errorf("Expected status 200, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown career", func(t *testing.T) {
		token, _ := authService.GenerateToken("nobody")
		req := httptest.NewRequest("GET", "/career", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("Expected status 404, got %d", resp.StatusCode)
		}
	})
}
