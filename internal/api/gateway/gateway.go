package gateway

import (
	"context"
	"fmt"

	"racing-career/server/internal/middleware"
	"racing-career/server/internal/services/auth"
	authHandlers "racing-career/server/internal/services/auth/handlers"
	"racing-career/server/internal/services/career"
	careerHandlers "racing-career/server/internal/services/career/handlers"
	"racing-career/server/internal/services/leaderboard"
	lbHandlers "racing-career/server/internal/services/leaderboard/handlers"
	"racing-career/server/internal/storage"
	"racing-career/server/pkg/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// APIGateway handles the central routing and global middleware for the career server.
type APIGateway struct {
	router *fiber.App
	logger *zap.Logger
	cfg    config.Config
	slot   storage.Slot
}

// NewAPIGateway creates a new instance of APIGateway with a configured Fiber router.
// Career routes are only mounted when a save slot is supplied.
func NewAPIGateway(cfg config.Config, logger *zap.Logger, slot storage.Slot) *APIGateway {
	app := fiber.New(fiber.Config{
		AppName: "Racing Career API Gateway",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				logger.Error("gateway error", zap.Error(err))
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	gw := &APIGateway{
		router: app,
		logger: logger,
		cfg:    cfg,
		slot:   slot,
	}

	gw.applyMiddleware()
	gw.setupHealthCheck()

	if slot != nil {
		careerSvc := career.NewCareerService(cfg, logger, slot)
		authSvc := auth.NewAuthService(cfg, logger, careerSvc)
		lbSvc := leaderboard.NewLeaderboardService(cfg, logger, careerSvc)

		gw.registerRoutes(authSvc, careerSvc, lbSvc)
	}

	return gw
}

func (g *APIGateway) registerRoutes(authSvc auth.Service, careerSvc career.Service, lbSvc leaderboard.Service) {
	// Session routes
	authH := authHandlers.NewAuthHandlers(authSvc, g.cfg, g.logger)
	g.router.Post("/session", authH.StartSession)

	// Career routes
	careerH := careerHandlers.NewCareerHandlers(careerSvc, g.logger)
	careerGroup := g.MountGroup("/career",
		middleware.AuthMiddleware(authSvc, g.logger),
		middleware.CareerMiddleware(careerSvc, g.logger),
	)
	careerGroup.Get("/", careerH.GetCareer)
	careerGroup.Put("/progress", careerH.UpdateProgress)
	careerGroup.Post("/levels/:level/complete", careerH.CompleteLevel)
	careerGroup.Post("/currency", careerH.AwardCurrency)
	careerGroup.Post("/items/purchase", careerH.PurchaseItem)

	// Level routes
	levelsGroup := g.MountGroup("/levels")
	levelsGroup.Get("/", careerH.ListLevels)
	levelsGroup.Get("/:level", careerH.GetLevel)

	// Leaderboard routes
	leaderboardH := lbHandlers.NewLeaderboardHandlers(lbSvc, g.logger)
	leaderboardsGroup := g.MountGroup("/leaderboards")
	leaderboardsGroup.Get("/coins", leaderboardH.GetCoinsLeaderboard)
	leaderboardsGroup.Get("/progress", leaderboardH.GetProgressLeaderboard)
	leaderboardsGroup.Get("/daily", leaderboardH.GetDailyLeaderboard)
}

// applyMiddleware sets up global middleware for the gateway.
func (g *APIGateway) applyMiddleware() {
	g.router.Use(cors.New(cors.Config{
		AllowOrigins: g.cfg.Server.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	g.router.Use(fiberLogger.New())
	g.router.Use(recover.New())
	if g.cfg.Server.RateLimitMax > 0 {
		g.router.Use(limiter.New(limiter.Config{
			Max:        g.cfg.Server.RateLimitMax,
			Expiration: g.cfg.Server.RateLimitDuration,
		}))
	}
}

// setupHealthCheck adds a basic health check endpoint to the gateway.
func (g *APIGateway) setupHealthCheck() {
	g.router.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "ok",
		})
	})
}

// MountGroup allows services to mount their own route groups on the gateway.
func (g *APIGateway) MountGroup(prefix string, handlers ...fiber.Handler) fiber.Router {
	return g.router.Group(prefix, handlers...)
}

// Router returns the underlying Fiber app (useful for testing).
func (g *APIGateway) Router() *fiber.App {
	return g.router
}

// Start begins listening on the configured host and port.
func (g *APIGateway) Start() error {
	addr := fmt.Sprintf("%s:%d", g.cfg.Server.Host, g.cfg.Server.Port)
	g.logger.Info("Starting API Gateway", zap.String("address", addr))
	return g.router.Listen(addr)
}

// Shutdown gracefully stops the gateway.
func (g *APIGateway) Shutdown(ctx context.Context) error {
	g.logger.Info("Shutting down API Gateway...")
	return g.router.ShutdownWithContext(ctx)
}
