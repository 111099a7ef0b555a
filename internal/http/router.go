package http

import (
	"time"

	"github.com/bitcoin-loan/backend/internal/config"
	"github.com/bitcoin-loan/backend/internal/http/handlers"
	"github.com/bitcoin-loan/backend/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	escrowHandler *handlers.EscrowHandler,
	loanHandler *handlers.LoanHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Auth (public)
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)

	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMinute, time.Minute))

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// User
	protected.Get("/me", userHandler.GetMe)
	protected.Get("/me/btc-address", userHandler.GetBTCAddress)
	protected.Post("/me/btc-address", userHandler.LinkBTCAddress)

	// Escrows
	protected.Post("/escrows", escrowHandler.CreateEscrow)
	protected.Get("/escrows", escrowHandler.ListEscrows)
	protected.Get("/escrows/:id", escrowHandler.GetEscrow)
	protected.Post("/escrows/:id/lock", escrowHandler.LockEscrow)
	protected.Post("/escrows/:id/release", escrowHandler.ReleaseEscrow)
	protected.Post("/escrows/:id/refund", escrowHandler.RefundEscrow)
	protected.Get("/escrows/:id/events", escrowHandler.GetEscrowEvents)

	// Loans
	protected.Post("/loans", loanHandler.CreateLoan)
	protected.Get("/loans", loanHandler.ListLoans)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
