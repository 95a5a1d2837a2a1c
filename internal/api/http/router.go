package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/miloszkon/supportbot/internal/api/http/handlers"
	"github.com/miloszkon/supportbot/internal/auth"
	"github.com/miloszkon/supportbot/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Ops            *handlers.OpsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(observability.MetricsHandler()))

	ops := app.Group("/ops", cfg.AuthMiddleware.Handle)
	ops.Get("/tickets", cfg.Ops.ListTickets)
	ops.Post("/tickets/:requester_id/close", auth.RequireManagement(), cfg.Ops.CloseTicket)
}
