package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/support-kit/helpdesk-bot/internal/api/http/handlers"
	"github.com/support-kit/helpdesk-bot/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Admin          *handlers.AdminHandler
	Feedback       *handlers.FeedbackHandler
	Bans           *handlers.BansHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The public surface mirrors what the
// bot front-end needs; everything under /admin requires a bearer token
// with the admin role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.Open)
	tickets.Get("/active/:subject_id", cfg.Tickets.Active)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/reply", cfg.Tickets.Reply)
	tickets.Post("/:id/rate", cfg.Tickets.Rate)

	app.Post("/feedback", cfg.Feedback.Submit)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/tickets", cfg.Admin.ListTickets)
	admin.Post("/tickets/:id/take", cfg.Admin.Take)
	admin.Post("/tickets/:id/reply", cfg.Admin.Reply)
	admin.Post("/tickets/:id/close", cfg.Admin.Close)
	admin.Get("/stats", cfg.Admin.Stats)
	admin.Get("/jobs", cfg.Admin.Jobs)
	admin.Get("/jobs/:id", cfg.Admin.Job)
	admin.Get("/feedback", cfg.Feedback.List)
	admin.Post("/feedback/:id/thank", cfg.Feedback.Thank)
	admin.Get("/bans", cfg.Bans.List)
	admin.Post("/bans", cfg.Bans.Ban)
	admin.Delete("/bans/:subject_id", cfg.Bans.Unban)
}
