package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/issue-workflow/internal/api/http/handlers"
	"github.com/spec-kit/issue-workflow/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Users.Login)

	users := app.Group("/users", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	users.Post("", cfg.Users.Register)

	issues := app.Group("/issues", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	issues.Post("", cfg.Issues.Create)
	issues.Post("/:id/clone", cfg.Issues.Clone)
	issues.Get("/:id", cfg.Issues.Get)
	issues.Get("/:id/values", cfg.Issues.Values)
	issues.Get("/:id/events", cfg.Issues.Events)
	issues.Get("/:id/fields/:fieldID/history", cfg.Issues.History)
	issues.Post("/:id/state", cfg.Issues.ChangeState)
	issues.Patch("/:id", cfg.Issues.Update)
	issues.Post("/:id/reassign", cfg.Issues.Reassign)
	issues.Post("/:id/suspend", cfg.Issues.Suspend)
	issues.Post("/:id/resume", cfg.Issues.Resume)
	issues.Delete("/:id", cfg.Issues.Delete)
}
