package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/somos-tech/profile-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Roles    *handlers.RolesHandler
	Profiles *handlers.ProfileHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	// The role check accepts GET for browser callers and POST for
	// server-to-server callers that supply the principal in the body.
	api.Get("/auth/roles", cfg.Roles.GetRoles)
	api.Post("/auth/roles", cfg.Roles.GetRoles)

	users := api.Group("/users")
	users.Get("/:id/profile", cfg.Profiles.Get)
	users.Put("/:id/profile", cfg.Profiles.Update)
}
