package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/transpopilot/backend/internal/monitoring"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler, metrics *monitoring.Metrics) {
	// Health check
	app.Get("/health", handler.HealthCheck)

	// Prometheus exposition
	if metrics != nil {
		app.Get("/metrics", metrics.Handler())
	}

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Driver behavior
		api.Get("/drivers/behavior", handler.GetDriverBehaviors)
		api.Get("/drivers/:id/behavior", handler.GetDriverBehavior)
		api.Get("/fleet/overview", handler.GetFleetOverview)

		// Fuel
		api.Get("/fuel/stats", handler.GetFuelStats)
	}
}

// ErrorHandler renders errors as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
