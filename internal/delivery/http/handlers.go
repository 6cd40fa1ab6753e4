package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/logger"
	"github.com/transpopilot/backend/internal/service"
)

const (
	defaultFuelDays = 30
	maxFuelDays     = 365
	healthTimeout   = 3 * time.Second
)

// Handler contains all HTTP handlers
type Handler struct {
	behaviorSvc *service.BehaviorService
	fuelSvc     *service.FuelService
	repo        service.DataRepository
	dataSource  string
	fuelDays    int
}

// NewHandler creates a new handler. fuelDays is the fuel stats window used when the
// request does not set ?days; values outside 1..365 fall back to 30.
func NewHandler(behaviorSvc *service.BehaviorService, fuelSvc *service.FuelService, repo service.DataRepository, dataSource string, fuelDays int) *Handler {
	if fuelDays < 1 || fuelDays > maxFuelDays {
		fuelDays = defaultFuelDays
	}
	return &Handler{
		behaviorSvc: behaviorSvc,
		fuelSvc:     fuelSvc,
		repo:        repo,
		dataSource:  dataSource,
		fuelDays:    fuelDays,
	}
}

// HealthCheck returns service and store health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	status := fiber.Map{
		"status":      "ok",
		"service":     "transpopilot-backend",
		"version":     "1.0.0",
		"data_source": h.dataSource,
		"store":       "ok",
	}
	if err := h.repo.Health(ctx); err != nil {
		logger.Warn("store health check failed", "error", err)
		status["status"] = "degraded"
		status["store"] = "unreachable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(status)
	}

	return c.JSON(status)
}

// GetDriverBehaviors returns summaries for every active driver, best first
func (h *Handler) GetDriverBehaviors(c *fiber.Ctx) error {
	summaries, err := h.behaviorSvc.FleetSummaries(c.UserContext())
	if err != nil {
		logger.Error("fleet summaries failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to compute driver behavior")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summaries,
		"count":   len(summaries),
	})
}

// GetDriverBehavior returns the summary of one driver
func (h *Handler) GetDriverBehavior(c *fiber.Ctx) error {
	driverID := c.Params("id")

	summary, err := h.behaviorSvc.DriverSummary(c.UserContext(), driverID)
	if errors.Is(err, domain.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Driver not found")
	}
	if err != nil {
		logger.Error("driver summary failed", "driver_id", driverID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to compute driver behavior")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    summary,
	})
}

// GetFleetOverview returns the fleet-wide behavior rollup
func (h *Handler) GetFleetOverview(c *fiber.Ctx) error {
	overview, err := h.behaviorSvc.FleetOverview(c.UserContext())
	if err != nil {
		logger.Error("fleet overview failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to compute fleet overview")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    overview,
	})
}

// GetFuelStats returns fuel statistics for the last ?days (1..365, default from config),
// optionally for one ?vehicle_id
func (h *Handler) GetFuelStats(c *fiber.Ctx) error {
	days := c.QueryInt("days", h.fuelDays)
	if days < 1 || days > maxFuelDays {
		return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 365")
	}

	stats := h.fuelSvc.Stats(c.UserContext(), days, c.Query("vehicle_id"))

	return c.JSON(fiber.Map{
		"success": true,
		"data":    stats,
	})
}
