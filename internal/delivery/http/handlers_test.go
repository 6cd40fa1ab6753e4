package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/monitoring"
	"github.com/transpopilot/backend/internal/repository/postgres"
	"github.com/transpopilot/backend/internal/service"
)

type unhealthyRepo struct {
	*postgres.MockRepository
}

func (unhealthyRepo) Health(context.Context) error { return errors.New("connection refused") }

type brokenDriversRepo struct {
	*postgres.MockRepository
}

func (brokenDriversRepo) ListActiveDrivers(context.Context) ([]domain.Driver, error) {
	return nil, errors.New("connection refused")
}

func newTestApp(t *testing.T, repo service.DataRepository) *fiber.App {
	t.Helper()
	return newTestAppWithFuelDays(t, repo, 30)
}

func newTestAppWithFuelDays(t *testing.T, repo service.DataRepository, fuelDays int) *fiber.App {
	t.Helper()
	now := func() time.Time { return time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC) }
	fetcher := service.NewFetcher(repo, time.Second)
	behaviorSvc := service.NewBehaviorService(repo, fetcher, service.BehaviorOptions{Now: now})
	t.Cleanup(behaviorSvc.WaitBackground)
	fuelSvc := service.NewFuelService(fetcher, 8, now)

	metrics, err := monitoring.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(metrics.Middleware())
	SetupRoutes(app, NewHandler(behaviorSvc, fuelSvc, repo, "mock", fuelDays), metrics)
	return app
}

func seededRepo() *postgres.MockRepository {
	repo := postgres.NewEmptyMockRepository()
	repo.AddDriver(domain.Driver{ID: "d1", Name: "Alex", Email: "alex@example.com", Status: "active"})
	repo.AddDriver(domain.Driver{ID: "d2", Name: "Jordan", Status: "active"})
	three := 3
	miles := 100.0
	repo.AddBehavior(domain.BehaviorRecord{
		DriverID:          "d2",
		HarshAcceleration: &three,
		Miles:             &miles,
		RecordedAt:        time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	return repo
}

func do(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(body) > 0 && body[0] == '{' {
		require.NoError(t, json.Unmarshal(body, &decoded))
	}
	return resp.StatusCode, decoded
}

func TestHealthCheck(t *testing.T) {
	status, body := do(t, newTestApp(t, seededRepo()), "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "mock", body["data_source"])

	status, body = do(t, newTestApp(t, unhealthyRepo{seededRepo()}), "/health")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "degraded", body["status"])
}

func TestGetDriverBehaviors(t *testing.T) {
	status, body := do(t, newTestApp(t, seededRepo()), "/api/v1/drivers/behavior")

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["count"])

	data := body["data"].([]any)
	first := data[0].(map[string]any)
	second := data[1].(map[string]any)
	assert.GreaterOrEqual(t, first["behavior_score"].(float64), second["behavior_score"].(float64))
	assert.Contains(t, first, "improvement_trend")
	assert.Contains(t, first, "recommendations")
}

func TestGetDriverBehaviors_StoreDown(t *testing.T) {
	status, body := do(t, newTestApp(t, brokenDriversRepo{seededRepo()}), "/api/v1/drivers/behavior")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, true, body["error"])
}

func TestGetDriverBehavior(t *testing.T) {
	app := newTestApp(t, seededRepo())

	status, body := do(t, app, "/api/v1/drivers/d2/behavior")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.Equal(t, "d2", data["driver_id"])
	assert.Equal(t, "Jordan", data["driver_name"])
	assert.EqualValues(t, 70, data["acceleration_score"])
	assert.EqualValues(t, 1, data["sample_size"])

	status, body = do(t, app, "/api/v1/drivers/d1/behavior")
	require.Equal(t, http.StatusOK, status)
	data = body["data"].(map[string]any)
	assert.Equal(t, true, data["insufficient_data"])
	assert.Equal(t, "none", data["confidence"])

	status, body = do(t, app, "/api/v1/drivers/ghost/behavior")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, true, body["error"])
	assert.Equal(t, "Driver not found", body["message"])
}

func TestGetFleetOverview(t *testing.T) {
	status, body := do(t, newTestApp(t, seededRepo()), "/api/v1/fleet/overview")

	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["driver_count"])
	assert.Contains(t, data, "risk_distribution")
}

func TestGetFuelStats(t *testing.T) {
	app := newTestApp(t, seededRepo())

	status, body := do(t, app, "/api/v1/fuel/stats")
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 85, data["fuelEfficiency"])
	assert.EqualValues(t, 0, data["transactionCount"])

	for _, path := range []string{"/api/v1/fuel/stats?days=0", "/api/v1/fuel/stats?days=400"} {
		status, body = do(t, app, path)
		assert.Equal(t, http.StatusBadRequest, status, path)
		assert.Equal(t, true, body["error"])
	}
}

func TestGetFuelStats_DefaultWindowFromConfig(t *testing.T) {
	repo := seededRepo()
	gallons, mpg := 10.0, 8.0
	// 20 days before the fixed clock: inside a 30-day window, outside a 7-day one
	repo.AddFuel(domain.FuelRecord{
		VehicleID:       "v1",
		Gallons:         &gallons,
		MPG:             &mpg,
		TransactionDate: time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
	})

	_, body := do(t, newTestAppWithFuelDays(t, repo, 7), "/api/v1/fuel/stats")
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 0, data["transactionCount"])
	assert.Equal(t, "2024-06-24T00:00:00Z", data["periodStart"])

	_, body = do(t, newTestAppWithFuelDays(t, repo, 30), "/api/v1/fuel/stats")
	data = body["data"].(map[string]any)
	assert.EqualValues(t, 1, data["transactionCount"])

	_, body = do(t, newTestAppWithFuelDays(t, repo, 7), "/api/v1/fuel/stats?days=30")
	data = body["data"].(map[string]any)
	assert.EqualValues(t, 1, data["transactionCount"], "query overrides the configured default")
}

func TestMetricsEndpoint(t *testing.T) {
	resp, err := newTestApp(t, seededRepo()).Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
