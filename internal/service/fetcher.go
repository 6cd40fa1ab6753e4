package service

import (
	"context"
	"time"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/logger"
)

// Fetcher reads raw records for the scoring pipeline.
// Store failures are logged and turned into empty results; they never reach the caller.
type Fetcher struct {
	repo    DataRepository
	timeout time.Duration
}

// NewFetcher creates a fetcher bounding every call by timeout (0 disables the bound)
func NewFetcher(repo DataRepository, timeout time.Duration) *Fetcher {
	return &Fetcher{repo: repo, timeout: timeout}
}

// Behavior returns the driver's behavior records inside the window
func (f *Fetcher) Behavior(ctx context.Context, driverID string, window domain.RecordQuery) []domain.BehaviorRecord {
	ctx, cancel := f.bound(ctx)
	defer cancel()

	records, err := f.repo.GetBehaviorRecords(ctx, driverID, window)
	if err != nil {
		logger.Warn("fetch behavior records failed", "driver_id", driverID, "error", err)
		return []domain.BehaviorRecord{}
	}
	return records
}

// RecentBehavior returns the driver's latest n behavior records
func (f *Fetcher) RecentBehavior(ctx context.Context, driverID string, n int) []domain.BehaviorRecord {
	return f.Behavior(ctx, driverID, domain.RecordQuery{Limit: n})
}

// Incidents returns the driver's incidents inside the window
func (f *Fetcher) Incidents(ctx context.Context, driverID string, window domain.RecordQuery) []domain.Incident {
	ctx, cancel := f.bound(ctx)
	defer cancel()

	incidents, err := f.repo.GetIncidents(ctx, driverID, window)
	if err != nil {
		logger.Warn("fetch incidents failed", "driver_id", driverID, "error", err)
		return []domain.Incident{}
	}
	return incidents
}

// Fuel returns fuel transactions inside the window
func (f *Fetcher) Fuel(ctx context.Context, q domain.FuelQuery) []domain.FuelRecord {
	ctx, cancel := f.bound(ctx)
	defer cancel()

	records, err := f.repo.GetFuelRecords(ctx, q)
	if err != nil {
		logger.Warn("fetch fuel records failed", "vehicle_id", q.VehicleID, "error", err)
		return []domain.FuelRecord{}
	}
	return records
}

func (f *Fetcher) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}
