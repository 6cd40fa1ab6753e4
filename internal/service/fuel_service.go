package service

import (
	"context"
	"time"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/fuelstats"
)

// FuelService computes fuel statistics with period-over-period deltas
type FuelService struct {
	fetcher   *Fetcher
	targetMPG float64
	now       func() time.Time
}

// NewFuelService creates a new fuel service
func NewFuelService(fetcher *Fetcher, targetMPG float64, now func() time.Time) *FuelService {
	if now == nil {
		now = time.Now
	}
	return &FuelService{fetcher: fetcher, targetMPG: targetMPG, now: now}
}

// Stats returns fuel statistics for the last days, compared with the equal-length
// window immediately before it. An empty vehicleID covers the whole fleet.
func (s *FuelService) Stats(ctx context.Context, days int, vehicleID string) domain.FuelStats {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)
	prevStart := start.AddDate(0, 0, -days)

	var current, previous []domain.FuelRecord
	done := make(chan struct{})
	go func() {
		defer close(done)
		previous = s.fetcher.Fuel(ctx, domain.FuelQuery{VehicleID: vehicleID, Since: prevStart, Until: start})
	}()
	current = s.fetcher.Fuel(ctx, domain.FuelQuery{VehicleID: vehicleID, Since: start, Until: end})
	<-done

	return fuelstats.Compute(current, previous, s.targetMPG, start, end)
}
