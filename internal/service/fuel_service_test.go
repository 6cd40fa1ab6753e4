package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/fuelstats"
	"github.com/transpopilot/backend/internal/repository/postgres"
)

func fill(vehicleID string, daysAgo int, gallons, totalCost, mpg float64) domain.FuelRecord {
	return domain.FuelRecord{
		VehicleID:       vehicleID,
		Gallons:         floatPtr(gallons),
		TotalCost:       floatPtr(totalCost),
		MPG:             floatPtr(mpg),
		TransactionDate: fixedNow.AddDate(0, 0, -daysAgo),
	}
}

func TestFuelService_Stats(t *testing.T) {
	repo := postgres.NewEmptyMockRepository()
	repo.AddFuel(
		fill("v1", 1, 10, 40, 8),
		fill("v1", 2, 10, 40, 8),
		fill("v1", 40, 10, 40, 8),
		fill("v2", 3, 20, 70, 6),
	)
	svc := NewFuelService(NewFetcher(repo, time.Second), 8, clock)

	got := svc.Stats(context.Background(), 30, "v1")

	assert.Equal(t, 2, got.TransactionCount)
	assert.InDelta(t, 80.0, got.TotalCost, 1e-9)
	assert.InDelta(t, 20.0, got.TotalGallons, 1e-9)
	assert.InDelta(t, 8.0, got.AverageMPG, 1e-9)
	assert.InDelta(t, 4.0, got.AverageCostPerGallon, 1e-9)
	assert.InDelta(t, 160.0, got.TotalMilesDriven, 1e-9)
	assert.InDelta(t, 100.0, got.FuelEfficiency, 1e-9)
	assert.InDelta(t, 100.0, got.CostChange, 1e-9)
	assert.InDelta(t, 0.0, got.MPGChange, 1e-9)
	assert.Equal(t, fixedNow, got.PeriodEnd)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), got.PeriodStart)
}

func TestFuelService_WholeFleet(t *testing.T) {
	repo := postgres.NewEmptyMockRepository()
	repo.AddFuel(fill("v1", 1, 10, 40, 8), fill("v2", 3, 20, 70, 6))
	svc := NewFuelService(NewFetcher(repo, time.Second), 8, clock)

	got := svc.Stats(context.Background(), 30, "")

	assert.Equal(t, 2, got.TransactionCount)
	assert.InDelta(t, 7.0, got.AverageMPG, 1e-9)
	assert.Zero(t, got.CostChange, "no previous window data")
}

func TestFuelService_EmptyWindows(t *testing.T) {
	svc := NewFuelService(NewFetcher(failingRepo{postgres.NewEmptyMockRepository()}, time.Second), 8, clock)

	got := svc.Stats(context.Background(), 30, "")

	assert.Zero(t, got.TotalCost)
	assert.Zero(t, got.AverageMPG)
	assert.Equal(t, fuelstats.BaselineEfficiency, got.FuelEfficiency)
	assert.Zero(t, got.CostChange)
	assert.Zero(t, got.MPGChange)
	assert.Zero(t, got.EfficiencyChange)
	assert.Zero(t, got.TransactionCount)
}
