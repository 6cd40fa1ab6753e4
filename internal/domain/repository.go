package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// RecordQuery selects a lookback window: a row count, a date range, or both.
// Zero values mean "no bound".
type RecordQuery struct {
	Limit int
	Since time.Time
	Until time.Time
}

// FuelQuery selects fuel transactions in [Since, Until), optionally for one vehicle
type FuelQuery struct {
	VehicleID string
	Since     time.Time
	Until     time.Time
}

// FleetRepository defines read access to fleet records plus the API log sink.
// Record lists are returned most-recent-first.
type FleetRepository interface {
	// ListActiveDrivers returns drivers whose status is active
	ListActiveDrivers(ctx context.Context) ([]Driver, error)

	// GetDriver returns one driver or ErrNotFound
	GetDriver(ctx context.Context, driverID string) (Driver, error)

	// GetBehaviorRecords returns behavior records for a driver
	GetBehaviorRecords(ctx context.Context, driverID string, q RecordQuery) ([]BehaviorRecord, error)

	// GetIncidents returns safety incidents for a driver
	GetIncidents(ctx context.Context, driverID string, q RecordQuery) ([]Incident, error)

	// GetFuelRecords returns fuel transactions
	GetFuelRecords(ctx context.Context, q FuelQuery) ([]FuelRecord, error)

	// SaveAPILogs persists backend call timings
	SaveAPILogs(ctx context.Context, logs []APICallLog) error

	// Health checks store connectivity
	Health(ctx context.Context) error
}
