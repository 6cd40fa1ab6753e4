package postgres

import (
	"context"
	"fmt"
)

// schemaStep is one idempotent DDL statement
type schemaStep struct {
	name string
	sql  string
}

var schema = []schemaStep{
	{"drivers table", `
		CREATE TABLE IF NOT EXISTS drivers (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT,
			status     TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"driver_behavior_events table", `
		CREATE TABLE IF NOT EXISTS driver_behavior_events (
			id                 TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			driver_id          TEXT NOT NULL REFERENCES drivers(id),
			harsh_acceleration INTEGER,
			harsh_braking      INTEGER,
			speed_violations   INTEGER,
			idle_time          DOUBLE PRECISION,
			total_miles        DOUBLE PRECISION,
			total_hours        DOUBLE PRECISION,
			recorded_at        TIMESTAMPTZ NOT NULL
		)`},
	{"incidents table", `
		CREATE TABLE IF NOT EXISTS incidents (
			id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			driver_id     TEXT NOT NULL REFERENCES drivers(id),
			vehicle_id    TEXT,
			incident_type TEXT NOT NULL,
			severity      TEXT NOT NULL,
			occurred_at   TIMESTAMPTZ NOT NULL
		)`},
	{"fuel_transactions table", `
		CREATE TABLE IF NOT EXISTS fuel_transactions (
			id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
			vehicle_id       TEXT NOT NULL,
			driver_id        TEXT REFERENCES drivers(id),
			gallons          DOUBLE PRECISION,
			cost_per_gallon  DOUBLE PRECISION,
			total_cost       DOUBLE PRECISION,
			odometer         DOUBLE PRECISION,
			mpg              DOUBLE PRECISION,
			transaction_date TIMESTAMPTZ NOT NULL
		)`},
	{"api_performance_logs table", `
		CREATE TABLE IF NOT EXISTS api_performance_logs (
			id          TEXT PRIMARY KEY,
			method      TEXT NOT NULL,
			endpoint    TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			duration_ms DOUBLE PRECISION NOT NULL,
			error       TEXT,
			created_at  TIMESTAMPTZ NOT NULL
		)`},
	{"behavior index", `CREATE INDEX IF NOT EXISTS idx_behavior_driver_time ON driver_behavior_events (driver_id, recorded_at DESC)`},
	{"incidents index", `CREATE INDEX IF NOT EXISTS idx_incidents_driver_time ON incidents (driver_id, occurred_at DESC)`},
	{"fuel index", `CREATE INDEX IF NOT EXISTS idx_fuel_vehicle_time ON fuel_transactions (vehicle_id, transaction_date DESC)`},
}

// Migrate creates the fleet tables and indexes if they do not exist.
// progress, when non-nil, is called with the name of each applied step.
func (r *PostgresRepository) Migrate(ctx context.Context, progress func(step string)) error {
	for _, step := range schema {
		if _, err := r.pool.Exec(ctx, step.sql); err != nil {
			return fmt.Errorf("postgres: failed to apply %s: %w", step.name, err)
		}
		if progress != nil {
			progress(step.name)
		}
	}
	return nil
}
