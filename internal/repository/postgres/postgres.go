package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/transpopilot/backend/internal/domain"
)

// PostgresRepository implements domain.FleetRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ListActiveDrivers returns drivers with status 'active', ordered by name
func (r *PostgresRepository) ListActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), status
		FROM drivers
		WHERE status = 'active'
		ORDER BY name
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query drivers: %w", err)
	}
	defer rows.Close()

	var results []domain.Driver
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Status); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan driver row: %w", err)
		}
		results = append(results, d)
	}

	return results, rows.Err()
}

// GetDriver returns a single driver or domain.ErrNotFound
func (r *PostgresRepository) GetDriver(ctx context.Context, driverID string) (domain.Driver, error) {
	query := `
		SELECT id, name, COALESCE(email, ''), status
		FROM drivers
		WHERE id = $1
	`

	var d domain.Driver
	err := r.pool.QueryRow(ctx, query, driverID).Scan(&d.ID, &d.Name, &d.Email, &d.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Driver{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Driver{}, fmt.Errorf("postgres: failed to get driver %s: %w", driverID, err)
	}

	return d, nil
}

// GetBehaviorRecords retrieves behavior records for a driver, most recent first
func (r *PostgresRepository) GetBehaviorRecords(ctx context.Context, driverID string, q domain.RecordQuery) ([]domain.BehaviorRecord, error) {
	query, args := windowQuery(`
		SELECT id, driver_id, harsh_acceleration, harsh_braking, speed_violations,
			   idle_time, total_miles, total_hours, recorded_at
		FROM driver_behavior_events
		WHERE driver_id = $1`, "recorded_at", q, driverID)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query behavior records: %w", err)
	}
	defer rows.Close()

	var results []domain.BehaviorRecord
	for rows.Next() {
		var b domain.BehaviorRecord
		err := rows.Scan(
			&b.ID, &b.DriverID, &b.HarshAcceleration, &b.HarshBraking, &b.SpeedViolations,
			&b.IdleMinutes, &b.Miles, &b.DriveHours, &b.RecordedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan behavior row: %w", err)
		}
		results = append(results, b)
	}

	return results, rows.Err()
}

// GetIncidents retrieves safety incidents for a driver, most recent first
func (r *PostgresRepository) GetIncidents(ctx context.Context, driverID string, q domain.RecordQuery) ([]domain.Incident, error) {
	query, args := windowQuery(`
		SELECT id, driver_id, COALESCE(vehicle_id, ''), incident_type, severity, occurred_at
		FROM incidents
		WHERE driver_id = $1`, "occurred_at", q, driverID)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query incidents: %w", err)
	}
	defer rows.Close()

	var results []domain.Incident
	for rows.Next() {
		var i domain.Incident
		if err := rows.Scan(&i.ID, &i.DriverID, &i.VehicleID, &i.Type, &i.Severity, &i.OccurredAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan incident row: %w", err)
		}
		results = append(results, i)
	}

	return results, rows.Err()
}

// GetFuelRecords retrieves fuel transactions in [Since, Until), most recent first
func (r *PostgresRepository) GetFuelRecords(ctx context.Context, q domain.FuelQuery) ([]domain.FuelRecord, error) {
	var (
		conds []string
		args  []any
	)
	if q.VehicleID != "" {
		args = append(args, q.VehicleID)
		conds = append(conds, fmt.Sprintf("vehicle_id = $%d", len(args)))
	}
	if !q.Since.IsZero() {
		args = append(args, q.Since)
		conds = append(conds, fmt.Sprintf("transaction_date >= $%d", len(args)))
	}
	if !q.Until.IsZero() {
		args = append(args, q.Until)
		conds = append(conds, fmt.Sprintf("transaction_date < $%d", len(args)))
	}

	query := `
		SELECT id, vehicle_id, driver_id, gallons, cost_per_gallon, total_cost,
			   odometer, mpg, transaction_date
		FROM fuel_transactions`
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY transaction_date DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query fuel transactions: %w", err)
	}
	defer rows.Close()

	var results []domain.FuelRecord
	for rows.Next() {
		var f domain.FuelRecord
		err := rows.Scan(
			&f.ID, &f.VehicleID, &f.DriverID, &f.Gallons, &f.CostPerGallon, &f.TotalCost,
			&f.Odometer, &f.MPG, &f.TransactionDate,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan fuel row: %w", err)
		}
		results = append(results, f)
	}

	return results, rows.Err()
}

var apiLogColumns = []string{
	"id",
	"method",
	"endpoint",
	"status_code",
	"duration_ms",
	"error",
	"created_at",
}

// SaveAPILogs bulk-inserts backend call timings with COPY
func (r *PostgresRepository) SaveAPILogs(ctx context.Context, logs []domain.APICallLog) error {
	if len(logs) == 0 {
		return nil
	}

	rows := make([][]any, len(logs))
	for i, l := range logs {
		rows[i] = []any{l.ID, l.Method, l.Endpoint, l.StatusCode, l.DurationMs, l.Error, l.Timestamp}
	}

	_, err := r.pool.CopyFrom(ctx, pgx.Identifier{"api_performance_logs"}, apiLogColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("postgres: failed to save %d api logs: %w", len(logs), err)
	}

	return nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}

// windowQuery appends the date range, ordering and row limit of q to a base query
// whose only placeholder is $1 = id.
func windowQuery(base, column string, q domain.RecordQuery, id string) (string, []any) {
	args := []any{id}
	var sb strings.Builder
	sb.WriteString(base)

	if !q.Since.IsZero() {
		args = append(args, q.Since)
		fmt.Fprintf(&sb, "\n\t\t  AND %s >= $%d", column, len(args))
	}
	if !q.Until.IsZero() {
		args = append(args, q.Until)
		fmt.Fprintf(&sb, "\n\t\t  AND %s < $%d", column, len(args))
	}
	fmt.Fprintf(&sb, "\n\t\tORDER BY %s DESC", column)
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, "\n\t\tLIMIT $%d", len(args))
	}

	return sb.String(), args
}
