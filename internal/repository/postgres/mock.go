package postgres

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/transpopilot/backend/internal/domain"
)

// MockRepository implements domain.FleetRepository in memory for demo mode and tests
type MockRepository struct {
	mu        sync.RWMutex
	drivers   []domain.Driver
	behavior  map[string][]domain.BehaviorRecord
	incidents map[string][]domain.Incident
	fuel      []domain.FuelRecord
	apiLogs   []domain.APICallLog
}

// NewEmptyMockRepository creates a mock repository without any records
func NewEmptyMockRepository() *MockRepository {
	return &MockRepository{
		behavior:  make(map[string][]domain.BehaviorRecord),
		incidents: make(map[string][]domain.Incident),
	}
}

// NewMockRepository creates a mock repository seeded with a small demo fleet
func NewMockRepository() *MockRepository {
	r := NewEmptyMockRepository()
	seedDemoFleet(r, time.Now().UTC().Truncate(24*time.Hour))
	return r
}

// AddDriver registers a driver
func (r *MockRepository) AddDriver(d domain.Driver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers = append(r.drivers, d)
}

// AddBehavior appends behavior records for their drivers
func (r *MockRepository) AddBehavior(records ...domain.BehaviorRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range records {
		r.behavior[b.DriverID] = append(r.behavior[b.DriverID], b)
	}
}

// AddIncidents appends incidents for their drivers
func (r *MockRepository) AddIncidents(incidents ...domain.Incident) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, i := range incidents {
		r.incidents[i.DriverID] = append(r.incidents[i.DriverID], i)
	}
}

// AddFuel appends fuel transactions
func (r *MockRepository) AddFuel(records ...domain.FuelRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fuel = append(r.fuel, records...)
}

// APILogs returns a copy of the saved API logs
func (r *MockRepository) APILogs() []domain.APICallLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.APICallLog(nil), r.apiLogs...)
}

// ListActiveDrivers returns active drivers ordered by name
func (r *MockRepository) ListActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Driver
	for _, d := range r.drivers {
		if d.Status == "active" {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetDriver returns a driver or domain.ErrNotFound
func (r *MockRepository) GetDriver(ctx context.Context, driverID string) (domain.Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, d := range r.drivers {
		if d.ID == driverID {
			return d, nil
		}
	}
	return domain.Driver{}, fmt.Errorf("mock: driver %s: %w", driverID, domain.ErrNotFound)
}

// GetBehaviorRecords returns the driver's records in the window, most recent first
func (r *MockRepository) GetBehaviorRecords(ctx context.Context, driverID string, q domain.RecordQuery) ([]domain.BehaviorRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.BehaviorRecord
	for _, b := range r.behavior[driverID] {
		if inWindow(b.RecordedAt, q.Since, q.Until) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RecordedAt.After(out[j].RecordedAt) })
	return limit(out, q.Limit), nil
}

// GetIncidents returns the driver's incidents in the window, most recent first
func (r *MockRepository) GetIncidents(ctx context.Context, driverID string, q domain.RecordQuery) ([]domain.Incident, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Incident
	for _, i := range r.incidents[driverID] {
		if inWindow(i.OccurredAt, q.Since, q.Until) {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].OccurredAt.After(out[b].OccurredAt) })
	return limit(out, q.Limit), nil
}

// GetFuelRecords returns fuel transactions in the window, most recent first
func (r *MockRepository) GetFuelRecords(ctx context.Context, q domain.FuelQuery) ([]domain.FuelRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.FuelRecord
	for _, f := range r.fuel {
		if q.VehicleID != "" && f.VehicleID != q.VehicleID {
			continue
		}
		if inWindow(f.TransactionDate, q.Since, q.Until) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TransactionDate.After(out[j].TransactionDate) })
	return out, nil
}

// SaveAPILogs keeps logs in memory
func (r *MockRepository) SaveAPILogs(ctx context.Context, logs []domain.APICallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apiLogs = append(r.apiLogs, logs...)
	return nil
}

// Health always returns nil in mock mode
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}

func inWindow(t, since, until time.Time) bool {
	if !since.IsZero() && t.Before(since) {
		return false
	}
	if !until.IsZero() && !t.Before(until) {
		return false
	}
	return true
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// seedDemoFleet fills r with 30 days of deterministic history for four drivers
func seedDemoFleet(r *MockRepository, today time.Time) {
	profiles := []struct {
		driver    domain.Driver
		events    int // harsh events per day, split across the three kinds
		idle      float64
		incidents int
	}{
		{domain.Driver{ID: "drv-001", Name: "Alex Morgan", Email: "alex.morgan@example.com", Status: "active"}, 0, 4, 0},
		{domain.Driver{ID: "drv-002", Name: "Jordan Lee", Email: "jordan.lee@example.com", Status: "active"}, 3, 18, 1},
		{domain.Driver{ID: "drv-003", Name: "Sam Rivera", Email: "sam.rivera@example.com", Status: "active"}, 7, 35, 5},
		{domain.Driver{ID: "drv-004", Name: "Casey Kim", Email: "casey.kim@example.com", Status: "inactive"}, 1, 10, 0},
	}

	for _, p := range profiles {
		r.AddDriver(p.driver)
		for day := 0; day < 30; day++ {
			// later days (older records) carry one extra event so the trend reads as improving
			extra := 0
			if day >= 5 && p.events > 0 {
				extra = 1
			}
			accel := (p.events + extra + 2) / 3
			braking := (p.events + extra + 1) / 3
			speed := (p.events + extra) / 3
			idle := p.idle
			miles := 180.0 + float64(day%4)*15
			hours := 8.0

			r.AddBehavior(domain.BehaviorRecord{
				ID:                fmt.Sprintf("%s-b%02d", p.driver.ID, day),
				DriverID:          p.driver.ID,
				HarshAcceleration: &accel,
				HarshBraking:      &braking,
				SpeedViolations:   &speed,
				IdleMinutes:       &idle,
				Miles:             &miles,
				DriveHours:        &hours,
				RecordedAt:        today.AddDate(0, 0, -day),
			})
		}
		for n := 0; n < p.incidents; n++ {
			r.AddIncidents(domain.Incident{
				ID:         fmt.Sprintf("%s-i%02d", p.driver.ID, n),
				DriverID:   p.driver.ID,
				VehicleID:  "veh-" + p.driver.ID[4:],
				Type:       "harsh_event",
				Severity:   "medium",
				OccurredAt: today.AddDate(0, 0, -3*n-1),
			})
		}
	}

	for day := 0; day < 60; day += 3 {
		for v := 1; v <= 3; v++ {
			gallons := 40.0 + float64(v*5)
			price := 3.85 + float64(day%5)*0.02
			total := gallons * price
			mpg := 6.2 + float64(v)*0.4
			if day < 30 {
				mpg += 0.3
			}
			r.AddFuel(domain.FuelRecord{
				ID:              fmt.Sprintf("fuel-%d-%02d", v, day),
				VehicleID:       fmt.Sprintf("veh-%03d", v),
				Gallons:         &gallons,
				CostPerGallon:   &price,
				TotalCost:       &total,
				MPG:             &mpg,
				TransactionDate: today.AddDate(0, 0, -day),
			})
		}
	}
}
