// Package rest reads fleet records from the hosted backend's PostgREST endpoint.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/transpopilot/backend/internal/domain"
)

const (
	restPrefix   = "/rest/v1/"
	maxErrorBody = 512
)

// Client implements domain.FleetRepository over PostgREST
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a client for baseURL (without the /rest/v1 suffix).
// transport is usually the monitoring transport; nil uses http.DefaultTransport.
func NewClient(baseURL, apiKey string, timeout time.Duration, transport http.RoundTripper) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// ListActiveDrivers returns drivers with status active, ordered by name
func (c *Client) ListActiveDrivers(ctx context.Context) ([]domain.Driver, error) {
	q := url.Values{}
	q.Set("select", "id,name,email,status")
	q.Set("status", "eq.active")
	q.Set("order", "name.asc")

	var drivers []domain.Driver
	if err := c.get(ctx, "drivers", q, &drivers); err != nil {
		return nil, fmt.Errorf("rest: failed to list drivers: %w", err)
	}
	return drivers, nil
}

// GetDriver returns one driver or domain.ErrNotFound
func (c *Client) GetDriver(ctx context.Context, driverID string) (domain.Driver, error) {
	q := url.Values{}
	q.Set("select", "id,name,email,status")
	q.Set("id", "eq."+driverID)
	q.Set("limit", "1")

	var drivers []domain.Driver
	if err := c.get(ctx, "drivers", q, &drivers); err != nil {
		return domain.Driver{}, fmt.Errorf("rest: failed to get driver %s: %w", driverID, err)
	}
	if len(drivers) == 0 {
		return domain.Driver{}, domain.ErrNotFound
	}
	return drivers[0], nil
}

// GetBehaviorRecords returns behavior records for a driver, most recent first
func (c *Client) GetBehaviorRecords(ctx context.Context, driverID string, rq domain.RecordQuery) ([]domain.BehaviorRecord, error) {
	q := windowValues("recorded_at", rq)
	q.Set("select", "id,driver_id,harsh_acceleration,harsh_braking,speed_violations,idle_time,total_miles,total_hours,recorded_at")
	q.Set("driver_id", "eq."+driverID)

	var records []domain.BehaviorRecord
	if err := c.get(ctx, "driver_behavior_events", q, &records); err != nil {
		return nil, fmt.Errorf("rest: failed to get behavior records: %w", err)
	}
	return records, nil
}

// GetIncidents returns incidents for a driver, most recent first
func (c *Client) GetIncidents(ctx context.Context, driverID string, rq domain.RecordQuery) ([]domain.Incident, error) {
	q := windowValues("occurred_at", rq)
	q.Set("select", "id,driver_id,vehicle_id,incident_type,severity,occurred_at")
	q.Set("driver_id", "eq."+driverID)

	var incidents []domain.Incident
	if err := c.get(ctx, "incidents", q, &incidents); err != nil {
		return nil, fmt.Errorf("rest: failed to get incidents: %w", err)
	}
	return incidents, nil
}

// GetFuelRecords returns fuel transactions in [Since, Until), most recent first
func (c *Client) GetFuelRecords(ctx context.Context, fq domain.FuelQuery) ([]domain.FuelRecord, error) {
	q := windowValues("transaction_date", domain.RecordQuery{Since: fq.Since, Until: fq.Until})
	q.Set("select", "id,vehicle_id,driver_id,gallons,cost_per_gallon,total_cost,odometer,mpg,transaction_date")
	if fq.VehicleID != "" {
		q.Set("vehicle_id", "eq."+fq.VehicleID)
	}

	var records []domain.FuelRecord
	if err := c.get(ctx, "fuel_transactions", q, &records); err != nil {
		return nil, fmt.Errorf("rest: failed to get fuel records: %w", err)
	}
	return records, nil
}

type apiLogRow struct {
	ID         string    `json:"id"`
	Method     string    `json:"method"`
	Endpoint   string    `json:"endpoint"`
	StatusCode int       `json:"status_code"`
	DurationMs float64   `json:"duration_ms"`
	Error      *string   `json:"error"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveAPILogs inserts backend call timings into api_performance_logs
func (c *Client) SaveAPILogs(ctx context.Context, logs []domain.APICallLog) error {
	if len(logs) == 0 {
		return nil
	}

	rows := make([]apiLogRow, len(logs))
	for i, l := range logs {
		rows[i] = apiLogRow{
			ID:         l.ID,
			Method:     l.Method,
			Endpoint:   l.Endpoint,
			StatusCode: l.StatusCode,
			DurationMs: l.DurationMs,
			CreatedAt:  l.Timestamp,
		}
		if l.Error != "" {
			msg := l.Error
			rows[i].Error = &msg
		}
	}

	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("rest: failed to marshal api logs: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "api_performance_logs", nil, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("rest: failed to save %d api logs: %w", len(logs), err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("rest: failed to save %d api logs: %w", len(logs), err)
	}
	return nil
}

// Health verifies the endpoint accepts the service credentials
func (c *Client) Health(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")

	var rows []json.RawMessage
	if err := c.get(ctx, "drivers", q, &rows); err != nil {
		return fmt.Errorf("rest: health check failed: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, table string, q url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, q, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", table, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, table string, q url.Values, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL + restPrefix + table
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("rest: failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
}

// windowValues builds PostgREST range, ordering and limit parameters for column
func windowValues(column string, rq domain.RecordQuery) url.Values {
	q := url.Values{}
	if !rq.Since.IsZero() {
		q.Add(column, "gte."+rq.Since.UTC().Format(time.RFC3339))
	}
	if !rq.Until.IsZero() {
		q.Add(column, "lt."+rq.Until.UTC().Format(time.RFC3339))
	}
	q.Set("order", column+".desc")
	if rq.Limit > 0 {
		q.Set("limit", strconv.Itoa(rq.Limit))
	}
	return q
}
