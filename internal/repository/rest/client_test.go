package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transpopilot/backend/internal/domain"
)

const testBase = "https://fleet.example.com"

func newTestClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	mock := httpmock.NewMockTransport()
	return NewClient(testBase, "service-key", 5*time.Second, mock), mock
}

func TestClient_ListActiveDrivers(t *testing.T) {
	client, mock := newTestClient(t)
	mock.RegisterResponder(http.MethodGet, testBase+"/rest/v1/drivers",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "service-key", req.Header.Get("apikey"))
			assert.Equal(t, "Bearer service-key", req.Header.Get("Authorization"))
			assert.Equal(t, "eq.active", req.URL.Query().Get("status"))
			assert.Equal(t, "name.asc", req.URL.Query().Get("order"))
			return httpmock.NewStringResponse(200,
				`[{"id":"d1","name":"Alex","email":null,"status":"active"},{"id":"d2","name":"Jo","email":"jo@example.com","status":"active"}]`), nil
		})

	drivers, err := client.ListActiveDrivers(context.Background())
	require.NoError(t, err)

	require.Len(t, drivers, 2)
	assert.Equal(t, "", drivers[0].Email)
	assert.Equal(t, "jo@example.com", drivers[1].Email)
}

func TestClient_GetDriverNotFound(t *testing.T) {
	client, mock := newTestClient(t)
	mock.RegisterResponder(http.MethodGet, testBase+"/rest/v1/drivers",
		httpmock.NewStringResponder(200, `[]`))

	_, err := client.GetDriver(context.Background(), "ghost")

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestClient_GetBehaviorRecords(t *testing.T) {
	client, mock := newTestClient(t)
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.RegisterResponder(http.MethodGet, testBase+"/rest/v1/driver_behavior_events",
		func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			assert.Equal(t, "eq.d1", q.Get("driver_id"))
			assert.Equal(t, []string{"gte.2024-06-01T00:00:00Z"}, q["recorded_at"])
			assert.Equal(t, "recorded_at.desc", q.Get("order"))
			assert.Equal(t, "10", q.Get("limit"))
			return httpmock.NewStringResponse(200, `[
				{"id":"b1","driver_id":"d1","harsh_acceleration":2,"harsh_braking":null,"speed_violations":1,
				 "idle_time":12.5,"total_miles":180,"total_hours":8,"recorded_at":"2024-06-30T00:00:00+00:00"}
			]`), nil
		})

	records, err := client.GetBehaviorRecords(context.Background(), "d1", domain.RecordQuery{Since: since, Limit: 10})
	require.NoError(t, err)

	require.Len(t, records, 1)
	r := records[0]
	require.NotNil(t, r.HarshAcceleration)
	assert.Equal(t, 2, *r.HarshAcceleration)
	assert.Nil(t, r.HarshBraking)
	assert.InDelta(t, 12.5, *r.IdleMinutes, 1e-9)
	assert.True(t, r.RecordedAt.Equal(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))
}

func TestClient_GetIncidentsRange(t *testing.T) {
	client, mock := newTestClient(t)
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 0, 30)
	mock.RegisterResponder(http.MethodGet, testBase+"/rest/v1/incidents",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, []string{"gte.2024-06-01T00:00:00Z", "lt.2024-07-01T00:00:00Z"}, req.URL.Query()["occurred_at"])
			assert.Empty(t, req.URL.Query().Get("limit"))
			return httpmock.NewStringResponse(200,
				`[{"id":"i1","driver_id":"d1","vehicle_id":"v1","incident_type":"collision","severity":"high","occurred_at":"2024-06-10T10:00:00Z"}]`), nil
		})

	incidents, err := client.GetIncidents(context.Background(), "d1", domain.RecordQuery{Since: since, Until: until})
	require.NoError(t, err)

	require.Len(t, incidents, 1)
	assert.Equal(t, "collision", incidents[0].Type)
}

func TestClient_GetFuelRecordsVehicleFilter(t *testing.T) {
	client, mock := newTestClient(t)
	mock.RegisterResponder(http.MethodGet, testBase+"/rest/v1/fuel_transactions",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "eq.v7", req.URL.Query().Get("vehicle_id"))
			return httpmock.NewStringResponse(200,
				`[{"id":"f1","vehicle_id":"v7","driver_id":null,"gallons":40,"cost_per_gallon":3.9,"total_cost":156,"odometer":null,"mpg":7.5,"transaction_date":"2024-06-15T00:00:00Z"}]`), nil
		})

	records, err := client.GetFuelRecords(context.Background(), domain.FuelQuery{VehicleID: "v7"})
	require.NoError(t, err)

	require.Len(t, records, 1)
	assert.Nil(t, records[0].DriverID)
	assert.InDelta(t, 7.5, *records[0].MPG, 1e-9)
}

func TestClient_StatusError(t *testing.T) {
	client, mock := newTestClient(t)
	mock.RegisterResponder(http.MethodGet, testBase+"/rest/v1/incidents",
		httpmock.NewStringResponder(401, `{"message":"Invalid API key"}`))

	_, err := client.GetIncidents(context.Background(), "d1", domain.RecordQuery{})

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, 401, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "Invalid API key")
}

func TestClient_SaveAPILogs(t *testing.T) {
	client, mock := newTestClient(t)
	var rows []map[string]any
	mock.RegisterResponder(http.MethodPost, testBase+"/rest/v1/api_performance_logs",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "return=minimal", req.Header.Get("Prefer"))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &rows))
			return httpmock.NewStringResponse(201, ``), nil
		})

	at := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	err := client.SaveAPILogs(context.Background(), []domain.APICallLog{
		{ID: "a", Method: "GET", Endpoint: "/rest/v1/drivers", StatusCode: 200, DurationMs: 12.5, Timestamp: at},
		{ID: "b", Method: "GET", Endpoint: "/rest/v1/incidents", Error: "timeout", Timestamp: at},
	})
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Nil(t, rows[0]["error"])
	assert.Equal(t, "timeout", rows[1]["error"])
	assert.Equal(t, "2024-07-01T00:00:00Z", rows[0]["created_at"])
}

func TestClient_SaveAPILogsEmpty(t *testing.T) {
	client, mock := newTestClient(t)

	require.NoError(t, client.SaveAPILogs(context.Background(), nil))
	assert.Zero(t, mock.GetTotalCallCount())
}

func TestClient_Health(t *testing.T) {
	client, mock := newTestClient(t)
	mock.RegisterResponder(http.MethodGet, testBase+"/rest/v1/drivers",
		httpmock.NewStringResponder(200, `[{"id":"d1"}]`))

	assert.NoError(t, client.Health(context.Background()))

	mock.RegisterResponder(http.MethodGet, testBase+"/rest/v1/drivers",
		httpmock.NewStringResponder(503, `unavailable`))

	assert.Error(t, client.Health(context.Background()))
}
