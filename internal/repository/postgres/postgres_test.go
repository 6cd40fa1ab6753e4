package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/transpopilot/backend/internal/domain"
)

func TestWindowQuery(t *testing.T) {
	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 0, 30)

	tests := []struct {
		name     string
		q        domain.RecordQuery
		contains []string
		args     int
	}{
		{"no bounds", domain.RecordQuery{}, []string{"ORDER BY recorded_at DESC"}, 1},
		{"limit only", domain.RecordQuery{Limit: 10}, []string{"LIMIT $2"}, 2},
		{"range", domain.RecordQuery{Since: since, Until: until}, []string{"recorded_at >= $2", "recorded_at < $3"}, 3},
		{"range and limit", domain.RecordQuery{Since: since, Until: until, Limit: 5}, []string{"recorded_at >= $2", "LIMIT $4"}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := windowQuery("SELECT 1 FROM t WHERE driver_id = $1", "recorded_at", tt.q, "d1")

			for _, fragment := range tt.contains {
				assert.Contains(t, query, fragment)
			}
			assert.Len(t, args, tt.args)
			assert.Equal(t, "d1", args[0])
			assert.NotContains(t, query, "LIMIT $0")
		})
	}
}

func TestSchemaCoversRepositoryTables(t *testing.T) {
	var all string
	for _, step := range schema {
		assert.NotEmpty(t, step.name)
		all += step.sql
	}

	for _, table := range []string{"drivers", "driver_behavior_events", "incidents", "fuel_transactions", "api_performance_logs"} {
		assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}
	for _, column := range apiLogColumns {
		assert.Contains(t, all, "\t"+column+" ")
	}
}
