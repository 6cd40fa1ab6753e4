package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/transpopilot/backend/internal/domain"
)

// history builds records most-recent-first with the given per-record event counts
func history(counts ...int) []domain.BehaviorRecord {
	start := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	out := make([]domain.BehaviorRecord, len(counts))
	for i, c := range counts {
		out[i] = record(c, 0, 0, 0, 100, 2, start.AddDate(0, 0, -i))
	}
	return out
}

func TestClassifyTrend_ScenarioD(t *testing.T) {
	records := history(2, 2, 2, 2, 2, 10, 10, 10, 10, 10)

	assert.Equal(t, domain.TrendImproving, ClassifyTrend(records))
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   domain.Trend
	}{
		{"no records", nil, domain.TrendStable},
		{"four records regardless of content", []int{0, 0, 0, 50}, domain.TrendStable},
		{"exactly five records has nothing older", []int{9, 9, 9, 9, 9}, domain.TrendStable},
		{"declining", []int{10, 10, 10, 10, 10, 2, 2, 2, 2, 2}, domain.TrendDeclining},
		{"within band is stable", []int{11, 11, 11, 11, 11, 10, 10, 10, 10, 10}, domain.TrendStable},
		{"partial older half", []int{1, 1, 1, 1, 1, 6, 6}, domain.TrendImproving},
		{"short older half is averaged not summed", []int{1, 1, 1, 1, 1, 2, 2}, domain.TrendImproving},
		{"only first ten records count", []int{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 100, 100}, domain.TrendStable},
		{"all zero is stable", []int{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, domain.TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyTrend(history(tt.counts...)))
		})
	}
}

func TestClassifyTrend_SortsByDate(t *testing.T) {
	records := history(2, 2, 2, 2, 2, 10, 10, 10, 10, 10)

	// Reverse into oldest-first order; the result must not change
	reversed := make([]domain.BehaviorRecord, len(records))
	for i := range records {
		reversed[len(records)-1-i] = records[i]
	}

	assert.Equal(t, domain.TrendImproving, ClassifyTrend(reversed))
	assert.Equal(t, 10, intOrZero(reversed[0].HarshAcceleration), "input slice must not be reordered")
}

func TestClassifyTrend_CountsAllEventTypes(t *testing.T) {
	start := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	var records []domain.BehaviorRecord
	for i := 0; i < 5; i++ {
		records = append(records, record(0, 0, 0, 0, 0, 0, start.AddDate(0, 0, -i)))
	}
	for i := 5; i < 10; i++ {
		records = append(records, record(1, 1, 1, 0, 0, 0, start.AddDate(0, 0, -i)))
	}

	assert.Equal(t, domain.TrendImproving, ClassifyTrend(records))
}
