package scoring

import (
	"sort"

	"github.com/transpopilot/backend/internal/domain"
)

const (
	// TrendWindow is the number of most recent records compared
	TrendWindow = 10

	trendHalf       = TrendWindow / 2
	minTrendRecords = 5
	improvingRatio  = 0.8
	decliningRatio  = 1.2
)

// ClassifyTrend compares the average event count of the 5 most recent records with
// the average of the (up to) 5 records before them.
//
// Records are re-sorted by RecordedAt descending first, so callers need not guarantee
// order. Fewer than 5 records, or no older records to compare against, is stable.
// improving: recent < 0.8 × older; declining: recent > 1.2 × older.
//
// With 6 to 9 records the older half holds fewer than 5 records, so halves are
// compared by average, not by sum.
func ClassifyTrend(records []domain.BehaviorRecord) domain.Trend {
	if len(records) < minTrendRecords {
		return domain.TrendStable
	}

	sorted := make([]domain.BehaviorRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordedAt.After(sorted[j].RecordedAt)
	})
	if len(sorted) > TrendWindow {
		sorted = sorted[:TrendWindow]
	}

	recent := sorted[:trendHalf]
	older := sorted[trendHalf:]
	if len(older) == 0 {
		return domain.TrendStable
	}

	recentAvg := averageEvents(recent)
	olderAvg := averageEvents(older)

	switch {
	case recentAvg < improvingRatio*olderAvg:
		return domain.TrendImproving
	case recentAvg > decliningRatio*olderAvg:
		return domain.TrendDeclining
	default:
		return domain.TrendStable
	}
}

func averageEvents(records []domain.BehaviorRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	total := 0
	for _, r := range records {
		total += eventCount(r)
	}
	return float64(total) / float64(len(records))
}
