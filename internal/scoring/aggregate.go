// Package scoring turns driver behavior records into bounded performance scores.
//
// Every function here is pure: identical inputs always produce identical outputs, and
// empty inputs produce well-formed zero or best-case results instead of errors.
// The formulas are fixed linear penalties and a rule table, not a trained model.
package scoring

import "github.com/transpopilot/backend/internal/domain"

// Totals is the sum of every behavior record in a window
type Totals struct {
	HarshAcceleration int
	HarshBraking      int
	SpeedViolations   int
	IdleMinutes       float64
	Miles             float64
	Hours             float64

	// Samples is the number of records that were summed
	Samples int
}

// Aggregate sums each numeric field across records. Nil fields count as zero.
func Aggregate(records []domain.BehaviorRecord) Totals {
	var t Totals
	for i := range records {
		r := &records[i]
		t.HarshAcceleration += intOrZero(r.HarshAcceleration)
		t.HarshBraking += intOrZero(r.HarshBraking)
		t.SpeedViolations += intOrZero(r.SpeedViolations)
		t.IdleMinutes += floatOrZero(r.IdleMinutes)
		t.Miles += floatOrZero(r.Miles)
		t.Hours += floatOrZero(r.DriveHours)
	}
	t.Samples = len(records)
	return t
}

// eventCount is the per-record event total used by the trend engine
func eventCount(r domain.BehaviorRecord) int {
	return intOrZero(r.HarshAcceleration) + intOrZero(r.HarshBraking) + intOrZero(r.SpeedViolations)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
