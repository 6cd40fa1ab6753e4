package scoring

import (
	"math"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/pkg/utils"
)

// Penalty weights per unit of normalized exposure, and the floor shared by the
// four event-based dimensions.
const (
	accelerationPenalty = 10.0
	brakingPenalty      = 10.0
	speedPenalty        = 15.0
	idlePenaltyPerHour  = 2.0
	dimensionFloor      = 40.0

	// safety is measured against one incident per this many miles
	safetyBaselineMiles = 100.0
)

// Sample-size thresholds for Confidence
const (
	lowConfidenceSamples    = 7
	mediumConfidenceSamples = 30
)

// Scores holds the bounded sub-scores and the composite for one driver
type Scores struct {
	Acceleration    int
	Braking         int
	SpeedCompliance int
	IdleTime        int
	Safety          int
	FuelEfficiency  int
	Overall         int
}

// Calculate maps window totals and an incident count into scores.
//
// acceleration = max(100 − accel / max(miles/100, 1) × 10, 40)
// braking      = max(100 − braking / max(miles/100, 1) × 10, 40)
// speed        = max(100 − violations / max(miles/100, 1) × 15, 40)
// idle         = max(100 − idleMinutes / max(hours, 1) × 2, 40)
// safety       = min(round((miles / max(incidents, 1)) / 100), 100), 100 with no incidents
// fuel         = mean(acceleration, braking, idle)
// overall      = mean(acceleration, braking, speed, idle, safety), clamped to [0, 100]
//
// Every value is rounded to the nearest integer. The exposure guards mean an entity
// with almost no activity scores close to perfect; Confidence reports how much data
// backs the numbers.
func Calculate(t Totals, incidents int) Scores {
	per100Miles := math.Max(t.Miles/100, 1)
	hours := math.Max(t.Hours, 1)

	s := Scores{
		Acceleration:    dimensionScore(float64(t.HarshAcceleration)/per100Miles, accelerationPenalty),
		Braking:         dimensionScore(float64(t.HarshBraking)/per100Miles, brakingPenalty),
		SpeedCompliance: dimensionScore(float64(t.SpeedViolations)/per100Miles, speedPenalty),
		IdleTime:        dimensionScore(t.IdleMinutes/hours, idlePenaltyPerHour),
		Safety:          safetyScore(t.Miles, incidents),
	}

	s.FuelEfficiency = roundScore(utils.Mean(
		float64(s.Acceleration),
		float64(s.Braking),
		float64(s.IdleTime),
	), 0)

	s.Overall = roundScore(utils.Mean(
		float64(s.Acceleration),
		float64(s.Braking),
		float64(s.SpeedCompliance),
		float64(s.IdleTime),
		float64(s.Safety),
	), 0)

	return s
}

func dimensionScore(rate, penalty float64) int {
	return roundScore(100-rate*penalty, dimensionFloor)
}

func safetyScore(miles float64, incidents int) int {
	if incidents <= 0 {
		return 100
	}
	milesPerIncident := miles / float64(max(incidents, 1))
	return roundScore(milesPerIncident/safetyBaselineMiles, 0)
}

func roundScore(v, floor float64) int {
	return int(math.Round(utils.Clamp(v, floor, 100)))
}

// ConfidenceFor grades how many behavior records back a summary
func ConfidenceFor(samples int) domain.Confidence {
	switch {
	case samples <= 0:
		return domain.ConfidenceNone
	case samples < lowConfidenceSamples:
		return domain.ConfidenceLow
	case samples < mediumConfidenceSamples:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceHigh
	}
}
