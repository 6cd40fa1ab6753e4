// Package fuelstats aggregates fuel transactions into window summaries.
package fuelstats

import (
	"math"
	"time"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/pkg/utils"
)

// BaselineEfficiency is reported when a window has no MPG data
const BaselineEfficiency = 85.0

// Period is the reduction of one window of fuel records
type Period struct {
	TotalCost            float64
	TotalGallons         float64
	AverageMPG           float64
	AverageCostPerGallon float64
	TotalMiles           float64
	Efficiency           float64
	Transactions         int
}

// Summarize reduces records into period totals.
//
// averageMPG is the mean over records with a positive MPG; total miles is
// Σ gallons × mpg; efficiency is averageMPG against targetMPG as a percentage capped at
// 100, or BaselineEfficiency when no record carries MPG. Nil fields count as zero.
func Summarize(records []domain.FuelRecord, targetMPG float64) Period {
	var (
		p        Period
		mpgSum   float64
		mpgCount int
	)

	for i := range records {
		r := &records[i]
		gallons := valueOrZero(r.Gallons)
		mpg := valueOrZero(r.MPG)

		p.TotalGallons += gallons
		p.TotalCost += totalCost(r)
		if mpg > 0 {
			mpgSum += mpg
			mpgCount++
			p.TotalMiles += gallons * mpg
		}
	}
	p.Transactions = len(records)

	if p.TotalGallons > 0 {
		p.AverageCostPerGallon = p.TotalCost / p.TotalGallons
	}

	p.Efficiency = BaselineEfficiency
	if mpgCount > 0 {
		p.AverageMPG = mpgSum / float64(mpgCount)
		if targetMPG > 0 {
			p.Efficiency = math.Min(100, p.AverageMPG/targetMPG*100)
		}
	}

	return p
}

// Compute builds FuelStats for the current window with deltas against the previous one.
// All change values are percent changes and are 0 when the previous value is 0.
func Compute(current, previous []domain.FuelRecord, targetMPG float64, start, end time.Time) domain.FuelStats {
	cur := Summarize(current, targetMPG)
	prev := Summarize(previous, targetMPG)

	return domain.FuelStats{
		TotalCost:            utils.RoundTo(cur.TotalCost, 2),
		TotalGallons:         utils.RoundTo(cur.TotalGallons, 2),
		AverageMPG:           utils.RoundTo(cur.AverageMPG, 2),
		AverageCostPerGallon: utils.RoundTo(cur.AverageCostPerGallon, 3),
		TotalMilesDriven:     utils.RoundTo(cur.TotalMiles, 1),
		FuelEfficiency:       utils.RoundTo(cur.Efficiency, 1),
		CO2Reduction:         utils.RoundTo(co2Reduction(cur.AverageMPG, targetMPG), 1),
		CostChange:           utils.RoundTo(utils.PercentChange(cur.TotalCost, prev.TotalCost), 1),
		MPGChange:            utils.RoundTo(utils.PercentChange(cur.AverageMPG, prev.AverageMPG), 1),
		EfficiencyChange:     utils.RoundTo(utils.PercentChange(cur.Efficiency, prev.Efficiency), 1),
		TransactionCount:     cur.Transactions,
		PeriodStart:          start,
		PeriodEnd:            end,
	}
}

// co2Reduction estimates the CO2 saved per mile against a fleet running at targetMPG.
// Burned fuel is proportional to emitted CO2, so the saving is 1 − target/actual.
func co2Reduction(averageMPG, targetMPG float64) float64 {
	if targetMPG <= 0 || averageMPG <= targetMPG {
		return 0
	}
	return (1 - targetMPG/averageMPG) * 100
}

// totalCost prefers the recorded total and falls back to gallons × price
func totalCost(r *domain.FuelRecord) float64 {
	if r.TotalCost != nil {
		return *r.TotalCost
	}
	return valueOrZero(r.Gallons) * valueOrZero(r.CostPerGallon)
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
