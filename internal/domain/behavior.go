package domain

import "time"

// Driver is a fleet driver as stored in the drivers table
type Driver struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// BehaviorRecord is one day's or one trip's telemetry summary for a driver.
// Nil numeric fields are treated as zero by the aggregator.
type BehaviorRecord struct {
	ID                string    `json:"id"`
	DriverID          string    `json:"driver_id"`
	HarshAcceleration *int      `json:"harsh_acceleration"`
	HarshBraking      *int      `json:"harsh_braking"`
	SpeedViolations   *int      `json:"speed_violations"`
	IdleMinutes       *float64  `json:"idle_time"`
	Miles             *float64  `json:"total_miles"`
	DriveHours        *float64  `json:"total_hours"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// Incident is a safety event tied to a driver and vehicle
type Incident struct {
	ID         string    `json:"id"`
	DriverID   string    `json:"driver_id"`
	VehicleID  string    `json:"vehicle_id"`
	Type       string    `json:"incident_type"`
	Severity   string    `json:"severity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RiskLevel classifies a driver from overall score and incident count
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Trend compares recent and older event rates
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Confidence describes how much behavior data backs a summary
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// DriverBehaviorSummary is the derived, transient performance view of one driver
type DriverBehaviorSummary struct {
	DriverID             string    `json:"driver_id"`
	DriverName           string    `json:"driver_name"`
	Email                string    `json:"email"`
	BehaviorScore        int       `json:"behavior_score"`
	SafetyRating         int       `json:"safety_rating"`
	FuelEfficiencyRating int       `json:"fuel_efficiency_rating"`
	AccelerationScore    int       `json:"acceleration_score"`
	BrakingScore         int       `json:"braking_score"`
	SpeedCompliance      int       `json:"speed_compliance"`
	IdleTimeScore        int       `json:"idle_time_score"`
	TotalMiles           float64   `json:"total_miles"`
	IncidentsCount       int       `json:"incidents_count"`
	RiskLevel            RiskLevel `json:"risk_level"`
	Recommendations      []string  `json:"recommendations"`
	ImprovementTrend     Trend     `json:"improvement_trend"`

	SampleSize       int        `json:"sample_size"`
	Confidence       Confidence `json:"confidence"`
	InsufficientData bool       `json:"insufficient_data"`
	WindowDays       int        `json:"window_days"`
	ComputedAt       time.Time  `json:"computed_at"`
}

// FleetBehaviorOverview rolls driver summaries up to fleet level
type FleetBehaviorOverview struct {
	DriverCount       int                     `json:"driver_count"`
	AverageScore      float64                 `json:"average_score"`
	AverageSafety     float64                 `json:"average_safety"`
	TotalMiles        float64                 `json:"total_miles"`
	TotalIncidents    int                     `json:"total_incidents"`
	RiskDistribution  map[RiskLevel]int       `json:"risk_distribution"`
	TrendDistribution map[Trend]int           `json:"trend_distribution"`
	TopPerformers     []DriverBehaviorSummary `json:"top_performers"`
	NeedsAttention    []DriverBehaviorSummary `json:"needs_attention"`
	ComputedAt        time.Time               `json:"computed_at"`
}
