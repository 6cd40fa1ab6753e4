package domain

import "time"

// FuelRecord is one append-only fuel purchase transaction
type FuelRecord struct {
	ID              string    `json:"id"`
	VehicleID       string    `json:"vehicle_id"`
	DriverID        *string   `json:"driver_id"`
	Gallons         *float64  `json:"gallons"`
	CostPerGallon   *float64  `json:"cost_per_gallon"`
	TotalCost       *float64  `json:"total_cost"`
	Odometer        *float64  `json:"odometer"`
	MPG             *float64  `json:"mpg"`
	TransactionDate time.Time `json:"transaction_date"`
}

// FuelStats summarizes fuel spend and efficiency over a time window
type FuelStats struct {
	TotalCost            float64   `json:"totalCost"`
	TotalGallons         float64   `json:"totalGallons"`
	AverageMPG           float64   `json:"averageMPG"`
	AverageCostPerGallon float64   `json:"averageCostPerGallon"`
	TotalMilesDriven     float64   `json:"totalMilesDriven"`
	FuelEfficiency       float64   `json:"fuelEfficiency"`
	CO2Reduction         float64   `json:"co2Reduction"`
	CostChange           float64   `json:"costChange"`
	MPGChange            float64   `json:"mpgChange"`
	EfficiencyChange     float64   `json:"efficiencyChange"`
	TransactionCount     int       `json:"transactionCount"`
	PeriodStart          time.Time `json:"periodStart"`
	PeriodEnd            time.Time `json:"periodEnd"`
}
