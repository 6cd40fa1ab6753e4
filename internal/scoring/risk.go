package scoring

import "github.com/transpopilot/backend/internal/domain"

// Risk thresholds. High is evaluated before medium.
const (
	highRiskScore      = 65
	highRiskIncidents  = 4
	mediumRiskScore    = 80
	mediumRiskIncident = 2
)

// ClassifyRisk assigns a risk tier from the overall score and incident count
func ClassifyRisk(overall, incidents int) domain.RiskLevel {
	switch {
	case overall < highRiskScore || incidents > highRiskIncidents:
		return domain.RiskHigh
	case overall < mediumRiskScore || incidents > mediumRiskIncident:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}
