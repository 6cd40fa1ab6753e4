package service

import (
	"context"

	"github.com/transpopilot/backend/internal/domain"
)

// DataRepository is re-exported from domain for convenience
type DataRepository = domain.FleetRepository

// SummaryCache stores computed driver summaries between requests
type SummaryCache interface {
	Get(ctx context.Context, driverID string) (domain.DriverBehaviorSummary, bool)
	Set(ctx context.Context, summary domain.DriverBehaviorSummary)
}

// AlertNotifier is told about drivers classified as high risk
type AlertNotifier interface {
	NotifyHighRisk(ctx context.Context, summary domain.DriverBehaviorSummary) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (domain.DriverBehaviorSummary, bool) {
	return domain.DriverBehaviorSummary{}, false
}

func (noopCache) Set(context.Context, domain.DriverBehaviorSummary) {}

type noopNotifier struct{}

func (noopNotifier) NotifyHighRisk(context.Context, domain.DriverBehaviorSummary) error { return nil }
