package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/transpopilot/backend/internal/domain"
	"github.com/transpopilot/backend/internal/logger"
	"github.com/transpopilot/backend/internal/scoring"
	"github.com/transpopilot/backend/pkg/utils"
)

const (
	topPerformerCount = 5
	alertTimeout      = 5 * time.Second
)

// BehaviorOptions tunes the behavior pipeline. Zero values fall back to defaults.
type BehaviorOptions struct {
	WindowDays    int
	TrendLookback int
	FanOutLimit   int
	Cache         SummaryCache
	Notifier      AlertNotifier
	Now           func() time.Time
}

// BehaviorService computes driver behavior summaries
type BehaviorService struct {
	repo          DataRepository
	fetcher       *Fetcher
	cache         SummaryCache
	notifier      AlertNotifier
	windowDays    int
	trendLookback int
	fanOutLimit   int
	now           func() time.Time

	wgBg sync.WaitGroup // tracks background alert publishing for graceful shutdown
}

// NewBehaviorService creates a new behavior service
func NewBehaviorService(repo DataRepository, fetcher *Fetcher, opts BehaviorOptions) *BehaviorService {
	s := &BehaviorService{
		repo:          repo,
		fetcher:       fetcher,
		cache:         opts.Cache,
		notifier:      opts.Notifier,
		windowDays:    opts.WindowDays,
		trendLookback: opts.TrendLookback,
		fanOutLimit:   opts.FanOutLimit,
		now:           opts.Now,
	}
	if s.cache == nil {
		s.cache = noopCache{}
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.windowDays <= 0 {
		s.windowDays = 30
	}
	if s.trendLookback <= 0 {
		s.trendLookback = scoring.TrendWindow
	}
	if s.fanOutLimit <= 0 {
		s.fanOutLimit = 8
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// WaitBackground blocks until all background alert goroutines complete.
// Call during graceful shutdown to avoid dropped notifications.
func (s *BehaviorService) WaitBackground() {
	s.wgBg.Wait()
}

// DriverSummary returns the summary for one driver. Unknown drivers yield domain.ErrNotFound.
func (s *BehaviorService) DriverSummary(ctx context.Context, driverID string) (domain.DriverBehaviorSummary, error) {
	driver, err := s.repo.GetDriver(ctx, driverID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DriverBehaviorSummary{}, err
	}
	if err != nil {
		return domain.DriverBehaviorSummary{}, fmt.Errorf("behavior: failed to look up driver %s: %w", driverID, err)
	}

	return s.summarize(ctx, driver), nil
}

// FleetSummaries computes summaries for every active driver concurrently.
// The result is ordered by behavior score, best first.
func (s *BehaviorService) FleetSummaries(ctx context.Context) ([]domain.DriverBehaviorSummary, error) {
	drivers, err := s.repo.ListActiveDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("behavior: failed to list active drivers: %w", err)
	}

	summaries := make([]domain.DriverBehaviorSummary, len(drivers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanOutLimit)
	for i, d := range drivers {
		g.Go(func() error {
			summaries[i] = s.summarize(gctx, d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].BehaviorScore != summaries[j].BehaviorScore {
			return summaries[i].BehaviorScore > summaries[j].BehaviorScore
		}
		return summaries[i].DriverName < summaries[j].DriverName
	})

	return summaries, nil
}

// FleetOverview rolls every active driver's summary up to fleet level
func (s *BehaviorService) FleetOverview(ctx context.Context) (domain.FleetBehaviorOverview, error) {
	summaries, err := s.FleetSummaries(ctx)
	if err != nil {
		return domain.FleetBehaviorOverview{}, err
	}
	return Overview(summaries, s.now().UTC()), nil
}

// Overview builds the fleet rollup from summaries sorted best first
func Overview(summaries []domain.DriverBehaviorSummary, at time.Time) domain.FleetBehaviorOverview {
	o := domain.FleetBehaviorOverview{
		DriverCount: len(summaries),
		RiskDistribution: map[domain.RiskLevel]int{
			domain.RiskLow:    0,
			domain.RiskMedium: 0,
			domain.RiskHigh:   0,
		},
		TrendDistribution: map[domain.Trend]int{
			domain.TrendImproving: 0,
			domain.TrendStable:    0,
			domain.TrendDeclining: 0,
		},
		TopPerformers:  []domain.DriverBehaviorSummary{},
		NeedsAttention: []domain.DriverBehaviorSummary{},
		ComputedAt:     at,
	}

	scores := make([]float64, 0, len(summaries))
	safety := make([]float64, 0, len(summaries))
	for _, sm := range summaries {
		scores = append(scores, float64(sm.BehaviorScore))
		safety = append(safety, float64(sm.SafetyRating))
		o.TotalMiles += sm.TotalMiles
		o.TotalIncidents += sm.IncidentsCount
		o.RiskDistribution[sm.RiskLevel]++
		o.TrendDistribution[sm.ImprovementTrend]++

		if !sm.InsufficientData && len(o.TopPerformers) < topPerformerCount {
			o.TopPerformers = append(o.TopPerformers, sm)
		}
		if sm.RiskLevel == domain.RiskHigh || sm.ImprovementTrend == domain.TrendDeclining {
			o.NeedsAttention = append(o.NeedsAttention, sm)
		}
	}

	// worst first
	sort.SliceStable(o.NeedsAttention, func(i, j int) bool {
		return o.NeedsAttention[i].BehaviorScore < o.NeedsAttention[j].BehaviorScore
	})

	o.AverageScore = utils.RoundTo(utils.Mean(scores...), 1)
	o.AverageSafety = utils.RoundTo(utils.Mean(safety...), 1)
	o.TotalMiles = utils.RoundTo(o.TotalMiles, 1)

	return o
}

// summarize runs fetch, aggregate, score, classify and recommend for one driver
func (s *BehaviorService) summarize(ctx context.Context, driver domain.Driver) domain.DriverBehaviorSummary {
	if cached, ok := s.cache.Get(ctx, driver.ID); ok {
		return cached
	}

	now := s.now().UTC()
	window := domain.RecordQuery{Since: now.AddDate(0, 0, -s.windowDays)}

	var (
		behavior  []domain.BehaviorRecord
		recent    []domain.BehaviorRecord
		incidents []domain.Incident
		wg        sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		behavior = s.fetcher.Behavior(ctx, driver.ID, window)
	}()
	go func() {
		defer wg.Done()
		recent = s.fetcher.RecentBehavior(ctx, driver.ID, s.trendLookback)
	}()
	go func() {
		defer wg.Done()
		incidents = s.fetcher.Incidents(ctx, driver.ID, window)
	}()
	wg.Wait()

	summary := Summarize(driver, behavior, recent, len(incidents))
	summary.WindowDays = s.windowDays
	summary.ComputedAt = now

	// a summary built without data must not outlive the outage that caused it
	if !summary.InsufficientData {
		s.cache.Set(ctx, summary)
	}
	if summary.RiskLevel == domain.RiskHigh {
		s.alert(summary)
	}

	return summary
}

// Summarize is the pure part of the pipeline: records in, summary out
func Summarize(driver domain.Driver, behavior, recent []domain.BehaviorRecord, incidents int) domain.DriverBehaviorSummary {
	totals := scoring.Aggregate(behavior)
	scores := scoring.Calculate(totals, incidents)

	return domain.DriverBehaviorSummary{
		DriverID:             driver.ID,
		DriverName:           driver.Name,
		Email:                driver.Email,
		BehaviorScore:        scores.Overall,
		SafetyRating:         scores.Safety,
		FuelEfficiencyRating: scores.FuelEfficiency,
		AccelerationScore:    scores.Acceleration,
		BrakingScore:         scores.Braking,
		SpeedCompliance:      scores.SpeedCompliance,
		IdleTimeScore:        scores.IdleTime,
		TotalMiles:           utils.RoundTo(totals.Miles, 1),
		IncidentsCount:       incidents,
		RiskLevel:            scoring.ClassifyRisk(scores.Overall, incidents),
		Recommendations:      scoring.Recommend(scores, incidents, totals.Samples),
		ImprovementTrend:     scoring.ClassifyTrend(recent),
		SampleSize:           totals.Samples,
		Confidence:           scoring.ConfidenceFor(totals.Samples),
		InsufficientData:     totals.Samples == 0,
	}
}

func (s *BehaviorService) alert(summary domain.DriverBehaviorSummary) {
	s.wgBg.Add(1)
	go func() {
		defer s.wgBg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), alertTimeout)
		defer cancel()
		if err := s.notifier.NotifyHighRisk(ctx, summary); err != nil {
			logger.Warn("high risk alert failed", "driver_id", summary.DriverID, "error", err)
		}
	}()
}
