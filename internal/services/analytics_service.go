package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"adpulse/internal/analytics"
	"adpulse/internal/infrastructure"
	"adpulse/internal/store"
	"adpulse/pkg/contracts/domain"
)

// AnalyticsService answers aggregation queries over a user's stored
// records. Each query loads the record set (optionally narrowed to one
// dataset), applies the caller's filters and delegates to the pure
// aggregation engine.
type AnalyticsService struct {
	store   *store.Store
	engine  *analytics.Engine
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(st *store.Store, engine *analytics.Engine, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		store:   st,
		engine:  engine,
		logger:  logger.With(slog.String("component", "analytics_service")),
		metrics: metrics,
	}
}

// load fetches the record set for one query. An empty datasetID spans
// all of the user's datasets.
func (s *AnalyticsService) load(ctx context.Context, userID, datasetID string) ([]domain.TransactionRecord, error) {
	records, err := s.store.ListRows(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// observe records query metrics and a debug log line for one query.
func (s *AnalyticsService) observe(ctx context.Context, kind string, start time.Time, rows int) {
	elapsed := time.Since(start)
	infrastructure.RecordAnalyticsQuery(ctx, s.metrics, kind, elapsed)
	s.logger.DebugContext(ctx, "analytics query served",
		slog.String("kind", kind),
		slog.Int("rows", rows),
		slog.Duration("elapsed", elapsed))
}

// KPIs returns the headline indicators over the filtered record set.
func (s *AnalyticsService) KPIs(ctx context.Context, userID, datasetID string, f domain.Filters) (analytics.GlobalKPIs, error) {
	start := time.Now()
	records, err := s.load(ctx, userID, datasetID)
	if err != nil {
		return analytics.GlobalKPIs{}, err
	}
	defer s.observe(ctx, "kpis", start, len(records))

	return s.engine.GlobalKPIs(records, f), nil
}

// Series returns time-bucketed sums at the requested granularity.
func (s *AnalyticsService) Series(ctx context.Context, userID, datasetID string, f domain.Filters, period domain.Period) (analytics.TimeSeries, error) {
	if !period.Valid() {
		return analytics.TimeSeries{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	start := time.Now()
	records, err := s.load(ctx, userID, datasetID)
	if err != nil {
		return analytics.TimeSeries{}, err
	}
	defer s.observe(ctx, "timeseries", start, len(records))

	return s.engine.Series(records, f, period), nil
}

// Breakdown groups the filtered records by a dimension and reports each
// group's share of the chosen metric.
func (s *AnalyticsService) Breakdown(ctx context.Context, userID, datasetID string, f domain.Filters, dimension domain.Dimension, metric domain.Metric) (analytics.Breakdown, error) {
	if !dimension.Valid() {
		return analytics.Breakdown{}, fmt.Errorf("%w: %q", ErrInvalidDimension, dimension)
	}
	if !metric.Valid() {
		return analytics.Breakdown{}, fmt.Errorf("%w: %q", ErrInvalidMetric, metric)
	}

	start := time.Now()
	records, err := s.load(ctx, userID, datasetID)
	if err != nil {
		return analytics.Breakdown{}, err
	}
	defer s.observe(ctx, "breakdown", start, len(records))

	return s.engine.Breakdown(records, f, dimension, metric), nil
}

// Ranking returns a top-N list for one of the canonical ranking types.
func (s *AnalyticsService) Ranking(ctx context.Context, userID, datasetID string, f domain.Filters, rankingType string, limit int) (analytics.Ranking, error) {
	switch rankingType {
	case analytics.RankingProductsBySales, analytics.RankingProductsByCommission, analytics.RankingPlatforms:
	default:
		return analytics.Ranking{}, fmt.Errorf("%w: %q", ErrInvalidRanking, rankingType)
	}

	start := time.Now()
	records, err := s.load(ctx, userID, datasetID)
	if err != nil {
		return analytics.Ranking{}, err
	}
	defer s.observe(ctx, "ranking", start, len(records))

	return s.engine.Ranking(records, f, rankingType, limit), nil
}

// Growth returns period-over-period revenue growth.
func (s *AnalyticsService) Growth(ctx context.Context, userID, datasetID string, f domain.Filters, period domain.Period) ([]analytics.GrowthPoint, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	start := time.Now()
	records, err := s.load(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, "growth", start, len(records))

	return s.engine.Growth(records, f, period), nil
}

// Dashboard returns the basic dashboard payload: KPIs plus daily and
// per-product rollups.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID, datasetID string, f domain.Filters) (*analytics.Dashboard, error) {
	start := time.Now()
	records, err := s.load(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, "dashboard", start, len(records))

	return s.engine.Dashboard(records, f), nil
}

// Full returns the composite analytics payload with the canonical
// rankings and breakdowns.
func (s *AnalyticsService) Full(ctx context.Context, userID, datasetID string, f domain.Filters, period domain.Period, limit int) (*analytics.FullDashboard, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}

	start := time.Now()
	records, err := s.load(ctx, userID, datasetID)
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, "full_dashboard", start, len(records))

	return s.engine.Full(records, f, period, limit), nil
}
