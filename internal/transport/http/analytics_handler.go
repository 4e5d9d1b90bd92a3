package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"adpulse/internal/analytics"
	apierrors "adpulse/internal/errors"
	"adpulse/internal/middleware"
	"adpulse/internal/services"
	"adpulse/internal/store"
	"adpulse/pkg/contracts/domain"
)

// AnalyticsServiceInterface defines the analytics operations the handler needs
type AnalyticsServiceInterface interface {
	KPIs(ctx context.Context, userID, datasetID string, f domain.Filters) (analytics.GlobalKPIs, error)
	Series(ctx context.Context, userID, datasetID string, f domain.Filters, period domain.Period) (analytics.TimeSeries, error)
	Breakdown(ctx context.Context, userID, datasetID string, f domain.Filters, dimension domain.Dimension, metric domain.Metric) (analytics.Breakdown, error)
	Ranking(ctx context.Context, userID, datasetID string, f domain.Filters, rankingType string, limit int) (analytics.Ranking, error)
	Growth(ctx context.Context, userID, datasetID string, f domain.Filters, period domain.Period) ([]analytics.GrowthPoint, error)
	Dashboard(ctx context.Context, userID, datasetID string, f domain.Filters) (*analytics.Dashboard, error)
	Full(ctx context.Context, userID, datasetID string, f domain.Filters, period domain.Period, limit int) (*analytics.FullDashboard, error)
}

// AnalyticsHandler handles analytics HTTP requests
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validation   *middleware.ValidationMiddleware
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service AnalyticsServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
		validation:   middleware.NewValidationMiddleware(logger, errorHandler),
	}
}

// analyticsQuery mirrors the query parameters shared by the analytics
// endpoints for tag-based validation.
type analyticsQuery struct {
	StartDate string `json:"start_date" validate:"omitempty,iso8601"`
	EndDate   string `json:"end_date" validate:"omitempty,iso8601"`
	MinValue  string `json:"min_value" validate:"omitempty,numeric"`
	MaxValue  string `json:"max_value" validate:"omitempty,numeric"`
	Period    string `json:"period" validate:"omitempty,period"`
	Dimension string `json:"dimension" validate:"omitempty,dimension"`
	Metric    string `json:"metric" validate:"omitempty,metric"`
	Type      string `json:"type" validate:"omitempty,oneof=products_by_sales products_by_commission platforms"`
	Limit     string `json:"limit" validate:"omitempty,number"`
}

// validateQuery runs the tag validators over the raw query parameters.
func (h *AnalyticsHandler) validateQuery(r *http.Request) error {
	q := r.URL.Query()
	return h.validation.ValidateStruct(analyticsQuery{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		MinValue:  q.Get("min_value"),
		MaxValue:  q.Get("max_value"),
		Period:    q.Get("period"),
		Dimension: q.Get("dimension"),
		Metric:    q.Get("metric"),
		Type:      q.Get("type"),
		Limit:     q.Get("limit"),
	})
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/kpis", h.KPIs)
	r.Get("/timeseries", h.Series)
	r.Get("/breakdown", h.Breakdown)
	r.Get("/ranking", h.Ranking)
	r.Get("/growth", h.Growth)
	r.Get("/dashboard", h.Dashboard)
	r.Get("/dashboard/full", h.FullDashboard)
	r.Get("/full", h.FullDashboard)

	return r
}

// parseFilters reads the shared filter query parameters. Dates use the
// YYYY-MM-DD layout; min/max bound the revenue value.
func parseFilters(r *http.Request) (domain.Filters, error) {
	q := r.URL.Query()
	var f domain.Filters

	if v := q.Get("start_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("start_date must be a YYYY-MM-DD date")
		}
		f.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return f, fmt.Errorf("end_date must be a YYYY-MM-DD date")
		}
		f.EndDate = &t
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return f, fmt.Errorf("end_date must not precede start_date")
	}

	f.Product = q.Get("product")

	if v := q.Get("min_value"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("min_value must be a number")
		}
		f.MinValue = &d
	}
	if v := q.Get("max_value"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, fmt.Errorf("max_value must be a number")
		}
		f.MaxValue = &d
	}

	return f, nil
}

// parsePeriod reads the period parameter, defaulting to monthly.
func parsePeriod(r *http.Request) domain.Period {
	if v := r.URL.Query().Get("period"); v != "" {
		return domain.Period(v)
	}
	return domain.PeriodMonthly
}

// parseLimit reads the ranking limit parameter. Zero means "use the
// default"; the engine caps the value.
func parseLimit(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer")
	}
	return n, nil
}

// query wraps the shared validate-parse-call-render flow of the GET endpoints.
func (h *AnalyticsHandler) query(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, userID, datasetID string, f domain.Filters) (interface{}, error)) {
	ctx := r.Context()

	if err := h.validateQuery(r); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	f, err := parseFilters(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filters", err.Error()))
		return
	}

	result, err := run(ctx, middleware.UserID(ctx), r.URL.Query().Get("dataset_id"), f)
	if err != nil {
		h.handleAnalyticsError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// KPIs handles GET /api/analytics/kpis
func (h *AnalyticsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, func(ctx context.Context, userID, datasetID string, f domain.Filters) (interface{}, error) {
		return h.service.KPIs(ctx, userID, datasetID, f)
	})
}

// Series handles GET /api/analytics/timeseries
func (h *AnalyticsHandler) Series(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(r)
	h.query(w, r, func(ctx context.Context, userID, datasetID string, f domain.Filters) (interface{}, error) {
		return h.service.Series(ctx, userID, datasetID, f, period)
	})
}

// Breakdown handles GET /api/analytics/breakdown
func (h *AnalyticsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	dimension := domain.Dimension(r.URL.Query().Get("dimension"))
	if dimension == "" {
		dimension = domain.DimensionProduct
	}
	metric := domain.Metric(r.URL.Query().Get("metric"))
	if metric == "" {
		metric = domain.MetricGross
	}

	h.query(w, r, func(ctx context.Context, userID, datasetID string, f domain.Filters) (interface{}, error) {
		return h.service.Breakdown(ctx, userID, datasetID, f, dimension, metric)
	})
}

// Ranking handles GET /api/analytics/ranking
func (h *AnalyticsHandler) Ranking(w http.ResponseWriter, r *http.Request) {
	rankingType := r.URL.Query().Get("type")
	if rankingType == "" {
		rankingType = analytics.RankingProductsBySales
	}

	limit, err := parseLimit(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", err.Error()))
		return
	}

	h.query(w, r, func(ctx context.Context, userID, datasetID string, f domain.Filters) (interface{}, error) {
		return h.service.Ranking(ctx, userID, datasetID, f, rankingType, limit)
	})
}

// Growth handles GET /api/analytics/growth
func (h *AnalyticsHandler) Growth(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(r)
	h.query(w, r, func(ctx context.Context, userID, datasetID string, f domain.Filters) (interface{}, error) {
		points, err := h.service.Growth(ctx, userID, datasetID, f, period)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"period": period,
			"data":   points,
		}, nil
	})
}

// Dashboard handles GET /api/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.query(w, r, func(ctx context.Context, userID, datasetID string, f domain.Filters) (interface{}, error) {
		return h.service.Dashboard(ctx, userID, datasetID, f)
	})
}

// FullDashboard handles GET /api/analytics/dashboard/full
func (h *AnalyticsHandler) FullDashboard(w http.ResponseWriter, r *http.Request) {
	period := parsePeriod(r)
	limit, err := parseLimit(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("limit", err.Error()))
		return
	}

	h.query(w, r, func(ctx context.Context, userID, datasetID string, f domain.Filters) (interface{}, error) {
		return h.service.Full(ctx, userID, datasetID, f, period, limit)
	})
}

// handleAnalyticsError maps service errors onto API errors
func (h *AnalyticsHandler) handleAnalyticsError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(r.URL.Query().Get("dataset_id")))
	case errors.Is(err, services.ErrInvalidPeriod):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("period", err.Error()))
	case errors.Is(err, services.ErrInvalidDimension):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("dimension", err.Error()))
	case errors.Is(err, services.ErrInvalidMetric):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("metric", err.Error()))
	case errors.Is(err, services.ErrInvalidRanking):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("type", err.Error()))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
