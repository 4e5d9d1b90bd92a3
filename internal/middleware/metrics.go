package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"

	"adpulse/internal/infrastructure"
)

// MetricsMiddleware records OpenTelemetry metrics for HTTP requests
type MetricsMiddleware struct {
	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger
}

// NewMetricsMiddleware creates HTTP metrics instrumentation backed by
// the shared business metrics instruments.
func NewMetricsMiddleware(providers *infrastructure.OTelProviders) (*MetricsMiddleware, error) {
	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	return &MetricsMiddleware{
		metrics: metrics,
		logger:  providers.Logger,
	}, nil
}

// Metrics exposes the underlying instruments so services can record
// domain metrics (uploads, analytics queries) on the same meter.
func (m *MetricsMiddleware) Metrics() *infrastructure.BusinessMetrics {
	return m.metrics
}

// Handler returns the middleware handler function
func (m *MetricsMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()

		m.metrics.HTTPActiveRequests.Add(ctx, 1)
		defer m.metrics.HTTPActiveRequests.Add(ctx, -1)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		// Use the chi route pattern so metrics aggregate per endpoint
		// rather than per concrete URL.
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		attrs := metric.WithAttributes(
			semconv.HTTPRequestMethodKey.String(r.Method),
			semconv.HTTPRouteKey.String(route),
			attribute.Int("http.response.status_code", ww.Status()),
		)

		m.metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
		m.metrics.HTTPRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)

		if ww.Status() >= http.StatusInternalServerError {
			m.metrics.SystemErrors.Add(ctx, 1, metric.WithAttributes(
				attribute.String("source", "http"),
				semconv.HTTPRouteKey.String(route),
			))
		}
	})
}
