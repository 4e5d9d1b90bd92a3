package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"adpulse/internal/store"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	store     *store.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	BuildTime string                 `json:"build_time,omitempty"`
	Uptime    string                 `json:"uptime"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service
func NewHealthService(version, buildTime string, st *store.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		store:     st,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// Check returns the liveness status with runtime details. It never
// fails; a broken dependency degrades the status instead.
func (s *HealthService) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   s.version,
		BuildTime: s.buildTime,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Runtime: map[string]interface{}{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		},
		Services: map[string]ServiceHealth{},
	}

	if err := s.checkDatabase(ctx); err != nil {
		status.Status = "degraded"
		status.Services["database"] = ServiceHealth{
			Status:  "unhealthy",
			Message: err.Error(),
		}
		s.logger.WarnContext(ctx, "database health check failed",
			slog.String("error", err.Error()))
	} else {
		status.Services["database"] = ServiceHealth{Status: "healthy"}
	}

	return status
}

// Ready reports whether the service can accept traffic. Unlike Check,
// a failed dependency is an error.
func (s *HealthService) Ready(ctx context.Context) error {
	return s.checkDatabase(ctx)
}

func (s *HealthService) checkDatabase(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.store.Ping(ctx)
}
