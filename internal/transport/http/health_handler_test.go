package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"adpulse/internal/services"
)

// mockHealthService implements HealthServiceInterface
type mockHealthService struct {
	status   *services.HealthStatus
	readyErr error
}

func (m *mockHealthService) Check(ctx context.Context) *services.HealthStatus {
	return m.status
}

func (m *mockHealthService) Ready(ctx context.Context) error {
	return m.readyErr
}

func newHealthRouter(svc HealthServiceInterface) chi.Router {
	h := NewHealthHandler(svc, testLogger())
	r := chi.NewRouter()
	r.Mount("/api/health", h.Routes())
	r.Get("/api/version", h.Version)
	return r
}

func TestHealthHandler_Healthy(t *testing.T) {
	svc := &mockHealthService{
		status: &services.HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Version:   "1.0.0",
		},
	}

	rec := httptest.NewRecorder()
	newHealthRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestHealthHandler_Degraded(t *testing.T) {
	svc := &mockHealthService{
		status: &services.HealthStatus{Status: "degraded"},
	}

	rec := httptest.NewRecorder()
	newHealthRouter(svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthHandler_Readiness(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealthRouter(&mockHealthService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	newHealthRouter(&mockHealthService{readyErr: errors.New("database is down")}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database is down")
}

func TestHealthHandler_Liveness(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealthRouter(&mockHealthService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"alive"`)
}

func TestHealthHandler_Version(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealthRouter(&mockHealthService{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"AdPulse"`)
}
