package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthService_Check(t *testing.T) {
	st := newTestStore(t)
	svc := NewHealthService("1.0.0-test", "2026-08-28", st, testServiceLogger())

	status := svc.Check(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "1.0.0-test", status.Version)
	assert.NotZero(t, status.Timestamp)
	assert.NotEmpty(t, status.Uptime)
	require.Contains(t, status.Services, "database")
	assert.Equal(t, "healthy", status.Services["database"].Status)
	assert.NotEmpty(t, status.Runtime["go_version"])
}

func TestHealthService_Ready(t *testing.T) {
	st := newTestStore(t)
	svc := NewHealthService("1.0.0-test", "", st, testServiceLogger())

	assert.NoError(t, svc.Ready(context.Background()))
}

func TestHealthService_DegradedWhenDatabaseDown(t *testing.T) {
	st := newTestStore(t)
	svc := NewHealthService("1.0.0-test", "", st, testServiceLogger())

	require.NoError(t, st.Close())

	status := svc.Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "unhealthy", status.Services["database"].Status)

	assert.Error(t, svc.Ready(context.Background()))
}
