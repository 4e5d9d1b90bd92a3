package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/config"
	"adpulse/internal/ingest"
	"adpulse/internal/store"
)

const sampleCSV = "date,product,revenue,cost,commission\n" +
	"2024-01-01,Widget Pro,100,20,5\n" +
	"2024-02-02,Gadget,50,10,2\n"

func testServiceLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), testServiceLogger())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newDatasetService(t *testing.T, st *store.Store) *DatasetService {
	t.Helper()
	cfg := config.Default()
	return NewDatasetService(st, ingest.NewService(testServiceLogger()), cfg, testServiceLogger(), nil)
}

func TestDatasetService_Upload(t *testing.T) {
	st := newTestStore(t)
	svc := newDatasetService(t, st)
	ctx := context.Background()

	result, err := svc.Upload(ctx, "user-1", "sales.csv", []byte(sampleCSV))
	require.NoError(t, err)

	assert.NotEmpty(t, result.Dataset.ID)
	assert.Equal(t, "user-1", result.Dataset.UserID)
	assert.Equal(t, "sales.csv", result.Dataset.Filename)
	assert.Equal(t, 2, result.Dataset.RowCount)
	assert.Equal(t, 2, result.RowsAccepted)
	assert.Zero(t, result.RowsDropped)
	assert.Empty(t, result.Warnings)

	datasets, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, result.Dataset.ID, datasets[0].ID)
}

func TestDatasetService_Upload_StripsDirectoryFromFilename(t *testing.T) {
	svc := newDatasetService(t, newTestStore(t))

	result, err := svc.Upload(context.Background(), "user-1", "tmp/batch/sales.csv", []byte(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "sales.csv", result.Dataset.Filename)
}

func TestDatasetService_Upload_ReportsDroppedRows(t *testing.T) {
	svc := newDatasetService(t, newTestStore(t))

	payload := "date,product,revenue,cost,commission\n" +
		"2024-01-01,Widget,100,20,5\n" +
		"not-a-date,Widget,100,20,5\n"
	result, err := svc.Upload(context.Background(), "user-1", "sales.csv", []byte(payload))
	require.NoError(t, err)

	assert.Equal(t, 1, result.RowsAccepted)
	assert.Equal(t, 1, result.RowsDropped)
	assert.NotEmpty(t, result.Warnings)
}

func TestDatasetService_Upload_Rejections(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("empty payload", func(t *testing.T) {
		svc := newDatasetService(t, st)
		_, err := svc.Upload(ctx, "user-1", "sales.csv", nil)
		assert.ErrorIs(t, err, ErrEmptyUpload)
	})

	t.Run("oversize payload", func(t *testing.T) {
		cfg := config.Default()
		cfg.Upload.MaxFileSize = 10
		svc := NewDatasetService(st, ingest.NewService(testServiceLogger()), cfg, testServiceLogger(), nil)
		_, err := svc.Upload(ctx, "user-1", "sales.csv", []byte(sampleCSV))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		svc := newDatasetService(t, st)
		_, err := svc.Upload(ctx, "user-1", "sales.pdf", []byte(sampleCSV))
		assert.ErrorIs(t, err, ErrUnsupportedFileType)
	})

	t.Run("missing required columns", func(t *testing.T) {
		svc := newDatasetService(t, st)
		_, err := svc.Upload(ctx, "user-1", "sales.csv", []byte("date,product\n2024-01-01,Widget\n"))

		var verr *ingest.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.NotEmpty(t, verr.Reasons)
	})
}

func TestDatasetService_GetAndOwnership(t *testing.T) {
	svc := newDatasetService(t, newTestStore(t))
	ctx := context.Background()

	result, err := svc.Upload(ctx, "user-1", "sales.csv", []byte(sampleCSV))
	require.NoError(t, err)

	ds, err := svc.Get(ctx, "user-1", result.Dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Dataset.ID, ds.ID)

	// Another user cannot see the dataset.
	_, err = svc.Get(ctx, "user-2", result.Dataset.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDatasetService_Delete(t *testing.T) {
	svc := newDatasetService(t, newTestStore(t))
	ctx := context.Background()

	result, err := svc.Upload(ctx, "user-1", "sales.csv", []byte(sampleCSV))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user-1", result.Dataset.ID))

	_, err = svc.Get(ctx, "user-1", result.Dataset.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// Deleting again reports not found.
	assert.ErrorIs(t, svc.Delete(ctx, "user-1", result.Dataset.ID), store.ErrNotFound)
}

func TestDatasetService_Refresh(t *testing.T) {
	svc := newDatasetService(t, newTestStore(t))
	ctx := context.Background()

	result, err := svc.Upload(ctx, "user-1", "sales.csv", []byte(sampleCSV))
	require.NoError(t, err)

	ds, err := svc.Refresh(ctx, "user-1", result.Dataset.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Dataset.ID, ds.ID)
	assert.Equal(t, result.Dataset.RowCount, ds.RowCount)

	_, err = svc.Refresh(ctx, "user-1", "missing-id")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
