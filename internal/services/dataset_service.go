package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"adpulse/internal/config"
	"adpulse/internal/infrastructure"
	"adpulse/internal/ingest"
	"adpulse/internal/store"
	"adpulse/pkg/contracts/domain"
)

// allowedExtensions are the upload formats the validator can parse.
var allowedExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xlsx": true,
	".xls":  true,
	".xlsm": true,
}

// UploadResult is the outcome of a successful dataset upload.
type UploadResult struct {
	Dataset      domain.Dataset `json:"dataset"`
	RowsAccepted int            `json:"rows_accepted"`
	RowsDropped  int            `json:"rows_dropped"`
	Warnings     []string       `json:"warnings,omitempty"`
}

// DatasetService owns the dataset lifecycle: upload validation,
// persistence, listing and deletion. Every operation is scoped to the
// calling user.
type DatasetService struct {
	store     *store.Store
	validator *ingest.Service
	config    *config.Config
	logger    *slog.Logger
	metrics   *infrastructure.BusinessMetrics
}

// NewDatasetService creates a new dataset service
func NewDatasetService(st *store.Store, validator *ingest.Service, cfg *config.Config, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		store:     st,
		validator: validator,
		config:    cfg,
		logger:    logger.With(slog.String("component", "dataset_service")),
		metrics:   metrics,
	}
}

// Upload validates an uploaded file and persists it as a new dataset
// owned by userID. A structurally invalid file returns
// *ingest.ValidationError with the rejection reasons; size and format
// limits are checked before the file is parsed.
func (s *DatasetService) Upload(ctx context.Context, userID, filename string, data []byte) (*UploadResult, error) {
	start := time.Now()

	result, err := s.upload(ctx, userID, filename, data)
	success := err == nil

	accepted, dropped := 0, 0
	if result != nil {
		accepted, dropped = result.RowsAccepted, result.RowsDropped
	}
	infrastructure.RecordUploadMetrics(ctx, s.metrics, int64(len(data)), accepted, dropped, time.Since(start), success)

	return result, err
}

func (s *DatasetService) upload(ctx context.Context, userID, filename string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if max := s.config.Upload.MaxFileSize; max > 0 && int64(len(data)) > max {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, len(data), max)
	}
	if ext := strings.ToLower(filepath.Ext(filename)); !allowedExtensions[ext] {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}

	validated, err := s.validator.Validate(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	if len(validated.Records) > config.MaxUploadRowCount {
		return nil, fmt.Errorf("%w: %d rows (limit %d)", ErrTooManyRows, len(validated.Records), config.MaxUploadRowCount)
	}

	ds := domain.Dataset{
		ID:         uuid.New().String(),
		UserID:     userID,
		Filename:   filepath.Base(filename),
		UploadedAt: time.Now().UTC(),
		RowCount:   len(validated.Records),
	}

	if err := s.store.CreateDataset(ctx, ds, validated.Records); err != nil {
		return nil, fmt.Errorf("persist dataset: %w", err)
	}

	s.logger.InfoContext(ctx, "dataset uploaded",
		slog.String("dataset_id", ds.ID),
		slog.String("user_id", userID),
		slog.String("filename", ds.Filename),
		slog.Int("rows_accepted", len(validated.Records)),
		slog.Int("rows_dropped", validated.Dropped))

	return &UploadResult{
		Dataset:      ds,
		RowsAccepted: len(validated.Records),
		RowsDropped:  validated.Dropped,
		Warnings:     validated.Warnings,
	}, nil
}

// List returns the user's datasets, newest first.
func (s *DatasetService) List(ctx context.Context, userID string) ([]domain.Dataset, error) {
	return s.store.ListDatasets(ctx, userID)
}

// Get returns one dataset. A dataset owned by another user is
// indistinguishable from a missing one: both return store.ErrNotFound.
func (s *DatasetService) Get(ctx context.Context, userID, datasetID string) (domain.Dataset, error) {
	return s.store.GetDataset(ctx, userID, datasetID)
}

// Delete removes a dataset and all of its rows.
func (s *DatasetService) Delete(ctx context.Context, userID, datasetID string) error {
	if err := s.store.DeleteDataset(ctx, userID, datasetID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "dataset deleted",
		slog.String("dataset_id", datasetID),
		slog.String("user_id", userID))
	return nil
}

// Refresh re-checks a dataset against its source. Uploaded files have
// no external source, so this verifies ownership and reports the
// dataset unchanged. External-API sync lands here when a connector
// exists.
func (s *DatasetService) Refresh(ctx context.Context, userID, datasetID string) (domain.Dataset, error) {
	ds, err := s.store.GetDataset(ctx, userID, datasetID)
	if err != nil {
		return domain.Dataset{}, err
	}

	s.logger.InfoContext(ctx, "dataset refresh requested",
		slog.String("dataset_id", datasetID),
		slog.String("user_id", userID))
	return ds, nil
}
