package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "adpulse/internal/errors"
	"adpulse/internal/ingest"
	"adpulse/internal/middleware"
	"adpulse/internal/services"
	"adpulse/internal/store"
	"adpulse/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset operations the handler needs
type DatasetServiceInterface interface {
	Upload(ctx context.Context, userID, filename string, data []byte) (*services.UploadResult, error)
	List(ctx context.Context, userID string) ([]domain.Dataset, error)
	Get(ctx context.Context, userID, datasetID string) (domain.Dataset, error)
	Delete(ctx context.Context, userID, datasetID string) error
	Refresh(ctx context.Context, userID, datasetID string) (domain.Dataset, error)
}

// DatasetHandler handles dataset HTTP requests with RFC 7807 compliance
type DatasetHandler struct {
	service      DatasetServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxFileSize  int64
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetServiceInterface, maxFileSize int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
		maxFileSize:  maxFileSize,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/", h.Upload)
	r.Post("/upload", h.Upload)
	r.Get("/", h.List)

	r.Route("/{datasetID}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Post("/refresh", h.Refresh)
	})

	return r
}

// DatasetCtx validates the datasetID URL parameter
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "datasetID") == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("datasetID", "Dataset ID is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/datasets. The file arrives as the "file"
// part of a multipart form.
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A file form field is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	result, err := h.service.Upload(ctx, userID, header.Filename, data)
	if err != nil {
		h.logger.WarnContext(ctx, "upload rejected",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		h.handleUploadError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, result)
}

// handleUploadError maps service upload errors onto API errors
func (h *DatasetHandler) handleUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ingest.ValidationError
	switch {
	case errors.As(err, &verr):
		h.errorHandler.HandleError(w, r, apierrors.FileValidationError(verr.Reasons))
	case errors.Is(err, services.ErrFileTooLarge):
		h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
	case errors.Is(err, services.ErrTooManyRows):
		h.errorHandler.HandleError(w, r, apierrors.FileValidationError([]string{err.Error()}))
	case errors.Is(err, services.ErrEmptyUpload):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "Uploaded file is empty"))
	case errors.Is(err, services.ErrUnsupportedFileType):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusUnsupportedMediaType,
			"UNSUPPORTED_MEDIA_TYPE",
			"Unsupported file type",
			err.Error(),
		))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

// List handles GET /api/datasets
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	datasets, err := h.service.List(ctx, middleware.UserID(ctx))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"datasets": datasets,
		"count":    len(datasets),
	})
}

// Get handles GET /api/datasets/{datasetID}
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	datasetID := chi.URLParam(r, "datasetID")

	ds, err := h.service.Get(ctx, middleware.UserID(ctx), datasetID)
	if err != nil {
		h.handleDatasetError(w, r, datasetID, err)
		return
	}

	render.JSON(w, r, ds)
}

// Delete handles DELETE /api/datasets/{datasetID}
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	datasetID := chi.URLParam(r, "datasetID")

	if err := h.service.Delete(ctx, middleware.UserID(ctx), datasetID); err != nil {
		h.handleDatasetError(w, r, datasetID, err)
		return
	}

	render.NoContent(w, r)
}

// Refresh handles POST /api/datasets/{datasetID}/refresh
func (h *DatasetHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	datasetID := chi.URLParam(r, "datasetID")

	ds, err := h.service.Refresh(ctx, middleware.UserID(ctx), datasetID)
	if err != nil {
		h.handleDatasetError(w, r, datasetID, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"dataset": ds,
		"status":  "unchanged",
	})
}

// handleDatasetError maps lookup errors onto API errors
func (h *DatasetHandler) handleDatasetError(w http.ResponseWriter, r *http.Request, datasetID string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		h.errorHandler.HandleError(w, r, apierrors.DatasetNotFoundError(datasetID))
		return
	}
	h.errorHandler.HandleError(w, r, err)
}
