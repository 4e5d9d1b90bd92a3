package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "adpulse/internal/errors"
	"adpulse/internal/ingest"
	"adpulse/internal/middleware"
	"adpulse/internal/services"
	"adpulse/internal/store"
	"adpulse/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testErrorHandler() *apierrors.ErrorHandler {
	return apierrors.NewErrorHandler(testLogger(), false)
}

// mockDatasetService implements DatasetServiceInterface with function fields
type mockDatasetService struct {
	uploadFn  func(ctx context.Context, userID, filename string, data []byte) (*services.UploadResult, error)
	listFn    func(ctx context.Context, userID string) ([]domain.Dataset, error)
	getFn     func(ctx context.Context, userID, datasetID string) (domain.Dataset, error)
	deleteFn  func(ctx context.Context, userID, datasetID string) error
	refreshFn func(ctx context.Context, userID, datasetID string) (domain.Dataset, error)
}

func (m *mockDatasetService) Upload(ctx context.Context, userID, filename string, data []byte) (*services.UploadResult, error) {
	return m.uploadFn(ctx, userID, filename, data)
}

func (m *mockDatasetService) List(ctx context.Context, userID string) ([]domain.Dataset, error) {
	return m.listFn(ctx, userID)
}

func (m *mockDatasetService) Get(ctx context.Context, userID, datasetID string) (domain.Dataset, error) {
	return m.getFn(ctx, userID, datasetID)
}

func (m *mockDatasetService) Delete(ctx context.Context, userID, datasetID string) error {
	return m.deleteFn(ctx, userID, datasetID)
}

func (m *mockDatasetService) Refresh(ctx context.Context, userID, datasetID string) (domain.Dataset, error) {
	return m.refreshFn(ctx, userID, datasetID)
}

func newDatasetRouter(svc DatasetServiceInterface) chi.Router {
	h := NewDatasetHandler(svc, 1<<20, testLogger(), testErrorHandler())
	r := chi.NewRouter()
	r.Mount("/api/datasets", h.Routes())
	return r
}

// multipartBody builds a multipart form with one "file" part
func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestDatasetHandler_Upload(t *testing.T) {
	svc := &mockDatasetService{
		uploadFn: func(ctx context.Context, userID, filename string, data []byte) (*services.UploadResult, error) {
			assert.Equal(t, "user-1", userID)
			assert.Equal(t, "sales.csv", filename)
			assert.NotEmpty(t, data)
			return &services.UploadResult{
				Dataset: domain.Dataset{
					ID:         "ds-1",
					UserID:     userID,
					Filename:   filename,
					UploadedAt: time.Now().UTC(),
					RowCount:   2,
				},
				RowsAccepted: 2,
			}, nil
		},
	}

	body, contentType := multipartBody(t, "sales.csv", "date,product,revenue,cost,commission\n2024-01-01,W,1,0,0\n")
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/datasets", body), "user-1")
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ds-1"`)
	assert.Contains(t, rec.Body.String(), `"rows_accepted":2`)
}

func TestDatasetHandler_Upload_MissingFilePart(t *testing.T) {
	svc := &mockDatasetService{}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "sales"))
	require.NoError(t, mw.Close())

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/datasets", &buf), "user-1")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDatasetHandler_Upload_ValidationFailure(t *testing.T) {
	svc := &mockDatasetService{
		uploadFn: func(ctx context.Context, userID, filename string, data []byte) (*services.UploadResult, error) {
			return nil, &ingest.ValidationError{Reasons: []string{"missing required columns: revenue"}}
		},
	}

	body, contentType := multipartBody(t, "sales.csv", "date,product\n2024-01-01,W\n")
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/datasets", body), "user-1")
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required columns")
}

func TestDatasetHandler_Upload_TooLarge(t *testing.T) {
	svc := &mockDatasetService{
		uploadFn: func(ctx context.Context, userID, filename string, data []byte) (*services.UploadResult, error) {
			return nil, services.ErrFileTooLarge
		},
	}

	body, contentType := multipartBody(t, "sales.csv", "x")
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/datasets", body), "user-1")
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDatasetHandler_Upload_UnsupportedType(t *testing.T) {
	svc := &mockDatasetService{
		uploadFn: func(ctx context.Context, userID, filename string, data []byte) (*services.UploadResult, error) {
			return nil, services.ErrUnsupportedFileType
		},
	}

	body, contentType := multipartBody(t, "sales.pdf", "x")
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/datasets", body), "user-1")
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestDatasetHandler_List(t *testing.T) {
	svc := &mockDatasetService{
		listFn: func(ctx context.Context, userID string) ([]domain.Dataset, error) {
			assert.Equal(t, "user-1", userID)
			return []domain.Dataset{
				{ID: "ds-1", UserID: userID, Filename: "a.csv", RowCount: 2},
				{ID: "ds-2", UserID: userID, Filename: "b.csv", RowCount: 5},
			}, nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/datasets", nil), "user-1")
	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":2`)
	assert.Contains(t, rec.Body.String(), "ds-2")
}

func TestDatasetHandler_Get_NotFound(t *testing.T) {
	svc := &mockDatasetService{
		getFn: func(ctx context.Context, userID, datasetID string) (domain.Dataset, error) {
			return domain.Dataset{}, store.ErrNotFound
		},
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/datasets/ds-404", nil), "user-1")
	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "DATASET_NOT_FOUND")
}

func TestDatasetHandler_Delete(t *testing.T) {
	var deleted string
	svc := &mockDatasetService{
		deleteFn: func(ctx context.Context, userID, datasetID string) error {
			deleted = datasetID
			return nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/datasets/ds-1", nil), "user-1")
	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "ds-1", deleted)
}

func TestDatasetHandler_Refresh(t *testing.T) {
	svc := &mockDatasetService{
		refreshFn: func(ctx context.Context, userID, datasetID string) (domain.Dataset, error) {
			return domain.Dataset{ID: datasetID, UserID: userID, Filename: "a.csv"}, nil
		},
	}

	req := asUser(httptest.NewRequest(http.MethodPost, "/api/datasets/ds-1/refresh", nil), "user-1")
	rec := httptest.NewRecorder()
	newDatasetRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"unchanged"`)
}
