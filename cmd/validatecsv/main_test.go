package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/ingest"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFile_CleanCSV(t *testing.T) {
	svc := ingest.NewService(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	path := writeTempFile(t, "sales.csv",
		"date,product,revenue,cost,commission\n"+
			"2024-01-01,Widget Pro,100,20,5\n"+
			"2024-02-02,Gadget,50,10,2\n")

	result, err := validateFile(context.Background(), svc, path)
	require.NoError(t, err)
	assert.Len(t, result.Records, 2)
	assert.Zero(t, result.Dropped)
}

func TestValidateFile_StructuralFailure(t *testing.T) {
	svc := ingest.NewService(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	path := writeTempFile(t, "sales.csv", "date,product\n2024-01-01,Widget\n")

	_, err := validateFile(context.Background(), svc, path)
	require.Error(t, err)

	var verr *ingest.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Error(), "missing required columns")
}

func TestValidateFile_MissingFile(t *testing.T) {
	svc := ingest.NewService(slog.New(slog.NewJSONHandler(io.Discard, nil)))

	_, err := validateFile(context.Background(), svc, filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
