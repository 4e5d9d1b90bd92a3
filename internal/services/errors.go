package services

import "errors"

// Service-level errors. Handlers map these onto HTTP problem responses.
var (
	// Upload errors
	ErrFileTooLarge        = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrTooManyRows         = errors.New("file exceeds the maximum row count")
	ErrEmptyUpload         = errors.New("uploaded file is empty")

	// Analytics errors
	ErrInvalidPeriod    = errors.New("invalid period granularity")
	ErrInvalidDimension = errors.New("invalid breakdown dimension")
	ErrInvalidMetric    = errors.New("invalid metric")
	ErrInvalidRanking   = errors.New("invalid ranking type")

	// General errors
	ErrInvalidInput       = errors.New("invalid input")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
)
