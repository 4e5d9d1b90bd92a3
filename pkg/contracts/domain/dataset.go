package domain

import (
	"time"
)

// Dataset is the ownership container for one upload: a batch of
// TransactionRecords produced by a single validated file, owned by exactly
// one user. Datasets are immutable after creation; refresh is a placeholder
// for a future external-API sync.
type Dataset struct {
	ID         string    `json:"id" db:"id" validate:"required,uuid"`
	UserID     string    `json:"user_id" db:"user_id" validate:"required"`
	Filename   string    `json:"filename" db:"filename" validate:"required"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
	RowCount   int       `json:"row_count" db:"row_count"`
}
