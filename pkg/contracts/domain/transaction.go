package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one validated sale/ad transaction row. It is the shape
// the ingestion pipeline produces and the aggregation engine consumes.
// Monetary fields carry two-decimal currency amounts; Profit is derived as
// Revenue - Cost - Commission and may be negative.
type TransactionRecord struct {
	Date       time.Time       `json:"date" db:"date"`
	Product    string          `json:"product" db:"product" validate:"required"`
	Revenue    decimal.Decimal `json:"revenue" db:"revenue"`
	Cost       decimal.Decimal `json:"cost" db:"cost"`
	Commission decimal.Decimal `json:"commission" db:"commission"`
	Profit     decimal.Decimal `json:"profit" db:"profit"`

	// Optional columns preserved by the extended ingestion projection.
	// Empty when the upload did not carry them.
	Platform string `json:"platform,omitempty" db:"platform"`
	Status   string `json:"status,omitempty" db:"status"`
	Category string `json:"category,omitempty" db:"category"`
	SubID    string `json:"sub_id1,omitempty" db:"sub_id1"`

	// YearMonth is the YYYY-MM bucket derived from Date.
	YearMonth string `json:"year_month" db:"year_month"`

	// Raw is the original cell snapshot of the source row, kept for audit.
	Raw map[string]string `json:"-" db:"raw_row"`
}

// ComputeProfit recalculates the derived profit field.
func (r *TransactionRecord) ComputeProfit() {
	r.Profit = r.Revenue.Sub(r.Cost).Sub(r.Commission)
}

// DateKey returns the calendar-date bucket (YYYY-MM-DD) for daily grouping.
func (r TransactionRecord) DateKey() string {
	return r.Date.Format("2006-01-02")
}

// MonthKey returns the year-month bucket (YYYY-MM) for monthly grouping.
func (r TransactionRecord) MonthKey() string {
	if r.YearMonth != "" {
		return r.YearMonth
	}
	return r.Date.Format("2006-01")
}

// PlatformOrUnknown returns the platform dimension value, with records that
// carry no platform column grouped under "unknown".
func (r TransactionRecord) PlatformOrUnknown() string {
	if r.Platform == "" {
		return "unknown"
	}
	return r.Platform
}
