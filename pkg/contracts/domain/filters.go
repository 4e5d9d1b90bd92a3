package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Metric is a summable numeric field used for aggregation.
type Metric string

const (
	MetricGross      Metric = "gross"      // total sales (revenue)
	MetricCommission Metric = "commission" // commission amount
	MetricNet        Metric = "net"        // net value (profit)
	MetricQuantity   Metric = "quantity"   // number of transactions
)

// Valid reports whether the metric is one of the supported values.
func (m Metric) Valid() bool {
	switch m {
	case MetricGross, MetricCommission, MetricNet, MetricQuantity:
		return true
	}
	return false
}

// Dimension is a categorical grouping key for breakdowns.
type Dimension string

const (
	DimensionProduct  Dimension = "product"
	DimensionPlatform Dimension = "platform"
)

// Valid reports whether the dimension is one of the supported values.
func (d Dimension) Valid() bool {
	return d == DimensionProduct || d == DimensionPlatform
}

// Period is the time-bucket size for series aggregation.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
)

// Valid reports whether the period granularity is supported.
func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodMonthly
}

// Filters narrows the record set before aggregation. All fields are optional;
// a nil field means "no constraint".
//
// MinValue and MaxValue bound the revenue field. The original API accepted
// "revenue, cost, commission or profit" without fixing one; revenue is the
// dashboard's primary metric so the bound applies there, explicitly.
type Filters struct {
	StartDate *time.Time       `json:"start_date,omitempty"`
	EndDate   *time.Time       `json:"end_date,omitempty"`
	Product   string           `json:"product,omitempty"`
	MinValue  *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue  *decimal.Decimal `json:"max_value,omitempty"`
}

// Match reports whether the record passes every set constraint.
// Product matching is a case-insensitive substring match.
func (f Filters) Match(r TransactionRecord) bool {
	if f.StartDate != nil && r.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && r.Date.After(*f.EndDate) {
		return false
	}
	if f.Product != "" && !strings.Contains(strings.ToLower(r.Product), strings.ToLower(f.Product)) {
		return false
	}
	if f.MinValue != nil && r.Revenue.LessThan(*f.MinValue) {
		return false
	}
	if f.MaxValue != nil && r.Revenue.GreaterThan(*f.MaxValue) {
		return false
	}
	return true
}

// IsZero reports whether no constraint is set.
func (f Filters) IsZero() bool {
	return f.StartDate == nil && f.EndDate == nil && f.Product == "" &&
		f.MinValue == nil && f.MaxValue == nil
}

// Apply returns the subset of records passing the filter, preserving order.
func (f Filters) Apply(records []TransactionRecord) []TransactionRecord {
	if f.IsZero() {
		return records
	}
	out := make([]TransactionRecord, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
