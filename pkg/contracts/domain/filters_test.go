package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFiltersMatch_PartialProduct(t *testing.T) {
	rec := TransactionRecord{Product: "Widget Pro"}
	assert.True(t, Filters{Product: "wid"}.Match(rec))
	assert.True(t, Filters{Product: "WIDGET"}.Match(rec))
	assert.False(t, Filters{Product: "wid"}.Match(TransactionRecord{Product: "Gadget"}))
}

func TestFiltersMatch_DateBounds(t *testing.T) {
	rec := TransactionRecord{Date: day("2024-02-15")}

	start := day("2024-02-01")
	end := day("2024-02-28")
	assert.True(t, Filters{StartDate: &start, EndDate: &end}.Match(rec))

	// Bounds are inclusive.
	onStart := day("2024-02-15")
	assert.True(t, Filters{StartDate: &onStart}.Match(rec))
	assert.True(t, Filters{EndDate: &onStart}.Match(rec))

	late := day("2024-03-01")
	assert.False(t, Filters{StartDate: &late}.Match(rec))
	early := day("2024-01-31")
	assert.False(t, Filters{EndDate: &early}.Match(rec))
}

func TestFiltersMatch_RevenueBounds(t *testing.T) {
	rec := TransactionRecord{Revenue: decimal.NewFromInt(100)}

	min := decimal.NewFromInt(50)
	max := decimal.NewFromInt(150)
	assert.True(t, Filters{MinValue: &min, MaxValue: &max}.Match(rec))

	exact := decimal.NewFromInt(100)
	assert.True(t, Filters{MinValue: &exact, MaxValue: &exact}.Match(rec))

	tooHigh := decimal.NewFromInt(101)
	assert.False(t, Filters{MinValue: &tooHigh}.Match(rec))
	tooLow := decimal.NewFromInt(99)
	assert.False(t, Filters{MaxValue: &tooLow}.Match(rec))
}

func TestFiltersApply_PreservesOrderAndZeroFilter(t *testing.T) {
	records := []TransactionRecord{
		{Product: "Widget", Revenue: decimal.NewFromInt(10)},
		{Product: "Gadget", Revenue: decimal.NewFromInt(20)},
		{Product: "Widget Pro", Revenue: decimal.NewFromInt(30)},
	}

	var none Filters
	assert.True(t, none.IsZero())
	assert.Equal(t, records, none.Apply(records))

	got := Filters{Product: "widget"}.Apply(records)
	assert.Len(t, got, 2)
	assert.Equal(t, "Widget", got[0].Product)
	assert.Equal(t, "Widget Pro", got[1].Product)
}
