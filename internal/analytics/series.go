package analytics

import (
	"sort"

	"adpulse/pkg/contracts/domain"
)

// Series groups the filtered records into calendar-date (daily) or
// year-month (monthly) buckets, chronologically ascending.
func (e *Engine) Series(records []domain.TransactionRecord, f domain.Filters, period domain.Period) TimeSeries {
	key := domain.TransactionRecord.DateKey
	if period == domain.PeriodMonthly {
		key = domain.TransactionRecord.MonthKey
	}

	groups, order := groupBy(f.Apply(records), func(r domain.TransactionRecord) string { return key(r) })
	sort.Strings(order)

	points := make([]PeriodPoint, 0, len(order))
	for _, bucket := range order {
		g := groups[bucket]
		points = append(points, PeriodPoint{
			Period:     bucket,
			Revenue:    g.revenue,
			Cost:       g.cost,
			Commission: g.commission,
			Profit:     g.profit,
			RowCount:   g.count,
		})
	}
	return TimeSeries{Period: period, Points: points}
}

// Growth compares each period bucket of the gross series against the one
// before it. The first bucket has no baseline and is skipped; a bucket whose
// predecessor sums to zero is flagged IsNew with GrowthPercent 0.
func (e *Engine) Growth(records []domain.TransactionRecord, f domain.Filters, period domain.Period) []GrowthPoint {
	series := e.Series(records, f, period)
	if len(series.Points) < 2 {
		return []GrowthPoint{}
	}

	out := make([]GrowthPoint, 0, len(series.Points)-1)
	for i := 1; i < len(series.Points); i++ {
		current, previous := series.Points[i], series.Points[i-1]
		gp := GrowthPoint{
			Period:        current.Period,
			CurrentValue:  current.Revenue,
			PreviousValue: previous.Revenue,
			Growth:        current.Revenue.Sub(previous.Revenue),
		}
		if previous.Revenue.IsZero() {
			gp.IsNew = true
		} else {
			gp.GrowthPercent = gp.Growth.Div(previous.Revenue).Mul(hundred).InexactFloat64()
		}
		out = append(out, gp)
	}
	return out
}
