package analytics

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"adpulse/pkg/contracts/domain"
)

var hundred = decimal.NewFromInt(100)

// Engine computes dashboard aggregates from an in-memory record snapshot.
// It is a pure, synchronous transform: no shared state, no I/O. An empty
// input is a normal state (new user, no data) and yields zero-valued KPIs
// and empty collections, never an error.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an aggregation engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// KPIs sums the filtered records into the basic dashboard totals.
func (e *Engine) KPIs(records []domain.TransactionRecord, f domain.Filters) KPIs {
	var k KPIs
	for _, r := range f.Apply(records) {
		k.TotalRevenue = k.TotalRevenue.Add(r.Revenue)
		k.TotalCost = k.TotalCost.Add(r.Cost)
		k.TotalCommission = k.TotalCommission.Add(r.Commission)
		k.TotalProfit = k.TotalProfit.Add(r.Profit)
		k.TotalRows++
	}
	return k
}

// GlobalKPIs computes the headline indicators. Quantity is the number of
// transactions; every ratio yields 0 when its denominator is 0.
func (e *Engine) GlobalKPIs(records []domain.TransactionRecord, f domain.Filters) GlobalKPIs {
	base := e.KPIs(records, f)

	g := GlobalKPIs{
		TotalSales:       base.TotalRevenue,
		TotalCommissions: base.TotalCommission,
		TotalNet:         base.TotalProfit,
		TotalQuantity:    base.TotalRows,
	}

	if g.TotalQuantity > 0 {
		qty := decimal.NewFromInt(int64(g.TotalQuantity))
		g.AverageTicket = g.TotalSales.Div(qty).InexactFloat64()
		g.AverageCommission = g.TotalCommissions.Div(qty).InexactFloat64()
	}
	if g.TotalSales.IsPositive() {
		g.CommissionRate = g.TotalCommissions.Div(g.TotalSales).Mul(hundred).InexactFloat64()
		g.NetMargin = g.TotalNet.Div(g.TotalSales).Mul(hundred).InexactFloat64()
	}
	return g
}

// Dashboard assembles the basic dashboard payload: KPIs, a daily series and
// the per-product rollup.
func (e *Engine) Dashboard(records []domain.TransactionRecord, f domain.Filters) *Dashboard {
	filtered := f.Apply(records)

	d := &Dashboard{
		KPIs:                e.KPIs(filtered, domain.Filters{}),
		PeriodAggregations:  e.Series(filtered, domain.Filters{}, domain.PeriodDaily).Points,
		ProductAggregations: e.productAggregations(filtered),
	}
	if d.PeriodAggregations == nil {
		d.PeriodAggregations = []PeriodPoint{}
	}
	return d
}

// Full assembles the composite dashboard: global KPIs, the time series at
// the requested granularity, the canonical rankings and breakdowns, and the
// growth comparison.
func (e *Engine) Full(records []domain.TransactionRecord, f domain.Filters, period domain.Period, limit int) *FullDashboard {
	filtered := f.Apply(records)
	none := domain.Filters{}

	return &FullDashboard{
		KPIs:       e.GlobalKPIs(filtered, none),
		TimeSeries: e.Series(filtered, none, period),
		Rankings: map[string]Ranking{
			RankingProductsBySales:      e.Ranking(filtered, none, RankingProductsBySales, limit),
			RankingProductsByCommission: e.Ranking(filtered, none, RankingProductsByCommission, limit),
			RankingPlatforms:            e.Ranking(filtered, none, RankingPlatforms, limit),
		},
		Breakdowns: map[string]Breakdown{
			string(domain.DimensionProduct):  e.Breakdown(filtered, none, domain.DimensionProduct, domain.MetricGross),
			string(domain.DimensionPlatform): e.Breakdown(filtered, none, domain.DimensionPlatform, domain.MetricGross),
		},
		Growth: e.Growth(filtered, none, period),
	}
}

// productAggregations groups by product with the basic sum shape, descending
// by revenue.
func (e *Engine) productAggregations(records []domain.TransactionRecord) []ProductAggregation {
	groups, order := groupBy(records, func(r domain.TransactionRecord) string { return r.Product })

	out := make([]ProductAggregation, 0, len(order))
	for _, name := range order {
		g := groups[name]
		out = append(out, ProductAggregation{
			Product:    name,
			Revenue:    g.revenue,
			Cost:       g.cost,
			Commission: g.commission,
			Profit:     g.profit,
			RowCount:   g.count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Revenue.GreaterThan(out[j].Revenue) })
	return out
}

// metricValue picks the summable value of a group for the given metric.
func metricValue(g *group, m domain.Metric) decimal.Decimal {
	switch m {
	case domain.MetricCommission:
		return g.commission
	case domain.MetricNet:
		return g.profit
	case domain.MetricQuantity:
		return decimal.NewFromInt(int64(g.count))
	default:
		return g.revenue
	}
}

// percentage returns part/total*100 as a float, 0 when total is 0.
func percentage(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).Mul(hundred).InexactFloat64()
}

// group accumulates the sums of one dimension or period bucket.
type group struct {
	revenue    decimal.Decimal
	cost       decimal.Decimal
	commission decimal.Decimal
	profit     decimal.Decimal
	count      int
}

func (g *group) add(r domain.TransactionRecord) {
	g.revenue = g.revenue.Add(r.Revenue)
	g.cost = g.cost.Add(r.Cost)
	g.commission = g.commission.Add(r.Commission)
	g.profit = g.profit.Add(r.Profit)
	g.count++
}

// groupBy buckets records by a key, remembering first-seen order so callers
// can re-sort deterministically.
func groupBy(records []domain.TransactionRecord, key func(domain.TransactionRecord) string) (map[string]*group, []string) {
	groups := make(map[string]*group)
	var order []string
	for _, r := range records {
		k := key(r)
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.add(r)
	}
	return groups, order
}
