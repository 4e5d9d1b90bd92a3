package analytics

import (
	"github.com/shopspring/decimal"

	"adpulse/pkg/contracts/domain"
)

// KPIs are the basic dashboard totals over the filtered record set.
type KPIs struct {
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalCommission decimal.Decimal `json:"total_commission"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	TotalRows       int             `json:"total_rows"`
}

// GlobalKPIs are the headline dashboard indicators. Ratio fields are defined
// to be 0 when their denominator is 0; they never fault.
type GlobalKPIs struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalCommissions  decimal.Decimal `json:"total_commissions"`
	TotalNet          decimal.Decimal `json:"total_net"`
	TotalQuantity     int             `json:"total_quantity"`
	AverageTicket     float64         `json:"average_ticket"`
	AverageCommission float64         `json:"average_commission"`
	CommissionRate    float64         `json:"commission_rate"`
	NetMargin         float64         `json:"net_margin"`
}

// PeriodPoint is one time bucket of the series: sums plus row count.
type PeriodPoint struct {
	Period     string          `json:"period"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Commission decimal.Decimal `json:"commission"`
	Profit     decimal.Decimal `json:"profit"`
	RowCount   int             `json:"row_count"`
}

// TimeSeries is a chronologically ascending sequence of period buckets with
// an explicit granularity label.
type TimeSeries struct {
	Period domain.Period `json:"period"`
	Points []PeriodPoint `json:"data"`
}

// ProductAggregation is the basic per-product rollup used by the dashboard.
type ProductAggregation struct {
	Product    string          `json:"product"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Commission decimal.Decimal `json:"commission"`
	Profit     decimal.Decimal `json:"profit"`
	RowCount   int             `json:"row_count"`
}

// BreakdownItem is one group of a dimension breakdown.
type BreakdownItem struct {
	DimensionValue    string          `json:"dimension_value"`
	Gross             decimal.Decimal `json:"gross_value"`
	Commission        decimal.Decimal `json:"commission_value"`
	Net               decimal.Decimal `json:"net_value"`
	Quantity          int             `json:"quantity"`
	PercentageOfTotal float64         `json:"percentage_of_total"`
}

// Breakdown groups the filtered records by a dimension and reports each
// group's share of the grand total for the chosen metric, descending by value.
type Breakdown struct {
	Dimension domain.Dimension `json:"dimension"`
	Metric    domain.Metric    `json:"metric"`
	Items     []BreakdownItem  `json:"data"`
	Total     decimal.Decimal  `json:"total"`
}

// RankingItem is one entry of a top-N ranking.
type RankingItem struct {
	Rank       int             `json:"rank"`
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
	Quantity   int             `json:"quantity"`
}

// Ranking is a top-N list over a dimension, sorted descending by the metric,
// with 1-based contiguous ranks.
type Ranking struct {
	Type   string        `json:"type"`
	Metric domain.Metric `json:"metric"`
	Limit  int           `json:"limit"`
	Items  []RankingItem `json:"data"`
}

// GrowthPoint compares one period against the one before it. When the
// previous total is zero there is no baseline: GrowthPercent is 0 and IsNew
// is set instead of reporting a fake 0% growth.
type GrowthPoint struct {
	Period        string          `json:"period"`
	CurrentValue  decimal.Decimal `json:"current_value"`
	PreviousValue decimal.Decimal `json:"previous_value"`
	Growth        decimal.Decimal `json:"growth"`
	GrowthPercent float64         `json:"growth_percent"`
	IsNew         bool            `json:"is_new,omitempty"`
}

// Dashboard is the basic dashboard payload: KPIs plus daily and per-product
// rollups.
type Dashboard struct {
	KPIs                KPIs                 `json:"kpis"`
	PeriodAggregations  []PeriodPoint        `json:"period_aggregations"`
	ProductAggregations []ProductAggregation `json:"product_aggregations"`
}

// FullDashboard is the composite analytics payload with the canonical
// rankings and breakdowns keyed by name.
type FullDashboard struct {
	KPIs       GlobalKPIs           `json:"kpis"`
	TimeSeries TimeSeries           `json:"time_series"`
	Rankings   map[string]Ranking   `json:"rankings"`
	Breakdowns map[string]Breakdown `json:"breakdowns"`
	Growth     []GrowthPoint        `json:"growth,omitempty"`
}

// Canonical ranking types served by the API.
const (
	RankingProductsBySales      = "products_by_sales"
	RankingProductsByCommission = "products_by_commission"
	RankingPlatforms            = "platforms"
)

// DefaultRankingLimit bounds rankings when the caller does not ask for a
// specific N; MaxRankingLimit caps what a caller may ask for.
const (
	DefaultRankingLimit = 10
	MaxRankingLimit     = 100
)
