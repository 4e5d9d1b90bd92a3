package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"adpulse/pkg/contracts/domain"
)

// dimensionKey resolves the grouping function for a dimension. Records
// without a platform fall into the "unknown" bucket.
func dimensionKey(d domain.Dimension) func(domain.TransactionRecord) string {
	if d == domain.DimensionPlatform {
		return domain.TransactionRecord.PlatformOrUnknown
	}
	return func(r domain.TransactionRecord) string { return r.Product }
}

// Breakdown groups by the dimension and reports each group's sums plus its
// share of the grand total for the chosen metric, descending by that metric.
func (e *Engine) Breakdown(records []domain.TransactionRecord, f domain.Filters, dimension domain.Dimension, metric domain.Metric) Breakdown {
	groups, order := groupBy(f.Apply(records), dimensionKey(dimension))

	total := decimal.Zero
	for _, name := range order {
		total = total.Add(metricValue(groups[name], metric))
	}

	items := make([]BreakdownItem, 0, len(order))
	for _, name := range order {
		g := groups[name]
		value := metricValue(g, metric)
		items = append(items, BreakdownItem{
			DimensionValue:    name,
			Gross:             g.revenue,
			Commission:        g.commission,
			Net:               g.profit,
			Quantity:          g.count,
			PercentageOfTotal: percentage(value, total),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return metricOf(items[i], metric).GreaterThan(metricOf(items[j], metric))
	})

	return Breakdown{Dimension: dimension, Metric: metric, Items: items, Total: total}
}

// Ranking builds a canonical top-N list. The ranking type fixes both the
// dimension and the metric; ranks are 1-based and contiguous.
func (e *Engine) Ranking(records []domain.TransactionRecord, f domain.Filters, rankingType string, limit int) Ranking {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	if limit > MaxRankingLimit {
		limit = MaxRankingLimit
	}

	dimension, metric := domain.DimensionProduct, domain.MetricGross
	switch rankingType {
	case RankingProductsByCommission:
		metric = domain.MetricCommission
	case RankingPlatforms:
		dimension = domain.DimensionPlatform
	}

	groups, order := groupBy(f.Apply(records), dimensionKey(dimension))

	total := decimal.Zero
	for _, name := range order {
		total = total.Add(metricValue(groups[name], metric))
	}

	sort.SliceStable(order, func(i, j int) bool {
		return metricValue(groups[order[i]], metric).GreaterThan(metricValue(groups[order[j]], metric))
	})
	if len(order) > limit {
		order = order[:limit]
	}

	items := make([]RankingItem, 0, len(order))
	for i, name := range order {
		g := groups[name]
		value := metricValue(g, metric)
		items = append(items, RankingItem{
			Rank:       i + 1,
			Name:       name,
			Value:      value,
			Percentage: percentage(value, total),
			Quantity:   g.count,
		})
	}

	return Ranking{Type: rankingType, Metric: metric, Limit: limit, Items: items}
}

func metricOf(item BreakdownItem, m domain.Metric) decimal.Decimal {
	switch m {
	case domain.MetricCommission:
		return item.Commission
	case domain.MetricNet:
		return item.Net
	case domain.MetricQuantity:
		return decimal.NewFromInt(int64(item.Quantity))
	default:
		return item.Gross
	}
}
