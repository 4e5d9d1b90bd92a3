package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/internal/analytics"
	"adpulse/internal/store"
	"adpulse/pkg/contracts/domain"
)

// seedAnalytics uploads a two-month sample and returns the services
// plus the created dataset ID.
func seedAnalytics(t *testing.T) (*AnalyticsService, *DatasetService, string) {
	t.Helper()
	st := newTestStore(t)
	datasets := newDatasetService(t, st)

	payload := "date,product,revenue,cost,commission,platform\n" +
		"2024-01-01,Widget Pro,100,20,5,Meta\n" +
		"2024-01-15,Gadget,50,10,2,Google\n" +
		"2024-02-01,Widget Pro,200,40,10,Meta\n"
	result, err := datasets.Upload(context.Background(), "user-1", "sales.csv", []byte(payload))
	require.NoError(t, err)

	svc := NewAnalyticsService(st, analytics.NewEngine(testServiceLogger()), testServiceLogger(), nil)
	return svc, datasets, result.Dataset.ID
}

func TestAnalyticsService_KPIs(t *testing.T) {
	svc, _, _ := seedAnalytics(t)

	kpis, err := svc.KPIs(context.Background(), "user-1", "", domain.Filters{})
	require.NoError(t, err)

	assert.True(t, kpis.TotalSales.Equal(decimal.NewFromInt(350)), "sales = %s", kpis.TotalSales)
	assert.True(t, kpis.TotalCommissions.Equal(decimal.NewFromInt(17)))
	// profit = (100-20-5) + (50-10-2) + (200-40-10) = 263
	assert.True(t, kpis.TotalNet.Equal(decimal.NewFromInt(263)))
	assert.Equal(t, 3, kpis.TotalQuantity)
}

func TestAnalyticsService_KPIs_ScopedToDataset(t *testing.T) {
	svc, datasets, firstID := seedAnalytics(t)
	ctx := context.Background()

	second := "date,product,revenue,cost,commission\n2024-03-01,Doohickey,1000,0,0\n"
	_, err := datasets.Upload(ctx, "user-1", "more.csv", []byte(second))
	require.NoError(t, err)

	// All datasets combined.
	all, err := svc.KPIs(ctx, "user-1", "", domain.Filters{})
	require.NoError(t, err)
	assert.True(t, all.TotalSales.Equal(decimal.NewFromInt(1350)))

	// Just the first upload.
	scoped, err := svc.KPIs(ctx, "user-1", firstID, domain.Filters{})
	require.NoError(t, err)
	assert.True(t, scoped.TotalSales.Equal(decimal.NewFromInt(350)))

	// Unknown dataset is an error, not an empty result.
	_, err = svc.KPIs(ctx, "user-1", "missing-id", domain.Filters{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAnalyticsService_Series(t *testing.T) {
	svc, _, _ := seedAnalytics(t)
	ctx := context.Background()

	series, err := svc.Series(ctx, "user-1", "", domain.Filters{}, domain.PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	assert.Equal(t, "2024-01", series.Points[0].Period)
	assert.Equal(t, "2024-02", series.Points[1].Period)

	_, err = svc.Series(ctx, "user-1", "", domain.Filters{}, domain.Period("weekly"))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestAnalyticsService_Breakdown(t *testing.T) {
	svc, _, _ := seedAnalytics(t)
	ctx := context.Background()

	breakdown, err := svc.Breakdown(ctx, "user-1", "", domain.Filters{}, domain.DimensionPlatform, domain.MetricGross)
	require.NoError(t, err)
	require.Len(t, breakdown.Items, 2)
	assert.Equal(t, "Meta", breakdown.Items[0].DimensionValue)

	_, err = svc.Breakdown(ctx, "user-1", "", domain.Filters{}, domain.Dimension("region"), domain.MetricGross)
	assert.ErrorIs(t, err, ErrInvalidDimension)

	_, err = svc.Breakdown(ctx, "user-1", "", domain.Filters{}, domain.DimensionProduct, domain.Metric("margin"))
	assert.ErrorIs(t, err, ErrInvalidMetric)
}

func TestAnalyticsService_Ranking(t *testing.T) {
	svc, _, _ := seedAnalytics(t)
	ctx := context.Background()

	ranking, err := svc.Ranking(ctx, "user-1", "", domain.Filters{}, analytics.RankingProductsBySales, 1)
	require.NoError(t, err)
	require.Len(t, ranking.Items, 1)
	assert.Equal(t, 1, ranking.Items[0].Rank)
	assert.Equal(t, "Widget Pro", ranking.Items[0].Name)

	_, err = svc.Ranking(ctx, "user-1", "", domain.Filters{}, "products_by_margin", 5)
	assert.ErrorIs(t, err, ErrInvalidRanking)
}

func TestAnalyticsService_Growth(t *testing.T) {
	svc, _, _ := seedAnalytics(t)

	growth, err := svc.Growth(context.Background(), "user-1", "", domain.Filters{}, domain.PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, growth, 1)
	assert.Equal(t, "2024-02", growth[0].Period)
	// 150 -> 200
	assert.InDelta(t, 100.0/3.0, growth[0].GrowthPercent, 0.0001)
}

func TestAnalyticsService_Dashboards(t *testing.T) {
	svc, _, _ := seedAnalytics(t)
	ctx := context.Background()

	dash, err := svc.Dashboard(ctx, "user-1", "", domain.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 3, dash.KPIs.TotalRows)
	assert.Len(t, dash.ProductAggregations, 2)

	full, err := svc.Full(ctx, "user-1", "", domain.Filters{}, domain.PeriodMonthly, 0)
	require.NoError(t, err)
	assert.Len(t, full.TimeSeries.Points, 2)
	assert.Contains(t, full.Rankings, analytics.RankingProductsBySales)
	assert.Contains(t, full.Breakdowns, string(domain.DimensionPlatform))
}
