package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adpulse/pkg/contracts/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "adpulse.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testDataset(userID string) domain.Dataset {
	return domain.Dataset{
		ID:         uuid.NewString(),
		UserID:     userID,
		Filename:   "report.csv",
		UploadedAt: time.Now().UTC(),
	}
}

func testRows() []domain.TransactionRecord {
	r1 := domain.TransactionRecord{
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Product:    "Widget Pro",
		Revenue:    decimal.RequireFromString("100.50"),
		Cost:       decimal.RequireFromString("20.25"),
		Commission: decimal.RequireFromString("5.05"),
		Platform:   "Meta",
		YearMonth:  "2024-03",
		Raw:        map[string]string{"date": "2024-03-01", "product": "Widget Pro"},
	}
	r1.ComputeProfit()
	r2 := domain.TransactionRecord{
		Date:       time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
		Product:    "Gadget",
		Revenue:    decimal.RequireFromString("50"),
		Cost:       decimal.RequireFromString("60"),
		Commission: decimal.RequireFromString("2"),
		YearMonth:  "2024-03",
	}
	r2.ComputeProfit()
	return []domain.TransactionRecord{r1, r2}
}

func TestCreateAndListDatasets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ds := testDataset("user-1")
	require.NoError(t, s.CreateDataset(ctx, ds, testRows()))

	list, err := s.ListDatasets(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, ds.ID, list[0].ID)
	assert.Equal(t, "report.csv", list[0].Filename)
	assert.Equal(t, 2, list[0].RowCount)

	other, err := s.ListDatasets(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestListDatasets_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	older := testDataset("user-1")
	older.UploadedAt = time.Now().UTC().Add(-time.Hour)
	newer := testDataset("user-1")

	require.NoError(t, s.CreateDataset(ctx, older, nil))
	require.NoError(t, s.CreateDataset(ctx, newer, nil))

	list, err := s.ListDatasets(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
}

func TestGetDataset_OwnershipScoping(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ds := testDataset("user-1")
	require.NoError(t, s.CreateDataset(ctx, ds, testRows()))

	got, err := s.GetDataset(ctx, "user-1", ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)

	// Another user's lookup is indistinguishable from a missing dataset.
	_, err = s.GetDataset(ctx, "user-2", ds.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetDataset(ctx, "user-1", uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRows_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ds := testDataset("user-1")
	want := testRows()
	require.NoError(t, s.CreateDataset(ctx, ds, want))

	got, err := s.ListRows(ctx, "user-1", ds.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Widget Pro", got[0].Product)
	assert.True(t, got[0].Revenue.Equal(decimal.RequireFromString("100.50")))
	assert.True(t, got[0].Profit.Equal(decimal.RequireFromString("75.20")))
	assert.Equal(t, "Meta", got[0].Platform)
	assert.Equal(t, "2024-03", got[0].YearMonth)
	assert.Equal(t, want[0].Raw, got[0].Raw)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got[0].Date)

	// Negative profit survives the round trip.
	assert.True(t, got[1].Profit.Equal(decimal.RequireFromString("-12")))
	assert.Nil(t, got[1].Raw)
}

func TestListRows_AllDatasets(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first, second := testDataset("user-1"), testDataset("user-1")
	require.NoError(t, s.CreateDataset(ctx, first, testRows()))
	require.NoError(t, s.CreateDataset(ctx, second, testRows()[:1]))
	require.NoError(t, s.CreateDataset(ctx, testDataset("user-2"), testRows()))

	all, err := s.ListRows(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	scoped, err := s.ListRows(ctx, "user-1", second.ID)
	require.NoError(t, err)
	assert.Len(t, scoped, 1)

	_, err = s.ListRows(ctx, "user-2", second.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDataset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ds := testDataset("user-1")
	require.NoError(t, s.CreateDataset(ctx, ds, testRows()))

	// Wrong owner cannot delete.
	assert.ErrorIs(t, s.DeleteDataset(ctx, "user-2", ds.ID), ErrNotFound)

	require.NoError(t, s.DeleteDataset(ctx, "user-1", ds.ID))
	_, err := s.GetDataset(ctx, "user-1", ds.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rows, err := s.ListRows(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.ErrorIs(t, s.DeleteDataset(ctx, "user-1", ds.ID), ErrNotFound)
}
