package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
	"github.com/ArthurFrin/balance-ton-compte/internal/repository"
)

type stubRepo struct {
	created   domain.Purchase
	createNow time.Time
	input     domain.PurchaseInput

	listed  []domain.Purchase
	updated *domain.Purchase
	deleted bool

	totals []domain.CategoryStat
	rows   []repository.SpendingRow

	rowsStart time.Time
	rowsEnd   time.Time
}

func (s *stubRepo) CreatePurchase(_ context.Context, input domain.PurchaseInput, now time.Time) (domain.Purchase, error) {
	s.input = input
	s.createNow = now
	return s.created, nil
}

func (s *stubRepo) ListPurchases(context.Context, repository.ListOptions) ([]domain.Purchase, error) {
	return s.listed, nil
}

func (s *stubRepo) UpdatePurchase(context.Context, string, string, domain.PurchaseUpdate, time.Time) (*domain.Purchase, error) {
	return s.updated, nil
}

func (s *stubRepo) DeletePurchase(context.Context, string, string) (bool, error) {
	return s.deleted, nil
}

func (s *stubRepo) FetchCategoryTotals(context.Context, string, *time.Time, *time.Time) ([]domain.CategoryStat, error) {
	return s.totals, nil
}

func (s *stubRepo) FetchSpendingRows(_ context.Context, _ string, start, end time.Time) ([]repository.SpendingRow, error) {
	s.rowsStart = start
	s.rowsEnd = end
	return s.rows, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreatePurchase_RequiresDate(t *testing.T) {
	svc := NewLedgerService(&stubRepo{}, nil)

	_, err := svc.CreatePurchase(context.Background(), domain.PurchaseInput{UserID: "U1"})
	assert.Error(t, err)
}

func TestCreatePurchase_StampsBookkeepingClock(t *testing.T) {
	repo := &stubRepo{}
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	svc := NewLedgerService(repo, fixedClock(now))

	_, err := svc.CreatePurchase(context.Background(), domain.PurchaseInput{
		UserID: "U1",
		Date:   date(2024, time.March, 15),
	})
	require.NoError(t, err)
	assert.True(t, repo.createNow.Equal(now), "createdAt/updatedAt come from the service clock, never the caller")
}

func TestGetPurchaseStats_Scenario(t *testing.T) {
	repo := &stubRepo{
		totals: []domain.CategoryStat{
			{CategoryID: "C1", TotalAmount: 42.50, Count: 1},
		},
	}
	svc := NewLedgerService(repo, nil)

	start := date(2024, time.March, 1)
	end := date(2024, time.March, 31)
	stats, err := svc.GetPurchaseStats(context.Background(), "U1", &start, &end)
	require.NoError(t, err)

	assert.Equal(t, 42.50, stats.TotalAmount)
	assert.Equal(t, int64(1), stats.TotalCount)
	require.Len(t, stats.Categories, 1)
	assert.Equal(t, "C1", stats.Categories[0].CategoryID)
}

func TestGetPurchaseStats_SortedByDescendingTotal(t *testing.T) {
	repo := &stubRepo{
		totals: []domain.CategoryStat{
			{CategoryID: "small", TotalAmount: 5, Count: 1},
			{CategoryID: "big", TotalAmount: 100, Count: 3},
			{CategoryID: "b-tie", TotalAmount: 5, Count: 2},
		},
	}
	svc := NewLedgerService(repo, nil)

	stats, err := svc.GetPurchaseStats(context.Background(), "U1", nil, nil)
	require.NoError(t, err)

	require.Len(t, stats.Categories, 3)
	assert.Equal(t, "big", stats.Categories[0].CategoryID)
	assert.Equal(t, "b-tie", stats.Categories[1].CategoryID, "ties break on category id")
	assert.Equal(t, "small", stats.Categories[2].CategoryID)
	assert.Equal(t, 110.0, stats.TotalAmount)
	assert.Equal(t, int64(6), stats.TotalCount)
}

func TestGetPurchaseStats_EmptyLedgerIsZero(t *testing.T) {
	svc := NewLedgerService(&stubRepo{}, nil)

	stats, err := svc.GetPurchaseStats(context.Background(), "U1", nil, nil)
	require.NoError(t, err)

	assert.Zero(t, stats.TotalAmount)
	assert.Zero(t, stats.TotalCount)
	assert.Empty(t, stats.Categories)
}

func TestGetMonthlyPurchaseStats_Scenario(t *testing.T) {
	repo := &stubRepo{
		rows: []repository.SpendingRow{
			{CategoryID: domain.OtherCategory, Date: date(2024, time.January, 10), Amount: 10},
			{CategoryID: domain.OtherCategory, Date: date(2024, time.March, 5), Amount: 20},
		},
	}
	svc := NewLedgerService(repo, nil)

	end := date(2024, time.March, 31)
	stats, err := svc.GetMonthlyPurchaseStats(context.Background(), "U1", nil, &end, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"January 2024", "February 2024", "March 2024"}, stats.Months)
	require.Len(t, stats.Categories, 1)
	assert.Equal(t, domain.OtherCategory, stats.Categories[0].CategoryID)
	assert.Equal(t, []float64{10, 0, 20}, stats.Categories[0].MonthlyAmounts)

	// derived window: end minus (months-1) whole months, truncated to the
	// first of that month
	assert.True(t, repo.rowsStart.Equal(date(2024, time.January, 1)))
	assert.True(t, repo.rowsEnd.Equal(end))
}

func TestGetMonthlyPurchaseStats_YearRollover(t *testing.T) {
	svc := NewLedgerService(&stubRepo{}, nil)

	end := date(2025, time.January, 15)
	stats, err := svc.GetMonthlyPurchaseStats(context.Background(), "U1", nil, &end, 6)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"August 2024",
		"September 2024",
		"October 2024",
		"November 2024",
		"December 2024",
		"January 2025",
	}, stats.Months)
}

func TestGetMonthlyPurchaseStats_DefaultsToSixMonths(t *testing.T) {
	now := date(2024, time.June, 10)
	svc := NewLedgerService(&stubRepo{}, fixedClock(now))

	stats, err := svc.GetMonthlyPurchaseStats(context.Background(), "U1", nil, nil, 0)
	require.NoError(t, err)

	require.Len(t, stats.Months, 6)
	assert.Equal(t, "January 2024", stats.Months[0])
	assert.Equal(t, "June 2024", stats.Months[5])
}

func TestGetMonthlyPurchaseStats_SeriesAlignAndZeroFill(t *testing.T) {
	repo := &stubRepo{
		rows: []repository.SpendingRow{
			{CategoryID: "C1", Date: date(2024, time.January, 3), Amount: 5},
			{CategoryID: "C2", Date: date(2024, time.February, 8), Amount: 7},
			{CategoryID: "C1", Date: date(2024, time.February, 20), Amount: 2.5},
		},
	}
	svc := NewLedgerService(repo, nil)

	end := date(2024, time.March, 31)
	stats, err := svc.GetMonthlyPurchaseStats(context.Background(), "U1", nil, &end, 3)
	require.NoError(t, err)

	require.Len(t, stats.Categories, 2)
	for _, series := range stats.Categories {
		assert.Len(t, series.MonthlyAmounts, len(stats.Months),
			"every series aligns positionally with the month axis")
	}

	// categories appear in order of first spending occurrence
	assert.Equal(t, "C1", stats.Categories[0].CategoryID)
	assert.Equal(t, []float64{5, 2.5, 0}, stats.Categories[0].MonthlyAmounts)
	assert.Equal(t, "C2", stats.Categories[1].CategoryID)
	assert.Equal(t, []float64{0, 7, 0}, stats.Categories[1].MonthlyAmounts)
}

func TestGetMonthlyPurchaseStats_RowsOutsideAxisIgnored(t *testing.T) {
	repo := &stubRepo{
		rows: []repository.SpendingRow{
			{CategoryID: "C1", Date: date(2023, time.December, 31), Amount: 99},
			{CategoryID: "C1", Date: date(2024, time.January, 1), Amount: 1},
		},
	}
	svc := NewLedgerService(repo, nil)

	start := date(2024, time.January, 1)
	end := date(2024, time.February, 28)
	stats, err := svc.GetMonthlyPurchaseStats(context.Background(), "U1", &start, &end, 2)
	require.NoError(t, err)

	require.Len(t, stats.Categories, 1)
	assert.Equal(t, []float64{1, 0}, stats.Categories[0].MonthlyAmounts,
		"the bucket axis is authoritative; out-of-axis rows never appear")
}

func TestGetMonthlyPurchaseStats_InactiveCategoriesOmitted(t *testing.T) {
	svc := NewLedgerService(&stubRepo{}, nil)

	end := date(2024, time.March, 31)
	stats, err := svc.GetMonthlyPurchaseStats(context.Background(), "U1", nil, &end, 3)
	require.NoError(t, err)

	assert.Len(t, stats.Months, 3, "empty data never shrinks the axis")
	assert.Empty(t, stats.Categories, "only categories with activity appear")
}

func TestMonthlyAndTotalsReconcile(t *testing.T) {
	rows := []repository.SpendingRow{
		{CategoryID: "C1", Date: date(2024, time.January, 3), Amount: 5},
		{CategoryID: "C1", Date: date(2024, time.February, 8), Amount: 7},
	}
	repo := &stubRepo{
		rows: rows,
		totals: []domain.CategoryStat{
			{CategoryID: "C1", TotalAmount: 12, Count: 2},
		},
	}
	svc := NewLedgerService(repo, nil)

	start := date(2024, time.January, 1)
	end := date(2024, time.March, 31)

	monthly, err := svc.GetMonthlyPurchaseStats(context.Background(), "U1", &start, &end, 3)
	require.NoError(t, err)
	totals, err := svc.GetPurchaseStats(context.Background(), "U1", &start, &end)
	require.NoError(t, err)

	var monthlySum float64
	for _, amount := range monthly.Categories[0].MonthlyAmounts {
		monthlySum += amount
	}
	assert.Equal(t, totals.Categories[0].TotalAmount, monthlySum,
		"summing a category's series equals its total over the same window")
}

func TestMonthBuckets_ZeroPaddedKeys(t *testing.T) {
	buckets := monthBuckets(date(2024, time.March, 15), 2)

	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-03", buckets[0].key)
	assert.Equal(t, "2024-04", buckets[1].key)
	assert.Equal(t, "March 2024", buckets[0].label)
}
