package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
	"github.com/ArthurFrin/balance-ton-compte/internal/repository"
)

// LedgerRepository is the storage contract required by the ledger service.
type LedgerRepository interface {
	CreatePurchase(ctx context.Context, input domain.PurchaseInput, now time.Time) (domain.Purchase, error)
	ListPurchases(ctx context.Context, opts repository.ListOptions) ([]domain.Purchase, error)
	UpdatePurchase(ctx context.Context, id, userID string, update domain.PurchaseUpdate, now time.Time) (*domain.Purchase, error)
	DeletePurchase(ctx context.Context, id, userID string) (bool, error)
	FetchCategoryTotals(ctx context.Context, userID string, start, end *time.Time) ([]domain.CategoryStat, error)
	FetchSpendingRows(ctx context.Context, userID string, start, end time.Time) ([]repository.SpendingRow, error)
}

const defaultMonths = 6

// bucketKeyLayout renders a calendar month as its canonical two-digit
// zero-padded key, e.g. "2024-03".
const bucketKeyLayout = "2006-01"

// bucketLabelLayout renders the caller-facing month label, e.g. "March 2024".
const bucketLabelLayout = "January 2006"

// LedgerService implements the caller-facing ledger operations: purchase
// CRUD with ownership scoping plus the two aggregate reports. Bookkeeping
// timestamps come from nowFn so tests can pin the clock.
type LedgerService struct {
	repo  LedgerRepository
	nowFn func() time.Time
}

// NewLedgerService constructs a LedgerService. A nil nowFn defaults to time.Now.
func NewLedgerService(repo LedgerRepository, nowFn func() time.Time) *LedgerService {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &LedgerService{repo: repo, nowFn: nowFn}
}

// ListParams defines filters for listing a user's purchases.
type ListParams struct {
	UserID     string
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

// CreatePurchase records a new purchase and returns the materialized record.
func (s *LedgerService) CreatePurchase(ctx context.Context, input domain.PurchaseInput) (domain.Purchase, error) {
	if input.UserID == "" {
		return domain.Purchase{}, errors.New("user id is required")
	}
	if input.Date.IsZero() {
		return domain.Purchase{}, errors.New("purchase date is required")
	}
	return s.repo.CreatePurchase(ctx, input, s.nowFn().UTC())
}

// ListPurchases returns the user's purchases, newest first.
func (s *LedgerService) ListPurchases(ctx context.Context, params ListParams) ([]domain.Purchase, error) {
	return s.repo.ListPurchases(ctx, repository.ListOptions{
		UserID:     params.UserID,
		CategoryID: params.CategoryID,
		StartDate:  params.StartDate,
		EndDate:    params.EndDate,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
}

// UpdatePurchase applies a partial update. A nil result with a nil error is
// the not-found signal callers must branch on.
func (s *LedgerService) UpdatePurchase(ctx context.Context, id, userID string, update domain.PurchaseUpdate) (*domain.Purchase, error) {
	return s.repo.UpdatePurchase(ctx, id, userID, update, s.nowFn().UTC())
}

// DeletePurchase removes a purchase, reporting whether it was found.
func (s *LedgerService) DeletePurchase(ctx context.Context, id, userID string) (bool, error) {
	return s.repo.DeletePurchase(ctx, id, userID)
}

// GetPurchaseStats computes the totals report: overall amount and count plus
// per-category breakdowns sorted by descending total, with uncategorized
// spending under the "other" sentinel. Overall figures are derived from the
// category rows, so the two views always reconcile.
func (s *LedgerService) GetPurchaseStats(ctx context.Context, userID string, start, end *time.Time) (domain.PurchaseStats, error) {
	categories, err := s.repo.FetchCategoryTotals(ctx, userID, start, end)
	if err != nil {
		return domain.PurchaseStats{}, err
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].TotalAmount != categories[j].TotalAmount {
			return categories[i].TotalAmount > categories[j].TotalAmount
		}
		return categories[i].CategoryID < categories[j].CategoryID
	})

	stats := domain.PurchaseStats{Categories: categories}
	for _, c := range categories {
		stats.TotalAmount += c.TotalAmount
		stats.TotalCount += c.Count
	}
	return stats, nil
}

// GetMonthlyPurchaseStats computes the month-series report: a fixed axis of
// consecutive calendar-month buckets and, per category observed in the
// window, a zero-filled series of monthly totals aligned to that axis.
func (s *LedgerService) GetMonthlyPurchaseStats(ctx context.Context, userID string, start, end *time.Time, months int) (domain.MonthlyStats, error) {
	if months <= 0 {
		months = defaultMonths
	}

	endDate := s.nowFn().UTC()
	if end != nil && !end.IsZero() {
		endDate = end.UTC()
	}

	startDate := monthStart(endDate).AddDate(0, -(months - 1), 0)
	if start != nil && !start.IsZero() {
		startDate = start.UTC()
	}

	buckets := monthBuckets(startDate, months)

	rows, err := s.repo.FetchSpendingRows(ctx, userID, startDate, endDate)
	if err != nil {
		return domain.MonthlyStats{}, err
	}

	// Two-key accumulation table: category -> bucket key -> sum. Category
	// order is the order of first spending occurrence over the ascending
	// date scan, which keeps the output reproducible for a given ledger.
	totals := make(map[string]map[string]float64)
	var categoryOrder []string
	bucketSet := make(map[string]struct{}, len(buckets))
	for _, b := range buckets {
		bucketSet[b.key] = struct{}{}
	}

	for _, row := range rows {
		key := row.Date.UTC().Format(bucketKeyLayout)
		if _, ok := bucketSet[key]; !ok {
			// The bucket axis is authoritative; rows outside it never
			// extend the report.
			continue
		}
		if _, ok := totals[row.CategoryID]; !ok {
			totals[row.CategoryID] = make(map[string]float64, len(buckets))
			categoryOrder = append(categoryOrder, row.CategoryID)
		}
		totals[row.CategoryID][key] += row.Amount
	}

	report := domain.MonthlyStats{
		Months:     make([]string, 0, len(buckets)),
		Categories: make([]domain.CategorySeries, 0, len(categoryOrder)),
	}
	for _, b := range buckets {
		report.Months = append(report.Months, b.label)
	}
	for _, categoryID := range categoryOrder {
		series := domain.CategorySeries{
			CategoryID:     categoryID,
			MonthlyAmounts: make([]float64, 0, len(buckets)),
		}
		for _, b := range buckets {
			series.MonthlyAmounts = append(series.MonthlyAmounts, totals[categoryID][b.key])
		}
		report.Categories = append(report.Categories, series)
	}
	return report, nil
}

type monthBucket struct {
	key   string
	label string
}

// monthStart truncates t to the first day of its calendar month at midnight.
func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthBuckets generates count strictly consecutive calendar-month buckets
// starting at the month containing start. Year boundaries roll over through
// AddDate on first-of-month values, so a six-month window ending in January
// reaches back to the previous year's August without special cases.
func monthBuckets(start time.Time, count int) []monthBucket {
	first := monthStart(start.UTC())
	buckets := make([]monthBucket, 0, count)
	for i := 0; i < count; i++ {
		m := first.AddDate(0, i, 0)
		buckets = append(buckets, monthBucket{
			key:   m.Format(bucketKeyLayout),
			label: m.Format(bucketLabelLayout),
		})
	}
	return buckets
}
