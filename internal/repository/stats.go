package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
)

// SpendingRow is one purchase's contribution to an aggregate: its category
// (already folded to the "other" sentinel when uncategorized), when it
// happened and how much it cost.
type SpendingRow struct {
	CategoryID string
	Date       time.Time
	Amount     float64
}

const categoryTotalsCypherTemplate = `
MATCH (p:Purchase)-[:MADE_BY]->(:User {userId: $userId})
%sWITH p
OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)
WITH coalesce(c.categoryId, "other") AS categoryId, coalesce(p.price, 0.0) AS price
RETURN categoryId,
       sum(price) AS totalAmount,
       count(*) AS count
ORDER BY totalAmount DESC, categoryId ASC
`

// FetchCategoryTotals returns per-category spending sums and counts within
// the optional date range, sorted by descending total. Purchases without a
// category are grouped under the "other" sentinel by the query itself.
func (r *Repository) FetchCategoryTotals(ctx context.Context, userID string, start, end *time.Time) ([]domain.CategoryStat, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	params := map[string]any{"userId": userID}
	filters := dateFilters(start, end)
	bindFilters(params, filters)

	query := fmt.Sprintf(categoryTotalsCypherTemplate, whereClause(filters))
	res, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("category totals query: %w", err)
	}

	stats := make([]domain.CategoryStat, 0, len(res.Records))
	for _, record := range res.Records {
		stats = append(stats, domain.CategoryStat{
			CategoryID:  asString(record["categoryId"]),
			TotalAmount: asFloat64(record["totalAmount"]),
			Count:       asInt64(record["count"]),
		})
	}
	return stats, nil
}

const spendingRowsCypherTemplate = `
MATCH (p:Purchase)-[:MADE_BY]->(:User {userId: $userId})
%sWITH p
OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)
RETURN coalesce(c.categoryId, "other") AS categoryId,
       p.date AS date,
       coalesce(p.price, 0.0) AS amount
ORDER BY datetime(p.date) ASC
`

// FetchSpendingRows returns every purchase in the window as a (category,
// date, amount) row in ascending date order, ready for calendar bucketing.
func (r *Repository) FetchSpendingRows(ctx context.Context, userID string, start, end time.Time) ([]SpendingRow, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	params := map[string]any{"userId": userID}
	filters := dateFilters(&start, &end)
	bindFilters(params, filters)

	query := fmt.Sprintf(spendingRowsCypherTemplate, whereClause(filters))
	res, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("spending rows query: %w", err)
	}

	rows := make([]SpendingRow, 0, len(res.Records))
	for _, record := range res.Records {
		row := SpendingRow{
			CategoryID: asString(record["categoryId"]),
			Amount:     asFloat64(record["amount"]),
		}
		if row.CategoryID == "" {
			row.CategoryID = domain.OtherCategory
		}
		if t := asTimePtr(record["date"]); t != nil {
			row.Date = *t
		}
		rows = append(rows, row)
	}
	return rows, nil
}
