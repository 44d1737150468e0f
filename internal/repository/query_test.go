package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
)

func TestBuildListQuery_NoFilters(t *testing.T) {
	query, params := buildListQuery(ListOptions{UserID: "U1"})

	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)")
	assert.Contains(t, query, "ORDER BY datetime(p.date) DESC")

	assert.Equal(t, "U1", params["userId"])
	assert.Equal(t, int64(0), params["skip"])
	assert.Equal(t, int64(50), params["limit"])
	assert.NotContains(t, params, "categoryId")
}

func TestBuildListQuery_FilterOrder(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	query, params := buildListQuery(ListOptions{
		UserID:     "U1",
		CategoryID: "C1",
		StartDate:  &start,
		EndDate:    &end,
	})

	lower := strings.Index(query, ">= datetime($startDate)")
	upper := strings.Index(query, "<= datetime($endDate)")
	category := strings.Index(query, "[:BELONGS_TO]->(c:Category {categoryId: $categoryId})")

	require.Positive(t, lower)
	require.Positive(t, upper)
	require.Positive(t, category)
	assert.Less(t, lower, upper, "date lower bound must precede upper bound")
	assert.Less(t, upper, category, "date filters must precede category traversal")

	assert.NotContains(t, query, "OPTIONAL MATCH (p)-[:BELONGS_TO]")
	assert.Equal(t, "C1", params["categoryId"])
	assert.Equal(t, "2024-01-01T00:00:00Z", params["startDate"])
}

func TestBuildListQuery_PaginationCoercion(t *testing.T) {
	_, params := buildListQuery(ListOptions{UserID: "U1", Limit: 500, Offset: -3})

	// Native integers, never floats: a float64 skip/limit would be
	// rejected or silently truncated by the store.
	assert.Equal(t, int64(200), params["limit"])
	assert.Equal(t, int64(0), params["skip"])

	_, params = buildListQuery(ListOptions{UserID: "U1", Limit: 10, Offset: 20})
	assert.Equal(t, int64(10), params["limit"])
	assert.Equal(t, int64(20), params["skip"])
}

func TestBuildCreateQuery_WithoutCategory(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	input := domain.PurchaseInput{
		UserID:      "U1",
		Description: "coffee",
		Price:       3.5,
		Date:        now,
	}

	query, params := buildCreateQuery(input, now)

	assert.Contains(t, query, "MERGE (u:User {userId: $userId})")
	assert.Contains(t, query, "randomUUID()")
	assert.Contains(t, query, "CREATE (p)-[:MADE_BY]->(u)")
	assert.NotContains(t, query, "MERGE (cat:Category")
	assert.Contains(t, query, "OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)")

	assert.NotContains(t, params, "categoryId")
	assert.Equal(t, []any{}, params["tags"])
	assert.Equal(t, "2024-03-15T12:00:00Z", params["now"])
}

func TestBuildCreateQuery_WithCategory(t *testing.T) {
	now := time.Now().UTC()
	input := domain.PurchaseInput{
		UserID:     "U1",
		Price:      42.5,
		Date:       now,
		Tags:       []string{"food", "lunch"},
		CategoryID: "C1",
	}

	query, params := buildCreateQuery(input, now)

	assert.Contains(t, query, "MERGE (cat:Category {categoryId: $categoryId})")
	assert.Contains(t, query, "CREATE (p)-[:BELONGS_TO]->(cat)")
	assert.Equal(t, "C1", params["categoryId"])
	assert.Equal(t, []any{"food", "lunch"}, params["tags"])
}

func TestBuildUpdateQuery_PartialFields(t *testing.T) {
	now := time.Now().UTC()
	desc := "groceries"

	query, params := buildUpdateQuery("P1", "U1", domain.PurchaseUpdate{Description: &desc}, now)

	assert.Contains(t, query, "p.description = $description")
	assert.Contains(t, query, "p.updatedAt = $now")
	assert.NotContains(t, query, "p.price")
	assert.NotContains(t, query, "p.date =")
	assert.NotContains(t, query, "p.tags")

	assert.Equal(t, "groceries", params["description"])
	assert.NotContains(t, params, "price")
	assert.Equal(t, "P1", params["purchaseId"])
	assert.Equal(t, "U1", params["userId"])
}

func TestBuildUpdateQuery_AlwaysRefreshesUpdatedAt(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

	query, params := buildUpdateQuery("P1", "U1", domain.PurchaseUpdate{}, now)

	assert.Contains(t, query, "SET p.updatedAt = $now")
	assert.Equal(t, "2024-06-01T08:30:00Z", params["now"])
}

func TestBuildUpdateQuery_CategoryReplacement(t *testing.T) {
	now := time.Now().UTC()
	category := "C2"
	price := 10.0

	query, params := buildUpdateQuery("P1", "U1", domain.PurchaseUpdate{
		Price:      &price,
		CategoryID: &category,
	}, now)

	// Edge removal and creation live in the same statement, so the
	// purchase is never observable half-linked.
	merge := strings.Index(query, "MERGE (cat:Category {categoryId: $categoryId})")
	del := strings.Index(query, "DELETE old")
	create := strings.Index(query, "CREATE (p)-[:BELONGS_TO]->(cat)")

	require.Positive(t, merge)
	require.Positive(t, del)
	require.Positive(t, create)
	assert.Less(t, merge, del)
	assert.Less(t, del, create)

	assert.Equal(t, "C2", params["categoryId"])
	assert.Equal(t, 10.0, params["price"])
}

func TestBuildUpdateQuery_EmptyCategoryLeavesLinkAlone(t *testing.T) {
	now := time.Now().UTC()
	empty := ""

	query, params := buildUpdateQuery("P1", "U1", domain.PurchaseUpdate{CategoryID: &empty}, now)

	assert.NotContains(t, query, "DELETE old")
	assert.NotContains(t, params, "categoryId")
}
