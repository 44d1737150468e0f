package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
)

// ListOptions defines filters and pagination for purchase listing.
type ListOptions struct {
	UserID     string
	CategoryID string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// filter is one conditional clause with its named placeholder. Queries are
// assembled by reducing an ordered filter list into a fixed skeleton, so
// clause order is data rather than an accident of string concatenation.
type filter struct {
	clause string
	param  string
	value  any
}

// dateFilters returns the range clauses in their contractual order: lower
// bound first, upper bound second. Category filtering never appears here; it
// is a traversal choice handled by categoryMatch so it cannot exclude rows
// before the date window is evaluated.
func dateFilters(start, end *time.Time) []filter {
	var filters []filter
	if start != nil && !start.IsZero() {
		filters = append(filters, filter{
			clause: "datetime(p.date) >= datetime($startDate)",
			param:  "startDate",
			value:  formatTime(*start),
		})
	}
	if end != nil && !end.IsZero() {
		filters = append(filters, filter{
			clause: "datetime(p.date) <= datetime($endDate)",
			param:  "endDate",
			value:  formatTime(*end),
		})
	}
	return filters
}

// whereClause renders the filter list as a WHERE block, or nothing when no
// filter applies.
func whereClause(filters []filter) string {
	if len(filters) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(filters))
	for _, f := range filters {
		clauses = append(clauses, f.clause)
	}
	return "WHERE " + strings.Join(clauses, "\n  AND ") + "\n"
}

// bindFilters copies each filter's value into the parameter bag.
func bindFilters(params map[string]any, filters []filter) {
	for _, f := range filters {
		params[f.param] = f.value
	}
}

// categoryMatch selects how the BELONGS_TO relationship is traversed. With a
// category filter the match is mandatory; without one it must be optional so
// uncategorized purchases are not excluded.
func categoryMatch(categoryID string) string {
	if categoryID != "" {
		return "MATCH (p)-[:BELONGS_TO]->(c:Category {categoryId: $categoryId})"
	}
	return "OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)"
}

const purchaseReturnClause = `RETURN p.purchaseId AS purchaseId,
       p.description AS description,
       p.price AS price,
       p.date AS date,
       p.tags AS tags,
       p.createdAt AS createdAt,
       p.updatedAt AS updatedAt,
       c.categoryId AS categoryId`

const listPurchasesCypherTemplate = `
MATCH (p:Purchase)-[:MADE_BY]->(:User {userId: $userId})
%sWITH p, c
` + purchaseReturnClause + `
ORDER BY datetime(p.date) DESC
SKIP $skip LIMIT $limit
`

// buildListQuery produces the list statement and its parameter bag. Skip and
// limit are bound as int64 so they reach the store as native integers rather
// than floats.
func buildListQuery(opts ListOptions) (string, map[string]any) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	params := map[string]any{
		"userId": opts.UserID,
		"skip":   int64(offset),
		"limit":  int64(limit),
	}

	filters := dateFilters(opts.StartDate, opts.EndDate)
	bindFilters(params, filters)
	if opts.CategoryID != "" {
		params["categoryId"] = opts.CategoryID
	}

	body := whereClause(filters) + categoryMatch(opts.CategoryID) + "\n"
	query := fmt.Sprintf(listPurchasesCypherTemplate, body)
	return query, params
}

const createPurchaseCypherTemplate = `
MERGE (u:User {userId: $userId})
CREATE (p:Purchase {
  purchaseId: randomUUID(),
  description: $description,
  price: $price,
  date: $date,
  tags: $tags,
  createdAt: $now,
  updatedAt: $now
})
CREATE (p)-[:MADE_BY]->(u)
%sWITH p
OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)
` + purchaseReturnClause + `
`

const createCategoryLinkClause = `WITH p
MERGE (cat:Category {categoryId: $categoryId})
CREATE (p)-[:BELONGS_TO]->(cat)
`

// buildCreateQuery produces the single-write create statement. The owning
// user (and the category, when given) is upserted inside the same statement
// so the purchase is never observable without its MADE_BY edge.
func buildCreateQuery(input domain.PurchaseInput, now time.Time) (string, map[string]any) {
	params := map[string]any{
		"userId":      input.UserID,
		"description": input.Description,
		"price":       input.Price,
		"date":        formatTime(input.Date),
		"tags":        tagsParam(input.Tags),
		"now":         formatTime(now),
	}

	categoryBlock := ""
	if input.CategoryID != "" {
		categoryBlock = createCategoryLinkClause
		params["categoryId"] = input.CategoryID
	}

	return fmt.Sprintf(createPurchaseCypherTemplate, categoryBlock), params
}

const updatePurchaseCypherTemplate = `
MATCH (p:Purchase {purchaseId: $purchaseId})-[:MADE_BY]->(:User {userId: $userId})
SET %s
%sWITH p
OPTIONAL MATCH (p)-[:BELONGS_TO]->(c:Category)
` + purchaseReturnClause + `
`

// Category replacement runs inside the update write: the target category is
// upserted, the previous BELONGS_TO edge (if any) removed and the new one
// created in the same execution, so the purchase is never observably
// unlinked while a replacement is in flight.
const updateCategoryLinkClause = `WITH p
MERGE (cat:Category {categoryId: $categoryId})
WITH p, cat
OPTIONAL MATCH (p)-[old:BELONGS_TO]->(:Category)
DELETE old
CREATE (p)-[:BELONGS_TO]->(cat)
`

// buildUpdateQuery assembles the partial-update statement. Only supplied
// fields produce SET assignments; updatedAt is always refreshed. The MATCH
// carries the ownership check, so an empty result means not found.
func buildUpdateQuery(id, userID string, update domain.PurchaseUpdate, now time.Time) (string, map[string]any) {
	params := map[string]any{
		"purchaseId": id,
		"userId":     userID,
		"now":        formatTime(now),
	}

	assignments := make([]string, 0, 5)
	if update.Description != nil {
		assignments = append(assignments, "p.description = $description")
		params["description"] = *update.Description
	}
	if update.Price != nil {
		assignments = append(assignments, "p.price = $price")
		params["price"] = *update.Price
	}
	if update.Date != nil {
		assignments = append(assignments, "p.date = $date")
		params["date"] = formatTime(*update.Date)
	}
	if update.Tags != nil {
		assignments = append(assignments, "p.tags = $tags")
		params["tags"] = tagsParam(update.Tags)
	}
	assignments = append(assignments, "p.updatedAt = $now")

	categoryBlock := ""
	if update.CategoryID != nil && *update.CategoryID != "" {
		categoryBlock = updateCategoryLinkClause
		params["categoryId"] = *update.CategoryID
	}

	query := fmt.Sprintf(updatePurchaseCypherTemplate, strings.Join(assignments, ",\n    "), categoryBlock)
	return query, params
}

const ensureUserCypher = `
MERGE (u:User {userId: $userId})
RETURN u.userId AS userId
`

const ensureCategoryCypher = `
MERGE (c:Category {categoryId: $categoryId})
RETURN c.categoryId AS categoryId
`

const purchaseOwnershipCypher = `
MATCH (p:Purchase {purchaseId: $purchaseId})-[:MADE_BY]->(:User {userId: $userId})
RETURN p.purchaseId AS purchaseId
`

const deletePurchaseCypher = `
MATCH (p:Purchase {purchaseId: $purchaseId})-[:MADE_BY]->(:User {userId: $userId})
DETACH DELETE p
`

// tagsParam converts tags into the generic slice shape the driver serializes,
// defaulting to an empty list rather than null.
func tagsParam(tags []string) []any {
	out := make([]any, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tag)
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
