package domain

import "time"

// OtherCategory is the sentinel category id used in aggregate views for
// purchases without a BELONGS_TO relationship.
const OtherCategory = "other"

// Purchase models a spending record node in the graph. CategoryID is nil when
// the purchase carries no BELONGS_TO relationship.
type Purchase struct {
	ID          string
	Description string
	Price       float64
	Date        time.Time
	Tags        []string
	CategoryID  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PurchaseInput is the inbound payload for creating a purchase. CategoryID is
// optional; an empty string means uncategorized.
type PurchaseInput struct {
	UserID      string
	Description string
	Price       float64
	Date        time.Time
	Tags        []string
	CategoryID  string
}

// PurchaseUpdate carries a field-level partial update. Nil fields are left
// untouched; a non-nil CategoryID replaces the category link.
type PurchaseUpdate struct {
	Description *string
	Price       *float64
	Date        *time.Time
	Tags        []string
	CategoryID  *string
}

// CategoryStat aggregates spending for one category within a date range.
type CategoryStat struct {
	CategoryID  string
	TotalAmount float64
	Count       int64
}

// PurchaseStats is the totals report over a user's ledger.
type PurchaseStats struct {
	TotalAmount float64
	TotalCount  int64
	Categories  []CategoryStat
}

// CategorySeries holds one category's monthly totals, aligned positionally to
// the bucket axis of the report it belongs to.
type CategorySeries struct {
	CategoryID     string
	MonthlyAmounts []float64
}

// MonthlyStats is the month-series report: a fixed-length axis of calendar
// months and one zero-filled series per category observed in the window.
type MonthlyStats struct {
	Months     []string
	Categories []CategorySeries
}
