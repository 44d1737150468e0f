package repository

import (
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
	"github.com/ArthurFrin/balance-ton-compte/internal/graph"
)

// Value normalization. The store hands back a mix of representations
// depending on how a property was written and read: plain Go numerics,
// driver temporal types, or RFC3339 strings. Everything is folded into
// canonical float64 / time.Time values; shapes we do not recognize
// normalize to zero values instead of failing the whole report.

func asString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return ""
	}
}

func asFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func asInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func asStringSlice(val any) []string {
	switch v := val.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func asTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case dbtype.LocalDateTime:
		t := v.Time()
		return &t
	case dbtype.Date:
		t := v.Time()
		return &t
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
	}
	return nil
}

// materializePurchase maps a raw row onto the canonical purchase record,
// merging in the linked category id. A missing categoryId column (no
// BELONGS_TO edge) yields a nil CategoryID.
func materializePurchase(rec graph.Record) domain.Purchase {
	p := domain.Purchase{
		ID:          asString(rec["purchaseId"]),
		Description: asString(rec["description"]),
		Price:       asFloat64(rec["price"]),
		Tags:        asStringSlice(rec["tags"]),
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if t := asTimePtr(rec["date"]); t != nil {
		p.Date = *t
	}
	if t := asTimePtr(rec["createdAt"]); t != nil {
		p.CreatedAt = *t
	}
	if t := asTimePtr(rec["updatedAt"]); t != nil {
		p.UpdatedAt = *t
	}
	if id := asString(rec["categoryId"]); id != "" {
		p.CategoryID = &id
	}
	return p
}
