package server

import (
	"math"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
)

type createPurchaseRequest struct {
	UserID      string   `json:"userId"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"categoryId"`
}

func (r createPurchaseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required),
		validation.Field(&r.Date, validation.Required, validation.Date(time.RFC3339)),
		validation.Field(&r.Price, validation.By(finiteNumber)),
	)
}

type updatePurchaseRequest struct {
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Date        *string  `json:"date"`
	Tags        []string `json:"tags"`
	CategoryID  *string  `json:"categoryId"`
}

func (r updatePurchaseRequest) Validate() error {
	rules := []*validation.FieldRules{
		validation.Field(&r.Price, validation.By(finiteNumberPtr)),
	}
	if r.Date != nil {
		rules = append(rules, validation.Field(&r.Date, validation.Date(time.RFC3339)))
	}
	return validation.ValidateStruct(&r, rules...)
}

// finiteNumber rejects NaN and infinities; negative amounts stay legal since
// refunds are recorded as signed prices.
func finiteNumber(value any) error {
	price, ok := value.(float64)
	if !ok {
		return nil
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return validation.NewError("validation_price_finite", "must be a finite number")
	}
	return nil
}

func finiteNumberPtr(value any) error {
	switch v := value.(type) {
	case *float64:
		if v == nil {
			return nil
		}
		return finiteNumber(*v)
	case float64:
		return finiteNumber(v)
	}
	return nil
}

type purchaseResponse struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	CategoryID  *string  `json:"categoryId"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toPurchaseResponse(p domain.Purchase) purchaseResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return purchaseResponse{
		ID:          p.ID,
		Description: p.Description,
		Price:       p.Price,
		Date:        formatTimestamp(p.Date),
		Tags:        tags,
		CategoryID:  p.CategoryID,
		CreatedAt:   formatTimestamp(p.CreatedAt),
		UpdatedAt:   formatTimestamp(p.UpdatedAt),
	}
}

type categoryStatResponse struct {
	CategoryID  string  `json:"categoryId"`
	TotalAmount float64 `json:"totalAmount"`
	Count       int64   `json:"count"`
}

type purchaseStatsResponse struct {
	TotalAmount     float64                `json:"totalAmount"`
	TotalCount      int64                  `json:"totalCount"`
	CategoriesStats []categoryStatResponse `json:"categoriesStats"`
}

type categorySeriesResponse struct {
	CategoryID     string    `json:"categoryId"`
	MonthlyAmounts []float64 `json:"monthlyAmounts"`
}

type monthlyStatsResponse struct {
	Months        []string                 `json:"months"`
	CategoryStats []categorySeriesResponse `json:"categoryStats"`
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
