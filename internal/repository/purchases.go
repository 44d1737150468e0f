package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArthurFrin/balance-ton-compte/internal/domain"
	"github.com/ArthurFrin/balance-ton-compte/internal/graph"
)

// ErrNoRecordReturned indicates a write that must return exactly one record
// returned none. It signals a storage-layer inconsistency, not contention,
// and is never retried here.
var ErrNoRecordReturned = errors.New("write returned no record")

// Repository implements purchase persistence over the graph client. Every
// mutating or deleting operation is scoped to the owning user through the
// MADE_BY edge; a missing edge is indistinguishable from a missing purchase.
type Repository struct {
	client graph.Client
}

// New instantiates a Repository backed by the supplied graph client.
func New(client graph.Client) *Repository {
	return &Repository{client: client}
}

// EnsureUser idempotently upserts the user node for the given id.
func (r *Repository) EnsureUser(ctx context.Context, userID string) error {
	if userID == "" {
		return errors.New("user id is required")
	}
	_, err := r.client.ExecuteWrite(ctx, ensureUserCypher, map[string]any{"userId": userID})
	if err != nil {
		return fmt.Errorf("ensure user %s: %w", userID, err)
	}
	return nil
}

// EnsureCategory idempotently upserts the category node for the given id.
func (r *Repository) EnsureCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return errors.New("category id is required")
	}
	_, err := r.client.ExecuteWrite(ctx, ensureCategoryCypher, map[string]any{"categoryId": categoryID})
	if err != nil {
		return fmt.Errorf("ensure category %s: %w", categoryID, err)
	}
	return nil
}

// CreatePurchase creates a purchase owned by input.UserID in a single write.
// The owning user, and the category when given, are upserted inside that
// write, so no separate provisioning step is needed.
func (r *Repository) CreatePurchase(ctx context.Context, input domain.PurchaseInput, now time.Time) (domain.Purchase, error) {
	if input.UserID == "" {
		return domain.Purchase{}, errors.New("user id is required")
	}

	query, params := buildCreateQuery(input, now)
	res, err := r.client.ExecuteWrite(ctx, query, params)
	if err != nil {
		return domain.Purchase{}, fmt.Errorf("create purchase: %w", err)
	}
	if len(res.Records) == 0 {
		return domain.Purchase{}, fmt.Errorf("create purchase: %w", ErrNoRecordReturned)
	}

	return materializePurchase(res.Records[0]), nil
}

// ListPurchases returns the user's purchases ordered by date descending.
// The user node is upserted first, so listing an unknown-but-valid user
// yields an empty ledger rather than a missing one.
func (r *Repository) ListPurchases(ctx context.Context, opts ListOptions) ([]domain.Purchase, error) {
	if opts.UserID == "" {
		return nil, errors.New("user id is required")
	}

	if err := r.EnsureUser(ctx, opts.UserID); err != nil {
		return nil, err
	}

	query, params := buildListQuery(opts)
	res, err := r.client.ExecuteRead(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}

	purchases := make([]domain.Purchase, 0, len(res.Records))
	for _, record := range res.Records {
		purchases = append(purchases, materializePurchase(record))
	}
	return purchases, nil
}

// UpdatePurchase applies a partial update to the purchase identified by id,
// provided it is owned by userID. A nil purchase with a nil error is the
// not-found signal: either the purchase does not exist or it belongs to a
// different user, and the two cases are deliberately indistinguishable.
func (r *Repository) UpdatePurchase(ctx context.Context, id, userID string, update domain.PurchaseUpdate, now time.Time) (*domain.Purchase, error) {
	if id == "" || userID == "" {
		return nil, errors.New("purchase id and user id are required")
	}

	if err := r.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	query, params := buildUpdateQuery(id, userID, update, now)
	res, err := r.client.ExecuteWrite(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("update purchase %s: %w", id, err)
	}
	if len(res.Records) == 0 {
		return nil, nil
	}

	purchase := materializePurchase(res.Records[0])
	return &purchase, nil
}

// DeletePurchase removes the purchase and all its relationships. Ownership
// is verified with a read first; when the purchase is absent (or owned by
// someone else) the method returns false without issuing any write.
func (r *Repository) DeletePurchase(ctx context.Context, id, userID string) (bool, error) {
	if id == "" || userID == "" {
		return false, errors.New("purchase id and user id are required")
	}

	params := map[string]any{
		"purchaseId": id,
		"userId":     userID,
	}

	res, err := r.client.ExecuteRead(ctx, purchaseOwnershipCypher, params)
	if err != nil {
		return false, fmt.Errorf("verify purchase %s ownership: %w", id, err)
	}
	if len(res.Records) == 0 {
		return false, nil
	}

	if _, err := r.client.ExecuteWrite(ctx, deletePurchaseCypher, params); err != nil {
		return false, fmt.Errorf("delete purchase %s: %w", id, err)
	}
	return true, nil
}
