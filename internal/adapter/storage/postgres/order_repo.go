package postgres

import (
	"context"
	"errors"
	"fmt"

	"panospace-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// OrderRepo implements ports.OrderRepository. The unique constraint on
// payment_reference is the idempotency authority for webhook settlement.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// Insert writes an order within a database transaction. It returns
// false without error when an order with the same payment reference
// already exists, leaving the transaction usable for rollback.
func (r *OrderRepo) Insert(ctx context.Context, tx pgx.Tx, o *domain.Order) (bool, error) {
	query := `INSERT INTO orders (id, buyer_id, seller_id, item_id, item_type, size_id,
		gross_amount, seller_earnings, platform_cut, royalty_amount, payment_reference, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (payment_reference) DO NOTHING`

	tag, err := tx.Exec(ctx, query,
		o.ID, o.BuyerID, o.SellerID, o.ItemID, o.ItemType, o.SizeID,
		o.GrossAmount, o.SellerEarnings, o.PlatformCut, o.RoyaltyAmount,
		o.PaymentReference, o.Status, o.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert order: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// GetByPaymentReference fetches an order by the processor's reference.
// Returns nil when no such order exists.
func (r *OrderRepo) GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT id, buyer_id, seller_id, item_id, item_type, size_id,
		gross_amount, seller_earnings, platform_cut, royalty_amount, payment_reference, status, created_at
		FROM orders WHERE payment_reference = $1`

	o := &domain.Order{}
	err := r.pool.QueryRow(ctx, query, reference).Scan(
		&o.ID, &o.BuyerID, &o.SellerID, &o.ItemID, &o.ItemType, &o.SizeID,
		&o.GrossAmount, &o.SellerEarnings, &o.PlatformCut, &o.RoyaltyAmount,
		&o.PaymentReference, &o.Status, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by payment reference: %w", err)
	}
	return o, nil
}
