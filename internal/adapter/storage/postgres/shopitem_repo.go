package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"panospace-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ShopItemRepo implements ports.ShopItemRepository. Print sizes are
// stored as a JSONB column on the item row.
type ShopItemRepo struct {
	pool Pool
}

// NewShopItemRepo creates a new ShopItemRepo.
func NewShopItemRepo(pool Pool) *ShopItemRepo {
	return &ShopItemRepo{pool: pool}
}

// GetByID fetches a shop item by id. Returns nil when absent.
func (r *ShopItemRepo) GetByID(ctx context.Context, id string) (*domain.ShopItem, error) {
	query := `SELECT id, seller_id, title, image_url, print_sizes, created_at, updated_at
		FROM shop_items WHERE id = $1`

	item := &domain.ShopItem{}
	var sizesJSON []byte
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.SellerID, &item.Title, &item.ImageURL,
		&sizesJSON, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shop item: %w", err)
	}

	if len(sizesJSON) > 0 {
		if err := json.Unmarshal(sizesJSON, &item.PrintSizes); err != nil {
			return nil, fmt.Errorf("decode print sizes for item %s: %w", id, err)
		}
	}
	return item, nil
}
