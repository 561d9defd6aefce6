package domain

import (
	"time"
)

// PrintSize is a purchasable physical print format for a shop item.
type PrintSize struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Price int64  `json:"price"` // cents
}

// ShopItem is a listed artwork with optional physical print sizes.
// PrintSizes is stored as JSONB alongside the item row.
type ShopItem struct {
	ID         string      `json:"id"`
	SellerID   string      `json:"seller_id"`
	Title      string      `json:"title"`
	ImageURL   string      `json:"image_url"`
	PrintSizes []PrintSize `json:"print_sizes,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// SizeByID returns the print size with the given id, or false.
func (s *ShopItem) SizeByID(sizeID string) (PrintSize, bool) {
	for _, sz := range s.PrintSizes {
		if sz.ID == sizeID {
			return sz, true
		}
	}
	return PrintSize{}, false
}
