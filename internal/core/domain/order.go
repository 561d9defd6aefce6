package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle state of a checkout order.
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// OrderItemType identifies what kind of listing an order settled.
type OrderItemType string

const (
	OrderItemPrint   OrderItemType = "print"
	OrderItemDigital OrderItemType = "digital"
)

// Order records a checkout flow settled through the external payment
// processor. PaymentReference is the processor's session identifier
// and is unique: inserting a second order with the same reference is
// how duplicate webhook deliveries are detected.
type Order struct {
	ID               uuid.UUID     `json:"id"`
	BuyerID          string        `json:"buyer_id"`
	SellerID         string        `json:"seller_id"`
	ItemID           string        `json:"item_id"`
	ItemType         OrderItemType `json:"item_type"`
	SizeID           string        `json:"size_id,omitempty"`
	GrossAmount      int64         `json:"gross_amount"`
	SellerEarnings   int64         `json:"seller_earnings"`
	PlatformCut      int64         `json:"platform_cut"`
	RoyaltyAmount    *int64        `json:"royalty_amount,omitempty"`
	PaymentReference string        `json:"payment_reference"`
	Status           OrderStatus   `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
}

// IsSettled returns true once the order reached a terminal state.
func (o *Order) IsSettled() bool {
	return o.Status == OrderStatusPaid || o.Status == OrderStatusFailed
}
