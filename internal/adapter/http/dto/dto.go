package dto

import (
	"time"

	"panospace-ledger/internal/core/domain"
)

// PrimaryPurchaseRequest is the request body for a first sale.
type PrimaryPurchaseRequest struct {
	SellerID    string `json:"seller_id" binding:"required,safe_id"`
	ItemID      string `json:"item_id" binding:"required,safe_id"`
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=500"`
}

// ResalePurchaseRequest is the request body for a secondary-market sale.
type ResalePurchaseRequest struct {
	SellerID         string `json:"seller_id" binding:"required,safe_id"`
	OriginalArtistID string `json:"original_artist_id" binding:"required,safe_id"`
	ItemID           string `json:"item_id" binding:"required,safe_id"`
	Amount           int64  `json:"amount" binding:"required,gt=0"`
	Description      string `json:"description" binding:"max=500"`
}

// CommissionPaymentRequest is the request body for a commission payment.
type CommissionPaymentRequest struct {
	ArtistID     string `json:"artist_id" binding:"required,safe_id"`
	CommissionID string `json:"commission_id" binding:"required,safe_id"`
	Amount       int64  `json:"amount" binding:"required,gt=0"`
	Description  string `json:"description" binding:"max=500"`
}

// BoostPurchaseRequest is the request body for a listing boost.
type BoostPurchaseRequest struct {
	PostID string `json:"post_id" binding:"required,safe_id"`
	Level  int    `json:"level" binding:"required"`
}

// CheckoutSessionRequest is the request body for a hosted checkout.
type CheckoutSessionRequest struct {
	ItemID string `json:"item_id" binding:"required,safe_id"`
	SizeID string `json:"size_id" binding:"required,safe_id"`
	Origin string `json:"origin" binding:"required,safe_url"`
}

// WalletResponse is the response body for a wallet read.
type WalletResponse struct {
	UserID           string `json:"user_id"`
	Balance          int64  `json:"balance"`
	LifetimeEarnings int64  `json:"lifetime_earnings"`
	LifetimeSpent    int64  `json:"lifetime_spent"`
	PendingPayout    int64  `json:"pending_payout"`
	Currency         string `json:"currency"`
}

// TransactionResponse is one ledger entry in a history listing.
type TransactionResponse struct {
	ID              string  `json:"id"`
	Amount          int64   `json:"amount"`
	Type            string  `json:"type"`
	Description     string  `json:"description"`
	RelatedItemID   *string `json:"related_item_id,omitempty"`
	RelatedItemType *string `json:"related_item_type,omitempty"`
	CounterpartyID  *string `json:"counterparty_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// PurchaseResponse is the response body for settled purchase flows.
type PurchaseResponse struct {
	GrossAmount    int64 `json:"gross_amount"`
	SellerEarnings int64 `json:"seller_earnings"`
	PlatformCut    int64 `json:"platform_cut"`
	RoyaltyAmount  int64 `json:"royalty_amount"`
}

// CheckoutSessionResponse is the response body for checkout creation.
type CheckoutSessionResponse struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// OrderResponse is a settled checkout order as shown to its buyer.
type OrderResponse struct {
	ID             string `json:"id"`
	ItemID         string `json:"item_id"`
	SizeID         string `json:"size_id,omitempty"`
	GrossAmount    int64  `json:"gross_amount"`
	SellerEarnings int64  `json:"seller_earnings"`
	PlatformCut    int64  `json:"platform_cut"`
	Status         string `json:"status"`
	CreatedAt      string `json:"created_at"`
}

// FromWallet maps a domain wallet to its response shape.
func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		UserID:           w.UserID,
		Balance:          w.Balance,
		LifetimeEarnings: w.LifetimeEarnings,
		LifetimeSpent:    w.LifetimeSpent,
		PendingPayout:    w.PendingPayout,
		Currency:         w.Currency,
	}
}

// FromTransaction maps a domain ledger entry to its response shape.
func FromTransaction(tx domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:             tx.ID.String(),
		Amount:         tx.Amount,
		Type:           string(tx.Type),
		Description:    tx.Description,
		RelatedItemID:  tx.RelatedItemID,
		CounterpartyID: tx.CounterpartyID,
		CreatedAt:      tx.CreatedAt.Format(time.RFC3339),
	}
	if tx.RelatedItemType != nil {
		s := string(*tx.RelatedItemType)
		resp.RelatedItemType = &s
	}
	return resp
}

// FromOrder maps a domain order to its response shape.
func FromOrder(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:             o.ID.String(),
		ItemID:         o.ItemID,
		SizeID:         o.SizeID,
		GrossAmount:    o.GrossAmount,
		SellerEarnings: o.SellerEarnings,
		PlatformCut:    o.PlatformCut,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
}

// FromTransactions maps a history page, always returning a non-nil slice.
func FromTransactions(txs []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, FromTransaction(tx))
	}
	return out
}
