package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TransactionTypeSale       TransactionType = "sale"
	TransactionTypePurchase   TransactionType = "purchase"
	TransactionTypeRoyalty    TransactionType = "royalty"
	TransactionTypeRefund     TransactionType = "refund"
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeFee        TransactionType = "fee"
)

// RelatedItemType identifies what a ledger entry settled.
type RelatedItemType string

const (
	RelatedItemShopItem   RelatedItemType = "shop_item"
	RelatedItemCommission RelatedItemType = "commission"
	RelatedItemBoost      RelatedItemType = "boost"
	RelatedItemPrintOrder RelatedItemType = "print_order"
)

// Transaction is an immutable ledger entry. Amount is signed:
// positive entries credit the wallet, negative entries debit it.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	UserID          string          `json:"user_id"`
	Amount          int64           `json:"amount"`
	Type            TransactionType `json:"type"`
	Description     string          `json:"description"`
	RelatedItemID   *string         `json:"related_item_id,omitempty"`
	RelatedItemType *RelatedItemType `json:"related_item_type,omitempty"`
	CounterpartyID  *string         `json:"counterparty_id,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// IsCredit returns true if the entry increases the wallet balance.
func (t *Transaction) IsCredit() bool {
	return t.Amount > 0
}

// CountsAsEarnings reports whether a credit of this type bumps the
// wallet's lifetime earnings counter.
func (t TransactionType) CountsAsEarnings() bool {
	return t == TransactionTypeSale || t == TransactionTypeRoyalty
}

// CountsAsSpending reports whether a debit of this type bumps the
// wallet's lifetime spent counter.
func (t TransactionType) CountsAsSpending() bool {
	return t == TransactionTypePurchase
}
