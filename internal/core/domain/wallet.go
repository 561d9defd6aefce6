package domain

import (
	"time"
)

// Wallet represents a user's marketplace wallet. All monetary fields
// are integer cents; a wallet that has never been written behaves as
// all-zero balances.
type Wallet struct {
	UserID           string    `json:"user_id"`
	Balance          int64     `json:"balance"`
	LifetimeEarnings int64     `json:"lifetime_earnings"`
	LifetimeSpent    int64     `json:"lifetime_spent"`
	PendingPayout    int64     `json:"pending_payout"`
	Currency         string    `json:"currency"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CanDebit returns true if the wallet holds at least amount cents.
func (w *Wallet) CanDebit(amount int64) bool {
	return amount > 0 && w.Balance >= amount
}
