package ports

import (
	"context"

	"panospace-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx run inside transaction blocks for
// pessimistic locking.
type WalletRepository interface {
	// Get returns the wallet for a user, or nil without error when the
	// user has never held a balance.
	Get(ctx context.Context, userID string) (*domain.Wallet, error)
	// EnsureForUpdate lazily materializes the wallet row and returns it
	// locked (SELECT ... FOR UPDATE) within tx.
	EnsureForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error)
	// Update writes the wallet's mutable counters within tx.
	Update(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
}

// TransactionRepository defines persistence for the append-only ledger.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, transaction *domain.Transaction) error
	// ListByUser returns entries most-recent-first, at most limit rows.
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
}

// OrderRepository defines persistence for checkout orders.
type OrderRepository interface {
	// Insert writes the order within tx. It returns false without error
	// when an order with the same payment reference already exists.
	Insert(ctx context.Context, tx pgx.Tx, order *domain.Order) (bool, error)
	GetByPaymentReference(ctx context.Context, reference string) (*domain.Order, error)
}

// ShopItemRepository is the catalog read model consulted at checkout.
type ShopItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.ShopItem, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
