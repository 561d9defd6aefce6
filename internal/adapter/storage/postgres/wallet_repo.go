package postgres

import (
	"context"
	"errors"
	"fmt"

	"panospace-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

const walletColumns = `user_id, balance, lifetime_earnings, lifetime_spent, pending_payout, currency, created_at, updated_at`

// Get fetches a wallet by user id (non-locking read).
// Returns nil when the user has never held a balance.
func (r *WalletRepo) Get(ctx context.Context, userID string) (*domain.Wallet, error) {
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.UserID, &w.Balance, &w.LifetimeEarnings, &w.LifetimeSpent,
		&w.PendingPayout, &w.Currency, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	return w, nil
}

// EnsureForUpdate lazily creates the wallet row and returns it with a
// pessimistic lock. MUST be called within a transaction: the lock is
// released at commit or rollback.
func (r *WalletRepo) EnsureForUpdate(ctx context.Context, tx pgx.Tx, userID string) (*domain.Wallet, error) {
	insert := `INSERT INTO wallets (user_id, balance, lifetime_earnings, lifetime_spent, pending_payout, currency, created_at, updated_at)
		VALUES ($1, 0, 0, 0, 0, 'usd', NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING`

	if _, err := tx.Exec(ctx, insert, userID); err != nil {
		return nil, fmt.Errorf("ensure wallet: %w", err)
	}

	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1 FOR UPDATE`

	w := &domain.Wallet{}
	err := tx.QueryRow(ctx, query, userID).Scan(
		&w.UserID, &w.Balance, &w.LifetimeEarnings, &w.LifetimeSpent,
		&w.PendingPayout, &w.Currency, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("lock wallet: %w", err)
	}
	return w, nil
}

// Update writes a wallet's mutable counters within a transaction.
func (r *WalletRepo) Update(ctx context.Context, tx pgx.Tx, w *domain.Wallet) error {
	query := `UPDATE wallets
		SET balance = $1, lifetime_earnings = $2, lifetime_spent = $3, pending_payout = $4, updated_at = NOW()
		WHERE user_id = $5`

	tag, err := tx.Exec(ctx, query,
		w.Balance, w.LifetimeEarnings, w.LifetimeSpent, w.PendingPayout, w.UserID,
	)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet not found: %s", w.UserID)
	}
	return nil
}
