package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"panospace-ledger/internal/core/domain"
	"panospace-ledger/internal/core/ports"
	"panospace-ledger/internal/metrics"
	"panospace-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// WalletServiceImpl implements ports.WalletService. It is the only
// mutation path for balances: every balance change writes exactly one
// wallet update and one ledger entry, atomically, or nothing.
type WalletServiceImpl struct {
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		log:        log,
	}
}

// GetWallet returns a user's wallet. A user who has never transacted
// gets a zero-value wallet, not an error.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, userID string) (*domain.Wallet, error) {
	if userID == "" {
		return nil, apperror.Validation("user id must not be empty")
	}

	w, err := s.walletRepo.Get(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if w == nil {
		return &domain.Wallet{UserID: userID, Currency: "usd"}, nil
	}
	return w, nil
}

// ListTransactions returns a user's ledger entries most-recent-first.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error) {
	if userID == "" {
		return nil, apperror.Validation("user id must not be empty")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	txs, err := s.txRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	return txs, nil
}

// Credit adds funds to a wallet.
func (s *WalletServiceImpl) Credit(ctx context.Context, req ports.LedgerRequest) (*domain.Transaction, error) {
	if err := validateLedgerRequest(req); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.EnsureForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}

	applyCredit(wallet, req.Amount, req.Type)

	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}

	entry := newLedgerEntry(req, req.Amount)
	if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.LedgerTransactionsTotal.WithLabelValues(string(req.Type)).Inc()
	s.log.Info().
		Str("user_id", req.UserID).
		Int64("amount", req.Amount).
		Str("type", string(req.Type)).
		Str("transaction_id", entry.ID.String()).
		Msg("wallet credited")

	return entry, nil
}

// Debit removes funds from a wallet. Fails with InsufficientFunds and
// no state change if the balance cannot cover the amount.
func (s *WalletServiceImpl) Debit(ctx context.Context, req ports.LedgerRequest) (*domain.Transaction, error) {
	if err := validateLedgerRequest(req); err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	wallet, err := s.walletRepo.EnsureForUpdate(ctx, dbTx, req.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}

	if !wallet.CanDebit(req.Amount) {
		metrics.InsufficientFundsTotal.Inc()
		return nil, apperror.ErrInsufficientFunds()
	}

	applyDebit(wallet, req.Amount, req.Type)

	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update wallet: %w", err))
	}

	entry := newLedgerEntry(req, -req.Amount)
	if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	metrics.LedgerTransactionsTotal.WithLabelValues(string(req.Type)).Inc()
	s.log.Info().
		Str("user_id", req.UserID).
		Int64("amount", req.Amount).
		Str("type", string(req.Type)).
		Str("transaction_id", entry.ID.String()).
		Msg("wallet debited")

	return entry, nil
}

// Transfer atomically debits the payer and credits every recipient.
// All wallet rows are locked in sorted user-id order so concurrent
// transfers over the same wallets cannot deadlock.
func (s *WalletServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) error {
	if req.PayerID == "" {
		return apperror.Validation("payer id must not be empty")
	}
	if req.DebitAmount <= 0 {
		return apperror.ErrInvalidAmount()
	}

	var creditSum int64
	for _, leg := range req.Credits {
		if leg.UserID == "" {
			return apperror.Validation("recipient id must not be empty")
		}
		if leg.UserID == req.PayerID {
			return apperror.ErrSelfTransfer()
		}
		if leg.Amount <= 0 {
			return apperror.ErrInvalidAmount()
		}
		creditSum += leg.Amount
	}
	if creditSum != req.DebitAmount {
		return apperror.Validation("credit legs must sum to the debit amount")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Deterministic lock order across all wallets touched.
	ids := []string{req.PayerID}
	for _, leg := range req.Credits {
		ids = append(ids, leg.UserID)
	}
	sort.Strings(ids)

	wallets := make(map[string]*domain.Wallet, len(ids))
	for _, id := range ids {
		if _, locked := wallets[id]; locked {
			continue
		}
		w, err := s.walletRepo.EnsureForUpdate(ctx, dbTx, id)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("lock wallet %s: %w", id, err))
		}
		wallets[id] = w
	}

	payer := wallets[req.PayerID]
	if !payer.CanDebit(req.DebitAmount) {
		metrics.InsufficientFundsTotal.Inc()
		return apperror.ErrInsufficientFunds()
	}

	now := time.Now().UTC()
	applyDebit(payer, req.DebitAmount, req.DebitType)
	entries := []*domain.Transaction{{
		ID:              uuid.New(),
		UserID:          req.PayerID,
		Amount:          -req.DebitAmount,
		Type:            req.DebitType,
		Description:     req.DebitDescription,
		RelatedItemID:   req.RelatedItemID,
		RelatedItemType: req.RelatedItemType,
		CreatedAt:       now,
	}}

	for _, leg := range req.Credits {
		w := wallets[leg.UserID]
		applyCredit(w, leg.Amount, leg.Type)
		payerID := req.PayerID
		entries = append(entries, &domain.Transaction{
			ID:              uuid.New(),
			UserID:          leg.UserID,
			Amount:          leg.Amount,
			Type:            leg.Type,
			Description:     leg.Description,
			RelatedItemID:   req.RelatedItemID,
			RelatedItemType: req.RelatedItemType,
			CounterpartyID:  &payerID,
			CreatedAt:       now,
		})
	}

	for _, id := range ids {
		if w, ok := wallets[id]; ok {
			if err := s.walletRepo.Update(ctx, dbTx, w); err != nil {
				return apperror.InternalError(fmt.Errorf("update wallet %s: %w", id, err))
			}
			delete(wallets, id)
		}
	}
	for _, entry := range entries {
		if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
			return apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	for _, entry := range entries {
		metrics.LedgerTransactionsTotal.WithLabelValues(string(entry.Type)).Inc()
	}
	s.log.Info().
		Str("payer_id", req.PayerID).
		Int64("amount", req.DebitAmount).
		Int("recipients", len(req.Credits)).
		Msg("transfer settled")

	return nil
}

func validateLedgerRequest(req ports.LedgerRequest) error {
	if req.UserID == "" {
		return apperror.Validation("user id must not be empty")
	}
	if req.Amount <= 0 {
		return apperror.ErrInvalidAmount()
	}
	return nil
}

func newLedgerEntry(req ports.LedgerRequest, signedAmount int64) *domain.Transaction {
	return &domain.Transaction{
		ID:              uuid.New(),
		UserID:          req.UserID,
		Amount:          signedAmount,
		Type:            req.Type,
		Description:     req.Description,
		RelatedItemID:   req.RelatedItemID,
		RelatedItemType: req.RelatedItemType,
		CounterpartyID:  req.CounterpartyID,
		CreatedAt:       time.Now().UTC(),
	}
}

// applyCredit mutates the in-memory wallet for a credit of amount.
func applyCredit(w *domain.Wallet, amount int64, t domain.TransactionType) {
	w.Balance += amount
	if t.CountsAsEarnings() {
		w.LifetimeEarnings += amount
	}
}

// applyDebit mutates the in-memory wallet for a debit of amount.
// Callers must have checked CanDebit first.
func applyDebit(w *domain.Wallet, amount int64, t domain.TransactionType) {
	w.Balance -= amount
	if t.CountsAsSpending() {
		w.LifetimeSpent += amount
	}
}
