package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"panospace-ledger/internal/core/domain"
	"panospace-ledger/internal/core/ports"
	"panospace-ledger/internal/core/split"
	"panospace-ledger/internal/metrics"
	"panospace-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	eventCacheTTL         = 24 * time.Hour
	checkoutCompletedType = "checkout.session.completed"
)

// CheckoutServiceImpl implements ports.CheckoutService: hosted
// checkout creation and webhook settlement of completed payments.
// Order creation and wallet credits share one database transaction;
// the unique payment_reference makes redelivered events no-ops.
type CheckoutServiceImpl struct {
	shopItems  ports.ShopItemRepository
	orders     ports.OrderRepository
	walletRepo ports.WalletRepository
	txRepo     ports.TransactionRepository
	transactor ports.DBTransactor
	provider   ports.CheckoutProvider
	verifier   ports.WebhookVerifier
	eventCache ports.EventCache
	platformID string
	log        zerolog.Logger
}

// NewCheckoutService creates a new CheckoutServiceImpl.
func NewCheckoutService(
	shopItems ports.ShopItemRepository,
	orders ports.OrderRepository,
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	transactor ports.DBTransactor,
	provider ports.CheckoutProvider,
	verifier ports.WebhookVerifier,
	eventCache ports.EventCache,
	platformID string,
	log zerolog.Logger,
) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		shopItems:  shopItems,
		orders:     orders,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		transactor: transactor,
		provider:   provider,
		verifier:   verifier,
		eventCache: eventCache,
		platformID: platformID,
		log:        log,
	}
}

// CreateCheckoutSession builds a hosted checkout for a print purchase.
// It never touches the ledger: money moves only when the webhook
// confirms the payment.
func (s *CheckoutServiceImpl) CreateCheckoutSession(ctx context.Context, req ports.CreateCheckoutRequest) (*ports.CheckoutSession, error) {
	if req.BuyerID == "" {
		return nil, apperror.ErrUnauthenticated()
	}
	if req.ItemID == "" || req.SizeID == "" {
		return nil, apperror.Validation("item id and size id are required")
	}
	if req.Origin == "" {
		return nil, apperror.Validation("origin is required")
	}

	item, err := s.shopItems.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if item == nil {
		return nil, apperror.ErrNotFound("Shop item")
	}

	size, ok := item.SizeByID(req.SizeID)
	if !ok {
		return nil, apperror.Validation("unknown print size for this item")
	}
	if size.Price <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	session, err := s.provider.CreateSession(ctx, ports.CheckoutSessionRequest{
		BuyerID:     req.BuyerID,
		SellerID:    item.SellerID,
		ItemID:      item.ID,
		SizeID:      size.ID,
		ItemName:    fmt.Sprintf("%s (%s print)", item.Title, size.Label),
		AmountCents: size.Price,
		Currency:    "usd",
		SuccessURL:  req.Origin + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   req.Origin + "/checkout/cancel",
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("buyer_id", req.BuyerID).
		Str("item_id", item.ID).
		Str("session_id", session.SessionID).
		Msg("checkout session created")

	return session, nil
}

// paymentEvent mirrors the processor's webhook envelope, reduced to
// the fields settlement needs.
type paymentEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID          string            `json:"id"`
			AmountTotal int64             `json:"amount_total"`
			Metadata    map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// HandlePaymentEvent verifies and settles one raw webhook delivery.
// The signature check runs before any payload byte is interpreted.
func (s *CheckoutServiceImpl) HandlePaymentEvent(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if err := s.verifier.Verify(rawBody, signatureHeader); err != nil {
		metrics.SignatureRejectionsTotal.Inc()
		s.log.Warn().Msg("webhook signature rejected")
		return err
	}

	var event paymentEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		s.log.Warn().Err(err).Msg("webhook payload not decodable")
		return apperror.ErrMalformedEvent()
	}

	if event.Type != checkoutCompletedType {
		s.log.Debug().Str("type", event.Type).Msg("ignoring webhook event type")
		return nil
	}

	ref := event.Data.Object.ID
	amount := event.Data.Object.AmountTotal
	meta := event.Data.Object.Metadata
	buyerID, sellerID := meta["buyerId"], meta["sellerId"]
	itemID, sizeID := meta["itemId"], meta["sizeId"]

	if ref == "" || amount <= 0 || buyerID == "" || sellerID == "" || itemID == "" {
		s.log.Warn().Str("payment_reference", ref).Msg("webhook event missing settlement metadata")
		return apperror.ErrMalformedEvent()
	}

	// Fast path: drop redeliveries without opening a transaction. This
	// is a read only; the reference is recorded after the settlement
	// commits, so a failed settlement leaves retries open. The orders
	// unique constraint below remains the authority.
	seen, err := s.eventCache.Seen(ctx, ref)
	if err != nil {
		s.log.Warn().Err(err).Str("payment_reference", ref).
			Msg("event cache unavailable, falling through to database")
	} else if seen {
		metrics.DuplicateEventsTotal.Inc()
		s.log.Info().Str("payment_reference", ref).Msg("duplicate payment event dropped by cache")
		return apperror.ErrDuplicateEvent()
	}

	breakdown, err := split.PrintProfit(amount, split.BaseCostForSize(sizeID))
	if err != nil {
		return apperror.ErrMalformedEvent()
	}

	if err := s.settle(ctx, ref, amount, buyerID, sellerID, itemID, sizeID, breakdown); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.ErrDuplicateEvent().Code {
			// The order row already exists, so the event is settled.
			s.rememberSettled(ctx, ref)
		}
		return err
	}
	s.rememberSettled(ctx, ref)

	metrics.OrdersProcessedTotal.Inc()
	s.log.Info().
		Str("payment_reference", ref).
		Int64("amount", amount).
		Int64("seller_earnings", breakdown.SellerNet).
		Int64("platform_cut", breakdown.PlatformCut).
		Msg("payment event settled")

	return nil
}

// settle writes the order and both wallet credits in one transaction.
func (s *CheckoutServiceImpl) settle(ctx context.Context, ref string, amount int64, buyerID, sellerID, itemID, sizeID string, breakdown split.Breakdown) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return s.settlementFailure(ref, fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	order := &domain.Order{
		ID:               uuid.New(),
		BuyerID:          buyerID,
		SellerID:         sellerID,
		ItemID:           itemID,
		ItemType:         domain.OrderItemPrint,
		SizeID:           sizeID,
		GrossAmount:      amount,
		SellerEarnings:   breakdown.SellerNet,
		PlatformCut:      breakdown.PlatformCut,
		PaymentReference: ref,
		Status:           domain.OrderStatusPaid,
		CreatedAt:        time.Now().UTC(),
	}

	created, err := s.orders.Insert(ctx, dbTx, order)
	if err != nil {
		return s.settlementFailure(ref, fmt.Errorf("insert order: %w", err))
	}
	if !created {
		metrics.DuplicateEventsTotal.Inc()
		s.log.Info().Str("payment_reference", ref).Msg("duplicate payment event dropped by order constraint")
		return apperror.ErrDuplicateEvent()
	}

	credits := []settlementCredit{
		{userID: sellerID, amount: breakdown.SellerNet, txType: domain.TransactionTypeSale,
			description: fmt.Sprintf("Print sale (%s)", sizeID)},
		{userID: s.platformID, amount: breakdown.PlatformCut, txType: domain.TransactionTypeFee,
			description: fmt.Sprintf("Print platform cut (%s)", sizeID)},
	}
	// Same lock ordering as Transfer: sorted by user id.
	sort.Slice(credits, func(i, j int) bool { return credits[i].userID < credits[j].userID })

	itemRef := itemID
	itemType := domain.RelatedItemPrintOrder
	for _, c := range credits {
		if c.amount <= 0 {
			continue
		}
		if err := s.creditInTx(ctx, dbTx, c, &itemRef, &itemType, &buyerID); err != nil {
			return s.settlementFailure(ref, err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return s.settlementFailure(ref, fmt.Errorf("commit tx: %w", err))
	}

	for _, c := range credits {
		if c.amount > 0 {
			metrics.LedgerTransactionsTotal.WithLabelValues(string(c.txType)).Inc()
		}
	}
	return nil
}

type settlementCredit struct {
	userID      string
	amount      int64
	txType      domain.TransactionType
	description string
}

func (s *CheckoutServiceImpl) creditInTx(ctx context.Context, dbTx pgx.Tx, c settlementCredit, relatedItemID *string, relatedItemType *domain.RelatedItemType, counterpartyID *string) error {
	wallet, err := s.walletRepo.EnsureForUpdate(ctx, dbTx, c.userID)
	if err != nil {
		return fmt.Errorf("lock wallet %s: %w", c.userID, err)
	}
	applyCredit(wallet, c.amount, c.txType)
	if err := s.walletRepo.Update(ctx, dbTx, wallet); err != nil {
		return fmt.Errorf("update wallet %s: %w", c.userID, err)
	}

	entry := &domain.Transaction{
		ID:              uuid.New(),
		UserID:          c.userID,
		Amount:          c.amount,
		Type:            c.txType,
		Description:     c.description,
		RelatedItemID:   relatedItemID,
		RelatedItemType: relatedItemType,
		CounterpartyID:  counterpartyID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.txRepo.Create(ctx, dbTx, entry); err != nil {
		return fmt.Errorf("append ledger entry: %w", err)
	}
	return nil
}

// GetOrder returns the buyer's order for a checkout session reference.
// Another buyer's order reads as not found.
func (s *CheckoutServiceImpl) GetOrder(ctx context.Context, buyerID, paymentReference string) (*domain.Order, error) {
	if buyerID == "" {
		return nil, apperror.ErrUnauthenticated()
	}
	if paymentReference == "" {
		return nil, apperror.Validation("payment reference is required")
	}

	order, err := s.orders.GetByPaymentReference(ctx, paymentReference)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if order == nil || order.BuyerID != buyerID {
		return nil, apperror.ErrNotFound("Order")
	}
	return order, nil
}

// rememberSettled writes the fast-path cache entry for a settled
// payment reference. Best effort: a write failure only means the next
// redelivery reaches the database constraint instead.
func (s *CheckoutServiceImpl) rememberSettled(ctx context.Context, ref string) {
	if err := s.eventCache.MarkSeen(ctx, ref, eventCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("payment_reference", ref).Msg("event cache write failed")
	}
}

// settlementFailure logs a post-verification failure loudly. These are
// the cases that need an operator: the card was charged but the ledger
// write did not land, and the processor will retry.
func (s *CheckoutServiceImpl) settlementFailure(ref string, err error) error {
	s.log.Error().Err(err).Str("payment_reference", ref).Msg("payment event settlement failed")
	return apperror.InternalError(err)
}
