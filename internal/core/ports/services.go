package ports

import (
	"context"
	"time"

	"panospace-ledger/internal/core/domain"
)

// TokenService validates platform-issued JWTs.
type TokenService interface {
	Generate(userID string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID string
}

// EventCache is the Redis-layer duplicate-event check (fast path only;
// the orders unique constraint is the authority).
type EventCache interface {
	// Seen reports whether a payment reference was already settled.
	// It never records anything: a reference becomes seen only via
	// MarkSeen, after the settlement actually persisted.
	Seen(ctx context.Context, paymentReference string) (bool, error)
	// MarkSeen records a settled payment reference for ttl.
	MarkSeen(ctx context.Context, paymentReference string, ttl time.Duration) error
}

// CheckoutProvider creates hosted checkout sessions with the external
// payment processor.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, req CheckoutSessionRequest) (*CheckoutSession, error)
}

// CheckoutSessionRequest describes the hosted checkout to create.
type CheckoutSessionRequest struct {
	BuyerID     string
	SellerID    string
	ItemID      string
	SizeID      string
	ItemName    string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession is the processor's hosted checkout handle.
type CheckoutSession struct {
	SessionID   string
	RedirectURL string
}

// WebhookVerifier authenticates raw webhook deliveries.
type WebhookVerifier interface {
	// Verify checks the signature header against the raw payload.
	// It must be called before any payload field is read.
	Verify(payload []byte, signatureHeader string) error
}

// --- Service ports (business logic) ---

// WalletService is the only mutation path for wallet balances.
type WalletService interface {
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]domain.Transaction, error)
	Credit(ctx context.Context, req LedgerRequest) (*domain.Transaction, error)
	Debit(ctx context.Context, req LedgerRequest) (*domain.Transaction, error)
	// Transfer atomically debits the payer and credits every recipient
	// in a single storage transaction.
	Transfer(ctx context.Context, req TransferRequest) error
}

// LedgerRequest holds validated input for a single credit or debit.
type LedgerRequest struct {
	UserID          string
	Amount          int64 // cents, > 0
	Type            domain.TransactionType
	Description     string
	RelatedItemID   *string
	RelatedItemType *domain.RelatedItemType
	CounterpartyID  *string
}

// TransferLeg is one recipient credit within a Transfer.
type TransferLeg struct {
	UserID      string
	Amount      int64 // cents, > 0
	Type        domain.TransactionType
	Description string
}

// TransferRequest holds validated input for an atomic multi-account
// movement. The sum of credit legs must equal the debit amount.
type TransferRequest struct {
	PayerID          string
	DebitAmount      int64
	DebitType        domain.TransactionType
	DebitDescription string
	Credits          []TransferLeg
	RelatedItemID    *string
	RelatedItemType  *domain.RelatedItemType
}

// PurchaseService exposes the named marketplace purchase flows.
type PurchaseService interface {
	ProcessPrimaryPurchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
	ProcessResale(ctx context.Context, req ResaleRequest) (*PurchaseResult, error)
	ProcessCommissionPayment(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error)
	ProcessBoostPurchase(ctx context.Context, req BoostRequest) (*PurchaseResult, error)
}

// PurchaseRequest holds input for a primary purchase or commission.
type PurchaseRequest struct {
	BuyerID     string
	SellerID    string
	ItemID      string
	Amount      int64 // cents
	Description string
}

// ResaleRequest adds the original artist entitled to the royalty.
type ResaleRequest struct {
	BuyerID          string
	SellerID         string
	OriginalArtistID string
	ItemID           string
	Amount           int64 // cents
	Description      string
}

// BoostRequest holds input for a listing-boost purchase.
type BoostRequest struct {
	BuyerID string
	PostID  string
	Level   domain.BoostLevel
}

// PurchaseResult summarizes a completed purchase flow.
type PurchaseResult struct {
	GrossAmount    int64 `json:"gross_amount"`
	SellerEarnings int64 `json:"seller_earnings"`
	PlatformCut    int64 `json:"platform_cut"`
	RoyaltyAmount  int64 `json:"royalty_amount"`
}

// CheckoutService is the payment-processor boundary.
type CheckoutService interface {
	CreateCheckoutSession(ctx context.Context, req CreateCheckoutRequest) (*CheckoutSession, error)
	// HandlePaymentEvent verifies and settles one raw webhook delivery.
	HandlePaymentEvent(ctx context.Context, rawBody []byte, signatureHeader string) error
	// GetOrder returns the buyer's settled order for a checkout
	// session reference. Used by the success page to confirm
	// settlement; other buyers' orders are indistinguishable from
	// missing ones.
	GetOrder(ctx context.Context, buyerID, paymentReference string) (*domain.Order, error)
}

// CreateCheckoutRequest holds validated input for session creation.
type CreateCheckoutRequest struct {
	BuyerID string
	ItemID  string
	SizeID  string
	Origin  string
}
