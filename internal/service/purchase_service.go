package service

import (
	"context"
	"fmt"

	"panospace-ledger/internal/core/domain"
	"panospace-ledger/internal/core/ports"
	"panospace-ledger/internal/core/split"
	"panospace-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// PurchaseServiceImpl implements ports.PurchaseService. Each flow
// computes a revenue split and settles it through one atomic Transfer,
// so a failure anywhere leaves every wallet untouched.
type PurchaseServiceImpl struct {
	wallets           ports.WalletService
	platformAccountID string
	log               zerolog.Logger
}

// NewPurchaseService creates a new PurchaseServiceImpl.
func NewPurchaseService(wallets ports.WalletService, platformAccountID string, log zerolog.Logger) *PurchaseServiceImpl {
	return &PurchaseServiceImpl{
		wallets:           wallets,
		platformAccountID: platformAccountID,
		log:               log,
	}
}

// ProcessPrimaryPurchase settles a first sale: the buyer pays the full
// price and the seller keeps all of it.
func (s *PurchaseServiceImpl) ProcessPrimaryPurchase(ctx context.Context, req ports.PurchaseRequest) (*ports.PurchaseResult, error) {
	breakdown, err := split.PrimarySale(req.Amount)
	if err != nil {
		return nil, err
	}

	itemID := req.ItemID
	itemType := domain.RelatedItemShopItem
	transfer := ports.TransferRequest{
		PayerID:          req.BuyerID,
		DebitAmount:      req.Amount,
		DebitType:        domain.TransactionTypePurchase,
		DebitDescription: describe("Purchased", req.Description),
		RelatedItemID:    &itemID,
		RelatedItemType:  &itemType,
		Credits: []ports.TransferLeg{{
			UserID:      req.SellerID,
			Amount:      breakdown.SellerNet,
			Type:        domain.TransactionTypeSale,
			Description: describe("Sold", req.Description),
		}},
	}

	if err := s.wallets.Transfer(ctx, transfer); err != nil {
		return nil, err
	}
	return resultFrom(breakdown), nil
}

// ProcessResale settles a secondary-market sale: 10% platform fee, 5%
// royalty to the original artist, remainder to the seller. When the
// seller is the original artist the royalty folds into their proceeds.
func (s *PurchaseServiceImpl) ProcessResale(ctx context.Context, req ports.ResaleRequest) (*ports.PurchaseResult, error) {
	if req.OriginalArtistID == "" {
		return nil, apperror.Validation("original artist id must not be empty")
	}

	breakdown, err := split.Resale(req.Amount)
	if err != nil {
		return nil, err
	}

	sellerNet := breakdown.SellerNet
	royalty := breakdown.Royalty
	if req.OriginalArtistID == req.SellerID {
		sellerNet += royalty
		royalty = 0
	}

	legs := []ports.TransferLeg{{
		UserID:      req.SellerID,
		Amount:      sellerNet,
		Type:        domain.TransactionTypeSale,
		Description: describe("Resold", req.Description),
	}}
	if royalty > 0 {
		legs = append(legs, ports.TransferLeg{
			UserID:      req.OriginalArtistID,
			Amount:      royalty,
			Type:        domain.TransactionTypeRoyalty,
			Description: describe("Royalty from resale of", req.Description),
		})
	}
	if breakdown.PlatformCut > 0 {
		legs = append(legs, ports.TransferLeg{
			UserID:      s.platformAccountID,
			Amount:      breakdown.PlatformCut,
			Type:        domain.TransactionTypeFee,
			Description: describe("Platform fee on resale of", req.Description),
		})
	}

	itemID := req.ItemID
	itemType := domain.RelatedItemShopItem
	transfer := ports.TransferRequest{
		PayerID:          req.BuyerID,
		DebitAmount:      req.Amount,
		DebitType:        domain.TransactionTypePurchase,
		DebitDescription: describe("Purchased (resale)", req.Description),
		RelatedItemID:    &itemID,
		RelatedItemType:  &itemType,
		Credits:          legs,
	}

	if err := s.wallets.Transfer(ctx, transfer); err != nil {
		return nil, err
	}
	return &ports.PurchaseResult{
		GrossAmount:    req.Amount,
		SellerEarnings: sellerNet,
		PlatformCut:    breakdown.PlatformCut,
		RoyaltyAmount:  royalty,
	}, nil
}

// ProcessCommissionPayment settles a commission: the full payment goes
// to the commissioned artist.
func (s *PurchaseServiceImpl) ProcessCommissionPayment(ctx context.Context, req ports.PurchaseRequest) (*ports.PurchaseResult, error) {
	breakdown, err := split.PrimarySale(req.Amount)
	if err != nil {
		return nil, err
	}

	itemID := req.ItemID
	itemType := domain.RelatedItemCommission
	transfer := ports.TransferRequest{
		PayerID:          req.BuyerID,
		DebitAmount:      req.Amount,
		DebitType:        domain.TransactionTypePurchase,
		DebitDescription: describe("Commission payment for", req.Description),
		RelatedItemID:    &itemID,
		RelatedItemType:  &itemType,
		Credits: []ports.TransferLeg{{
			UserID:      req.SellerID,
			Amount:      breakdown.SellerNet,
			Type:        domain.TransactionTypeSale,
			Description: describe("Commission earnings for", req.Description),
		}},
	}

	if err := s.wallets.Transfer(ctx, transfer); err != nil {
		return nil, err
	}
	return resultFrom(breakdown), nil
}

// ProcessBoostPurchase settles a listing boost: the buyer pays the
// level's fixed price and the platform keeps all of it.
func (s *PurchaseServiceImpl) ProcessBoostPurchase(ctx context.Context, req ports.BoostRequest) (*ports.PurchaseResult, error) {
	price, ok := domain.PriceForBoost(req.Level)
	if !ok {
		return nil, apperror.ErrInvalidBoostLevel()
	}

	breakdown, err := split.BoostPurchase(price)
	if err != nil {
		return nil, err
	}

	postID := req.PostID
	itemType := domain.RelatedItemBoost
	transfer := ports.TransferRequest{
		PayerID:          req.BuyerID,
		DebitAmount:      price,
		DebitType:        domain.TransactionTypePurchase,
		DebitDescription: fmt.Sprintf("Boost (level %d)", req.Level),
		RelatedItemID:    &postID,
		RelatedItemType:  &itemType,
		Credits: []ports.TransferLeg{{
			UserID:      s.platformAccountID,
			Amount:      breakdown.PlatformCut,
			Type:        domain.TransactionTypeFee,
			Description: fmt.Sprintf("Boost revenue (level %d)", req.Level),
		}},
	}

	if err := s.wallets.Transfer(ctx, transfer); err != nil {
		return nil, err
	}
	return resultFrom(breakdown), nil
}

func resultFrom(b split.Breakdown) *ports.PurchaseResult {
	return &ports.PurchaseResult{
		GrossAmount:    b.Gross(),
		SellerEarnings: b.SellerNet,
		PlatformCut:    b.PlatformCut,
		RoyaltyAmount:  b.Royalty,
	}
}

func describe(prefix, what string) string {
	if what == "" {
		return prefix + " item"
	}
	return prefix + " " + what
}
