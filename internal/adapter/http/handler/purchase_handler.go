package handler

import (
	"panospace-ledger/internal/adapter/http/dto"
	"panospace-ledger/internal/adapter/http/middleware"
	"panospace-ledger/internal/core/domain"
	"panospace-ledger/internal/core/ports"
	"panospace-ledger/pkg/apperror"
	"panospace-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// PurchaseHandler handles wallet-funded purchase endpoints. The buyer
// is always the authenticated caller.
type PurchaseHandler struct {
	purchaseSvc ports.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(purchaseSvc ports.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseSvc: purchaseSvc}
}

// PrimaryPurchase handles POST /api/v1/purchases/primary.
func (h *PurchaseHandler) PrimaryPurchase(c *gin.Context) {
	buyerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	var req dto.PrimaryPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.purchaseSvc.ProcessPrimaryPurchase(c.Request.Context(), ports.PurchaseRequest{
		BuyerID:     buyerID,
		SellerID:    req.SellerID,
		ItemID:      req.ItemID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPurchaseResponse(result))
}

// Resale handles POST /api/v1/purchases/resale.
func (h *PurchaseHandler) Resale(c *gin.Context) {
	buyerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	var req dto.ResalePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.purchaseSvc.ProcessResale(c.Request.Context(), ports.ResaleRequest{
		BuyerID:          buyerID,
		SellerID:         req.SellerID,
		OriginalArtistID: req.OriginalArtistID,
		ItemID:           req.ItemID,
		Amount:           req.Amount,
		Description:      req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPurchaseResponse(result))
}

// CommissionPayment handles POST /api/v1/purchases/commission.
func (h *PurchaseHandler) CommissionPayment(c *gin.Context) {
	buyerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	var req dto.CommissionPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.purchaseSvc.ProcessCommissionPayment(c.Request.Context(), ports.PurchaseRequest{
		BuyerID:     buyerID,
		SellerID:    req.ArtistID,
		ItemID:      req.CommissionID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPurchaseResponse(result))
}

// BoostPurchase handles POST /api/v1/boosts.
func (h *PurchaseHandler) BoostPurchase(c *gin.Context) {
	buyerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	var req dto.BoostPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	result, err := h.purchaseSvc.ProcessBoostPurchase(c.Request.Context(), ports.BoostRequest{
		BuyerID: buyerID,
		PostID:  req.PostID,
		Level:   domain.BoostLevel(req.Level),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toPurchaseResponse(result))
}

func toPurchaseResponse(result *ports.PurchaseResult) dto.PurchaseResponse {
	return dto.PurchaseResponse{
		GrossAmount:    result.GrossAmount,
		SellerEarnings: result.SellerEarnings,
		PlatformCut:    result.PlatformCut,
		RoyaltyAmount:  result.RoyaltyAmount,
	}
}
