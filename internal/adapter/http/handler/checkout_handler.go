package handler

import (
	"errors"
	"io"

	"panospace-ledger/internal/adapter/http/dto"
	"panospace-ledger/internal/adapter/http/middleware"
	"panospace-ledger/internal/core/ports"
	"panospace-ledger/pkg/apperror"
	"panospace-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CheckoutHandler handles hosted checkout creation and the payment
// processor's webhook callback.
type CheckoutHandler struct {
	checkoutSvc ports.CheckoutService
	log         zerolog.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutSvc ports.CheckoutService, log zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc, log: log}
}

// CreateSession handles POST /api/v1/checkout/session.
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	buyerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	var req dto.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	session, err := h.checkoutSvc.CreateCheckoutSession(c.Request.Context(), ports.CreateCheckoutRequest{
		BuyerID: buyerID,
		ItemID:  req.ItemID,
		SizeID:  req.SizeID,
		Origin:  req.Origin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CheckoutSessionResponse{
		SessionID:   session.SessionID,
		RedirectURL: session.RedirectURL,
	})
}

// GetOrder handles GET /api/v1/checkout/orders/:reference. The success
// page polls this to confirm the webhook settled the session.
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	buyerID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthenticated())
		return
	}

	order, err := h.checkoutSvc.GetOrder(c.Request.Context(), buyerID, c.Param("reference"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromOrder(order))
}

// StripeWebhook handles POST /api/v1/webhooks/stripe. The body is kept
// raw: the signature covers the exact bytes the processor sent.
func (h *CheckoutHandler) StripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	err = h.checkoutSvc.HandlePaymentEvent(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		// A redelivered event is already settled. Answer 200 so the
		// processor stops retrying.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "PAY_003" {
			response.OK(c, gin.H{"received": true, "duplicate": true})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"received": true})
}
