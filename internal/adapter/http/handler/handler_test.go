package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"panospace-ledger/internal/adapter/http/dto"
	"panospace-ledger/internal/adapter/http/middleware"
	"panospace-ledger/internal/core/domain"
	"panospace-ledger/internal/core/ports"
	"panospace-ledger/internal/core/ports/mocks"
	"panospace-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(_ context.Context) error { return s.err }
func (s stubChecker) Name() string                 { return s.name }

func authedContext(w *httptest.ResponseRecorder, userID string) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.CtxUserID, userID)
	return c
}

func jsonBody(t *testing.T, v interface{}) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

// --- Wallet Handler Tests ---

func TestGetWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().GetWallet(gomock.Any(), "user-1").Return(&domain.Wallet{
		UserID:           "user-1",
		Balance:          4200,
		LifetimeEarnings: 10000,
		LifetimeSpent:    5800,
		Currency:         "usd",
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, "user-1")
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)

	h.GetWallet(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(4200), data["balance"])
	assert.Equal(t, float64(10000), data["lifetime_earnings"])
	assert.Equal(t, "usd", data["currency"])
}

func TestGetWallet_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)

	h.GetWallet(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().ListTransactions(gomock.Any(), "user-1", 10).Return([]domain.Transaction{
		{
			ID:        uuid.New(),
			UserID:    "user-1",
			Amount:    -1000,
			Type:      domain.TransactionTypePurchase,
			CreatedAt: time.Now().UTC(),
		},
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, "user-1")
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallet/transactions?limit=10", nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]interface{})
	require.Len(t, data, 1)
	entry := data[0].(map[string]interface{})
	assert.Equal(t, float64(-1000), entry["amount"])
	assert.Equal(t, "purchase", entry["type"])
}

func TestListTransactions_BadLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	w := httptest.NewRecorder()
	c := authedContext(w, "user-1")
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/wallet/transactions?limit=abc", nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Purchase Handler Tests ---

func TestPrimaryPurchase_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPurchase := mocks.NewMockPurchaseService(ctrl)
	h := NewPurchaseHandler(mockPurchase)

	mockPurchase.EXPECT().ProcessPrimaryPurchase(gomock.Any(), ports.PurchaseRequest{
		BuyerID:     "buyer-1",
		SellerID:    "seller-1",
		ItemID:      "item-1",
		Amount:      2500,
		Description: "Sunset print",
	}).Return(&ports.PurchaseResult{
		GrossAmount:    2500,
		SellerEarnings: 2500,
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/purchases/primary", jsonBody(t, dto.PrimaryPurchaseRequest{
		SellerID:    "seller-1",
		ItemID:      "item-1",
		Amount:      2500,
		Description: "Sunset print",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.PrimaryPurchase(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2500), data["gross_amount"])
	assert.Equal(t, float64(2500), data["seller_earnings"])
}

func TestPrimaryPurchase_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPurchase := mocks.NewMockPurchaseService(ctrl)
	h := NewPurchaseHandler(mockPurchase)

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/purchases/primary", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	h.PrimaryPurchase(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPrimaryPurchase_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPurchase := mocks.NewMockPurchaseService(ctrl)
	h := NewPurchaseHandler(mockPurchase)

	mockPurchase.EXPECT().ProcessPrimaryPurchase(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInsufficientFunds())

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/purchases/primary", jsonBody(t, dto.PrimaryPurchaseRequest{
		SellerID: "seller-1",
		ItemID:   "item-1",
		Amount:   999999,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.PrimaryPurchase(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "LED_002")
}

func TestResale_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPurchase := mocks.NewMockPurchaseService(ctrl)
	h := NewPurchaseHandler(mockPurchase)

	mockPurchase.EXPECT().ProcessResale(gomock.Any(), ports.ResaleRequest{
		BuyerID:          "buyer-1",
		SellerID:         "reseller-1",
		OriginalArtistID: "artist-1",
		ItemID:           "item-2",
		Amount:           999,
	}).Return(&ports.PurchaseResult{
		GrossAmount:    999,
		SellerEarnings: 849,
		PlatformCut:    100,
		RoyaltyAmount:  50,
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/purchases/resale", jsonBody(t, dto.ResalePurchaseRequest{
		SellerID:         "reseller-1",
		OriginalArtistID: "artist-1",
		ItemID:           "item-2",
		Amount:           999,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.Resale(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["royalty_amount"])
	assert.Equal(t, float64(100), data["platform_cut"])
}

func TestBoostPurchase_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPurchase := mocks.NewMockPurchaseService(ctrl)
	h := NewPurchaseHandler(mockPurchase)

	mockPurchase.EXPECT().ProcessBoostPurchase(gomock.Any(), ports.BoostRequest{
		BuyerID: "buyer-1",
		PostID:  "post-1",
		Level:   domain.BoostLevelFeatured,
	}).Return(&ports.PurchaseResult{
		GrossAmount: 299,
		PlatformCut: 299,
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/boosts", jsonBody(t, dto.BoostPurchaseRequest{
		PostID: "post-1",
		Level:  2,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.BoostPurchase(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBoostPurchase_InvalidLevel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPurchase := mocks.NewMockPurchaseService(ctrl)
	h := NewPurchaseHandler(mockPurchase)

	mockPurchase.EXPECT().ProcessBoostPurchase(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInvalidBoostLevel())

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/boosts", jsonBody(t, dto.BoostPurchaseRequest{
		PostID: "post-1",
		Level:  9,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.BoostPurchase(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "LED_005")
}

// --- Checkout Handler Tests ---

func TestCreateSession_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	mockCheckout.EXPECT().CreateCheckoutSession(gomock.Any(), ports.CreateCheckoutRequest{
		BuyerID: "buyer-1",
		ItemID:  "item-1",
		SizeID:  "8x10",
		Origin:  "https://panospace.example",
	}).Return(&ports.CheckoutSession{
		SessionID:   "cs_123",
		RedirectURL: "https://pay.example/cs_123",
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/checkout/session", jsonBody(t, dto.CheckoutSessionRequest{
		ItemID: "item-1",
		SizeID: "8x10",
		Origin: "https://panospace.example",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateSession(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "cs_123", data["session_id"])
	assert.Equal(t, "https://pay.example/cs_123", data["redirect_url"])
}

func TestCreateSession_BadOrigin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/checkout/session", jsonBody(t, dto.CheckoutSessionRequest{
		ItemID: "item-1",
		SizeID: "8x10",
		Origin: "javascript:alert(1)",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	h.CreateSession(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetOrder_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	mockCheckout.EXPECT().GetOrder(gomock.Any(), "buyer-1", "cs_123").Return(&domain.Order{
		ID:               uuid.New(),
		BuyerID:          "buyer-1",
		ItemID:           "item-1",
		SizeID:           "8x10",
		GrossAmount:      4500,
		SellerEarnings:   1980,
		PlatformCut:      1320,
		PaymentReference: "cs_123",
		Status:           domain.OrderStatusPaid,
	}, nil)

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Params = gin.Params{{Key: "reference", Value: "cs_123"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/checkout/orders/cs_123", nil)

	h.GetOrder(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "item-1", data["item_id"])
	assert.Equal(t, float64(4500), data["gross_amount"])
	assert.Equal(t, "paid", data["status"])
}

func TestGetOrder_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	mockCheckout.EXPECT().GetOrder(gomock.Any(), "buyer-1", "cs_missing").
		Return(nil, apperror.ErrNotFound("Order"))

	w := httptest.NewRecorder()
	c := authedContext(w, "buyer-1")
	c.Params = gin.Params{{Key: "reference", Value: "cs_missing"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/checkout/orders/cs_missing", nil)

	h.GetOrder(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "LED_003")
}

func TestGetOrder_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "reference", Value: "cs_123"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/checkout/orders/cs_123", nil)

	h.GetOrder(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- Webhook Handler Tests ---

func TestStripeWebhook_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	body := []byte(`{"type":"checkout.session.completed"}`)
	mockCheckout.EXPECT().HandlePaymentEvent(gomock.Any(), body, "t=1,v1=abc").Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(body))
	c.Request.Header.Set("Stripe-Signature", "t=1,v1=abc")

	h.StripeWebhook(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "received")
}

func TestStripeWebhook_DuplicateIsSuccessShaped(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	body := []byte(`{"type":"checkout.session.completed"}`)
	mockCheckout.EXPECT().HandlePaymentEvent(gomock.Any(), body, "t=1,v1=abc").
		Return(apperror.ErrDuplicateEvent())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(body))
	c.Request.Header.Set("Stripe-Signature", "t=1,v1=abc")

	h.StripeWebhook(c)

	// 200 so the processor stops retrying an already-settled event.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate")
}

func TestStripeWebhook_BadSignature(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	body := []byte(`{}`)
	mockCheckout.EXPECT().HandlePaymentEvent(gomock.Any(), body, "bad").
		Return(apperror.ErrSignatureInvalid())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(body))
	c.Request.Header.Set("Stripe-Signature", "bad")

	h.StripeWebhook(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "PAY_001")
}

func TestStripeWebhook_SettlementFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCheckout := mocks.NewMockCheckoutService(ctrl)
	h := NewCheckoutHandler(mockCheckout, zerolog.Nop())

	body := []byte(`{"type":"checkout.session.completed"}`)
	mockCheckout.EXPECT().HandlePaymentEvent(gomock.Any(), body, "t=1,v1=abc").
		Return(apperror.InternalError(errors.New("db down")))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(body))
	c.Request.Header.Set("Stripe-Signature", "t=1,v1=abc")

	h.StripeWebhook(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Health Handler Tests ---

func TestHealthCheck_AllHealthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pg := stubChecker{name: "postgresql"}
	rd := stubChecker{name: "redis"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(pg, rd)(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	pg := stubChecker{name: "postgresql", err: errors.New("connection refused")}
	rd := stubChecker{name: "redis"}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(pg, rd)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
	assert.Contains(t, w.Body.String(), "connection refused")
}
