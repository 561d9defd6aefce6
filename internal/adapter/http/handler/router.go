package handler

import (
	"panospace-ledger/internal/adapter/http/middleware"
	redisStore "panospace-ledger/internal/adapter/storage/redis"
	"panospace-ledger/internal/core/ports"
	"panospace-ledger/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	PurchaseSvc    ports.PurchaseService
	CheckoutSvc    ports.CheckoutService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	checkoutHandler := NewCheckoutHandler(deps.CheckoutSvc, deps.Logger)

	// --- Webhook (signature-authenticated, no JWT) ---
	webhooks := v1.Group("/webhooks")
	{
		webhooks.POST("/stripe", rl("webhooks"), checkoutHandler.StripeWebhook)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.WalletSvc)
	purchaseHandler := NewPurchaseHandler(deps.PurchaseSvc)

	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("", rl("wallets"), walletHandler.GetWallet)
		wallet.GET("/transactions", rl("wallets"), walletHandler.ListTransactions)
	}

	purchases := v1.Group("/purchases", jwtAuth)
	{
		purchases.POST("/primary", rl("purchases"), purchaseHandler.PrimaryPurchase)
		purchases.POST("/resale", rl("purchases"), purchaseHandler.Resale)
		purchases.POST("/commission", rl("purchases"), purchaseHandler.CommissionPayment)
	}

	boosts := v1.Group("/boosts", jwtAuth)
	{
		boosts.POST("", rl("purchases"), purchaseHandler.BoostPurchase)
	}

	checkout := v1.Group("/checkout", jwtAuth)
	{
		checkout.POST("/session", rl("checkout"), checkoutHandler.CreateSession)
		checkout.GET("/orders/:reference", rl("checkout"), checkoutHandler.GetOrder)
	}

	return r
}
