// Package routes wires repositories, services and handlers onto the Fiber app.
package routes

import (
	"time"

	"paylink/internal/config"
	"paylink/internal/handlers"
	"paylink/internal/repositories"
	"paylink/internal/services/fee"
	"paylink/internal/services/fx"
	"paylink/internal/services/paymentlink"
	"paylink/internal/services/psp"
	"paylink/internal/services/webhook"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes and returns the PSP event
// bus so the caller can close it on shutdown.
func SetupRoutes(app *fiber.App, db *gorm.DB) *psp.EventBus {
	// Repositories
	linkRepo := repositories.NewPaymentLinkRepository(db)
	merchantRepo := repositories.NewMerchantRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	feeConfigRepo := repositories.NewFeeConfigRepository(db)
	eventRepo := repositories.NewWebhookEventRepository(db)
	pspRepo := repositories.NewPspRepository(db)

	// Webhook reconciler and the event bus feeding it from the mock clients.
	reconciler := webhook.NewService(paymentRepo, linkRepo, eventRepo)
	bus := psp.NewEventBus(config.GetIntEnv("PSP_EVENT_BUFFER", 256))
	go bus.Run(reconciler.HandleEvent)

	// PSP clients and failover orchestrator. Registration order is the
	// default routing order.
	stripeClient := psp.NewStripeClientMock(psp.NewTokenStore(), bus, config.GetEnv("STRIPE_SECRET_KEY", ""))
	adyenClient := psp.NewAdyenClientMock(psp.NewTokenStore(), bus)
	clients := []psp.Client{stripeClient, adyenClient}

	orchestrator := psp.NewOrchestrator(clients, psp.OrchestratorConfig{
		ChargeTimeout: config.GetDurationEnv("PSP_CHARGE_TIMEOUT", 10*time.Second),
	})

	// FX rates, optionally cached in Redis.
	var rateProvider fx.RateProvider = fx.NewInMemoryProvider(
		fx.ParseBaseRates(config.GetEnv("FX_BASE_RATES", "USD:MXN=17.20,EUR:USD=1.10,USD:COP=4000.00")),
		config.GetIntEnv("FX_JITTER_BPS", 50),
	)
	if config.GetBoolEnv("FX_CACHE_ENABLED", true) && repositories.CacheService != nil {
		rateProvider = fx.NewCachingProvider(
			rateProvider,
			repositories.CacheService,
			config.GetDurationEnv("FX_CACHE_TTL", time.Minute),
		)
	}

	feeEngine := fee.NewEngine(feeConfigRepo, rateProvider, fee.Config{
		FxEnabled:      config.GetBoolEnv("FX_ENABLED", false),
		PayoutCurrency: config.GetEnv("FX_PAYOUT_CURRENCY", "MXN"),
		MarkupPercent:  decimal.NewFromFloat(config.GetFloatEnv("FX_MARKUP_PERCENT", 0)),
	})

	linkService := paymentlink.NewService(
		linkRepo,
		merchantRepo,
		paymentRepo,
		pspRepo,
		feeEngine,
		orchestrator,
		paymentlink.Config{
			PublicBaseURL:  config.GetEnv("PAYMENT_LINK_BASE_URL", "http://localhost:3000/pay"),
			DefaultPspCode: psp.Code(config.GetEnv("DEFAULT_PSP", string(psp.CodeStripe))),
		},
	)

	// Handlers
	linkHandler := handlers.NewPaymentLinkHandler(linkService)
	checkoutHandler := handlers.NewCheckoutHandler(linkService)
	pspHandler := handlers.NewPspHandler(clients)
	webhookHandler := handlers.NewWebhookHandler(reconciler)

	api := app.Group("/api")

	app.Get("/health", handlers.HealthCheck)

	api.Post("/payment-links", linkHandler.CreatePaymentLink)
	api.Get("/payment-links/:slug", linkHandler.GetPaymentLink)
	api.Patch("/payment-links/:slug", linkHandler.UpdatePaymentLink)
	api.Post("/payment-links/:slug/pay", linkHandler.ProcessPayment)
	api.Delete("/payment-links/:slug", linkHandler.DeletePaymentLink)
	api.Get("/merchants/:merchantId/payment-links", linkHandler.ListPaymentLinks)

	api.Post("/checkout/:slug/tokenize", checkoutHandler.TokenizeCard)

	api.Post("/psp/:code/tokenize", pspHandler.TokenizeCard)

	api.Post("/psp/webhook", limiter.New(limiter.Config{
		Max:        config.GetIntEnv("WEBHOOK_RATE_LIMIT", 120),
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), webhookHandler.HandlePspWebhook)

	return bus
}
