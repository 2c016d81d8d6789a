// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"kudi/internal/config"
	"kudi/internal/handlers"
	"kudi/internal/metrics"
	"kudi/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Options configures SetupRoutes. Metrics is optional.
type Options struct {
	Config  config.Config
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// SetupRoutes configures all application routes.
// Webhooks are public and authenticate by provider signature; everything
// else under /api needs a bearer token, and /api/admin an admin one.
func SetupRoutes(app *fiber.App, svc *Services, opts Options) {
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Middleware())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	var healthHandler *handlers.HealthHandler
	if svc.Cache != nil {
		healthHandler = handlers.NewHealthHandler(svc.Store, svc.Cache)
	} else {
		healthHandler = handlers.NewHealthHandler(svc.Store, nil)
	}
	app.Get("/health", healthHandler.HealthCheck)

	walletHandler := handlers.NewWalletHandler(svc.Wallets, svc.Transactions)
	convertHandler := handlers.NewConvertHandler(svc.Conversions)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	adminHandler := handlers.NewAdminHandler(svc.Admin)
	webhookHandler := handlers.NewWebhookHandler(svc.Webhooks, handlers.WebhookSecrets{
		Paystack: opts.Config.PaystackSecret,
		Momo:     opts.Config.MomoCallbackToken,
		Stripe:   opts.Config.StripeWebhookSecret,
	}, opts.Logger)

	authMiddleware := middleware.NewAuthMiddleware(opts.Config.JWTSecret, svc.Store.Users, opts.Logger)

	api := app.Group("/api")

	// Public endpoints (no auth required)
	webhooks := api.Group("/webhooks")
	webhooks.Post("/paystack", webhookHandler.Paystack)
	webhooks.Post("/momo", webhookHandler.Momo)
	webhooks.Post("/stripe", webhookHandler.Stripe)

	api.Get("/convert/rates", convertHandler.GetRates)
	api.Post("/convert/calculate", convertHandler.Calculate)

	setupUserRoutes(api, authMiddleware.Handler, walletHandler, convertHandler, transactionHandler)
	setupAdminRoutes(api, authMiddleware.Handler, adminHandler, healthHandler)
}

func setupUserRoutes(router fiber.Router, auth fiber.Handler, walletHandler *handlers.WalletHandler, convertHandler *handlers.ConvertHandler, transactionHandler *handlers.TransactionHandler) {
	wallet := router.Group("/wallet", auth)
	wallet.Get("/balance", walletHandler.GetBalance)
	wallet.Get("/history", walletHandler.GetHistory)
	wallet.Post("/topup", walletHandler.TopUp)
	wallet.Post("/withdraw", walletHandler.Withdraw)

	router.Post("/convert", auth, convertHandler.Convert)

	transactions := router.Group("/transactions", auth)
	transactions.Get("/", transactionHandler.GetUserTransactions)
	transactions.Get("/:id", transactionHandler.GetTransaction)
}

func setupAdminRoutes(router fiber.Router, auth fiber.Handler, h *handlers.AdminHandler, health *handlers.HealthHandler) {
	admin := router.Group("/admin", auth, middleware.AdminAuthMiddleware)

	admin.Get("/transactions", h.GetAllTransactions)
	admin.Get("/transactions/:id", h.GetTransaction)
	admin.Post("/transactions/:id/approve", h.ApproveTransaction)
	admin.Post("/transactions/:id/reject", h.RejectTransaction)
	admin.Get("/users", h.GetUsers)
	admin.Post("/users/:id/block", h.BlockUser)
	admin.Put("/rates", h.SetExchangeRate)
	admin.Get("/rates/history", h.GetRateHistory)
	admin.Get("/logs", h.GetLogs)
	admin.Get("/cache-stats", health.CacheStats)
}
