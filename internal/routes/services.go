package routes

import (
	"kudi/internal/config"
	"kudi/internal/events"
	"kudi/internal/repositories"
	"kudi/internal/repositories/cache"
	"kudi/internal/services/admin"
	"kudi/internal/services/conversion"
	"kudi/internal/services/rates"
	"kudi/internal/services/transaction"
	"kudi/internal/services/wallet"
	"kudi/internal/services/webhook"

	"go.uber.org/zap"
)

// Services is the wired ledger core behind the HTTP API.
type Services struct {
	Store        *repositories.Store
	Cache        *cache.CacheService
	Wallets      *wallet.Service
	Rates        *rates.Service
	Transactions *transaction.Service
	Conversions  *conversion.Service
	Webhooks     *webhook.Service
	Admin        *admin.Service
}

// Infrastructure is what NewServices wires the ledger onto. Cache, Metrics,
// Publisher and Logger are optional.
type Infrastructure struct {
	Store     *repositories.Store
	Cache     *cache.CacheService
	Metrics   wallet.MetricsCollector
	Publisher events.Publisher
	Logger    *zap.Logger
}

func NewServices(infra Infrastructure, cfg config.Config) *Services {
	var (
		walletCache wallet.Cache
		rateCache   rates.RateCache
	)
	if infra.Cache != nil {
		walletCache = infra.Cache
		rateCache = infra.Cache
	}

	wallets := wallet.NewService(infra.Store, walletCache, wallet.Config{
		OperationTimeout: cfg.OperationTimeout,
	}, infra.Metrics, infra.Logger)

	rateSvc := rates.NewService(infra.Store, rateCache, rates.Config{
		CacheTTL:      cfg.RateCacheTTL,
		LookupTimeout: cfg.OperationTimeout,
	}, infra.Logger)

	txns := transaction.NewService(transaction.Dependencies{
		Store:     infra.Store,
		Wallets:   wallets,
		Metrics:   infra.Metrics,
		Publisher: infra.Publisher,
		Logger:    infra.Logger,
	}, transaction.Config{OperationTimeout: cfg.OperationTimeout})

	return &Services{
		Store:        infra.Store,
		Cache:        infra.Cache,
		Wallets:      wallets,
		Rates:        rateSvc,
		Transactions: txns,
		Conversions: conversion.NewService(conversion.Dependencies{
			Store:        infra.Store,
			Rates:        rateSvc,
			Wallets:      wallets,
			Transactions: txns,
			Logger:       infra.Logger,
		}, conversion.Config{
			FeeRate:          cfg.ConversionFeeRate,
			OperationTimeout: cfg.OperationTimeout,
		}),
		Webhooks: webhook.NewService(webhook.Dependencies{
			Store:        infra.Store,
			Transactions: txns,
			Metrics:      infra.Metrics,
			Logger:       infra.Logger,
		}, cfg.OperationTimeout),
		Admin: admin.NewService(admin.Dependencies{
			Store:        infra.Store,
			Transactions: txns,
			Wallets:      wallets,
			Rates:        rateSvc,
			Logger:       infra.Logger,
		}, cfg.OperationTimeout),
	}
}
