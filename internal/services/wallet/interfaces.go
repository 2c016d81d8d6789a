package wallet

import (
	"context"
	"time"

	"kudi/internal/models"
)

// Cache is the wallet snapshot cache. CacheWallet must drop the write when
// the wallet was invalidated after version was read.
type Cache interface {
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	WalletVersion(ctx context.Context, userID string) (int64, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet, version int64) error
	InvalidateWallet(ctx context.Context, userID string) error
}

// MetricsCollector defines the interface for collecting ledger metrics
type MetricsCollector interface {
	// Operation metrics
	RecordOperationDuration(operation string, duration time.Duration)
	RecordOperationResult(operation, result string)

	// Cache metrics
	RecordCacheHit(key string)
	RecordCacheMiss(key string)

	// Balance metrics
	RecordBalanceChange(currency string, delta float64)

	// Error metrics
	RecordError(operation, errType string)

	// Transaction metrics
	RecordTransaction(txType string, amount float64)
	RecordTransactionVolume(currency string, amount float64)
	RecordTransition(txType, status string)

	// Webhook metrics
	RecordWebhook(provider, outcome string)
}
