package transaction

import (
	"context"

	"kudi/internal/models"
	"kudi/internal/repositories"

	"github.com/shopspring/decimal"
)

// WalletAdjuster moves balances inside a caller's unit of work.
type WalletAdjuster interface {
	AdjustTx(ctx context.Context, tx *repositories.Store, userID string, currency models.Currency, delta decimal.Decimal, total models.LifetimeTotal) (*models.Wallet, error)
	Committed(ctx context.Context, userID string, currency models.Currency, delta decimal.Decimal)
}
