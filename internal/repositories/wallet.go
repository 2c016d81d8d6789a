package repositories

import (
	"context"
	"time"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct {
	db *gorm.DB
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, notFound(err, apperrors.ErrWalletNotFound)
	}
	return &wallet, nil
}

// GetOrCreate returns the user's wallet, inserting an empty one on first use.
// Concurrent first calls converge on the same row.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error) {
	wallet := models.Wallet{UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&wallet).Error
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return r.GetByUserID(ctx, userID)
}

// lockByUserID reads the wallet row with an exclusive row lock held until the
// surrounding transaction ends, creating the row first when missing.
func (r *WalletRepository) lockByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		return nil, notFound(err, apperrors.ErrWalletNotFound)
	}
	return &wallet, nil
}

// Adjust moves the currency balance by delta and feeds the named lifetime
// counter. It must run inside Store.ExecuteInTransaction: the row lock taken
// here is what serializes concurrent adjustments on one wallet. A delta that
// would take the balance below zero returns ErrInsufficientFunds and writes
// nothing.
func (r *WalletRepository) Adjust(ctx context.Context, userID string, currency models.Currency, delta decimal.Decimal, total models.LifetimeTotal) (*models.Wallet, error) {
	if !currency.Valid() {
		return nil, apperrors.ErrInvalidCurrency
	}

	wallet, err := r.lockByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := wallet.Balance(currency).Add(delta)
	if next.IsNegative() {
		return nil, apperrors.ErrInsufficientFunds.WithMessage(
			"insufficient %s balance: have %s, need %s",
			currency, wallet.Balance(currency).StringFixed(2), delta.Abs().StringFixed(2))
	}

	now := time.Now()
	wallet.SetBalance(currency, next)
	wallet.ApplyToTotal(total, delta)
	wallet.LastTransactionAt = &now

	err = r.db.WithContext(ctx).Model(wallet).Select(
		"BalanceNGN", "BalanceGHS", "TotalDeposits", "TotalWithdrawals",
		"TotalConversions", "LastTransactionAt",
	).Updates(wallet).Error
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return wallet, nil
}

// SetActive flips the wallet's active flag. A missing wallet is created first
// so a block issued before any activity still sticks.
func (r *WalletRepository) SetActive(ctx context.Context, userID string, active bool) error {
	if _, err := r.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("is_active", active).Error
	return apperrors.Persistence(err)
}
