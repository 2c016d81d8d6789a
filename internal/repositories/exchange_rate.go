package repositories

import (
	"context"
	"errors"
	"time"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"gorm.io/gorm"
)

type ExchangeRateRepository struct {
	db *gorm.DB
}

func (r *ExchangeRateRepository) Create(ctx context.Context, rate *models.ExchangeRate) error {
	return apperrors.Persistence(r.db.WithContext(ctx).Create(rate).Error)
}

// Active returns the most recent active rate for the pair whose validity
// window contains at, or nil when none is configured.
func (r *ExchangeRateRepository) Active(ctx context.Context, from, to models.Currency, at time.Time) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("from_currency = ? AND to_currency = ? AND is_active = ?", from, to, true).
		Where("valid_from <= ?", at).
		Where("valid_to IS NULL OR valid_to > ?", at).
		Order("valid_from DESC, id DESC").
		First(&rate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return &rate, nil
}

// History lists the pair's rates, newest first.
func (r *ExchangeRateRepository) History(ctx context.Context, from, to models.Currency, limit int) ([]models.ExchangeRate, error) {
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	var rates []models.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("from_currency = ? AND to_currency = ?", from, to).
		Order("valid_from DESC, id DESC").
		Limit(limit).
		Find(&rates).Error
	if err != nil {
		return nil, apperrors.Persistence(err)
	}
	return rates, nil
}
