package repositories

import (
	"context"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"gorm.io/gorm"
)

type ConversionRepository struct {
	db *gorm.DB
}

func (r *ConversionRepository) Create(ctx context.Context, conv *models.Conversion) error {
	return apperrors.Persistence(r.db.WithContext(ctx).Create(conv).Error)
}

func (r *ConversionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Conversion, error) {
	var conv models.Conversion
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&conv).Error; err != nil {
		return nil, notFound(err, apperrors.ErrTransactionNotFound.WithMessage("conversion not found"))
	}
	return &conv, nil
}

// SetStatus mirrors the owning transaction's status onto its conversion.
func (r *ConversionRepository) SetStatus(ctx context.Context, transactionID string, status models.TransactionStatus) error {
	err := r.db.WithContext(ctx).Model(&models.Conversion{}).
		Where("transaction_id = ?", transactionID).
		Update("status", status).Error
	return apperrors.Persistence(err)
}
