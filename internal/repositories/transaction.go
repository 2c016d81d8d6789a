package repositories

import (
	"context"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

// Create inserts txn. A reference that is already taken fails with
// ErrDuplicateReference.
func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	err := r.db.WithContext(ctx).Create(txn).Error
	if duplicateKey(err) {
		return apperrors.ErrDuplicateReference.WithMessage("reference %q is already in use", txn.Reference)
	}
	return apperrors.Persistence(err)
}

func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&txn).Error; err != nil {
		return nil, notFound(err, apperrors.ErrTransactionNotFound)
	}
	return &txn, nil
}

func (r *TransactionRepository) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&txn).Error; err != nil {
		return nil, notFound(err, apperrors.ErrTransactionNotFound)
	}
	return &txn, nil
}

// TransitionFromPending moves a pending transaction to status and reports
// whether this call performed the move. False means the row was already
// terminal or a concurrent caller got there first; nothing is written then.
func (r *TransactionRepository) TransitionFromPending(ctx context.Context, txn *models.Transaction, status models.TransactionStatus, description string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", txn.ID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"description": description,
		})
	if result.Error != nil {
		return false, apperrors.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	txn.Status = status
	txn.Description = description
	return true, nil
}

// List returns one page of transactions matching filter, newest first, with
// the total number of matches.
func (r *TransactionRepository) List(ctx context.Context, filter TransactionFilter) ([]models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Currency != "" {
		query = query.Where("currency = ?", filter.Currency)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence(err)
	}

	page := filter.Page.Normalize()
	var txns []models.Transaction
	err := query.Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&txns).Error
	if err != nil {
		return nil, 0, apperrors.Persistence(err)
	}
	return txns, total, nil
}
