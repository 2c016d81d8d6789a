package repositories

import (
	"context"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"gorm.io/gorm"
)

// AdminLogRepository only appends and reads; audit rows are never changed.
type AdminLogRepository struct {
	db *gorm.DB
}

func (r *AdminLogRepository) Append(ctx context.Context, entry *models.AdminLog) error {
	return apperrors.Persistence(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *AdminLogRepository) List(ctx context.Context, filter AdminLogFilter) ([]models.AdminLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AdminLog{})
	if filter.AdminID != "" {
		query = query.Where("admin_id = ?", filter.AdminID)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence(err)
	}

	page := filter.Page.Normalize()
	var logs []models.AdminLog
	err := query.Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&logs).Error
	if err != nil {
		return nil, 0, apperrors.Persistence(err)
	}
	return logs, total, nil
}
