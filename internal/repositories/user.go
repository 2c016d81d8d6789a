package repositories

import (
	"context"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// Upsert inserts the user or refreshes its profile fields by user id.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"email", "first_name", "last_name", "role", "updated_at"}),
	}).Create(user).Error
	return apperrors.Persistence(err)
}

// Block marks the user blocked and inactive. Only an unblocked user is
// touched; a second call reports ErrAlreadyBlocked.
func (r *UserRepository) Block(ctx context.Context, userID string) (*models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("user_id = ? AND is_blocked = ?", userID, false).
		Updates(map[string]interface{}{
			"is_blocked": true,
			"is_active":  false,
		})
	if result.Error != nil {
		return nil, apperrors.Persistence(result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByUserID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrAlreadyBlocked
	}
	return r.GetByUserID(ctx, userID)
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IsBlocked != nil {
		query = query.Where("is_blocked = ?", *filter.IsBlocked)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Persistence(err)
	}

	page := filter.Page.Normalize()
	var users []models.User
	err := query.Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&users).Error
	if err != nil {
		return nil, 0, apperrors.Persistence(err)
	}
	return users, total, nil
}
