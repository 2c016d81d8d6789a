package repositories

import (
	"context"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

// Record inserts the delivery and reports whether it is new. A delivery whose
// event id is already stored is left untouched and reported as seen.
func (r *WebhookEventRepository) Record(ctx context.Context, event *models.WebhookEvent) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "event_id"}}, DoNothing: true}).
		Create(event)
	if result.Error != nil {
		return false, apperrors.Persistence(result.Error)
	}
	return result.RowsAffected == 1, nil
}

// SetOutcome stores what the ledger made of the delivery.
func (r *WebhookEventRepository) SetOutcome(ctx context.Context, eventID, outcome string) error {
	err := r.db.WithContext(ctx).Model(&models.WebhookEvent{}).
		Where("event_id = ?", eventID).
		Update("outcome", outcome).Error
	return apperrors.Persistence(err)
}

func (r *WebhookEventRepository) GetByEventID(ctx context.Context, eventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	if err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error; err != nil {
		return nil, notFound(err, apperrors.ErrWebhookEventNotFound)
	}
	return &event, nil
}
