package models

import "time"

// Webhook providers
const (
	ProviderPaystack = "paystack"
	ProviderMomo     = "momo"
	ProviderStripe   = "stripe"
)

// WebhookEvent records one provider delivery and what the ledger made of it.
type WebhookEvent struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	EventID   string    `gorm:"uniqueIndex;not null" json:"event_id"`
	Provider  string    `gorm:"index;not null" json:"provider"`
	EventType string    `gorm:"not null" json:"event_type"`
	Reference string    `gorm:"index" json:"reference"`
	Payload   JSON      `gorm:"type:jsonb" json:"payload"`
	Outcome   string    `gorm:"not null" json:"outcome"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
