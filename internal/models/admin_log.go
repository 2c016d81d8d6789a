package models

import "time"

// Admin actions
const (
	AdminActionApproveTransaction = "approve_transaction"
	AdminActionRejectTransaction  = "reject_transaction"
	AdminActionBlockUser          = "block_user"
	AdminActionSetExchangeRate    = "set_exchange_rate"
)

// Admin log targets
const (
	AdminTargetTransaction = "transaction"
	AdminTargetUser        = "user"
	AdminTargetRate        = "rate"
)

// AdminLog is an append-only audit record; rows are never updated.
type AdminLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AdminID   string    `gorm:"index;not null" json:"admin_id"`
	Action    string    `gorm:"index;not null" json:"action"`
	Target    string    `gorm:"not null" json:"target"`
	TargetID  string    `gorm:"index;not null" json:"target_id"`
	Details   JSON      `gorm:"type:jsonb" json:"details"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
