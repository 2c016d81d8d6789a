package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exchange rate origins
const (
	RateOriginManual = "manual"
	RateOriginAPI    = "api"
)

type ExchangeRate struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	FromCurrency Currency        `gorm:"size:3;not null;index:idx_rate_pair" json:"from_currency"`
	ToCurrency   Currency        `gorm:"size:3;not null;index:idx_rate_pair" json:"to_currency"`
	Rate         decimal.Decimal `gorm:"type:numeric(24,8);not null" json:"rate"`
	Source       string          `gorm:"not null;default:'api'" json:"source"`
	SetBy        string          `json:"set_by,omitempty"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	ValidFrom    time.Time       `gorm:"not null" json:"valid_from"`
	ValidTo      *time.Time      `json:"valid_to,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ValidAt reports whether the rate applies at t.
func (r *ExchangeRate) ValidAt(t time.Time) bool {
	if !r.IsActive || t.Before(r.ValidFrom) {
		return false
	}
	return r.ValidTo == nil || t.Before(*r.ValidTo)
}
