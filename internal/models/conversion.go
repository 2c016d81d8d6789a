package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate sources
const (
	RateSourceDatabase = "database"
	RateSourceDefault  = "default"
)

// Conversion is the fee/rate record paired 1:1 with a conversion Transaction.
type Conversion struct {
	ID              uint              `gorm:"primarykey" json:"-"`
	ConversionID    string            `gorm:"uniqueIndex;not null" json:"conversion_id"`
	TransactionID   string            `gorm:"uniqueIndex;not null" json:"transaction_id"`
	UserID          string            `gorm:"index;not null" json:"user_id"`
	FromCurrency    Currency          `gorm:"size:3;not null" json:"from_currency"`
	ToCurrency      Currency          `gorm:"size:3;not null" json:"to_currency"`
	Amount          decimal.Decimal   `gorm:"type:numeric(24,8);not null" json:"amount"`
	Fee             decimal.Decimal   `gorm:"type:numeric(24,8);not null" json:"fee"`
	Rate            decimal.Decimal   `gorm:"type:numeric(24,8);not null" json:"rate"`
	ConvertedAmount decimal.Decimal   `gorm:"type:numeric(24,8);not null" json:"converted_amount"`
	RateSource      string            `json:"rate_source"`
	Status          TransactionStatus `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}
