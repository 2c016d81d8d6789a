package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LifetimeTotal names the lifetime counter a balance adjustment feeds.
type LifetimeTotal string

const (
	TotalNone        LifetimeTotal = ""
	TotalDeposits    LifetimeTotal = "deposits"
	TotalWithdrawals LifetimeTotal = "withdrawals"
	TotalConversions LifetimeTotal = "conversions"
)

type Wallet struct {
	ID                uint            `gorm:"primarykey" json:"-"`
	UserID            string          `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceNGN        decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0" json:"balance_ngn"`
	BalanceGHS        decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0" json:"balance_ghs"`
	TotalDeposits     decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0" json:"total_deposits"`
	TotalWithdrawals  decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0" json:"total_withdrawals"`
	TotalConversions  decimal.Decimal `gorm:"type:numeric(24,8);not null;default:0" json:"total_conversions"`
	IsActive          bool            `gorm:"not null;default:true" json:"is_active"`
	LastTransactionAt *time.Time      `json:"last_transaction_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	// Wallets always start empty; money only enters through an adjustment.
	w.BalanceNGN = decimal.Zero
	w.BalanceGHS = decimal.Zero
	w.TotalDeposits = decimal.Zero
	w.TotalWithdrawals = decimal.Zero
	w.TotalConversions = decimal.Zero
	w.IsActive = true
	return nil
}

// Balance returns the balance held in currency c.
func (w *Wallet) Balance(c Currency) decimal.Decimal {
	if c == CurrencyGHS {
		return w.BalanceGHS
	}
	return w.BalanceNGN
}

// SetBalance overwrites the balance held in currency c.
func (w *Wallet) SetBalance(c Currency, v decimal.Decimal) {
	if c == CurrencyGHS {
		w.BalanceGHS = v
		return
	}
	w.BalanceNGN = v
}

// ApplyToTotal moves the named lifetime counter for a balance change of
// delta. Deposits grow with credits; withdrawals and conversions grow with
// debits, so a refund (a credit) shrinks them again.
func (w *Wallet) ApplyToTotal(total LifetimeTotal, delta decimal.Decimal) {
	switch total {
	case TotalDeposits:
		w.TotalDeposits = w.TotalDeposits.Add(delta)
	case TotalWithdrawals:
		w.TotalWithdrawals = w.TotalWithdrawals.Sub(delta)
	case TotalConversions:
		w.TotalConversions = w.TotalConversions.Sub(delta)
	}
}
