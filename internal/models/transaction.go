package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

// Transaction types
const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeConversion TransactionType = "conversion"
	TransactionTypeTransfer   TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeConversion, TransactionTypeTransfer:
		return true
	}
	return false
}

// DeductsOnCreate reports whether the amount leaves the wallet when the
// transaction is created rather than when it completes.
func (t TransactionType) DeductsOnCreate() bool {
	return t == TransactionTypeWithdrawal || t == TransactionTypeTransfer || t == TransactionTypeConversion
}

type TransactionStatus string

// Transaction statuses
const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Terminal reports whether no further transition can leave s.
func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func (s TransactionStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted || s == StatusFailed
}

// Direction tags the currency flow of a transaction (NGN_GHS, DEPOSIT_NGN, ...).
type Direction string

// DirectionFor builds the direction tag for a transaction of type t.
// For conversions from and to are the two legs; otherwise only from is used.
func DirectionFor(t TransactionType, from, to Currency) Direction {
	switch t {
	case TransactionTypeConversion:
		return Direction(fmt.Sprintf("%s_%s", from, to))
	case TransactionTypeDeposit:
		return Direction("DEPOSIT_" + string(from))
	case TransactionTypeWithdrawal:
		return Direction("WITHDRAWAL_" + string(from))
	default:
		return Direction("TRANSFER_" + string(from))
	}
}

// Payment methods
const (
	MethodPaystack = "paystack"
	MethodMomo     = "momo"
	MethodStripe   = "stripe"
	MethodBank     = "bank"
	MethodInternal = "internal"
)

type Transaction struct {
	ID            uint              `gorm:"primarykey" json:"-"`
	TransactionID string            `gorm:"uniqueIndex;not null" json:"transaction_id"`
	Reference     string            `gorm:"uniqueIndex;not null" json:"reference"`
	UserID        string            `gorm:"index;not null" json:"user_id"`
	Amount        decimal.Decimal   `gorm:"type:numeric(24,8);not null" json:"amount"`
	Currency      Currency          `gorm:"size:3;not null" json:"currency"`
	Type          TransactionType   `gorm:"index;not null" json:"type"`
	Direction     Direction         `gorm:"not null" json:"direction"`
	Status        TransactionStatus `gorm:"index;not null;default:'pending'" json:"status"`
	Method        string            `json:"method,omitempty"`
	Description   string            `json:"description"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}
