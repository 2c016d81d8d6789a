package transaction

import (
	"kudi/internal/models"

	"github.com/shopspring/decimal"
)

// Outcome is the result of driving a transaction towards a terminal state.
type Outcome string

const (
	// Processed: this call performed the transition and its side effects.
	Processed Outcome = "processed"
	// AlreadyProcessed: the transaction was already terminal, or another
	// caller won the transition. Nothing was changed.
	AlreadyProcessed Outcome = "already_processed"
	// Ignored: the event did not apply to any pending transaction.
	Ignored Outcome = "ignored"
)

func (o Outcome) String() string {
	return string(o)
}

// CreateRequest describes a deposit, withdrawal or transfer to record.
type CreateRequest struct {
	UserID      string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Currency    models.Currency
	Method      string
	Reference   string
	Description string
}

// BalanceChange is one wallet movement made by a transition.
type BalanceChange struct {
	UserID   string
	Currency models.Currency
	Delta    decimal.Decimal
}

// Transition reports what a state machine step did.
type Transition struct {
	Outcome     Outcome
	Transaction *models.Transaction
	Changes     []BalanceChange
}
