package transaction

import (
	"context"

	"kudi/internal/models"
	"kudi/internal/repositories"
)

// StateMachine moves transactions out of pending and applies the balance
// effect of each move in the caller's unit of work:
//
//	type        complete                  fail
//	deposit     credit amount             nothing
//	withdrawal  nothing                   refund amount
//	transfer    nothing                   refund amount
//	conversion  mark conversion completed refund source, mark conversion failed
//
// The conditional status update is the only serialization point. Whoever
// loses it gets AlreadyProcessed and applies nothing.
type StateMachine struct {
	wallets WalletAdjuster
}

func NewStateMachine(wallets WalletAdjuster) *StateMachine {
	return &StateMachine{wallets: wallets}
}

// Complete drives txn from pending to completed.
func (m *StateMachine) Complete(ctx context.Context, tx *repositories.Store, txn *models.Transaction) (*Transition, error) {
	if txn.Status.Terminal() {
		return &Transition{Outcome: AlreadyProcessed, Transaction: txn}, nil
	}

	moved, err := tx.Transactions.TransitionFromPending(ctx, txn, models.StatusCompleted, txn.Description)
	if err != nil {
		return nil, err
	}
	if !moved {
		return &Transition{Outcome: AlreadyProcessed, Transaction: txn}, nil
	}

	t := &Transition{Outcome: Processed, Transaction: txn}
	switch txn.Type {
	case models.TransactionTypeDeposit:
		if _, err := m.wallets.AdjustTx(ctx, tx, txn.UserID, txn.Currency, txn.Amount, models.TotalDeposits); err != nil {
			return nil, err
		}
		t.Changes = append(t.Changes, BalanceChange{UserID: txn.UserID, Currency: txn.Currency, Delta: txn.Amount})
	case models.TransactionTypeConversion:
		if err := tx.Conversions.SetStatus(ctx, txn.TransactionID, models.StatusCompleted); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Fail drives txn from pending to failed, appending reason to the description.
func (m *StateMachine) Fail(ctx context.Context, tx *repositories.Store, txn *models.Transaction, reason string) (*Transition, error) {
	if txn.Status.Terminal() {
		return &Transition{Outcome: AlreadyProcessed, Transaction: txn}, nil
	}

	description := txn.Description
	if reason != "" {
		description += rejectionSeparator + reason
	}
	moved, err := tx.Transactions.TransitionFromPending(ctx, txn, models.StatusFailed, description)
	if err != nil {
		return nil, err
	}
	if !moved {
		return &Transition{Outcome: AlreadyProcessed, Transaction: txn}, nil
	}

	t := &Transition{Outcome: Processed, Transaction: txn}
	var total models.LifetimeTotal
	switch txn.Type {
	case models.TransactionTypeWithdrawal, models.TransactionTypeTransfer:
		total = models.TotalWithdrawals
	case models.TransactionTypeConversion:
		total = models.TotalConversions
		if err := tx.Conversions.SetStatus(ctx, txn.TransactionID, models.StatusFailed); err != nil {
			return nil, err
		}
	default:
		// deposits never touched the balance
		return t, nil
	}

	if _, err := m.wallets.AdjustTx(ctx, tx, txn.UserID, txn.Currency, txn.Amount, total); err != nil {
		return nil, err
	}
	t.Changes = append(t.Changes, BalanceChange{UserID: txn.UserID, Currency: txn.Currency, Delta: txn.Amount})
	return t, nil
}
