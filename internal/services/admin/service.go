// Package admin applies operator overrides to the ledger. Every override is
// recorded in the admin log in the same unit of work as its effect.
package admin

import (
	"context"
	"time"

	apperrors "kudi/internal/errors"
	"kudi/internal/logger"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/services/rates"
	"kudi/internal/services/transaction"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

const defaultHistoryLimit = 50

// Actor identifies the administrator behind an override.
type Actor struct {
	AdminID   string
	IPAddress string
	UserAgent string
}

func (a Actor) entry(action, target, targetID string, details map[string]interface{}) *models.AdminLog {
	return &models.AdminLog{
		AdminID:   a.AdminID,
		Action:    action,
		Target:    target,
		TargetID:  targetID,
		Details:   models.NewJSON(details),
		IPAddress: a.IPAddress,
		UserAgent: a.UserAgent,
	}
}

// Dependencies groups the collaborators of Service.
type Dependencies struct {
	Store        *repositories.Store
	Transactions *transaction.Service
	Wallets      WalletCache
	Rates        *rates.Service
	Logger       *zap.Logger
}

// WalletCache drops a cached wallet snapshot after an override commits.
type WalletCache interface {
	Invalidate(ctx context.Context, userID string)
}

type Service struct {
	store        *repositories.Store
	transactions *transaction.Service
	wallets      WalletCache
	rates        *rates.Service
	timeout      time.Duration
	log          *zap.Logger
}

func NewService(deps Dependencies, timeout time.Duration) *Service {
	if deps.Store == nil || deps.Transactions == nil || deps.Wallets == nil || deps.Rates == nil {
		panic("store, transactions, wallets and rates are required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		store:        deps.Store,
		transactions: deps.Transactions,
		wallets:      deps.Wallets,
		rates:        deps.Rates,
		timeout:      timeout,
		log:          logger.OrNop(deps.Logger).Named("admin"),
	}
}

// Approve completes a pending transaction.
func (s *Service) Approve(ctx context.Context, transactionID string, actor Actor) (*models.Transaction, error) {
	return s.override(ctx, transactionID, actor, models.AdminActionApproveTransaction, nil,
		func(tx *repositories.Store, txn *models.Transaction) (*transaction.Transition, error) {
			return s.transactions.Machine().Complete(ctx, tx, txn)
		})
}

// Reject fails a pending transaction, refunding whatever it deducted. The
// reason is optional.
func (s *Service) Reject(ctx context.Context, transactionID string, actor Actor, reason string) (*models.Transaction, error) {
	details := map[string]interface{}{}
	if reason != "" {
		details["reason"] = reason
	}
	return s.override(ctx, transactionID, actor, models.AdminActionRejectTransaction, details,
		func(tx *repositories.Store, txn *models.Transaction) (*transaction.Transition, error) {
			return s.transactions.Machine().Fail(ctx, tx, txn, reason)
		})
}

// override runs one state machine step on behalf of an admin. Anything but a
// pending transaction, including one a concurrent caller just moved, is
// ErrNotPending and leaves no trace.
func (s *Service) override(
	ctx context.Context,
	transactionID string,
	actor Actor,
	action string,
	details map[string]interface{},
	step func(*repositories.Store, *models.Transaction) (*transaction.Transition, error),
) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var t *transaction.Transition
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		txn, err := tx.Transactions.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return err
		}
		if txn.Status != models.StatusPending {
			return notPending(txn)
		}

		t, err = step(tx, txn)
		if err != nil {
			return err
		}
		if t.Outcome != transaction.Processed {
			return notPending(txn)
		}

		if details == nil {
			details = map[string]interface{}{}
		}
		details["type"] = string(txn.Type)
		details["amount"] = txn.Amount.String()
		details["currency"] = string(txn.Currency)
		return tx.AdminLogs.Append(ctx, actor.entry(action, models.AdminTargetTransaction, txn.TransactionID, details))
	})
	if err != nil {
		return nil, err
	}

	s.transactions.Finish(ctx, t)
	s.log.Info("transaction overridden",
		zap.String("admin_id", actor.AdminID),
		zap.String("action", action),
		zap.String("transaction_id", transactionID))
	return t.Transaction, nil
}

func notPending(txn *models.Transaction) error {
	return apperrors.ErrNotPending.WithMessage("transaction %s is %s", txn.TransactionID, txn.Status)
}

// BlockUser blocks the user and deactivates their wallet.
func (s *Service) BlockUser(ctx context.Context, userID string, actor Actor, reason string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var user *models.User
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		var err error
		user, err = tx.Users.Block(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.Wallets.SetActive(ctx, userID, false); err != nil {
			return err
		}
		return tx.AdminLogs.Append(ctx, actor.entry(models.AdminActionBlockUser, models.AdminTargetUser, userID,
			map[string]interface{}{"reason": reason}))
	})
	if err != nil {
		return nil, err
	}

	s.wallets.Invalidate(ctx, userID)
	s.log.Info("user blocked", zap.String("admin_id", actor.AdminID), zap.String("user_id", userID))
	return user, nil
}

// SetExchangeRate records a manual rate for the pair, effective immediately.
func (s *Service) SetExchangeRate(ctx context.Context, from, to models.Currency, value decimal.Decimal, actor Actor) (*models.ExchangeRate, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var record *models.ExchangeRate
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		var err error
		record, err = s.rates.SetRateTx(ctx, tx, from, to, value, actor.AdminID)
		if err != nil {
			return err
		}
		return tx.AdminLogs.Append(ctx, actor.entry(models.AdminActionSetExchangeRate, models.AdminTargetRate,
			string(from)+"_"+string(to), map[string]interface{}{"rate": value.String()}))
	})
	if err != nil {
		return nil, err
	}

	s.rates.Invalidate(ctx, from, to)
	s.log.Info("exchange rate set",
		zap.String("admin_id", actor.AdminID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("rate", value.String()))
	return record, nil
}

func (s *Service) RateHistory(ctx context.Context, from, to models.Currency, limit int) ([]models.ExchangeRate, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.rates.History(ctx, from, to, limit)
}

func (s *Service) Logs(ctx context.Context, filter repositories.AdminLogFilter) ([]models.AdminLog, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.AdminLogs.List(ctx, filter)
}

// Transactions lists transactions across all users.
func (s *Service) Transactions(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	return s.transactions.List(ctx, filter)
}

// TransactionDetails is a transaction with its conversion record, if any.
type TransactionDetails struct {
	Transaction *models.Transaction `json:"transaction"`
	Conversion  *models.Conversion  `json:"conversion,omitempty"`
}

// Transaction returns one transaction of any user. A conversion carries its
// fee and rate record.
func (s *Service) Transaction(ctx context.Context, transactionID string) (*TransactionDetails, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	txn, err := s.store.Transactions.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	details := &TransactionDetails{Transaction: txn}
	if txn.Type == models.TransactionTypeConversion {
		conv, err := s.store.Conversions.GetByTransactionID(ctx, txn.TransactionID)
		if err != nil {
			return nil, err
		}
		details.Conversion = conv
	}
	return details, nil
}

func (s *Service) Users(ctx context.Context, filter repositories.UserFilter) ([]models.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Users.List(ctx, filter)
}
