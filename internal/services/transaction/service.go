package transaction

import (
	"context"
	"time"

	apperrors "kudi/internal/errors"
	"kudi/internal/events"
	"kudi/internal/logger"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/services/wallet"
	"kudi/internal/utils"
	"kudi/internal/validation"

	"go.uber.org/zap"
)

// Config holds transaction service settings.
type Config struct {
	OperationTimeout time.Duration
}

// Dependencies groups the collaborators of Service. Metrics, Publisher and
// Logger are optional.
type Dependencies struct {
	Store     *repositories.Store
	Wallets   WalletAdjuster
	IDs       utils.IDGenerator
	Metrics   wallet.MetricsCollector
	Publisher events.Publisher
	Logger    *zap.Logger
}

type Service struct {
	store     *repositories.Store
	wallets   WalletAdjuster
	machine   *StateMachine
	ids       utils.IDGenerator
	metrics   wallet.MetricsCollector
	publisher events.Publisher
	config    Config
	log       *zap.Logger
}

func NewService(deps Dependencies, config Config) *Service {
	if deps.Store == nil || deps.Wallets == nil {
		panic("store and wallets are required")
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewIDGenerator()
	}
	if deps.Metrics == nil {
		deps.Metrics = &wallet.NoopMetricsCollector{}
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = DefaultTimeout
	}
	return &Service{
		store:     deps.Store,
		wallets:   deps.Wallets,
		machine:   NewStateMachine(deps.Wallets),
		ids:       deps.IDs,
		metrics:   deps.Metrics,
		publisher: deps.Publisher,
		config:    config,
		log:       logger.OrNop(deps.Logger).Named("transaction"),
	}
}

// Machine exposes the state machine to services that run transitions inside
// their own unit of work.
func (s *Service) Machine() *StateMachine {
	return s.machine
}

// Create records a pending deposit, withdrawal or transfer. Withdrawals and
// transfers take the amount out of the wallet in the same unit of work;
// deposits only credit once completed.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Transaction, error) {
	if err := s.validateCreate(req); err != nil {
		s.metrics.RecordError(OpCreate, string(apperrors.KindOf(err)))
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	reference := req.Reference
	if reference == "" {
		reference = s.ids.Reference()
	}
	txn := &models.Transaction{
		TransactionID: s.ids.TransactionID(),
		Reference:     reference,
		UserID:        req.UserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Type:          req.Type,
		Direction:     models.DirectionFor(req.Type, req.Currency, ""),
		Status:        models.StatusPending,
		Method:        req.Method,
		Description:   req.Description,
	}

	debit := req.Type.DeductsOnCreate()
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		if debit {
			w, err := tx.Wallets.GetOrCreate(ctx, req.UserID)
			if err != nil {
				return err
			}
			if err := validation.ActiveWallet(w); err != nil {
				return err
			}
			if _, err := s.wallets.AdjustTx(ctx, tx, req.UserID, req.Currency, req.Amount.Neg(), models.TotalWithdrawals); err != nil {
				return err
			}
		}
		return tx.Transactions.Create(ctx, txn)
	})
	if err != nil {
		s.metrics.RecordError(OpCreate, string(apperrors.KindOf(err)))
		return nil, err
	}

	if debit {
		s.wallets.Committed(ctx, req.UserID, req.Currency, req.Amount.Neg())
	}
	s.metrics.RecordTransaction(string(txn.Type), txn.Amount.InexactFloat64())
	s.publish(ctx, txn)
	s.log.Info("transaction created",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("reference", txn.Reference),
		zap.String("type", string(txn.Type)),
		zap.String("amount", txn.Amount.String()),
		zap.String("currency", string(txn.Currency)))
	return txn, nil
}

func (s *Service) validateCreate(req CreateRequest) error {
	if req.UserID == "" {
		return apperrors.ErrInvalidUser
	}
	if !req.Type.Valid() {
		return apperrors.ErrInvalidType
	}
	if req.Type == models.TransactionTypeConversion {
		return apperrors.ErrInvalidType.WithMessage("conversions are created through the conversion engine")
	}
	if err := validation.Amount(req.Amount); err != nil {
		return err
	}
	if err := validation.Currency(req.Currency); err != nil {
		return err
	}
	if !validMethods[req.Method] {
		return apperrors.ErrInvalidType.WithMessage("unsupported payment method %q", req.Method)
	}
	return nil
}

// Complete drives the transaction to completed. A transaction that is no
// longer pending yields AlreadyProcessed and no change.
func (s *Service) Complete(ctx context.Context, transactionID string) (*Transition, error) {
	return s.transition(ctx, OpComplete, transactionID, func(tx *repositories.Store, txn *models.Transaction) (*Transition, error) {
		return s.machine.Complete(ctx, tx, txn)
	})
}

// Fail drives the transaction to failed, refunding whatever it deducted.
func (s *Service) Fail(ctx context.Context, transactionID, reason string) (*Transition, error) {
	return s.transition(ctx, OpFail, transactionID, func(tx *repositories.Store, txn *models.Transaction) (*Transition, error) {
		return s.machine.Fail(ctx, tx, txn, reason)
	})
}

func (s *Service) transition(ctx context.Context, op, transactionID string, step func(*repositories.Store, *models.Transaction) (*Transition, error)) (*Transition, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	var t *Transition
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		txn, err := tx.Transactions.GetByTransactionID(ctx, transactionID)
		if err != nil {
			return err
		}
		t, err = step(tx, txn)
		return err
	})
	if err != nil {
		s.metrics.RecordError(op, string(apperrors.KindOf(err)))
		return nil, err
	}
	s.Finish(ctx, t)
	return t, nil
}

// Finish runs the after-commit work of a transition: cache invalidation,
// metrics and the status event. Failures here are logged only.
func (s *Service) Finish(ctx context.Context, t *Transition) {
	if t == nil || t.Outcome != Processed {
		return
	}
	for _, c := range t.Changes {
		s.wallets.Committed(ctx, c.UserID, c.Currency, c.Delta)
	}
	txn := t.Transaction
	s.metrics.RecordTransition(string(txn.Type), string(txn.Status))
	if txn.Status == models.StatusCompleted {
		s.metrics.RecordTransactionVolume(string(txn.Currency), txn.Amount.InexactFloat64())
	}
	s.publish(ctx, txn)
	s.log.Info("transaction transitioned",
		zap.String("transaction_id", txn.TransactionID),
		zap.String("type", string(txn.Type)),
		zap.String("status", string(txn.Status)))
}

func (s *Service) publish(ctx context.Context, txn *models.Transaction) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishStatusChanged(pctx, events.NewStatusChanged(txn)); err != nil {
		s.log.Warn("failed to publish transaction event",
			zap.String("transaction_id", txn.TransactionID), zap.Error(err))
	}
}

func (s *Service) Get(ctx context.Context, transactionID string) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()
	return s.store.Transactions.GetByTransactionID(ctx, transactionID)
}

func (s *Service) GetByReference(ctx context.Context, reference string) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()
	return s.store.Transactions.GetByReference(ctx, reference)
}

func (s *Service) List(ctx context.Context, filter repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()
	return s.store.Transactions.List(ctx, filter)
}
