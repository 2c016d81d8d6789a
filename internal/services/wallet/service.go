package wallet

import (
	"context"
	"time"

	apperrors "kudi/internal/errors"
	"kudi/internal/logger"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds wallet service settings.
type Config struct {
	OperationTimeout time.Duration
}

type Service struct {
	store   *repositories.Store
	cache   Cache
	config  Config
	metrics MetricsCollector
	log     *zap.Logger
}

// NewService creates a new wallet service. cache, metrics and log are optional.
func NewService(store *repositories.Store, cache Cache, config Config, metrics MetricsCollector, log *zap.Logger) *Service {
	if store == nil {
		panic("store is required")
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = DefaultTimeout
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}
	return &Service{
		store:   store,
		cache:   cache,
		config:  config,
		metrics: metrics,
		log:     logger.OrNop(log).Named("wallet"),
	}
}

// GetOrCreate returns the user's wallet, creating an empty one on first use.
func (s *Service) GetOrCreate(ctx context.Context, userID string) (*models.Wallet, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OpGetOrCreate, time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	cacheable := false
	var version int64
	if s.cache != nil {
		cached, err := s.cache.GetWallet(ctx, userID)
		switch {
		case err != nil:
			s.log.Warn("wallet cache read failed", zap.String("user_id", userID), zap.Error(err))
		case cached != nil:
			s.metrics.RecordCacheHit("wallet")
			return cached, nil
		default:
			s.metrics.RecordCacheMiss("wallet")
			version, err = s.cache.WalletVersion(ctx, userID)
			cacheable = err == nil
		}
	}

	wallet, err := s.store.Wallets.GetOrCreate(ctx, userID)
	if err != nil {
		s.fail(OpGetOrCreate, err)
		return nil, apperrors.Persistence(err)
	}

	if cacheable {
		if err := s.cache.CacheWallet(ctx, wallet, version); err != nil {
			s.log.Warn("wallet cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	s.metrics.RecordOperationResult(OpGetOrCreate, ResultSuccess)
	return wallet, nil
}

// Adjust moves one currency balance by delta in its own unit of work.
// A debit past zero fails with ErrInsufficientFunds and changes nothing.
func (s *Service) Adjust(ctx context.Context, userID string, currency models.Currency, delta decimal.Decimal, total models.LifetimeTotal) (*models.Wallet, error) {
	start := time.Now()
	defer func() { s.metrics.RecordOperationDuration(OpAdjust, time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	var wallet *models.Wallet
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		var err error
		wallet, err = s.AdjustTx(ctx, tx, userID, currency, delta, total)
		return err
	})
	if err != nil {
		s.fail(OpAdjust, err)
		return nil, err
	}

	s.Committed(ctx, userID, currency, delta)
	s.metrics.RecordOperationResult(OpAdjust, ResultSuccess)
	return wallet, nil
}

// AdjustTx is Adjust for callers that already run a unit of work. The caller
// must invoke Committed after its transaction commits.
func (s *Service) AdjustTx(ctx context.Context, tx *repositories.Store, userID string, currency models.Currency, delta decimal.Decimal, total models.LifetimeTotal) (*models.Wallet, error) {
	if err := validation.Currency(currency); err != nil {
		return nil, err
	}
	if delta.IsZero() {
		return nil, apperrors.ErrInvalidAmount
	}
	return tx.Wallets.Adjust(ctx, userID, currency, delta, total)
}

// Committed drops the cached snapshot and records the balance movement once
// a change is durable. It never fails the operation that triggered it.
func (s *Service) Committed(ctx context.Context, userID string, currency models.Currency, delta decimal.Decimal) {
	s.Invalidate(ctx, userID)
	s.metrics.RecordBalanceChange(string(currency), delta.InexactFloat64())
	s.log.Debug("balance adjusted",
		zap.String("user_id", userID),
		zap.String("currency", string(currency)),
		zap.String("delta", delta.String()))
}

// Invalidate drops the user's cached wallet.
func (s *Service) Invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWallet(context.WithoutCancel(ctx), userID); err != nil {
		s.log.Warn("wallet cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// History returns one page of the user's transactions.
func (s *Service) History(ctx context.Context, userID string, filter repositories.TransactionFilter) ([]models.Transaction, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	filter.UserID = userID
	txns, total, err := s.store.Transactions.List(ctx, filter)
	if err != nil {
		s.fail(OpHistory, err)
		return nil, 0, err
	}
	return txns, total, nil
}

// Deactivate stops the wallet from initiating outgoing movements. Pending
// deposits still complete and refunds still land.
func (s *Service) Deactivate(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	if err := s.store.Wallets.SetActive(ctx, userID, false); err != nil {
		s.fail(OpDeactivate, err)
		return err
	}
	s.Invalidate(ctx, userID)
	return nil
}

func (s *Service) fail(op string, err error) {
	s.metrics.RecordOperationResult(op, ResultFailure)
	s.metrics.RecordError(op, string(apperrors.KindOf(err)))
	if apperrors.KindOf(err) == apperrors.KindPersistence {
		s.log.Error("wallet operation failed", zap.String("operation", op), zap.Error(err))
	}
}
