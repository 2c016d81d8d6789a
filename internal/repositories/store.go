package repositories

import (
	"context"
	"errors"
	"strings"

	apperrors "kudi/internal/errors"

	"gorm.io/gorm"
)

// Store bundles every ledger repository over one database handle. A Store
// obtained inside ExecuteInTransaction shares the transaction across all of
// its repositories, so writes to different tables commit together.
type Store struct {
	db *gorm.DB

	Wallets       *WalletRepository
	Transactions  *TransactionRepository
	Conversions   *ConversionRepository
	Rates         *ExchangeRateRepository
	AdminLogs     *AdminLogRepository
	Users         *UserRepository
	WebhookEvents *WebhookEventRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:            db,
		Wallets:       &WalletRepository{db: db},
		Transactions:  &TransactionRepository{db: db},
		Conversions:   &ConversionRepository{db: db},
		Rates:         &ExchangeRateRepository{db: db},
		AdminLogs:     &AdminLogRepository{db: db},
		Users:         &UserRepository{db: db},
		WebhookEvents: &WebhookEventRepository{db: db},
	}
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ExecuteInTransaction runs fn inside one database transaction. Returning an
// error from fn rolls back every write made through tx. Domain errors are
// returned as is; anything else is reported as a persistence failure.
func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperrors.ErrPersistence.Wrap(err)
	}
	return apperrors.Persistence(err)
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error, sentinel *apperrors.DomainError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return apperrors.Persistence(err)
}

// duplicateKey reports a unique-index violation. Dialects with TranslateError
// return gorm.ErrDuplicatedKey; the message check covers drivers without it.
func duplicateKey(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
