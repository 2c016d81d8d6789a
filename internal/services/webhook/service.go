// Package webhook reconciles payment provider callbacks with the ledger.
package webhook

import (
	"context"
	"errors"
	"time"

	apperrors "kudi/internal/errors"
	"kudi/internal/logger"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/services/transaction"
	"kudi/internal/services/wallet"
	"kudi/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

const outcomeReceived = "received"

// Event is one provider delivery, already authenticated by the HTTP adapter.
// A zero Amount or empty Currency skips the corresponding consistency check.
type Event struct {
	Provider  string
	EventID   string
	EventType string
	Reference string
	Amount    decimal.Decimal
	Currency  models.Currency
	Payload   map[string]interface{}
}

// Dependencies groups the collaborators of Service.
type Dependencies struct {
	Store        *repositories.Store
	Transactions *transaction.Service
	IDs          utils.IDGenerator
	Metrics      wallet.MetricsCollector
	Logger       *zap.Logger
}

type Service struct {
	store        *repositories.Store
	transactions *transaction.Service
	ids          utils.IDGenerator
	metrics      wallet.MetricsCollector
	timeout      time.Duration
	log          *zap.Logger
}

func NewService(deps Dependencies, timeout time.Duration) *Service {
	if deps.Store == nil || deps.Transactions == nil {
		panic("store and transactions are required")
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewIDGenerator()
	}
	if deps.Metrics == nil {
		deps.Metrics = &wallet.NoopMetricsCollector{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{
		store:        deps.Store,
		transactions: deps.Transactions,
		ids:          deps.IDs,
		metrics:      deps.Metrics,
		timeout:      timeout,
		log:          logger.OrNop(deps.Logger).Named("webhook"),
	}
}

// Ingest applies a provider event at most once. The delivery is recorded in
// the same unit of work as its effect, so a redelivered event id, a repeated
// reference and a concurrent duplicate all end as AlreadyProcessed without a
// second balance change. Errors are transient; the provider should redeliver.
func (s *Service) Ingest(ctx context.Context, ev Event) (transaction.Outcome, error) {
	if !KnownProvider(ev.Provider) {
		return "", apperrors.ErrInvalidType.WithMessage("unknown webhook provider %q", ev.Provider)
	}
	if ev.EventID == "" {
		ev.EventID = s.ids.EventID()
	}
	log := s.log.With(
		zap.String("provider", ev.Provider),
		zap.String("event_id", ev.EventID),
		zap.String("event_type", ev.EventType),
		zap.String("reference", ev.Reference))

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		outcome transaction.Outcome
		step    *transaction.Transition
	)
	err := s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		fresh, err := tx.WebhookEvents.Record(ctx, &models.WebhookEvent{
			EventID:   ev.EventID,
			Provider:  ev.Provider,
			EventType: ev.EventType,
			Reference: ev.Reference,
			Payload:   models.NewJSON(ev.Payload),
			Outcome:   outcomeReceived,
		})
		if err != nil {
			return err
		}
		if !fresh {
			outcome = transaction.AlreadyProcessed
			return nil
		}

		outcome, step, err = s.apply(ctx, tx, ev, log)
		if err != nil {
			return err
		}
		return tx.WebhookEvents.SetOutcome(ctx, ev.EventID, outcome.String())
	})
	if err != nil {
		log.Error("webhook ingestion failed", zap.Error(err))
		s.metrics.RecordError("webhook_ingest", string(apperrors.KindOf(err)))
		return "", err
	}

	s.transactions.Finish(ctx, step)
	s.metrics.RecordWebhook(ev.Provider, outcome.String())
	log.Info("webhook ingested", zap.String("outcome", outcome.String()))
	return outcome, nil
}

func (s *Service) apply(ctx context.Context, tx *repositories.Store, ev Event, log *zap.Logger) (transaction.Outcome, *transaction.Transition, error) {
	act := actionFor(ev.Provider, ev.EventType)
	if act == actionNone {
		return transaction.Ignored, nil, nil
	}
	if ev.Reference == "" {
		log.Warn("webhook without reference")
		return transaction.Ignored, nil, nil
	}

	txn, err := tx.Transactions.GetByReference(ctx, ev.Reference)
	if errors.Is(err, apperrors.ErrTransactionNotFound) {
		log.Warn("webhook for unknown reference")
		return transaction.Ignored, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	if txn.Status.Terminal() {
		return transaction.AlreadyProcessed, nil, nil
	}
	if !ev.Amount.IsZero() && !ev.Amount.Equal(txn.Amount) {
		log.Warn("webhook amount mismatch",
			zap.String("expected", txn.Amount.String()),
			zap.String("received", ev.Amount.String()))
		return transaction.Ignored, nil, nil
	}
	if ev.Currency != "" && ev.Currency != txn.Currency {
		log.Warn("webhook currency mismatch",
			zap.String("expected", string(txn.Currency)),
			zap.String("received", string(ev.Currency)))
		return transaction.Ignored, nil, nil
	}

	machine := s.transactions.Machine()
	var step *transaction.Transition
	if act == actionComplete {
		step, err = machine.Complete(ctx, tx, txn)
	} else {
		step, err = machine.Fail(ctx, tx, txn, ev.Provider+" reported "+ev.EventType)
	}
	if err != nil {
		return "", nil, err
	}
	return step.Outcome, step, nil
}
