// Package conversion prices and executes NGN/GHS conversions within one wallet.
package conversion

import (
	"context"
	"fmt"
	"time"

	apperrors "kudi/internal/errors"
	"kudi/internal/logger"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/services/rates"
	"kudi/internal/services/transaction"
	"kudi/internal/utils"
	"kudi/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const DefaultTimeout = 10 * time.Second

// Config holds conversion settings.
type Config struct {
	FeeRate          decimal.Decimal
	OperationTimeout time.Duration
}

// Dependencies groups the collaborators of Service.
type Dependencies struct {
	Store        *repositories.Store
	Rates        rates.Provider
	Wallets      transaction.WalletAdjuster
	Transactions *transaction.Service
	IDs          utils.IDGenerator
	Logger       *zap.Logger
}

type Service struct {
	store        *repositories.Store
	rates        rates.Provider
	wallets      transaction.WalletAdjuster
	transactions *transaction.Service
	fees         *FeeCalculator
	ids          utils.IDGenerator
	config       Config
	log          *zap.Logger
}

func NewService(deps Dependencies, config Config) *Service {
	if deps.Store == nil || deps.Rates == nil || deps.Wallets == nil || deps.Transactions == nil {
		panic("store, rates, wallets and transactions are required")
	}
	if deps.IDs == nil {
		deps.IDs = utils.NewIDGenerator()
	}
	if config.FeeRate.IsZero() {
		config.FeeRate = DefaultFeeRate
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = DefaultTimeout
	}
	return &Service{
		store:        deps.Store,
		rates:        deps.Rates,
		wallets:      deps.Wallets,
		transactions: deps.Transactions,
		fees:         NewFeeCalculator(config.FeeRate),
		ids:          deps.IDs,
		config:       config,
		log:          logger.OrNop(deps.Logger).Named("conversion"),
	}
}

// Quote prices a conversion without touching any balance. For an unchanged
// active rate it always returns the same figures.
func (s *Service) Quote(ctx context.Context, from, to models.Currency, amount decimal.Decimal) (*Quote, error) {
	if err := validation.ConversionPair(from, to); err != nil {
		return nil, err
	}
	if err := validation.Amount(amount); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	rate, err := s.rates.Current(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if !rate.Value.IsPositive() {
		return nil, apperrors.ErrRateUnavailable.WithMessage("no usable rate for %s_%s", from, to)
	}

	fee := s.fees.CalculateFee(amount)
	afterFee := amount.Sub(fee)
	converted := afterFee.Mul(rate.Value).Round(convertedPlaces)
	if converted.GreaterThanOrEqual(validation.MaxAmount) {
		return nil, apperrors.ErrInvalidAmount.WithMessage("converted amount exceeds the maximum of %s", validation.MaxAmount.String())
	}
	return &Quote{
		From:            from,
		To:              to,
		Amount:          amount,
		Fee:             fee,
		AmountAfterFee:  afterFee,
		Rate:            rate.Value,
		ConvertedAmount: converted,
		RateSource:      rate.Source,
	}, nil
}

// Execute converts amount of the user's from balance into to. Both legs, the
// Conversion record and its Transaction commit together or not at all.
func (s *Service) Execute(ctx context.Context, userID string, from, to models.Currency, amount decimal.Decimal) (*Result, error) {
	if userID == "" {
		return nil, apperrors.ErrInvalidUser
	}
	quote, err := s.Quote(ctx, from, to, amount)
	if err != nil {
		return nil, err
	}
	if !quote.ConvertedAmount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount.WithMessage("amount too small to convert")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	conversionID := s.ids.ConversionID()
	conv := &models.Conversion{
		ConversionID:    conversionID,
		TransactionID:   s.ids.TransactionID(),
		UserID:          userID,
		FromCurrency:    from,
		ToCurrency:      to,
		Amount:          quote.Amount,
		Fee:             quote.Fee,
		Rate:            quote.Rate,
		ConvertedAmount: quote.ConvertedAmount,
		RateSource:      quote.RateSource,
		Status:          models.StatusPending,
	}
	txn := &models.Transaction{
		TransactionID: conv.TransactionID,
		Reference:     conversionID,
		UserID:        userID,
		Amount:        quote.Amount,
		Currency:      from,
		Type:          models.TransactionTypeConversion,
		Direction:     models.DirectionFor(models.TransactionTypeConversion, from, to),
		Status:        models.StatusPending,
		Method:        models.MethodInternal,
		Description:   fmt.Sprintf("Convert %s %s to %s", from, quote.Amount.String(), to),
	}

	var t *transaction.Transition
	err = s.store.ExecuteInTransaction(ctx, func(tx *repositories.Store) error {
		w, err := tx.Wallets.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		if err := validation.ActiveWallet(w); err != nil {
			return err
		}
		if _, err := s.wallets.AdjustTx(ctx, tx, userID, from, quote.Amount.Neg(), models.TotalConversions); err != nil {
			return err
		}
		if _, err := s.wallets.AdjustTx(ctx, tx, userID, to, quote.ConvertedAmount, models.TotalNone); err != nil {
			return err
		}
		if err := tx.Conversions.Create(ctx, conv); err != nil {
			return err
		}
		if err := tx.Transactions.Create(ctx, txn); err != nil {
			return err
		}
		t, err = s.transactions.Machine().Complete(ctx, tx, txn)
		return err
	})
	if err != nil {
		s.log.Info("conversion failed",
			zap.String("user_id", userID),
			zap.String("pair", string(txn.Direction)),
			zap.Error(err))
		return nil, err
	}

	s.wallets.Committed(ctx, userID, from, quote.Amount.Neg())
	s.wallets.Committed(ctx, userID, to, quote.ConvertedAmount)
	s.transactions.Finish(ctx, t)

	s.log.Info("conversion completed",
		zap.String("conversion_id", conversionID),
		zap.String("user_id", userID),
		zap.String("amount", quote.Amount.String()),
		zap.String("converted_amount", quote.ConvertedAmount.String()),
		zap.String("pair", string(txn.Direction)))

	return &Result{
		ConversionID:  conversionID,
		TransactionID: txn.TransactionID,
		Reference:     txn.Reference,
		Status:        txn.Status,
		Quote:         *quote,
	}, nil
}

// Rates lists the current rate for every supported pair.
func (s *Service) Rates(ctx context.Context) ([]rates.Rate, error) {
	var out []rates.Rate
	for _, from := range models.SupportedCurrencies {
		for _, to := range models.SupportedCurrencies {
			if from == to {
				continue
			}
			r, err := s.rates.Current(ctx, from, to)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}
