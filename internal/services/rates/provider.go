// Package rates supplies exchange rates for ordered currency pairs.
package rates

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

// Rate is the rate in force for one pair and where it came from.
type Rate struct {
	From   models.Currency `json:"from"`
	To     models.Currency `json:"to"`
	Value  decimal.Decimal `json:"rate"`
	Source string          `json:"source"`
}

// Provider is what the conversion engine needs from a rate source.
type Provider interface {
	Current(ctx context.Context, from, to models.Currency) (Rate, error)
}

// Defaults used when no rate is configured for a pair.
var Defaults = map[models.Currency]map[models.Currency]decimal.Decimal{
	models.CurrencyNGN: {models.CurrencyGHS: decimal.RequireFromString("0.0053")},
	models.CurrencyGHS: {models.CurrencyNGN: decimal.RequireFromString("188.68")},
}

// RateCache is the cache of the active rate per pair.
type RateCache interface {
	GetRate(ctx context.Context, from, to models.Currency) (*models.ExchangeRate, error)
	CacheRate(ctx context.Context, rate *models.ExchangeRate, ttl time.Duration) error
	InvalidateRate(ctx context.Context, from, to models.Currency) error
}

// Config holds rate service settings.
type Config struct {
	CacheTTL      time.Duration
	LookupTimeout time.Duration
}

// Service reads rates from the database through the cache and falls back
// to Defaults.
type Service struct {
	store  *repositories.Store
	cache  RateCache
	config Config
	log    *zap.Logger
	now    func() time.Time
}

func NewService(store *repositories.Store, cache RateCache, config Config, log *zap.Logger) *Service {
	if config.CacheTTL <= 0 {
		config.CacheTTL = 5 * time.Minute
	}
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = 3 * time.Second
	}
	return &Service{
		store:  store,
		cache:  cache,
		config: config,
		log:    logger.OrNop(log).Named("rates"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Current returns the authoritative rate for from→to. A storage failure is
// reported as ErrRateUnavailable rather than silently using a default.
func (s *Service) Current(ctx context.Context, from, to models.Currency) (Rate, error) {
	if err := validation.ConversionPair(from, to); err != nil {
		return Rate{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.LookupTimeout)
	defer cancel()

	if s.cache != nil {
		cached, err := s.cache.GetRate(ctx, from, to)
		if err != nil {
			s.log.Warn("rate cache read failed", zap.String("pair", pair(from, to)), zap.Error(err))
		} else if cached != nil && cached.ValidAt(s.now()) {
			return fromRecord(cached), nil
		}
	}

	record, err := s.store.Rates.Active(ctx, from, to, s.now())
	if err != nil {
		return Rate{}, apperrors.ErrRateUnavailable.Wrap(err)
	}
	if record != nil {
		if s.cache != nil {
			if err := s.cache.CacheRate(ctx, record, s.config.CacheTTL); err != nil {
				s.log.Warn("rate cache write failed", zap.String("pair", pair(from, to)), zap.Error(err))
			}
		}
		return fromRecord(record), nil
	}

	if def, ok := Defaults[from][to]; ok {
		return Rate{From: from, To: to, Value: def, Source: models.RateSourceDefault}, nil
	}
	return Rate{}, apperrors.ErrRateUnavailable.WithMessage("no exchange rate for %s", pair(from, to))
}

// SetRateTx inserts a manual rate effective immediately. The previous rates
// for the pair stay on record as history.
func (s *Service) SetRateTx(ctx context.Context, tx *repositories.Store, from, to models.Currency, value decimal.Decimal, setBy string) (*models.ExchangeRate, error) {
	if err := validation.ConversionPair(from, to); err != nil {
		return nil, err
	}
	if err := validation.Rate(value); err != nil {
		return nil, err
	}
	record := &models.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         value,
		Source:       models.RateOriginManual,
		SetBy:        setBy,
		IsActive:     true,
		ValidFrom:    s.now(),
	}
	if err := tx.Rates.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Invalidate drops the cached rate for the pair after a change commits.
func (s *Service) Invalidate(ctx context.Context, from, to models.Currency) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateRate(context.WithoutCancel(ctx), from, to); err != nil {
		s.log.Warn("rate cache invalidation failed", zap.String("pair", pair(from, to)), zap.Error(err))
	}
}

// History lists recorded rates for the pair, newest first.
func (s *Service) History(ctx context.Context, from, to models.Currency, limit int) ([]models.ExchangeRate, error) {
	if err := validation.ConversionPair(from, to); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.LookupTimeout)
	defer cancel()
	return s.store.Rates.History(ctx, from, to, limit)
}

func fromRecord(r *models.ExchangeRate) Rate {
	return Rate{From: r.FromCurrency, To: r.ToCurrency, Value: r.Rate, Source: models.RateSourceDatabase}
}

func pair(from, to models.Currency) string {
	return string(from) + "_" + string(to)
}
