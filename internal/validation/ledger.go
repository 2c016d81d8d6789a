// Package validation holds the input checks shared by the ledger services.
package validation

import (
	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"github.com/shopspring/decimal"
)

// MaxAmount bounds a single movement, input or converted, so it fits
// numeric(24,8).
var MaxAmount = decimal.New(1, 15)

// Amount rejects zero, negative and absurdly large amounts.
func Amount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if amount.GreaterThanOrEqual(MaxAmount) {
		return apperrors.ErrInvalidAmount.WithMessage("amount exceeds the maximum of %s", MaxAmount.String())
	}
	if amount.Exponent() < -8 && !amount.Equal(amount.Round(8)) {
		return apperrors.ErrInvalidAmount.WithMessage("amount has more than 8 decimal places")
	}
	return nil
}

// Currency rejects codes other than NGN and GHS.
func Currency(c models.Currency) error {
	if !c.Valid() {
		return apperrors.ErrInvalidCurrency.WithMessage("unsupported currency %q", string(c))
	}
	return nil
}

// ConversionPair checks both legs and that they differ.
func ConversionPair(from, to models.Currency) error {
	if err := Currency(from); err != nil {
		return err
	}
	if err := Currency(to); err != nil {
		return err
	}
	if from == to {
		return apperrors.ErrSameCurrency
	}
	return nil
}

// Rate rejects non-positive exchange rates.
func Rate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return apperrors.ErrInvalidRate
	}
	return nil
}

// ActiveWallet rejects an operation that moves money out of a deactivated wallet.
func ActiveWallet(w *models.Wallet) error {
	if w == nil {
		return apperrors.ErrWalletNotFound
	}
	if !w.IsActive {
		return apperrors.ErrWalletInactive
	}
	return nil
}
