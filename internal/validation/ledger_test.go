package validation

import (
	"errors"
	"testing"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"0.01", false},
		{"10000", false},
		{"0.12345678", false},
		{"0", true},
		{"-5", true},
		{"0.123456789", true},
		{"1000000000000000", true},
	}
	for _, tt := range tests {
		err := Amount(decimal.RequireFromString(tt.in))
		if tt.wantErr {
			assert.True(t, errors.Is(err, apperrors.ErrInvalidAmount), tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
	}
}

func TestConversionPair(t *testing.T) {
	assert.NoError(t, ConversionPair(models.CurrencyNGN, models.CurrencyGHS))
	assert.True(t, errors.Is(ConversionPair(models.CurrencyNGN, models.CurrencyNGN), apperrors.ErrSameCurrency))
	assert.True(t, errors.Is(ConversionPair("USD", models.CurrencyGHS), apperrors.ErrInvalidCurrency))
}

func TestActiveWallet(t *testing.T) {
	assert.NoError(t, ActiveWallet(&models.Wallet{IsActive: true}))
	assert.True(t, errors.Is(ActiveWallet(&models.Wallet{}), apperrors.ErrWalletInactive))
	assert.True(t, errors.Is(ActiveWallet(nil), apperrors.ErrWalletNotFound))
}
