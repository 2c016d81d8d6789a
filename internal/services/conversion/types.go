package conversion

import (
	"kudi/internal/models"

	"github.com/shopspring/decimal"
)

// Quote is the priced result of converting amount from one currency to another.
type Quote struct {
	From            models.Currency `json:"from_currency"`
	To              models.Currency `json:"to_currency"`
	Amount          decimal.Decimal `json:"original_amount"`
	Fee             decimal.Decimal `json:"fee"`
	AmountAfterFee  decimal.Decimal `json:"amount_after_fee"`
	Rate            decimal.Decimal `json:"rate"`
	ConvertedAmount decimal.Decimal `json:"converted_amount"`
	RateSource      string          `json:"rate_source"`
}

// Result describes an executed conversion.
type Result struct {
	ConversionID  string                   `json:"conversion_id"`
	TransactionID string                   `json:"transaction_id"`
	Reference     string                   `json:"reference"`
	Status        models.TransactionStatus `json:"status"`
	Quote
}
