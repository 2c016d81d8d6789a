package models

import "strings"

// Currency is one of the two wallet currencies.
type Currency string

const (
	CurrencyNGN Currency = "NGN"
	CurrencyGHS Currency = "GHS"
)

// SupportedCurrencies lists every currency a wallet holds a balance in.
var SupportedCurrencies = []Currency{CurrencyNGN, CurrencyGHS}

// Valid reports whether c is a supported currency code.
func (c Currency) Valid() bool {
	return c == CurrencyNGN || c == CurrencyGHS
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes a user supplied code ("ngn", " GHS ") into a Currency.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}
