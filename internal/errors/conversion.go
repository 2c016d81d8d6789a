package errors

var (
	ErrSameCurrency = &DomainError{
		Kind:    KindValidation,
		Code:    "SAME_CURRENCY",
		Message: "cannot convert to the same currency",
	}
	ErrRateUnavailable = &DomainError{
		Kind:    KindRateUnavailable,
		Code:    "RATE_UNAVAILABLE",
		Message: "exchange rate not available",
	}
	ErrInvalidRate = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_RATE",
		Message: "exchange rate must be greater than zero",
	}
)
