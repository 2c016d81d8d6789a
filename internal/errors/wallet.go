package errors

var (
	ErrInsufficientFunds = &DomainError{
		Kind:    KindInsufficientFunds,
		Code:    "INSUFFICIENT_FUNDS",
		Message: "insufficient wallet balance",
	}
	ErrInvalidAmount = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_AMOUNT",
		Message: "amount must be greater than zero",
	}
	ErrInvalidCurrency = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_CURRENCY",
		Message: "unsupported currency",
	}
	ErrWalletInactive = &DomainError{
		Kind:    KindValidation,
		Code:    "WALLET_INACTIVE",
		Message: "wallet is not active",
	}
	ErrWalletNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "WALLET_NOT_FOUND",
		Message: "wallet not found",
	}
	ErrUserNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "USER_NOT_FOUND",
		Message: "user not found",
	}
	ErrAlreadyBlocked = &DomainError{
		Kind:    KindAlreadyBlocked,
		Code:    "ALREADY_BLOCKED",
		Message: "user is already blocked",
	}
	ErrPersistence = &DomainError{
		Kind:    KindPersistence,
		Code:    "PERSISTENCE",
		Message: "storage unavailable, retry later",
	}
)

var (
	ErrInvalidUser = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_USER",
		Message: "user id is required",
	}
	ErrInvalidRequest = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_REQUEST",
		Message: "invalid request",
	}
)
