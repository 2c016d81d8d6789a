package errors

var (
	ErrTransactionNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "TRANSACTION_NOT_FOUND",
		Message: "transaction not found",
	}
	ErrWebhookEventNotFound = &DomainError{
		Kind:    KindNotFound,
		Code:    "WEBHOOK_EVENT_NOT_FOUND",
		Message: "webhook event not found",
	}
	// ErrDuplicateReference is permanent: retrying the same reference fails again.
	ErrDuplicateReference = &DomainError{
		Kind:    KindValidation,
		Code:    "DUPLICATE_REFERENCE",
		Message: "reference is already in use",
	}
	ErrInvalidType = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_TRANSACTION_TYPE",
		Message: "invalid transaction type",
	}
	ErrInvalidStatus = &DomainError{
		Kind:    KindValidation,
		Code:    "INVALID_STATUS",
		Message: "invalid transaction status",
	}
	ErrNotPending = &DomainError{
		Kind:    KindNotPending,
		Code:    "NOT_PENDING",
		Message: "transaction is not pending",
	}
	// ErrAlreadyProcessed is a success-equivalent outcome for idempotent flows.
	ErrAlreadyProcessed = &DomainError{
		Kind:    KindAlreadyProcessed,
		Code:    "ALREADY_PROCESSED",
		Message: "transaction already processed",
	}
)
