// Package errors defines the closed set of ledger error kinds and the
// DomainError type every service returns across package boundaries.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a DomainError. The set is closed.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindNotFound          Kind = "not_found"
	KindNotPending        Kind = "not_pending"
	KindAlreadyProcessed  Kind = "already_processed"
	KindAlreadyBlocked    Kind = "already_blocked"
	KindRateUnavailable   Kind = "rate_unavailable"
	KindPersistence       Kind = "persistence"
)

type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError carrying the same code, so wrapped copies of a
// sentinel still satisfy errors.Is(err, ErrX).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of e with a more specific message.
func (e *DomainError) WithMessage(format string, args ...interface{}) *DomainError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e carrying err as its cause.
func (e *DomainError) Wrap(err error) *DomainError {
	cp := *e
	cp.Err = err
	return &cp
}

// Retryable reports whether the caller may retry the same request unchanged.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindPersistence || e.Kind == KindRateUnavailable
}

// KindOf extracts the kind of err. Errors that are not DomainErrors are
// treated as persistence faults.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindPersistence
}

// Retryable reports whether err is a transient failure.
func Retryable(err error) bool {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Retryable()
	}
	return err != nil
}

// Persistence wraps a storage failure. DomainErrors pass through unchanged.
func Persistence(err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if stderrors.As(err, &de) {
		return err
	}
	return ErrPersistence.Wrap(err)
}
