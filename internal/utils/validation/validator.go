// Package validation collects field errors of an HTTP request body.
package validation

import (
	"fmt"
	"strings"

	apperrors "kudi/internal/errors"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Validator struct {
	Errors []ValidationError
}

func New() *Validator {
	return &Validator{
		Errors: make([]ValidationError, 0),
	}
}

func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

func (v *Validator) AddError(field, message string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required records an error for an empty value.
func (v *Validator) Required(value, field string) {
	v.Check(strings.TrimSpace(value) != "", field, "is required")
}

// Err folds the collected errors into one validation error, or nil.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	parts := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		parts[i] = e.Error()
	}
	return apperrors.ErrInvalidRequest.WithMessage("%s", strings.Join(parts, "; "))
}
