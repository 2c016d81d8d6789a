package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := ErrInsufficientFunds.WithMessage("need %s more", "200")
	wrapped := fmt.Errorf("withdraw: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrInsufficientFunds))
	assert.False(t, stderrors.Is(wrapped, ErrInvalidAmount))
	assert.Equal(t, "need 200 more", err.Error())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", ErrSameCurrency, KindValidation},
		{"wrapped not pending", fmt.Errorf("approve: %w", ErrNotPending), KindNotPending},
		{"plain error", stderrors.New("connection reset"), KindPersistence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestPersistence(t *testing.T) {
	cause := stderrors.New("dial tcp: timeout")
	err := Persistence(cause)

	assert.True(t, stderrors.Is(err, ErrPersistence))
	assert.True(t, stderrors.Is(err, cause))
	assert.True(t, Retryable(err))

	// domain errors are not rewrapped
	assert.Same(t, ErrNotPending, Persistence(ErrNotPending))
	assert.False(t, Retryable(ErrNotPending))
	assert.Nil(t, Persistence(nil))
}
