package response

import (
	"errors"

	apperrors "kudi/internal/errors"
)

func asDomain(err error) (*apperrors.DomainError, bool) {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
