package repositories

import (
	"time"

	"kudi/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page  int
	Limit int
}

// Normalize clamps the page into the supported range.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageSize
	}
	if p.Limit > maxPageSize {
		p.Limit = maxPageSize
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// TransactionFilter narrows a transaction listing. Zero fields match all.
type TransactionFilter struct {
	UserID   string
	Type     models.TransactionType
	Status   models.TransactionStatus
	Currency models.Currency
	From     *time.Time
	To       *time.Time
	Page
}

// AdminLogFilter narrows an admin log listing. Zero fields match all.
type AdminLogFilter struct {
	AdminID  string
	Action   string
	TargetID string
	Page
}

// UserFilter narrows a user listing. Nil flags and an empty role match all.
type UserFilter struct {
	Role      string
	IsActive  *bool
	IsBlocked *bool
	Page
}
