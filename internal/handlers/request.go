package handlers

import (
	"strconv"
	"time"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
)

func page(p pagination.Pagination) repositories.Page {
	return repositories.Page{Page: p.Page, Limit: p.Limit}
}

// transactionFilter reads the listing filters shared by user and admin
// transaction endpoints. Malformed dates are a validation error.
func transactionFilter(c *fiber.Ctx, p pagination.Pagination) (repositories.TransactionFilter, error) {
	filter := repositories.TransactionFilter{
		Type:   models.TransactionType(c.Query("type")),
		Status: models.TransactionStatus(c.Query("status")),
		Page:   page(p),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return filter, apperrors.ErrInvalidType
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return filter, apperrors.ErrInvalidStatus
	}
	if raw := c.Query("currency"); raw != "" {
		cur, ok := models.ParseCurrency(raw)
		if !ok {
			return filter, apperrors.ErrInvalidCurrency
		}
		filter.Currency = cur
	}

	var err error
	if filter.From, err = queryTime(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = queryTime(c, "to"); err != nil {
		return filter, err
	}
	return filter, nil
}

// queryTime accepts RFC 3339 timestamps and plain dates.
func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperrors.ErrInvalidRequest.WithMessage("%s: expected RFC 3339 time or YYYY-MM-DD", key)
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return n
}

// queryBool reads an optional true/false flag. Absent means no filter.
func queryBool(c *fiber.Ctx, key string) (*bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperrors.ErrInvalidRequest.WithMessage("%s: expected true or false", key)
	}
	return &b, nil
}

func currencyParam(raw, field string) (models.Currency, error) {
	cur, ok := models.ParseCurrency(raw)
	if !ok {
		return "", apperrors.ErrInvalidCurrency.WithMessage("%s: unsupported currency %q", field, raw)
	}
	return cur, nil
}

func (r convertRequest) pair() (models.Currency, models.Currency, error) {
	from, err := currencyParam(r.FromCurrency, "from_currency")
	if err != nil {
		return "", "", err
	}
	to, err := currencyParam(r.ToCurrency, "to_currency")
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}
