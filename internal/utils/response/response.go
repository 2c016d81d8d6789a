// Package response writes the uniform {error, message, data} envelope.
package response

import (
	apperrors "kudi/internal/errors"

	"github.com/gofiber/fiber/v2"
)

// Result is the envelope every endpoint returns.
type Result struct {
	Error   bool        `json:"error"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Result{Message: message, Data: data})
}

func Created(c *fiber.Ctx, message string, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(Result{Message: message, Data: data})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(Result{Error: true, Message: message})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// FromError maps a ledger error onto its HTTP status and envelope.
func FromError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)
	res := Result{Error: true, Message: err.Error()}
	if de, ok := asDomain(err); ok {
		res.Code = de.Code
		res.Message = de.Message
	}
	if status == fiber.StatusInternalServerError {
		res.Message = "internal error"
	}
	return c.Status(status).JSON(res)
}

// StatusFor returns the HTTP status for an error kind.
func StatusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		return fiber.StatusBadRequest
	case apperrors.KindInsufficientFunds:
		return fiber.StatusPaymentRequired
	case apperrors.KindNotFound:
		return fiber.StatusNotFound
	case apperrors.KindNotPending, apperrors.KindAlreadyBlocked, apperrors.KindAlreadyProcessed:
		return fiber.StatusConflict
	case apperrors.KindRateUnavailable:
		return fiber.StatusServiceUnavailable
	}
	if _, ok := asDomain(err); ok {
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}
