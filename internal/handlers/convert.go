package handlers

import (
	"kudi/internal/middleware"
	"kudi/internal/services/conversion"
	"kudi/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ConvertHandler struct {
	conversions *conversion.Service
}

func NewConvertHandler(conversions *conversion.Service) *ConvertHandler {
	return &ConvertHandler{conversions: conversions}
}

type convertRequest struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Amount       decimal.Decimal `json:"amount"`
}

func (h *ConvertHandler) GetRates(c *fiber.Ctx) error {
	rates, err := h.conversions.Rates(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "", rates)
}

// Calculate prices a conversion without touching any wallet.
func (h *ConvertHandler) Calculate(c *fiber.Ctx) error {
	var input convertRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	from, to, err := input.pair()
	if err != nil {
		return response.FromError(c, err)
	}

	quote, err := h.conversions.Quote(c.UserContext(), from, to, input.Amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "", quote)
}

func (h *ConvertHandler) Convert(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input convertRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	from, to, err := input.pair()
	if err != nil {
		return response.FromError(c, err)
	}

	result, err := h.conversions.Execute(c.UserContext(), caller.UserID, from, to, input.Amount)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Currency converted successfully", result)
}
