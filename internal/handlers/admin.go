package handlers

import (
	"kudi/internal/middleware"
	"kudi/internal/repositories"
	"kudi/internal/services/admin"
	"kudi/internal/utils/pagination"
	"kudi/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type AdminHandler struct {
	admin *admin.Service
}

func NewAdminHandler(svc *admin.Service) *AdminHandler {
	return &AdminHandler{admin: svc}
}

// actor identifies the acting admin. Routes are behind AdminAuthMiddleware,
// so a missing caller is a wiring fault and reads as unauthorized.
func actor(c *fiber.Ctx) (admin.Actor, bool) {
	caller, ok := middleware.CallerFrom(c)
	if !ok || !caller.IsAdmin {
		return admin.Actor{}, false
	}
	return admin.Actor{
		AdminID:   caller.UserID,
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}, true
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandler) ApproveTransaction(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c)
	}

	txn, err := h.admin.Approve(c.UserContext(), c.Params("id"), a)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction approved", txn)
}

func (h *AdminHandler) RejectTransaction(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input reasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request format")
		}
	}

	txn, err := h.admin.Reject(c.UserContext(), c.Params("id"), a, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction rejected", txn)
}

func (h *AdminHandler) BlockUser(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input reasonRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return response.BadRequest(c, "Invalid request format")
		}
	}

	user, err := h.admin.BlockUser(c.UserContext(), c.Params("id"), a, input.Reason)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User blocked", user)
}

type rateRequest struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
}

func (h *AdminHandler) SetExchangeRate(c *fiber.Ctx) error {
	a, ok := actor(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input rateRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	from, to, err := convertRequest{FromCurrency: input.FromCurrency, ToCurrency: input.ToCurrency}.pair()
	if err != nil {
		return response.FromError(c, err)
	}

	rate, err := h.admin.SetExchangeRate(c.UserContext(), from, to, input.Rate, a)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Exchange rate updated", rate)
}

func (h *AdminHandler) GetRateHistory(c *fiber.Ctx) error {
	from, to, err := convertRequest{FromCurrency: c.Query("from"), ToCurrency: c.Query("to")}.pair()
	if err != nil {
		return response.FromError(c, err)
	}

	history, err := h.admin.RateHistory(c.UserContext(), from, to, queryInt(c, "limit", 0))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "", history)
}

func (h *AdminHandler) GetLogs(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	logs, total, err := h.admin.Logs(c.UserContext(), repositories.AdminLogFilter{
		AdminID:  c.Query("admin_id"),
		Action:   c.Query("action"),
		TargetID: c.Query("target_id"),
		Page:     page(p),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return response.Success(c, "", pagination.Response(p, logs))
}

// GetAllTransactions lists transactions across users, optionally for one.
func (h *AdminHandler) GetAllTransactions(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter, err := transactionFilter(c, p)
	if err != nil {
		return response.FromError(c, err)
	}
	filter.UserID = c.Query("user_id")

	txns, total, err := h.admin.Transactions(c.UserContext(), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return response.Success(c, "", pagination.Response(p, txns))
}

// GetTransaction returns any user's transaction, with its conversion record
// for conversions.
func (h *AdminHandler) GetTransaction(c *fiber.Ctx) error {
	details, err := h.admin.Transaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "", details)
}

func (h *AdminHandler) GetUsers(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := repositories.UserFilter{
		Role: c.Query("role"),
		Page: page(p),
	}
	var err error
	if filter.IsActive, err = queryBool(c, "active"); err != nil {
		return response.FromError(c, err)
	}
	if filter.IsBlocked, err = queryBool(c, "blocked"); err != nil {
		return response.FromError(c, err)
	}

	users, total, err := h.admin.Users(c.UserContext(), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return response.Success(c, "", pagination.Response(p, users))
}
