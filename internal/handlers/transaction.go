package handlers

import (
	apperrors "kudi/internal/errors"
	"kudi/internal/middleware"
	"kudi/internal/services/transaction"
	"kudi/internal/utils/pagination"
	"kudi/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	transactions *transaction.Service
}

func NewTransactionHandler(transactions *transaction.Service) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// GetUserTransactions lists the caller's own transactions.
func (h *TransactionHandler) GetUserTransactions(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	filter, err := transactionFilter(c, p)
	if err != nil {
		return response.FromError(c, err)
	}
	filter.UserID = caller.UserID

	txns, total, err := h.transactions.List(c.UserContext(), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return response.Success(c, "", pagination.Response(p, txns))
}

// GetTransaction returns one transaction. Other users' transactions read as
// not found unless the caller is an admin.
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return response.Unauthorized(c)
	}

	txn, err := h.transactions.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.FromError(c, err)
	}
	if txn.UserID != caller.UserID && !caller.IsAdmin {
		return response.FromError(c, apperrors.ErrTransactionNotFound)
	}
	return response.Success(c, "", txn)
}
