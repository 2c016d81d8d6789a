package handlers

import (
	"strings"

	"kudi/internal/middleware"
	"kudi/internal/models"
	"kudi/internal/services/transaction"
	"kudi/internal/services/wallet"
	"kudi/internal/utils/pagination"
	"kudi/internal/utils/response"
	"kudi/internal/utils/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	wallets      *wallet.Service
	transactions *transaction.Service
}

func NewWalletHandler(wallets *wallet.Service, transactions *transaction.Service) *WalletHandler {
	return &WalletHandler{
		wallets:      wallets,
		transactions: transactions,
	}
}

// GetBalance returns the caller's wallet, creating an empty one on first use.
func (h *WalletHandler) GetBalance(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return response.Unauthorized(c)
	}

	w, err := h.wallets.GetOrCreate(c.UserContext(), caller.UserID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "", fiber.Map{
		"balances": fiber.Map{
			"NGN": w.BalanceNGN,
			"GHS": w.BalanceGHS,
		},
		"total_deposits":      w.TotalDeposits,
		"total_withdrawals":   w.TotalWithdrawals,
		"total_conversions":   w.TotalConversions,
		"is_active":           w.IsActive,
		"last_transaction_at": w.LastTransactionAt,
	})
}

func (h *WalletHandler) GetHistory(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return response.Unauthorized(c)
	}

	p := pagination.ParseFromRequest(c)
	filter, err := transactionFilter(c, p)
	if err != nil {
		return response.FromError(c, err)
	}

	txns, total, err := h.wallets.History(c.UserContext(), caller.UserID, filter)
	if err != nil {
		return response.FromError(c, err)
	}
	p.Total = total
	return response.Success(c, "", pagination.Response(p, txns))
}

type topUpRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Reference     string          `json:"reference"`
}

// TopUp records a pending deposit. The balance moves once the provider
// confirms the reference through a webhook or an admin approves it.
func (h *WalletHandler) TopUp(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input topUpRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Required(input.Currency, "currency")
	v.Required(input.PaymentMethod, "payment_method")
	if err := v.Err(); err != nil {
		return response.FromError(c, err)
	}
	cur, err := currencyParam(input.Currency, "currency")
	if err != nil {
		return response.FromError(c, err)
	}

	txn, err := h.transactions.Create(c.UserContext(), transaction.CreateRequest{
		UserID:      caller.UserID,
		Type:        models.TransactionTypeDeposit,
		Amount:      input.Amount,
		Currency:    cur,
		Method:      strings.ToLower(input.PaymentMethod),
		Reference:   input.Reference,
		Description: "Wallet top-up via " + strings.ToLower(input.PaymentMethod),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Top-up initiated", txn)
}

type withdrawRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	WithdrawalMethod string          `json:"withdrawal_method"`
}

// Withdraw deducts the amount immediately and leaves the withdrawal pending
// until the payout is confirmed or rejected.
func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return response.Unauthorized(c)
	}

	var input withdrawRequest
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}
	v := validation.New()
	v.Required(input.Currency, "currency")
	v.Required(input.WithdrawalMethod, "withdrawal_method")
	if err := v.Err(); err != nil {
		return response.FromError(c, err)
	}
	cur, err := currencyParam(input.Currency, "currency")
	if err != nil {
		return response.FromError(c, err)
	}

	txn, err := h.transactions.Create(c.UserContext(), transaction.CreateRequest{
		UserID:      caller.UserID,
		Type:        models.TransactionTypeWithdrawal,
		Amount:      input.Amount,
		Currency:    cur,
		Method:      strings.ToLower(input.WithdrawalMethod),
		Description: "Withdrawal via " + strings.ToLower(input.WithdrawalMethod),
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Withdrawal initiated", txn)
}
