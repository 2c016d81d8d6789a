package routes_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"kudi/internal/config"
	"kudi/internal/models"
	"kudi/internal/routes"
	"kudi/internal/testutil"
	"kudi/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v72"
)

const (
	jwtSecret      = "jwt-test-secret"
	paystackSecret = "sk_test_paystack"
	momoToken      = "momo-callback-token"
	stripeSecret   = "whsec_test"
)

type envelope struct {
	Error   bool            `json:"error"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type APISuite struct {
	suite.Suite
	app   *fiber.App
	svc   *routes.Services
	user  string
	other string
	admin string
}

func (s *APISuite) SetupTest() {
	cfg := config.Config{
		JWTSecret:           jwtSecret,
		PaystackSecret:      paystackSecret,
		MomoCallbackToken:   momoToken,
		StripeWebhookSecret: stripeSecret,
		ConversionFeeRate:   decimal.RequireFromString("0.02"),
	}
	store := testutil.NewStore(s.T())
	s.svc = routes.NewServices(routes.Infrastructure{Store: store}, cfg)
	s.app = fiber.New()
	routes.SetupRoutes(s.app, s.svc, routes.Options{Config: cfg})

	s.Require().NoError(store.Users.Upsert(context.Background(), &models.User{
		UserID: "admin-1", Email: "ops@kudi.test", Role: models.RoleAdmin, IsActive: true,
	}))
	s.user = s.token("user-1", models.RoleUser)
	s.other = s.token("user-2", models.RoleUser)
	s.admin = s.token("admin-1", models.RoleAdmin)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) token(userID, role string) string {
	tok, err := utils.GenerateToken(models.UserClaims{UserID: userID, Role: role}, jwtSecret, time.Hour)
	s.Require().NoError(err)
	return tok
}

func (s *APISuite) do(method, path, bearer string, body []byte, headers map[string]string) (int, envelope) {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	var env envelope
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func (s *APISuite) send(method, path, bearer string, body interface{}) (int, envelope) {
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	return s.do(method, path, bearer, raw, nil)
}

func (s *APISuite) decode(env envelope, v interface{}) {
	s.Require().NoError(json.Unmarshal(env.Data, v), string(env.Data))
}

func (s *APISuite) balance(bearer string, c models.Currency) decimal.Decimal {
	status, env := s.send("GET", "/api/wallet/balance", bearer, nil)
	s.Require().Equal(fiber.StatusOK, status)
	var data struct {
		Balances map[string]decimal.Decimal `json:"balances"`
	}
	s.decode(env, &data)
	return data.Balances[string(c)]
}

func (s *APISuite) topUp(amount string, c models.Currency) models.Transaction {
	status, env := s.send("POST", "/api/wallet/topup", s.user, fiber.Map{
		"amount": amount, "currency": string(c), "payment_method": "paystack",
	})
	s.Require().Equal(fiber.StatusCreated, status, env.Message)
	var txn models.Transaction
	s.decode(env, &txn)
	return txn
}

func paystackSign(body []byte) string {
	mac := hmac.New(sha512.New, []byte(paystackSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *APISuite) paystack(event, reference string, kobo int64, id int) (int, envelope) {
	body, err := json.Marshal(fiber.Map{
		"event": event,
		"data":  fiber.Map{"id": id, "reference": reference, "amount": kobo, "currency": "NGN"},
	})
	s.Require().NoError(err)
	return s.do("POST", "/api/webhooks/paystack", "", body, map[string]string{
		"x-paystack-signature": paystackSign(body),
	})
}

func webhookStatus(s *APISuite, env envelope) string {
	var data struct {
		Status string `json:"status"`
	}
	s.decode(env, &data)
	return data.Status
}

func (s *APISuite) TestHealth() {
	status, _ := s.do("GET", "/health", "", nil, nil)
	s.Equal(fiber.StatusOK, status)
}

func (s *APISuite) TestAuthRequired() {
	status, _ := s.send("GET", "/api/wallet/balance", "", nil)
	s.Equal(fiber.StatusUnauthorized, status)

	status, _ = s.send("GET", "/api/admin/logs", s.user, nil)
	s.Equal(fiber.StatusForbidden, status)
}

func (s *APISuite) TestTopUpSettledByPaystackOnce() {
	txn := s.topUp("5000", models.CurrencyNGN)
	s.Equal(models.StatusPending, txn.Status)
	s.True(s.balance(s.user, models.CurrencyNGN).IsZero())

	status, env := s.paystack("charge.success", txn.Reference, 500000, 1001)
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	s.Equal("processed", webhookStatus(s, env))

	status, env = s.paystack("charge.success", txn.Reference, 500000, 1002)
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("already_processed", webhookStatus(s, env))

	s.True(s.balance(s.user, models.CurrencyNGN).Equal(decimal.NewFromInt(5000)))
}

func (s *APISuite) TestPaystackRejectsBadSignature() {
	txn := s.topUp("100", models.CurrencyNGN)
	body := []byte(`{"event":"charge.success","data":{"reference":"` + txn.Reference + `","amount":10000}}`)

	status, _ := s.do("POST", "/api/webhooks/paystack", "", body, map[string]string{
		"x-paystack-signature": "deadbeef",
	})
	s.Equal(fiber.StatusUnauthorized, status)
	s.True(s.balance(s.user, models.CurrencyNGN).IsZero())
}

func (s *APISuite) TestPaystackAmountMismatchIgnored() {
	txn := s.topUp("100", models.CurrencyNGN)

	status, env := s.paystack("charge.success", txn.Reference, 999, 7)
	s.Require().Equal(fiber.StatusOK, status)
	s.Equal("ignored", webhookStatus(s, env))
	s.True(s.balance(s.user, models.CurrencyNGN).IsZero())
}

func (s *APISuite) TestMomoCallback() {
	txn := s.topUp("40", models.CurrencyGHS)
	body := []byte(`{"event":"payment.success","data":{"id":"momo-77","reference":"` + txn.Reference + `","amount":40,"currency":"GHS"}}`)

	status, _ := s.do("POST", "/api/webhooks/momo", "", body, map[string]string{"X-Callback-Token": "wrong"})
	s.Equal(fiber.StatusUnauthorized, status)

	status, env := s.do("POST", "/api/webhooks/momo", "", body, map[string]string{"X-Callback-Token": momoToken})
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	s.Equal("processed", webhookStatus(s, env))
	s.True(s.balance(s.user, models.CurrencyGHS).Equal(decimal.NewFromInt(40)))
}

func (s *APISuite) TestStripeSignedEvent() {
	txn := s.topUp("25", models.CurrencyNGN)
	body := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":"payment_intent.succeeded",`+
		`"data":{"object":{"id":"pi_1","object":"payment_intent","amount":2500,"currency":"ngn","metadata":{"reference":%q}}}}`,
		stripe.APIVersion, txn.Reference))
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(stripeSecret))
	mac.Write([]byte(ts + "."))
	mac.Write(body)
	header := "t=" + ts + ",v1=" + hex.EncodeToString(mac.Sum(nil))

	status, _ := s.do("POST", "/api/webhooks/stripe", "", body, map[string]string{"Stripe-Signature": "t=1,v1=00"})
	s.Equal(fiber.StatusUnauthorized, status)

	status, env := s.do("POST", "/api/webhooks/stripe", "", body, map[string]string{"Stripe-Signature": header})
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	s.Equal("processed", webhookStatus(s, env))
	s.True(s.balance(s.user, models.CurrencyNGN).Equal(decimal.NewFromInt(25)))
}

func (s *APISuite) TestConvert() {
	txn := s.topUp("10000", models.CurrencyNGN)
	_, err := s.svc.Transactions.Complete(context.Background(), txn.TransactionID)
	s.Require().NoError(err)

	status, env := s.send("POST", "/api/convert/calculate", "", fiber.Map{
		"from_currency": "NGN", "to_currency": "GHS", "amount": "10000",
	})
	s.Require().Equal(fiber.StatusOK, status, env.Message)

	status, env = s.send("POST", "/api/convert", s.user, fiber.Map{
		"from_currency": "ngn", "to_currency": "GHS", "amount": "10000",
	})
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	var result struct {
		Fee             decimal.Decimal `json:"fee"`
		ConvertedAmount decimal.Decimal `json:"converted_amount"`
		Status          string          `json:"status"`
	}
	s.decode(env, &result)
	s.True(result.Fee.Equal(decimal.NewFromInt(200)))
	s.True(result.ConvertedAmount.Equal(decimal.RequireFromString("51.94")))
	s.Equal("completed", result.Status)

	s.True(s.balance(s.user, models.CurrencyNGN).IsZero())
	s.True(s.balance(s.user, models.CurrencyGHS).Equal(decimal.RequireFromString("51.94")))

	status, env = s.send("POST", "/api/convert", s.user, fiber.Map{
		"from_currency": "GHS", "to_currency": "GHS", "amount": "1",
	})
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("SAME_CURRENCY", env.Code)
}

func (s *APISuite) TestWithdrawInsufficientFunds() {
	status, env := s.send("POST", "/api/wallet/withdraw", s.user, fiber.Map{
		"amount": "10", "currency": "GHS", "withdrawal_method": "momo",
	})
	s.Equal(fiber.StatusPaymentRequired, status)
	s.Equal("INSUFFICIENT_FUNDS", env.Code)

	status, env = s.send("POST", "/api/wallet/withdraw", s.user, fiber.Map{"amount": "10"})
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("INVALID_REQUEST", env.Code)
}

func (s *APISuite) TestAdminRejectRefundsWithdrawal() {
	deposit := s.topUp("5000", models.CurrencyGHS)
	status, _ := s.send("POST", "/api/admin/transactions/"+deposit.TransactionID+"/approve", s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status)

	status, env := s.send("POST", "/api/wallet/withdraw", s.user, fiber.Map{
		"amount": "2000", "currency": "GHS", "withdrawal_method": "momo",
	})
	s.Require().Equal(fiber.StatusCreated, status, env.Message)
	var withdrawal models.Transaction
	s.decode(env, &withdrawal)
	s.True(s.balance(s.user, models.CurrencyGHS).Equal(decimal.NewFromInt(3000)))

	status, _ = s.send("POST", "/api/admin/transactions/"+withdrawal.TransactionID+"/reject", s.admin, fiber.Map{"reason": "account mismatch"})
	s.Require().Equal(fiber.StatusOK, status)
	s.True(s.balance(s.user, models.CurrencyGHS).Equal(decimal.NewFromInt(5000)))

	status, env = s.send("POST", "/api/admin/transactions/"+withdrawal.TransactionID+"/approve", s.admin, nil)
	s.Equal(fiber.StatusConflict, status)
	s.Equal("NOT_PENDING", env.Code)

	status, env = s.send("GET", "/api/admin/logs?action="+models.AdminActionRejectTransaction, s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status)
	var logs struct {
		Items []models.AdminLog `json:"items"`
	}
	s.decode(env, &logs)
	s.Require().Len(logs.Items, 1)
	s.Equal("admin-1", logs.Items[0].AdminID)
}

func (s *APISuite) TestAdminRejectWithoutBody() {
	deposit := s.topUp("800", models.CurrencyNGN)
	status, _ := s.send("POST", "/api/admin/transactions/"+deposit.TransactionID+"/approve", s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status)

	status, env := s.send("POST", "/api/wallet/withdraw", s.user, fiber.Map{
		"amount": "300", "currency": "NGN", "withdrawal_method": "bank",
	})
	s.Require().Equal(fiber.StatusCreated, status, env.Message)
	var withdrawal models.Transaction
	s.decode(env, &withdrawal)

	status, env = s.send("POST", "/api/admin/transactions/"+withdrawal.TransactionID+"/reject", s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	var rejected models.Transaction
	s.decode(env, &rejected)
	s.Equal(models.StatusFailed, rejected.Status)
	s.True(s.balance(s.user, models.CurrencyNGN).Equal(decimal.NewFromInt(800)))
}

func (s *APISuite) TestDuplicateReferenceIsNotRetryable() {
	body := fiber.Map{"amount": "100", "currency": "NGN", "payment_method": "paystack", "reference": "PSK-123"}
	status, env := s.send("POST", "/api/wallet/topup", s.user, body)
	s.Require().Equal(fiber.StatusCreated, status, env.Message)

	status, env = s.send("POST", "/api/wallet/topup", s.user, body)
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("DUPLICATE_REFERENCE", env.Code)
}

func (s *APISuite) TestAdminTransactionDetails() {
	deposit := s.topUp("10000", models.CurrencyNGN)
	_, err := s.svc.Transactions.Complete(context.Background(), deposit.TransactionID)
	s.Require().NoError(err)

	status, env := s.send("POST", "/api/convert", s.user, fiber.Map{
		"from_currency": "NGN", "to_currency": "GHS", "amount": "10000",
	})
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	var result struct {
		TransactionID string `json:"transaction_id"`
	}
	s.decode(env, &result)
	s.Require().NotEmpty(result.TransactionID)

	var details struct {
		Transaction *models.Transaction `json:"transaction"`
		Conversion  *models.Conversion  `json:"conversion"`
	}
	status, env = s.send("GET", "/api/admin/transactions/"+result.TransactionID, s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	s.decode(env, &details)
	s.Equal(models.TransactionTypeConversion, details.Transaction.Type)
	s.Require().NotNil(details.Conversion)
	s.True(details.Conversion.Fee.Equal(decimal.NewFromInt(200)))

	details.Conversion = nil
	status, env = s.send("GET", "/api/admin/transactions/"+deposit.TransactionID, s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.decode(env, &details)
	s.Equal(models.TransactionTypeDeposit, details.Transaction.Type)
	s.Nil(details.Conversion)

	status, _ = s.send("GET", "/api/admin/transactions/missing", s.admin, nil)
	s.Equal(fiber.StatusNotFound, status)

	status, _ = s.send("GET", "/api/admin/transactions/"+deposit.TransactionID, s.user, nil)
	s.Equal(fiber.StatusForbidden, status)
}

func (s *APISuite) TestAdminListsUsers() {
	s.Require().NoError(s.svc.Store.Users.Upsert(context.Background(), &models.User{
		UserID: "user-2", Email: "abena@kudi.test", Role: models.RoleUser, IsActive: true,
	}))
	status, _ := s.send("POST", "/api/admin/users/user-2/block", s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status)

	var page struct {
		Items []models.User `json:"items"`
		Meta  struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	status, env := s.send("GET", "/api/admin/users", s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status, env.Message)
	s.decode(env, &page)
	s.Equal(int64(2), page.Meta.TotalItems)

	page.Items = nil
	status, env = s.send("GET", "/api/admin/users?blocked=true", s.admin, nil)
	s.Require().Equal(fiber.StatusOK, status)
	s.decode(env, &page)
	s.Require().Len(page.Items, 1)
	s.Equal("user-2", page.Items[0].UserID)

	status, env = s.send("GET", "/api/admin/users?active=maybe", s.admin, nil)
	s.Equal(fiber.StatusBadRequest, status)
	s.Equal("INVALID_REQUEST", env.Code)

	status, _ = s.send("GET", "/api/admin/users", s.user, nil)
	s.Equal(fiber.StatusForbidden, status)
}

func (s *APISuite) TestBlockUser() {
	s.Require().NoError(s.svc.Store.Users.Upsert(context.Background(), &models.User{
		UserID: "user-2", Email: "abena@kudi.test", Role: models.RoleUser, IsActive: true,
	}))

	status, _ := s.send("POST", "/api/admin/users/user-2/block", s.admin, fiber.Map{"reason": "fraud"})
	s.Require().Equal(fiber.StatusOK, status)

	status, env := s.send("POST", "/api/admin/users/user-2/block", s.admin, nil)
	s.Equal(fiber.StatusConflict, status)
	s.Equal("ALREADY_BLOCKED", env.Code)

	status, _ = s.send("GET", "/api/wallet/balance", s.other, nil)
	s.Equal(fiber.StatusForbidden, status)

	status, _ = s.send("POST", "/api/admin/users/ghost/block", s.admin, nil)
	s.Equal(fiber.StatusNotFound, status)
}

func (s *APISuite) TestAdminSetsRate() {
	status, env := s.send("PUT", "/api/admin/rates", s.admin, fiber.Map{
		"from_currency": "NGN", "to_currency": "GHS", "rate": "0.006",
	})
	s.Require().Equal(fiber.StatusOK, status, env.Message)

	status, env = s.send("GET", "/api/convert/rates", "", nil)
	s.Require().Equal(fiber.StatusOK, status)
	var rates []struct {
		From   string          `json:"from"`
		To     string          `json:"to"`
		Rate   decimal.Decimal `json:"rate"`
		Source string          `json:"source"`
	}
	s.decode(env, &rates)
	s.Require().Len(rates, 2)
	for _, r := range rates {
		if r.From == "NGN" {
			s.True(r.Rate.Equal(decimal.RequireFromString("0.006")))
			s.Equal(models.RateSourceDatabase, r.Source)
		} else {
			s.Equal(models.RateSourceDefault, r.Source)
		}
	}

	status, _ = s.send("GET", "/api/admin/rates/history?from=NGN&to=GHS", s.admin, nil)
	s.Equal(fiber.StatusOK, status)
}

func (s *APISuite) TestTransactionVisibility() {
	txn := s.topUp("300", models.CurrencyNGN)

	status, _ := s.send("GET", "/api/transactions/"+txn.TransactionID, s.user, nil)
	s.Equal(fiber.StatusOK, status)

	status, _ = s.send("GET", "/api/transactions/"+txn.TransactionID, s.other, nil)
	s.Equal(fiber.StatusNotFound, status)

	status, _ = s.send("GET", "/api/transactions/"+txn.TransactionID, s.admin, nil)
	s.Equal(fiber.StatusOK, status)

	status, env := s.send("GET", "/api/transactions?type=deposit&status=pending", s.user, nil)
	s.Require().Equal(fiber.StatusOK, status)
	var page struct {
		Items []models.Transaction `json:"items"`
		Meta  struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	s.decode(env, &page)
	s.Equal(int64(1), page.Meta.TotalItems)

	status, _ = s.send("GET", "/api/transactions?type=bogus", s.user, nil)
	s.Equal(fiber.StatusBadRequest, status)
}
