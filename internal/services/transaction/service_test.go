package transaction_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	apperrors "kudi/internal/errors"
	"kudi/internal/events"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/services/transaction"
	"kudi/internal/services/wallet"
	"kudi/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishStatusChanged(ctx context.Context, event events.StatusChanged) error {
	return m.Called(ctx, event).Error(0)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type TransactionSuite struct {
	suite.Suite
	ctx       context.Context
	store     *repositories.Store
	wallets   *wallet.Service
	publisher *mockPublisher
	svc       *transaction.Service
}

func (s *TransactionSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore(s.T())
	s.wallets = wallet.NewService(s.store, nil, wallet.Config{}, nil, nil)
	s.publisher = new(mockPublisher)
	s.publisher.On("PublishStatusChanged", mock.Anything, mock.Anything).Return(nil)
	s.svc = transaction.NewService(transaction.Dependencies{
		Store:     s.store,
		Wallets:   s.wallets,
		Publisher: s.publisher,
	}, transaction.Config{})
}

func TestTransactionSuite(t *testing.T) {
	suite.Run(t, new(TransactionSuite))
}

func (s *TransactionSuite) fund(userID string, c models.Currency, amount string) {
	_, err := s.wallets.Adjust(s.ctx, userID, c, dec(amount), models.TotalDeposits)
	s.Require().NoError(err)
}

func (s *TransactionSuite) balance(userID string, c models.Currency) decimal.Decimal {
	w, err := s.store.Wallets.GetOrCreate(s.ctx, userID)
	s.Require().NoError(err)
	return w.Balance(c)
}

func (s *TransactionSuite) TestDuplicateReferenceRollsBackDebit() {
	s.fund("user-1", models.CurrencyGHS, "100")
	_, err := s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeDeposit, Amount: dec("10"),
		Currency: models.CurrencyGHS, Method: models.MethodMomo, Reference: "MOMO-1",
	})
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeWithdrawal, Amount: dec("40"),
		Currency: models.CurrencyGHS, Method: models.MethodMomo, Reference: "MOMO-1",
	})
	s.True(errors.Is(err, apperrors.ErrDuplicateReference))
	s.False(apperrors.Retryable(err))
	s.True(s.balance("user-1", models.CurrencyGHS).Equal(dec("100")))
}

func (s *TransactionSuite) TestDepositCreditsOnlyOnCompletion() {
	txn, err := s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeDeposit, Amount: dec("5000"),
		Currency: models.CurrencyNGN, Method: models.MethodPaystack,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusPending, txn.Status)
	s.Equal(models.Direction("DEPOSIT_NGN"), txn.Direction)
	s.NotEmpty(txn.Reference)
	s.True(s.balance("user-1", models.CurrencyNGN).IsZero())

	t, err := s.svc.Complete(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(transaction.Processed, t.Outcome)
	s.True(s.balance("user-1", models.CurrencyNGN).Equal(dec("5000")))

	t, err = s.svc.Complete(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(transaction.AlreadyProcessed, t.Outcome)
	s.True(s.balance("user-1", models.CurrencyNGN).Equal(dec("5000")))

	w, err := s.store.Wallets.GetByUserID(s.ctx, "user-1")
	s.Require().NoError(err)
	s.True(w.TotalDeposits.Equal(dec("5000")))
}

func (s *TransactionSuite) TestFailedDepositChangesNothing() {
	txn, err := s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeDeposit, Amount: dec("100"), Currency: models.CurrencyGHS,
	})
	s.Require().NoError(err)

	t, err := s.svc.Fail(s.ctx, txn.TransactionID, "card declined")
	s.Require().NoError(err)
	s.Equal(transaction.Processed, t.Outcome)
	s.Empty(t.Changes)
	s.True(s.balance("user-1", models.CurrencyGHS).IsZero())
}

func (s *TransactionSuite) TestWithdrawalDeductsOnCreateAndRefundsOnFail() {
	s.fund("user-1", models.CurrencyGHS, "3000")

	txn, err := s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeWithdrawal, Amount: dec("2000"),
		Currency: models.CurrencyGHS, Method: models.MethodMomo, Description: "Withdrawal to MoMo",
	})
	s.Require().NoError(err)
	s.True(s.balance("user-1", models.CurrencyGHS).Equal(dec("1000")))

	t, err := s.svc.Fail(s.ctx, txn.TransactionID, "provider rejected")
	s.Require().NoError(err)
	s.Equal(transaction.Processed, t.Outcome)
	s.True(s.balance("user-1", models.CurrencyGHS).Equal(dec("3000")))

	stored, err := s.svc.Get(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(models.StatusFailed, stored.Status)
	s.Equal("Withdrawal to MoMo | Rejection reason: provider rejected", stored.Description)

	w, err := s.store.Wallets.GetByUserID(s.ctx, "user-1")
	s.Require().NoError(err)
	s.True(w.TotalWithdrawals.IsZero())
}

func (s *TransactionSuite) TestCompletedWithdrawalKeepsDeduction() {
	s.fund("user-1", models.CurrencyNGN, "500")

	txn, err := s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeTransfer, Amount: dec("200"), Currency: models.CurrencyNGN,
	})
	s.Require().NoError(err)
	s.Equal(models.Direction("TRANSFER_NGN"), txn.Direction)

	_, err = s.svc.Complete(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.True(s.balance("user-1", models.CurrencyNGN).Equal(dec("300")))

	t, err := s.svc.Fail(s.ctx, txn.TransactionID, "too late")
	s.Require().NoError(err)
	s.Equal(transaction.AlreadyProcessed, t.Outcome)
	s.True(s.balance("user-1", models.CurrencyNGN).Equal(dec("300")))
}

func (s *TransactionSuite) TestWithdrawalInsufficientFundsWritesNothing() {
	s.fund("user-1", models.CurrencyNGN, "100")

	_, err := s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeWithdrawal, Amount: dec("100.01"), Currency: models.CurrencyNGN,
	})
	s.True(errors.Is(err, apperrors.ErrInsufficientFunds))

	txns, total, err := s.svc.List(s.ctx, repositories.TransactionFilter{UserID: "user-1"})
	s.Require().NoError(err)
	s.Zero(total)
	s.Empty(txns)
	s.True(s.balance("user-1", models.CurrencyNGN).Equal(dec("100")))
}

func (s *TransactionSuite) TestWithdrawalFromInactiveWallet() {
	s.fund("user-1", models.CurrencyNGN, "100")
	s.Require().NoError(s.wallets.Deactivate(s.ctx, "user-1"))

	_, err := s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeWithdrawal, Amount: dec("10"), Currency: models.CurrencyNGN,
	})
	s.True(errors.Is(err, apperrors.ErrWalletInactive))
}

func (s *TransactionSuite) TestCreateValidation() {
	tests := []struct {
		name string
		req  transaction.CreateRequest
		want error
	}{
		{"conversion", transaction.CreateRequest{UserID: "u", Type: models.TransactionTypeConversion, Amount: dec("1"), Currency: models.CurrencyNGN}, apperrors.ErrInvalidType},
		{"unknown type", transaction.CreateRequest{UserID: "u", Type: "refund", Amount: dec("1"), Currency: models.CurrencyNGN}, apperrors.ErrInvalidType},
		{"zero amount", transaction.CreateRequest{UserID: "u", Type: models.TransactionTypeDeposit, Amount: decimal.Zero, Currency: models.CurrencyNGN}, apperrors.ErrInvalidAmount},
		{"bad currency", transaction.CreateRequest{UserID: "u", Type: models.TransactionTypeDeposit, Amount: dec("1"), Currency: "USD"}, apperrors.ErrInvalidCurrency},
		{"no user", transaction.CreateRequest{Type: models.TransactionTypeDeposit, Amount: dec("1"), Currency: models.CurrencyNGN}, apperrors.ErrInvalidUser},
		{"bad method", transaction.CreateRequest{UserID: "u", Type: models.TransactionTypeDeposit, Amount: dec("1"), Currency: models.CurrencyNGN, Method: "cash"}, apperrors.ErrInvalidType},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.svc.Create(s.ctx, tt.req)
			s.True(errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func (s *TransactionSuite) TestDuplicateReferenceRejected() {
	req := transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeDeposit, Amount: dec("10"),
		Currency: models.CurrencyNGN, Reference: "PSK-123",
	}
	_, err := s.svc.Create(s.ctx, req)
	s.Require().NoError(err)

	_, err = s.svc.Create(s.ctx, req)
	s.True(errors.Is(err, apperrors.ErrDuplicateReference))
	s.Equal(apperrors.KindValidation, apperrors.KindOf(err))

	found, err := s.svc.GetByReference(s.ctx, "PSK-123")
	s.Require().NoError(err)
	s.Equal("user-1", found.UserID)
}

func (s *TransactionSuite) TestGetUnknown() {
	_, err := s.svc.Complete(s.ctx, "missing")
	s.True(errors.Is(err, apperrors.ErrTransactionNotFound))
}

func (s *TransactionSuite) TestPublishesOnCreateAndTransition() {
	txn, err := s.svc.Create(s.ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeDeposit, Amount: dec("10"), Currency: models.CurrencyNGN,
	})
	s.Require().NoError(err)
	_, err = s.svc.Complete(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	_, err = s.svc.Complete(s.ctx, txn.TransactionID)
	s.Require().NoError(err)

	s.publisher.AssertNumberOfCalls(s.T(), "PublishStatusChanged", 2)
	last := s.publisher.Calls[1].Arguments.Get(1).(events.StatusChanged)
	s.Equal(models.StatusCompleted, last.Status)
}

func TestConcurrentCompleteCreditsOnce(t *testing.T) {
	store := testutil.NewStore(t)
	wallets := wallet.NewService(store, nil, wallet.Config{}, nil, nil)
	svc := transaction.NewService(transaction.Dependencies{Store: store, Wallets: wallets}, transaction.Config{})
	ctx := context.Background()

	txn, err := svc.Create(ctx, transaction.CreateRequest{
		UserID: "user-1", Type: models.TransactionTypeDeposit, Amount: dec("5000"), Currency: models.CurrencyNGN,
	})
	require.NoError(t, err)

	const callers = 5
	outcomes := make([]transaction.Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr, err := svc.Complete(ctx, txn.TransactionID)
			if assert.NoError(t, err) {
				outcomes[i] = tr.Outcome
			}
		}(i)
	}
	wg.Wait()

	var processed int
	for _, o := range outcomes {
		if o == transaction.Processed {
			processed++
		}
	}
	assert.Equal(t, 1, processed)

	w, err := store.Wallets.GetByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, w.BalanceNGN.Equal(dec("5000")))
}
