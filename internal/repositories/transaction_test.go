package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "kudi/internal/errors"
	"kudi/internal/models"
	"kudi/internal/repositories"
	"kudi/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTxn(id, userID string, typ models.TransactionType, c models.Currency) *models.Transaction {
	return &models.Transaction{
		TransactionID: id,
		Reference:     "ref-" + id,
		UserID:        userID,
		Amount:        dec("100"),
		Currency:      c,
		Type:          typ,
		Direction:     models.DirectionFor(typ, c, ""),
		Status:        models.StatusPending,
	}
}

func TestTransactionLookup(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	txn := newTxn("tx-1", "user-1", models.TransactionTypeDeposit, models.CurrencyNGN)
	require.NoError(t, store.Transactions.Create(ctx, txn))

	byID, err := store.Transactions.GetByTransactionID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, models.Direction("DEPOSIT_NGN"), byID.Direction)

	byRef, err := store.Transactions.GetByReference(ctx, "ref-tx-1")
	require.NoError(t, err)
	assert.Equal(t, byID.ID, byRef.ID)

	_, err = store.Transactions.GetByReference(ctx, "unknown")
	assert.True(t, errors.Is(err, apperrors.ErrTransactionNotFound))
}

func TestTransactionCreate_DuplicateReference(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Transactions.Create(ctx, newTxn("tx-1", "user-1", models.TransactionTypeDeposit, models.CurrencyNGN)))
	dup := newTxn("tx-2", "user-1", models.TransactionTypeDeposit, models.CurrencyNGN)
	dup.Reference = "ref-tx-1"

	err := store.Transactions.Create(ctx, dup)
	assert.True(t, errors.Is(err, apperrors.ErrDuplicateReference))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.False(t, apperrors.Retryable(err))
}

func TestTransitionFromPending_OnlyOnce(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	txn := newTxn("tx-1", "user-1", models.TransactionTypeWithdrawal, models.CurrencyGHS)
	require.NoError(t, store.Transactions.Create(ctx, txn))

	moved, err := store.Transactions.TransitionFromPending(ctx, txn, models.StatusCompleted, "done")
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, models.StatusCompleted, txn.Status)

	stale := newTxn("tx-1", "user-1", models.TransactionTypeWithdrawal, models.CurrencyGHS)
	stale.ID = txn.ID
	moved, err = store.Transactions.TransitionFromPending(ctx, stale, models.StatusFailed, "late")
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, models.StatusPending, stale.Status)

	stored, err := store.Transactions.GetByTransactionID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.Equal(t, "done", stored.Description)
}

func TestTransactionList_Filters(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Transactions.Create(ctx, newTxn(fmt.Sprintf("dep-%d", i), "user-1", models.TransactionTypeDeposit, models.CurrencyNGN)))
	}
	require.NoError(t, store.Transactions.Create(ctx, newTxn("wd-1", "user-1", models.TransactionTypeWithdrawal, models.CurrencyGHS)))
	require.NoError(t, store.Transactions.Create(ctx, newTxn("other-1", "user-2", models.TransactionTypeDeposit, models.CurrencyNGN)))

	txns, total, err := store.Transactions.List(ctx, repositories.TransactionFilter{
		UserID: "user-1",
		Type:   models.TransactionTypeDeposit,
		Page:   repositories.Page{Page: 2, Limit: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, txns, 2)

	txns, total, err = store.Transactions.List(ctx, repositories.TransactionFilter{Currency: models.CurrencyGHS})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "wd-1", txns[0].TransactionID)
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   repositories.Page
		want repositories.Page
	}{
		{"zero", repositories.Page{}, repositories.Page{Page: 1, Limit: 20}},
		{"too large", repositories.Page{Page: 3, Limit: 1000}, repositories.Page{Page: 3, Limit: 100}},
		{"negative page", repositories.Page{Page: -1, Limit: 5}, repositories.Page{Page: 1, Limit: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
	assert.Equal(t, 10, repositories.Page{Page: 3, Limit: 5}.Offset())
}
