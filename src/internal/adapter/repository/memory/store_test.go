package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/memory"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)

func newAccount(t *testing.T, number string, terms domain.AccountTerms) domain.Account {
	t.Helper()
	account, err := domain.NewAccount(number, "cust-1", terms, now)
	require.NoError(t, err)
	require.NoError(t, account.Approve())
	return account
}

func TestStore_UpsertVersioning(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	saved, err := store.Upsert(ctx, newAccount(t, "1000000001", domain.CheckingTerms{}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	_, err = store.Upsert(ctx, newAccount(t, "1000000001", domain.CheckingTerms{}))
	require.ErrorIs(t, err, domain.ErrDuplicateRecord)

	saved.LowBalanceAlertSent = true
	updated, err := store.Upsert(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	_, err = store.Upsert(ctx, saved)
	require.ErrorIs(t, err, domain.ErrConcurrentModification)
}

func TestStore_CommitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	first, err := store.Upsert(ctx, newAccount(t, "1000000001", domain.CheckingTerms{}))
	require.NoError(t, err)
	second, err := store.Upsert(ctx, newAccount(t, "2000000002", domain.CheckingTerms{}))
	require.NoError(t, err)

	stale := second
	second.AvailableBalance = decimal.RequireFromString("10.00")
	_, err = store.Upsert(ctx, second)
	require.NoError(t, err)

	first.AvailableBalance = decimal.RequireFromString("90.00")
	txn, err := domain.NewTransfer("T1", "", now, decimal.RequireFromString("10.00"), "1000000001", "2000000002")
	require.NoError(t, err)

	_, err = store.Commit(ctx, []domain.Account{first, stale}, []domain.Transaction{txn})
	require.ErrorIs(t, err, domain.ErrConcurrentModification)

	reloaded, err := store.GetByAccountNumber(ctx, "1000000001")
	require.NoError(t, err)
	assert.True(t, reloaded.AvailableBalance.IsZero())

	history, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestStore_CommitRejectsDuplicateTransactionNumbers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	account, err := store.Upsert(ctx, newAccount(t, "1000000001", domain.CheckingTerms{}))
	require.NoError(t, err)

	deposit, err := domain.NewDeposit("T1", "", now, decimal.RequireFromString("5.00"), "1000000001")
	require.NoError(t, err)

	_, err = store.Commit(ctx, []domain.Account{account}, []domain.Transaction{deposit, deposit})
	require.ErrorIs(t, err, domain.ErrDuplicateRecord)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	stamp := now
	_, err := store.Upsert(ctx, newAccount(t, "3000000003", domain.CurrencyTerms{CurrencyCode: "EUR", LastActiveDate: &stamp}))
	require.NoError(t, err)

	loaded, err := store.GetByAccountNumber(ctx, "3000000003")
	require.NoError(t, err)
	*loaded.Terms.(domain.CurrencyTerms).LastActiveDate = now.AddDate(1, 0, 0)

	again, err := store.GetByAccountNumber(ctx, "3000000003")
	require.NoError(t, err)
	assert.True(t, again.Terms.(domain.CurrencyTerms).LastActiveDate.Equal(now))
}

func TestStore_QueriesAndRemove(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	pending, err := domain.NewAccount("4000000004", "cust-1", domain.CheckingTerms{}, now)
	require.NoError(t, err)
	_, err = store.Upsert(ctx, pending)
	require.NoError(t, err)
	_, err = store.Upsert(ctx, newAccount(t, "1000000001", domain.CheckingTerms{}))
	require.NoError(t, err)

	active, err := store.GetAllActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "1000000001", active[0].AccountNumber)

	owned, err := store.GetByCustomerID(ctx, "cust-1")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	require.NoError(t, store.Remove(ctx, "4000000004"))
	require.ErrorIs(t, store.Remove(ctx, "4000000004"), domain.ErrRecordNotFound)

	_, err = store.GetByAccountNumber(ctx, "4000000004")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestStore_Customers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	_, err := store.Create(ctx, domain.Customer{ID: "cust-1", FirstName: "Ada", LastName: "Obi", TransactionPinHash: "hash"})
	require.NoError(t, err)

	_, err = store.Create(ctx, domain.Customer{ID: "cust-1"})
	require.ErrorIs(t, err, domain.ErrDuplicateRecord)

	hash, err := store.GetTransactionPinHash(ctx, "cust-1")
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)

	_, err = store.GetByID(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestStore_MarkRaisedOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	fresh, err := store.MarkRaised(ctx, "velocity:1000000001:TXN-9", "1000000001", now)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = store.MarkRaised(ctx, "velocity:1000000001:TXN-9", "1000000001", now)
	require.NoError(t, err)
	assert.False(t, fresh)
}
