package domain_test

import (
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func strPtr(s string) *string { return &s }

func TestTransactionFactory_CreatesEachVariant(t *testing.T) {
	now := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	factory := domain.NewTransactionFactory(fixedClock{now: now}).WithIDGenerator(func() string { return "TXN-1" })

	deposit, err := factory.Create(domain.TransactionTypeDeposit, "", nil, d("10.00"), nil, strPtr("2000000002"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeDeposit, deposit.Type())
	assert.Equal(t, "Deposit", deposit.Description())
	assert.True(t, deposit.Date().Equal(now))
	assert.Equal(t, "TXN-1", deposit.Number())

	withdrawal, err := factory.Create(domain.TransactionTypeWithdrawal, "atm", nil, d("10.00"), strPtr("1000000001"), nil)
	require.NoError(t, err)
	assert.Equal(t, "atm", withdrawal.Description())

	backdated := now.AddDate(0, 0, -3)
	transfer, err := factory.Create(domain.TransactionTypeTransfer, "", &backdated, d("10.00"), strPtr("1000000001"), strPtr("2000000002"))
	require.NoError(t, err)
	assert.True(t, transfer.Date().Equal(backdated))
	assert.Equal(t, []string{"1000000001", "2000000002"}, transfer.AccountNumbers())

	fee, err := factory.Fee("1000000001", "Monthly transaction allowance exceeded", d("5.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeFee, fee.Type())
}

func TestTransactionFactory_RejectsMissingReferences(t *testing.T) {
	factory := domain.NewTransactionFactory(fixedClock{now: time.Now()})

	tests := []struct {
		name        string
		txnType     domain.TransactionType
		source      *string
		destination *string
	}{
		{name: "deposit without destination", txnType: domain.TransactionTypeDeposit, source: strPtr("1000000001")},
		{name: "withdrawal without source", txnType: domain.TransactionTypeWithdrawal, destination: strPtr("1000000001")},
		{name: "transfer without destination", txnType: domain.TransactionTypeTransfer, source: strPtr("1000000001")},
		{name: "transfer to itself", txnType: domain.TransactionTypeTransfer, source: strPtr("1000000001"), destination: strPtr("1000000001")},
		{name: "fee without source", txnType: domain.TransactionTypeFee},
		{name: "unknown type", txnType: domain.TransactionType("REFUND"), source: strPtr("1000000001")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := factory.Create(tt.txnType, "", nil, d("1.00"), tt.source, tt.destination)
			require.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestTransaction_SignedAmountFor(t *testing.T) {
	at := time.Now()
	transfer, err := domain.NewTransfer("T1", "", at, d("25.00"), "1000000001", "2000000002")
	require.NoError(t, err)

	assert.Equal(t, "-25.00", domain.FormatMoney(transfer.SignedAmountFor("1000000001")))
	assert.Equal(t, "25.00", domain.FormatMoney(transfer.SignedAmountFor("2000000002")))
	assert.True(t, transfer.SignedAmountFor("3000000003").IsZero())

	fee, err := domain.NewFee("F1", "", at, d("5.00"), "1000000001")
	require.NoError(t, err)
	assert.Equal(t, "-5.00", domain.FormatMoney(fee.SignedAmountFor("1000000001")))
}

func TestTransaction_IsChargeable(t *testing.T) {
	at := time.Now()
	deposit, _ := domain.NewDeposit("D1", "", at, d("1"), "1000000001")
	withdrawal, _ := domain.NewWithdrawal("W1", "", at, d("1"), "1000000001")
	transfer, _ := domain.NewTransfer("T1", "", at, d("1"), "1000000001", "2000000002")
	fee, _ := domain.NewFee("F1", "", at, d("1"), "1000000001")

	assert.False(t, deposit.IsChargeable("1000000001"))
	assert.True(t, withdrawal.IsChargeable("1000000001"))
	assert.True(t, transfer.IsChargeable("1000000001"))
	assert.False(t, transfer.IsChargeable("2000000002"))
	assert.False(t, fee.IsChargeable("1000000001"))
}

func TestParseTransactionType(t *testing.T) {
	got, err := domain.ParseTransactionType(" transfer ")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionTypeTransfer, got)

	_, err = domain.ParseTransactionType("REVERSAL")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestInMonth(t *testing.T) {
	ref := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, domain.InMonth(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), ref))
	assert.True(t, domain.InMonth(time.Date(2026, time.March, 31, 23, 59, 59, 0, time.UTC), ref))
	assert.False(t, domain.InMonth(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), ref))
	assert.False(t, domain.InMonth(time.Date(2026, time.February, 28, 23, 0, 0, 0, time.UTC), ref))
}
