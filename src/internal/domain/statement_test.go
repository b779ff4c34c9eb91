package domain_test

import (
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildStatement_RunningBalance(t *testing.T) {
	account := activeAccount(t, domain.CheckingTerms{}, "100.00")
	base := time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

	deposit, _ := domain.NewDeposit("T2", "", base.Add(time.Hour), d("50.00"), account.AccountNumber)
	withdrawal, _ := domain.NewWithdrawal("T1", "", base, d("30.00"), account.AccountNumber)
	unrelated, _ := domain.NewDeposit("T3", "", base, d("999.00"), "9999999999")

	statement := domain.BuildStatement(account, []domain.Transaction{deposit, unrelated, withdrawal})

	require.Len(t, statement.Lines, 2)
	assert.Equal(t, "T1", statement.Lines[0].Transaction.Number())
	assert.Equal(t, "70.00", domain.FormatMoney(statement.Lines[0].RunningBalance))
	assert.Equal(t, "120.00", domain.FormatMoney(statement.Lines[1].RunningBalance))
	assert.Equal(t, "120.00", domain.FormatMoney(statement.ClosingBalance))
}

func TestVerifyLedger(t *testing.T) {
	account := activeAccount(t, domain.CreditTerms{CreditLimit: d("500"), InterestRate: d("0.02")}, "0.00")
	withdrawal, _ := domain.NewWithdrawal("T1", "", opened, d("200.00"), account.AccountNumber)
	history := []domain.Transaction{withdrawal}

	account.Debit(d("200.00"))
	require.NoError(t, domain.VerifyLedger(account, history))

	account.Debit(d("1.00"))
	require.ErrorIs(t, domain.VerifyLedger(account, history), domain.ErrLedgerMismatch)
}
