package domain_test

import (
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opened = time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC)

func activeAccount(t *testing.T, terms domain.AccountTerms, balance string) domain.Account {
	t.Helper()
	account, err := domain.NewAccount("1000000001", "cust-1", terms, opened)
	require.NoError(t, err)
	require.NoError(t, account.Approve())
	account.AvailableBalance = d(balance)
	account.OpeningBalance = d(balance)
	return account
}

func TestNewAccount_StartsPending(t *testing.T) {
	account, err := domain.NewAccount(" 1000000001 ", "cust-1", domain.CheckingTerms{}, opened)
	require.NoError(t, err)

	assert.Equal(t, "1000000001", account.AccountNumber)
	assert.Equal(t, domain.AccountStatusPending, account.Status)
	assert.False(t, account.IsActive())
	assert.True(t, account.AvailableBalance.IsZero())
	assert.Equal(t, domain.AccountTypeChecking, account.Type())
}

func TestNewAccount_RejectsBadTerms(t *testing.T) {
	tests := []struct {
		name  string
		terms domain.AccountTerms
	}{
		{name: "nil terms", terms: nil},
		{name: "negative credit limit", terms: domain.CreditTerms{CreditLimit: d("-1"), InterestRate: d("0.02")}},
		{name: "negative savings rate", terms: domain.SavingsTerms{AnnualInterestRate: d("-0.01")}},
		{name: "bad currency code", terms: domain.CurrencyTerms{CurrencyCode: "EURO"}},
		{name: "credit rate beyond six places", terms: domain.CreditTerms{CreditLimit: d("100"), InterestRate: d("0.0123456")}},
		{name: "savings rate beyond six places", terms: domain.SavingsTerms{AnnualInterestRate: d("0.0000001")}},
		{name: "credit limit beyond cents", terms: domain.CreditTerms{CreditLimit: d("100.001"), InterestRate: d("0.02")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewAccount("1000000001", "cust-1", tt.terms, opened)
			require.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestAccount_CreditFundsAreHeadroom(t *testing.T) {
	account := activeAccount(t, domain.CreditTerms{CreditLimit: d("1000.00"), InterestRate: d("0.02")}, "-400.00")

	assert.Equal(t, "600.00", domain.FormatMoney(account.AvailableFunds()))
	assert.Equal(t, "400.00", domain.FormatMoney(account.DrawnAmount()))
	require.NoError(t, account.CheckDebit(d("600.00")))

	err := account.CheckDebit(d("600.01"))
	require.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Contains(t, err.Error(), "exceeds credit limit")
}

func TestAccount_CreditRepaymentCappedAtDrawnAmount(t *testing.T) {
	account := activeAccount(t, domain.CreditTerms{CreditLimit: d("1000.00"), InterestRate: d("0.02")}, "-400.00")

	require.NoError(t, account.CheckCredit(d("400.00")))
	err := account.CheckCredit(d("400.01"))
	require.ErrorIs(t, err, domain.ErrInvalidTransaction)

	settled := activeAccount(t, domain.CreditTerms{CreditLimit: d("1000.00"), InterestRate: d("0.02")}, "0")
	require.ErrorIs(t, settled.CheckCredit(d("0.01")), domain.ErrInvalidTransaction)

	checking := activeAccount(t, domain.CheckingTerms{}, "0")
	require.NoError(t, checking.CheckCredit(d("1000000.00")))
}

func TestNewAccount_AcceptsSixPlaceRates(t *testing.T) {
	_, err := domain.NewAccount("1000000001", "cust-1", domain.CreditTerms{CreditLimit: d("100.00"), InterestRate: d("0.012345")}, opened)
	require.NoError(t, err)
	_, err = domain.NewAccount("1000000001", "cust-1", domain.SavingsTerms{AnnualInterestRate: d("0.035000")}, opened)
	require.NoError(t, err)
}

func TestAccount_DepositTypesCannotGoNegative(t *testing.T) {
	for _, terms := range []domain.AccountTerms{
		domain.CheckingTerms{},
		domain.SavingsTerms{AnnualInterestRate: d("0.03")},
		domain.CurrencyTerms{CurrencyCode: "EUR"},
	} {
		t.Run(string(terms.Type()), func(t *testing.T) {
			account := activeAccount(t, terms, "50.00")
			require.NoError(t, account.CheckDebit(d("50.00")))

			err := account.CheckDebit(d("50.01"))
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			require.NotErrorIs(t, err, domain.ErrCreditLimitExceeded)
			assert.True(t, account.DrawnAmount().IsZero())
		})
	}
}

func TestAccount_TouchOnlyStampsCurrency(t *testing.T) {
	at := opened.Add(48 * time.Hour)

	currency := activeAccount(t, domain.CurrencyTerms{CurrencyCode: "USD"}, "10.00")
	currency.Touch(at)
	terms := currency.Terms.(domain.CurrencyTerms)
	require.NotNil(t, terms.LastActiveDate)
	assert.True(t, terms.LastActiveDate.Equal(at))

	checking := activeAccount(t, domain.CheckingTerms{}, "10.00")
	checking.Touch(at)
	assert.Equal(t, domain.CheckingTerms{}, checking.Terms)
}

func TestAccount_StampInterest(t *testing.T) {
	at := opened.AddDate(0, 1, 0)

	credit := activeAccount(t, domain.CreditTerms{CreditLimit: d("100"), InterestRate: d("0.01")}, "0")
	credit.StampInterest(at)
	assert.True(t, credit.Terms.(domain.CreditTerms).LastInterestApplied.Equal(at))

	savings := activeAccount(t, domain.SavingsTerms{AnnualInterestRate: d("0.03")}, "0")
	savings.StampInterest(at)
	assert.True(t, savings.Terms.(domain.SavingsTerms).LastInterestApplied.Equal(at))
}

func TestAccount_Lifecycle(t *testing.T) {
	account, err := domain.NewAccount("1000000001", "cust-1", domain.CheckingTerms{}, opened)
	require.NoError(t, err)

	require.ErrorIs(t, account.Close(), domain.ErrInvalidStateTransition)
	require.NoError(t, account.Approve())
	require.ErrorIs(t, account.Approve(), domain.ErrInvalidStateTransition)

	account.Credit(d("1.00"))
	require.ErrorIs(t, account.Close(), domain.ErrInvalidStateTransition)
	account.Debit(d("1.00"))
	require.NoError(t, account.Close())
	assert.Equal(t, domain.AccountStatusClosed, account.Status)
}

func TestAccount_CloseForInactivityIsCurrencyOnly(t *testing.T) {
	checking := activeAccount(t, domain.CheckingTerms{}, "5.00")
	require.ErrorIs(t, checking.CloseForInactivity(), domain.ErrInvalidStateTransition)

	currency := activeAccount(t, domain.CurrencyTerms{CurrencyCode: "GBP"}, "5.00")
	require.NoError(t, currency.CloseForInactivity())
	assert.Equal(t, domain.AccountStatusClosed, currency.Status)
}

func TestAccount_CloneSharesNoPointers(t *testing.T) {
	stamp := opened
	account := activeAccount(t, domain.CurrencyTerms{CurrencyCode: "USD", LastActiveDate: &stamp}, "1.00")

	clone := account.Clone()
	*clone.Terms.(domain.CurrencyTerms).LastActiveDate = opened.AddDate(1, 0, 0)

	assert.True(t, account.Terms.(domain.CurrencyTerms).LastActiveDate.Equal(opened))
}
