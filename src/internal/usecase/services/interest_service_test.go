package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestService_MonthlyCreditInterestOncePerMonth(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "2000000001", creditTerms("1000.00", "0.02"), "0")

	_, err := h.withdraw("2000000001", "400.00")
	require.NoError(t, err)

	charged, err := h.interest.ApplyMonthlyCreditInterest(ctx, "2000000001")
	require.NoError(t, err)
	requireMoney(t, "8.00", charged)

	account := h.account(t, "2000000001")
	requireMoney(t, "408.00", account.DrawnAmount())
	terms := account.Terms.(domain.CreditTerms)
	require.NotNil(t, terms.LastInterestApplied)
	assert.True(t, terms.LastInterestApplied.Equal(testNow))

	h.clock.Advance(10 * 24 * time.Hour)
	charged, err = h.interest.ApplyMonthlyCreditInterest(ctx, "2000000001")
	require.NoError(t, err)
	assert.True(t, charged.IsZero())
	requireMoney(t, "408.00", h.account(t, "2000000001").DrawnAmount())

	h.clock.Set(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	charged, err = h.interest.ApplyMonthlyCreditInterest(ctx, "2000000001")
	require.NoError(t, err)
	requireMoney(t, "8.16", charged)

	history := h.history(t, "2000000001")
	require.Len(t, history, 3)
	assert.Equal(t, domain.TransactionTypeFee, history[1].Type())
	assert.Equal(t, domain.TransactionTypeFee, history[2].Type())
	h.requireLedgerConsistent(t, "2000000001")
	assert.Equal(t, 2.0, counterValue(t, h.registry, "bank_ledger_interest_applied_total", map[string]string{"kind": "credit"}))
}

func TestInterestService_CreditInterestNothingDrawn(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, "2000000001", creditTerms("1000.00", "0.02"), "0")

	charged, err := h.interest.ApplyMonthlyCreditInterest(context.Background(), "2000000001")

	require.NoError(t, err)
	assert.True(t, charged.IsZero())
	assert.Empty(t, h.history(t, "2000000001"))
	assert.Nil(t, h.account(t, "2000000001").Terms.(domain.CreditTerms).LastInterestApplied)
}

func TestInterestService_CreditInterestBeyondHeadroomIsNotStamped(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, "2000000001", creditTerms("500.00", "0.10"), "0")

	_, err := h.withdraw("2000000001", "500.00")
	require.NoError(t, err)

	_, err = h.interest.ApplyMonthlyCreditInterest(context.Background(), "2000000001")

	require.ErrorIs(t, err, domain.ErrCreditLimitExceeded)
	account := h.account(t, "2000000001")
	requireMoney(t, "500.00", account.DrawnAmount())
	assert.Nil(t, account.Terms.(domain.CreditTerms).LastInterestApplied)
}

func TestInterestService_AnnualSavingsInterestOncePerYear(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "3000000001", savingsTerms("0.05"), "1000.00")

	paid, err := h.interest.ApplyAnnualSavingsInterest(ctx, "3000000001")
	require.NoError(t, err)
	requireMoney(t, "50.00", paid)

	h.clock.Set(time.Date(2026, time.December, 31, 23, 59, 0, 0, time.UTC))
	paid, err = h.interest.ApplyAnnualSavingsInterest(ctx, "3000000001")
	require.NoError(t, err)
	assert.True(t, paid.IsZero())
	requireMoney(t, "1050.00", h.account(t, "3000000001").AvailableBalance)

	h.clock.Set(time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC))
	paid, err = h.interest.ApplyAnnualSavingsInterest(ctx, "3000000001")
	require.NoError(t, err)
	requireMoney(t, "52.50", paid)

	history := h.history(t, "3000000001")
	require.Len(t, history, 2)
	assert.Equal(t, domain.TransactionTypeDeposit, history[0].Type())
	assert.Equal(t, "Annual savings interest", history[0].Description())
	h.requireLedgerConsistent(t, "3000000001")
}

func TestInterestService_RoundsOnce(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, "3000000001", savingsTerms("0.0333"), "100.15")

	paid, err := h.interest.ApplyAnnualSavingsInterest(context.Background(), "3000000001")

	require.NoError(t, err)
	// 100.15 * 0.0333 = 3.334995
	requireMoney(t, "3.33", paid)
}

func TestInterestService_WrongAccountType(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "1000000001", domain.CheckingTerms{}, "100.00")
	h.seedAccount(t, "3000000001", savingsTerms("0.05"), "100.00")

	_, err := h.interest.ApplyMonthlyCreditInterest(ctx, "1000000001")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = h.interest.ApplyMonthlyCreditInterest(ctx, "3000000001")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = h.interest.ApplyAnnualSavingsInterest(ctx, "9999999999")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
