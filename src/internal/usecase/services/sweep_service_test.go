package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/usecase/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepService_LowBalanceAlertsOncePerEpisode(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "1000000001", domain.CheckingTerms{}, "50.00")
	h.seedAccount(t, "1000000002", domain.CheckingTerms{}, "500.00")

	report, err := h.sweeps.RunLowBalanceSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Affected)
	assert.True(t, h.account(t, "1000000001").LowBalanceAlertSent)
	assert.False(t, h.account(t, "1000000002").LowBalanceAlertSent)

	_, err = h.sweeps.RunLowBalanceSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.notifier.count(domain.NotificationLowBalance))

	h.deposit(t, "1000000001", "50.00")
	_, err = h.sweeps.RunLowBalanceSweep(ctx)
	require.NoError(t, err)
	assert.False(t, h.account(t, "1000000001").LowBalanceAlertSent)
	assert.Equal(t, 1, h.notifier.count(domain.NotificationLowBalance))

	_, err = h.withdraw("1000000001", "60.00")
	require.NoError(t, err)
	_, err = h.sweeps.RunLowBalanceSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, h.notifier.count(domain.NotificationLowBalance))
	assert.Equal(t, "cust-1000000001", h.notifier.sent[1].recipient)
}

func TestSweepService_LowBalanceUsesCreditHeadroom(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, "2000000001", creditTerms("500.00", "0"), "0")

	_, err := h.withdraw("2000000001", "450.00")
	require.NoError(t, err)

	report, err := h.sweeps.RunLowBalanceSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Affected)
	assert.True(t, h.account(t, "2000000001").LowBalanceAlertSent)
}

func TestSweepService_NotificationFailureDoesNotAbort(t *testing.T) {
	h := newHarness(t)
	h.notifier.err = errors.New("smtp down")
	h.seedAccount(t, "1000000001", domain.CheckingTerms{}, "10.00")
	h.seedAccount(t, "1000000002", domain.CheckingTerms{}, "20.00")

	report, err := h.sweeps.RunLowBalanceSweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Affected)
	assert.Equal(t, 0, report.Failures)
	assert.True(t, h.account(t, "1000000001").LowBalanceAlertSent)
	assert.True(t, h.account(t, "1000000002").LowBalanceAlertSent)
	assert.Equal(t, 2.0, counterValue(t, h.registry, "bank_ledger_notifications_total", map[string]string{
		"kind":   string(domain.NotificationLowBalance),
		"result": "failed",
	}))
}

func TestSweepService_InactivityClosure(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	longAgo := testNow.AddDate(-2, 0, 0)

	h.seedAccountOpenedAt(t, "4000000001", currencyTerms("EUR"), "0", longAgo)
	h.seedAccountOpenedAt(t, "4000000002", currencyTerms("GBP"), "0", longAgo)
	h.seedAccountOpenedAt(t, "4000000003", currencyTerms("USD"), "0", testNow.AddDate(0, -3, 0))
	h.seedAccountOpenedAt(t, "1000000001", domain.CheckingTerms{}, "0", longAgo)

	h.clock.Set(testNow.AddDate(0, -2, 0))
	h.deposit(t, "4000000002", "10.00")
	h.clock.Set(testNow)

	report, err := h.sweeps.RunInactivityClosureSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Affected)

	assert.Equal(t, domain.AccountStatusClosed, h.account(t, "4000000001").Status)
	assert.Equal(t, domain.AccountStatusActive, h.account(t, "4000000002").Status)
	assert.Equal(t, domain.AccountStatusActive, h.account(t, "4000000003").Status)
	assert.Equal(t, domain.AccountStatusActive, h.account(t, "1000000001").Status)
	assert.Equal(t, 1, h.notifier.count(domain.NotificationAccountClosedInactivity))

	report, err = h.sweeps.RunInactivityClosureSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Affected)
	assert.Equal(t, 1, h.notifier.count(domain.NotificationAccountClosedInactivity))
}

func TestSweepService_LastActivity(t *testing.T) {
	opened := testNow.AddDate(-1, 0, 0)
	active := testNow.AddDate(0, -1, 0)
	account, err := domain.NewAccount("4000000001", "cust", domain.CurrencyTerms{CurrencyCode: "EUR", LastActiveDate: &active}, opened)
	require.NoError(t, err)

	assert.True(t, services.LastActivity(account, nil).Equal(active))

	later := testNow.AddDate(0, 0, -1)
	txn, err := domain.NewDeposit("T1", "", later, money("1"), "4000000001")
	require.NoError(t, err)
	other, err := domain.NewDeposit("T2", "", testNow, money("1"), "4000000009")
	require.NoError(t, err)
	assert.True(t, services.LastActivity(account, []domain.Transaction{txn, other}).Equal(later))
}

func TestSweepService_SuspiciousLargeTransactionAlertsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "1000000001", domain.CheckingTerms{}, "20000.00")
	h.seedAccount(t, "1000000002", domain.CheckingTerms{}, "0")

	_, err := h.withdraw("1000000001", "5000.00")
	require.NoError(t, err)
	_, err = h.transfer("1000000001", "1000000002", "4999.99")
	require.NoError(t, err)
	h.deposit(t, "1000000002", "9000.00")

	h.clock.Advance(time.Second)
	report, err := h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Affected)
	assert.Equal(t, 1, h.notifier.count(domain.NotificationSuspiciousLargeTransaction))
	assert.Equal(t, "cust-1000000001", h.notifier.sent[0].recipient)

	h.clock.Advance(time.Second)
	_, err = h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.notifier.count(domain.NotificationSuspiciousLargeTransaction))

	h.clock.Advance(time.Second)
	_, err = h.transfer("1000000001", "1000000002", "6000.00")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	_, err = h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, h.notifier.count(domain.NotificationSuspiciousLargeTransaction))
}

func TestSweepService_SuspiciousScanCatchesLateAndBackdatedCommits(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "1000000001", domain.CheckingTerms{}, "30000.00")

	source := "1000000001"
	late, err := h.factory.Create(domain.TransactionTypeWithdrawal, "", nil, money("9000.00"), &source, nil)
	require.NoError(t, err)

	h.clock.Advance(time.Second)
	_, err = h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, h.notifier.count(domain.NotificationSuspiciousLargeTransaction))

	_, err = h.engine.Execute(ctx, late)
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	report, err := h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Affected)
	assert.Equal(t, 1, h.notifier.count(domain.NotificationSuspiciousLargeTransaction))

	lastWeek := h.clock.Now().AddDate(0, 0, -7)
	backdated, err := h.factory.Create(domain.TransactionTypeWithdrawal, "", &lastWeek, money("7000.00"), &source, nil)
	require.NoError(t, err)
	_, err = h.engine.Execute(ctx, backdated)
	require.NoError(t, err)

	h.clock.Advance(time.Minute)
	_, err = h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, h.notifier.count(domain.NotificationSuspiciousLargeTransaction))
}

func TestSweepService_SuspiciousScanDoesNotRepeatAcrossInstances(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "1000000001", domain.CheckingTerms{}, "20000.00")

	_, err := h.withdraw("1000000001", "8000.00")
	require.NoError(t, err)
	h.clock.Advance(time.Second)
	_, err = h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, h.notifier.count(domain.NotificationSuspiciousLargeTransaction))

	rerun := &recordingNotifier{}
	next := services.NewSweepService(h.store, h.store, h.store, h.interest, rerun, h.clock, nil, nil, services.SweepPolicy{
		LowBalanceThreshold:       money("100.00"),
		LargeTransactionThreshold: money("5000.00"),
		VelocityLimit:             10,
		VelocityWindow:            60 * time.Second,
		InactivityPeriodMonths:    12,
	})

	h.clock.Advance(time.Hour)
	report, err := next.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Affected)
	assert.Equal(t, 0, rerun.count(domain.NotificationSuspiciousLargeTransaction))
}

func TestSweepService_SuspiciousVelocity(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "3000000001", savingsTerms("0"), "0")
	h.seedAccount(t, "3000000002", savingsTerms("0"), "0")

	for i := 0; i < 11; i++ {
		h.deposit(t, "3000000001", "1.00")
		h.clock.Advance(2 * time.Second)
	}
	for i := 0; i < 10; i++ {
		h.deposit(t, "3000000002", "1.00")
	}

	report, err := h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Affected)
	assert.Equal(t, 21, report.Scanned)
	require.Equal(t, 1, h.notifier.count(domain.NotificationSuspiciousVelocity))
	assert.Equal(t, "cust-3000000001", h.notifier.sent[0].recipient)

	_, err = h.sweeps.RunSuspiciousActivityScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.notifier.count(domain.NotificationSuspiciousVelocity))
}

func TestSweepService_VelocityWindowIsTrailing(t *testing.T) {
	h := newHarness(t)
	h.seedAccount(t, "3000000001", savingsTerms("0"), "0")

	for i := 0; i < 11; i++ {
		h.deposit(t, "3000000001", "1.00")
		h.clock.Advance(10 * time.Second)
	}

	_, err := h.sweeps.RunSuspiciousActivityScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, h.notifier.count(domain.NotificationSuspiciousVelocity))
}

func TestSweepService_InterestSweeps(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seedAccount(t, "2000000001", creditTerms("1000.00", "0.01"), "0")
	h.seedAccount(t, "2000000002", creditTerms("1000.00", "0.01"), "0")
	h.seedAccount(t, "3000000001", savingsTerms("0.10"), "200.00")
	h.seedAccount(t, "1000000001", domain.CheckingTerms{}, "200.00")

	_, err := h.withdraw("2000000001", "100.00")
	require.NoError(t, err)

	report, err := h.sweeps.RunCreditInterestSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, services.JobCreditInterest, report.Job)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Affected)
	requireMoney(t, "101.00", h.account(t, "2000000001").DrawnAmount())

	report, err = h.sweeps.RunSavingsInterestSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 1, report.Affected)
	requireMoney(t, "220.00", h.account(t, "3000000001").AvailableBalance)

	report, err = h.sweeps.RunSavingsInterestSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Affected)
	requireMoney(t, "220.00", h.account(t, "3000000001").AvailableBalance)
}
