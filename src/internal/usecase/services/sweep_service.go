package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/metrics"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

const (
	JobInactivityClosure = "inactivity-closure"
	JobLowBalance        = "low-balance"
	JobSuspiciousScan    = "suspicious-activity"
	JobCreditInterest    = "credit-interest"
	JobSavingsInterest   = "savings-interest"
)

type SweepPolicy struct {
	LowBalanceThreshold       decimal.Decimal
	LargeTransactionThreshold decimal.Decimal
	VelocityLimit             int
	VelocityWindow            time.Duration
	InactivityPeriodMonths    int
}

// SweepService runs the periodic back-office jobs. Jobs are triggered from outside;
// nothing here schedules itself.
type SweepService struct {
	accountRepo repo_interfaces.AccountRepository
	txnRepo     repo_interfaces.TransactionRepository
	alerts      repo_interfaces.AlertRepository
	interest    *InterestService
	notifier    domain.Notifier
	clock       domain.Clock
	locks       *AccountLocks
	metrics     *metrics.Metrics
	policy      SweepPolicy

	scanMu sync.Mutex
}

var _ service_interfaces.SweepService = (*SweepService)(nil)

func NewSweepService(
	accountRepo repo_interfaces.AccountRepository,
	txnRepo repo_interfaces.TransactionRepository,
	alerts repo_interfaces.AlertRepository,
	interest *InterestService,
	notifier domain.Notifier,
	clock domain.Clock,
	locks *AccountLocks,
	metrics *metrics.Metrics,
	policy SweepPolicy,
) *SweepService {
	if locks == nil {
		locks = NewAccountLocks()
	}
	return &SweepService{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		alerts:      alerts,
		interest:    interest,
		notifier:    notifier,
		clock:       clock,
		locks:       locks,
		metrics:     metrics,
		policy:      policy,
	}
}

// RunInactivityClosureSweep closes active currency accounts with no activity
// inside the inactivity period and notifies their owners.
func (s *SweepService) RunInactivityClosureSweep(ctx context.Context) (domain.SweepReport, error) {
	report := s.begin(JobInactivityClosure)

	accounts, err := s.accountRepo.GetAllActive(ctx)
	if err != nil {
		return s.abort(report, err)
	}

	cutoff := report.StartedAt.AddDate(0, -s.policy.InactivityPeriodMonths, 0)
	for _, account := range accounts {
		if account.Type() != domain.AccountTypeCurrency {
			continue
		}
		report.Scanned++

		closed, err := s.closeIfInactive(ctx, account.AccountNumber, cutoff)
		if err != nil {
			report.Failures++
			logger.Error("sweep service inactivity closure failed", err, logger.Fields{
				"accountNumber": account.AccountNumber,
			})
			continue
		}
		if closed {
			report.Affected++
		}
	}

	return s.finish(report), nil
}

func (s *SweepService) closeIfInactive(ctx context.Context, accountNumber string, cutoff time.Time) (bool, error) {
	unlock := s.locks.Lock(accountNumber)
	defer unlock()

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return false, err
	}
	if !account.IsActive() || account.Type() != domain.AccountTypeCurrency {
		return false, nil
	}

	history, err := s.txnRepo.GetByAccount(ctx, accountNumber)
	if err != nil {
		return false, err
	}
	lastActivity := LastActivity(account, history)
	if !lastActivity.Before(cutoff) {
		return false, nil
	}

	if err := account.CloseForInactivity(); err != nil {
		return false, err
	}
	account.UpdatedAt = s.clock.Now()
	if _, err := s.accountRepo.Upsert(ctx, account); err != nil {
		return false, err
	}

	logger.Info("sweep service account closed for inactivity", logger.Fields{
		"accountNumber": accountNumber,
		"customerId":    account.CustomerID,
		"lastActivity":  lastActivity,
	})

	s.notify(ctx, account.CustomerID, domain.NotificationAccountClosedInactivity,
		"Account closed",
		fmt.Sprintf("Your %s account %s was closed after no activity since %s.",
			account.Terms.(domain.CurrencyTerms).CurrencyCode, accountNumber, lastActivity.Format("2006-01-02")),
	)
	return true, nil
}

// LastActivity is the latest of the opening date, the recorded last active date and
// the newest transaction touching the account.
func LastActivity(account domain.Account, history []domain.Transaction) time.Time {
	last := account.OpenedDate
	if t, ok := account.Terms.(domain.CurrencyTerms); ok && t.LastActiveDate != nil && t.LastActiveDate.After(last) {
		last = *t.LastActiveDate
	}
	for _, txn := range history {
		if txn.Touches(account.AccountNumber) && txn.Date().After(last) {
			last = txn.Date()
		}
	}
	return last
}

// RunLowBalanceSweep alerts once per drop below the threshold and re-arms the
// alert when funds recover to the threshold or above.
func (s *SweepService) RunLowBalanceSweep(ctx context.Context) (domain.SweepReport, error) {
	report := s.begin(JobLowBalance)

	accounts, err := s.accountRepo.GetAllActive(ctx)
	if err != nil {
		return s.abort(report, err)
	}

	for _, account := range accounts {
		report.Scanned++

		alerted, err := s.checkLowBalance(ctx, account.AccountNumber)
		if err != nil {
			report.Failures++
			logger.Error("sweep service low balance check failed", err, logger.Fields{
				"accountNumber": account.AccountNumber,
			})
			continue
		}
		if alerted {
			report.Affected++
		}
	}

	return s.finish(report), nil
}

func (s *SweepService) checkLowBalance(ctx context.Context, accountNumber string) (bool, error) {
	unlock := s.locks.Lock(accountNumber)
	defer unlock()

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return false, err
	}
	if !account.IsActive() {
		return false, nil
	}

	funds := account.AvailableFunds()
	below := funds.LessThan(s.policy.LowBalanceThreshold)

	switch {
	case below && !account.LowBalanceAlertSent:
		account.LowBalanceAlertSent = true
	case !below && account.LowBalanceAlertSent:
		account.LowBalanceAlertSent = false
	default:
		return false, nil
	}

	account.UpdatedAt = s.clock.Now()
	if _, err := s.accountRepo.Upsert(ctx, account); err != nil {
		return false, err
	}

	if !below {
		logger.Info("sweep service low balance alert cleared", logger.Fields{
			"accountNumber": accountNumber,
		})
		return false, nil
	}

	s.notify(ctx, account.CustomerID, domain.NotificationLowBalance,
		"Low balance",
		fmt.Sprintf("Available funds on account %s are %s, below %s.",
			accountNumber, domain.FormatMoney(funds), domain.FormatMoney(s.policy.LowBalanceThreshold)),
	)
	return true, nil
}

// RunSuspiciousActivityScan flags large debits and bursts of activity. Raised alerts
// are recorded through the alert repository, so every large transaction is reported
// once whenever it was committed, and a burst is reported again only when a newer
// transaction joins it.
func (s *SweepService) RunSuspiciousActivityScan(ctx context.Context) (domain.SweepReport, error) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()

	report := s.begin(JobSuspiciousScan)
	now := report.StartedAt

	txns, err := s.txnRepo.GetAll(ctx)
	if err != nil {
		return s.abort(report, err)
	}

	windowStart := now.Add(-s.policy.VelocityWindow)
	window := make(map[string][]domain.Transaction)
	owners := make(map[string]string)
	flagged := make(map[string]struct{})

	for _, txn := range txns {
		report.Scanned++

		if s.isLarge(txn) {
			raised, err := s.raise(ctx, owners, largeAlertKey(txn), txn.SourceAccount(),
				domain.NotificationSuspiciousLargeTransaction,
				"Large transaction",
				fmt.Sprintf("A %s of %s was made from account %s.",
					txn.Type().DisplayName(), domain.FormatMoney(txn.Amount()), txn.SourceAccount()),
			)
			if err != nil {
				report.Failures++
				logger.Error("sweep service suspicious scan large transaction alert failed", err, logger.Fields{
					"accountNumber":     txn.SourceAccount(),
					"transactionNumber": txn.Number(),
				})
			} else if raised {
				flagged[txn.SourceAccount()] = struct{}{}
			}
		}

		if !txn.Date().Before(windowStart) && !txn.Date().After(now) {
			for _, number := range txn.AccountNumbers() {
				window[number] = append(window[number], txn)
			}
		}
	}

	numbers := make([]string, 0, len(window))
	for number := range window {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	for _, number := range numbers {
		recent := window[number]
		if len(recent) <= s.policy.VelocityLimit {
			continue
		}
		raised, err := s.raise(ctx, owners, velocityAlertKey(number, recent), number,
			domain.NotificationSuspiciousVelocity,
			"Unusual activity",
			fmt.Sprintf("Account %s had %d transactions in the last %s.", number, len(recent), s.policy.VelocityWindow),
		)
		if err != nil {
			report.Failures++
			logger.Error("sweep service suspicious scan velocity alert failed", err, logger.Fields{
				"accountNumber": number,
			})
			continue
		}
		if raised {
			flagged[number] = struct{}{}
		}
	}

	report.Affected = len(flagged)
	return s.finish(report), nil
}

// raise notifies the owner of accountNumber unless an alert under key was raised before.
func (s *SweepService) raise(
	ctx context.Context,
	owners map[string]string,
	key string,
	accountNumber string,
	kind domain.NotificationKind,
	title string,
	body string,
) (bool, error) {
	recipient, err := s.ownerOf(ctx, owners, accountNumber)
	if err != nil {
		return false, err
	}
	fresh, err := s.alerts.MarkRaised(ctx, key, accountNumber, s.clock.Now())
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}
	s.notify(ctx, recipient, kind, title, body)
	return true, nil
}

func largeAlertKey(txn domain.Transaction) string {
	return "large:" + txn.Number()
}

// velocityAlertKey names a burst by its newest transaction. recent is oldest first.
func velocityAlertKey(accountNumber string, recent []domain.Transaction) string {
	return "velocity:" + accountNumber + ":" + recent[len(recent)-1].Number()
}

func (s *SweepService) isLarge(txn domain.Transaction) bool {
	switch txn.Type() {
	case domain.TransactionTypeWithdrawal, domain.TransactionTypeTransfer:
		return txn.HasSource() && txn.Amount().GreaterThanOrEqual(s.policy.LargeTransactionThreshold)
	case domain.TransactionTypeDeposit, domain.TransactionTypeFee:
		return false
	default:
		return false
	}
}

func (s *SweepService) ownerOf(ctx context.Context, cache map[string]string, accountNumber string) (string, error) {
	if owner, ok := cache[accountNumber]; ok {
		return owner, nil
	}
	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return "", err
	}
	cache[accountNumber] = account.CustomerID
	return account.CustomerID, nil
}

// RunCreditInterestSweep applies monthly interest to every active credit account.
func (s *SweepService) RunCreditInterestSweep(ctx context.Context) (domain.SweepReport, error) {
	return s.runInterestSweep(ctx, JobCreditInterest, domain.AccountTypeCredit, s.interest.ApplyMonthlyCreditInterest)
}

// RunSavingsInterestSweep applies annual interest to every active savings account.
func (s *SweepService) RunSavingsInterestSweep(ctx context.Context) (domain.SweepReport, error) {
	return s.runInterestSweep(ctx, JobSavingsInterest, domain.AccountTypeSavings, s.interest.ApplyAnnualSavingsInterest)
}

func (s *SweepService) runInterestSweep(
	ctx context.Context,
	job string,
	accountType domain.AccountType,
	apply func(ctx context.Context, accountNumber string) (decimal.Decimal, error),
) (domain.SweepReport, error) {
	report := s.begin(job)

	accounts, err := s.accountRepo.GetAllActive(ctx)
	if err != nil {
		return s.abort(report, err)
	}

	for _, account := range accounts {
		if account.Type() != accountType {
			continue
		}
		report.Scanned++

		amount, err := apply(ctx, account.AccountNumber)
		if err != nil {
			report.Failures++
			continue
		}
		if amount.IsPositive() {
			report.Affected++
		}
	}

	return s.finish(report), nil
}

func (s *SweepService) notify(ctx context.Context, recipient string, kind domain.NotificationKind, title string, body string) {
	err := s.notifier.Notify(ctx, recipient, kind, title, body)
	s.metrics.Notification(string(kind), err == nil)
	if err != nil {
		logger.Error("sweep service notification failed", err, logger.Fields{
			"recipient": recipient,
			"kind":      string(kind),
		})
	}
}

func (s *SweepService) begin(job string) domain.SweepReport {
	logger.Info("sweep service job started", logger.Fields{"job": job})
	return domain.SweepReport{Job: job, StartedAt: s.clock.Now()}
}

func (s *SweepService) finish(report domain.SweepReport) domain.SweepReport {
	report.FinishedAt = s.clock.Now()
	s.metrics.SweepCompleted(report.Job, report.FinishedAt.Sub(report.StartedAt), report.Affected)
	logger.Info("sweep service job finished", logger.Fields{
		"job":      report.Job,
		"scanned":  report.Scanned,
		"affected": report.Affected,
		"failures": report.Failures,
	})
	return report
}

func (s *SweepService) abort(report domain.SweepReport, err error) (domain.SweepReport, error) {
	report.FinishedAt = s.clock.Now()
	logger.Error("sweep service job aborted", err, logger.Fields{"job": report.Job})
	if errors.Is(err, domain.ErrPersistence) {
		return report, err
	}
	return report, fmt.Errorf("%w: %s: %w", domain.ErrPersistence, report.Job, err)
}
