package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

const (
	InterestKindCredit  = "credit"
	InterestKindSavings = "savings"

	creditInterestDescription  = "Monthly credit interest"
	savingsInterestDescription = "Annual savings interest"
)

// InterestService posts periodic interest through the execution engine, so every
// accrual is a recorded transaction committed together with the eligibility stamp.
type InterestService struct {
	engine *TransactionService
}

var _ service_interfaces.InterestService = (*InterestService)(nil)

func NewInterestService(engine *TransactionService) *InterestService {
	return &InterestService{engine: engine}
}

// ApplyMonthlyCreditInterest charges interest on the drawn amount at most once per
// calendar month. It returns the amount charged, zero when nothing was due.
func (s *InterestService) ApplyMonthlyCreditInterest(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	return s.apply(ctx, strings.TrimSpace(accountNumber), InterestKindCredit)
}

// ApplyAnnualSavingsInterest pays interest on the balance at most once per calendar year.
func (s *InterestService) ApplyAnnualSavingsInterest(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	return s.apply(ctx, strings.TrimSpace(accountNumber), InterestKindSavings)
}

func (s *InterestService) apply(ctx context.Context, accountNumber string, kind string) (decimal.Decimal, error) {
	logger.Info("interest service apply request", logger.Fields{
		"accountNumber": accountNumber,
		"kind":          kind,
	})

	unlock := s.engine.locks.Lock(accountNumber)
	defer unlock()

	account, err := s.engine.loadActiveAccount(ctx, accountNumber)
	if err != nil {
		logger.Error("interest service load account failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return decimal.Zero, err
	}

	now := s.engine.clock.Now()
	txn, err := s.accrual(account, kind, now)
	if err != nil {
		return decimal.Zero, err
	}
	if txn == nil {
		logger.Info("interest service nothing due", logger.Fields{
			"accountNumber": accountNumber,
			"kind":          kind,
		})
		return decimal.Zero, nil
	}

	_, err = s.engine.executeLocked(ctx, *txn, executeOptions{
		stamp: func(a *domain.Account) { a.StampInterest(now) },
	})
	if err != nil {
		logger.Error("interest service post failed", err, logger.Fields{
			"accountNumber": accountNumber,
			"kind":          kind,
			"amount":        domain.FormatMoney(txn.Amount()),
		})
		return decimal.Zero, err
	}

	s.engine.metrics.InterestApplied(kind)
	logger.Info("interest service apply success", logger.Fields{
		"accountNumber":     accountNumber,
		"kind":              kind,
		"transactionNumber": txn.Number(),
		"amount":            domain.FormatMoney(txn.Amount()),
	})

	return txn.Amount(), nil
}

// accrual builds the interest transaction, or nil when the account is outside its
// eligibility window or the computed interest is not positive.
func (s *InterestService) accrual(account domain.Account, kind string, now time.Time) (*domain.Transaction, error) {
	var (
		txn domain.Transaction
		err error
	)

	switch t := account.Terms.(type) {
	case domain.CreditTerms:
		if kind != InterestKindCredit {
			return nil, wrongAccountType(account, kind)
		}
		if !eligibleSince(t.LastInterestApplied, domain.MonthStart(now)) || !t.InterestRate.IsPositive() {
			return nil, nil
		}
		interest := domain.ApplyRate(account.DrawnAmount(), t.InterestRate)
		if !interest.IsPositive() {
			return nil, nil
		}
		txn, err = s.engine.factory.Fee(account.AccountNumber, creditInterestDescription, interest)
	case domain.SavingsTerms:
		if kind != InterestKindSavings {
			return nil, wrongAccountType(account, kind)
		}
		if !eligibleSince(t.LastInterestApplied, domain.YearStart(now)) || !t.AnnualInterestRate.IsPositive() {
			return nil, nil
		}
		interest := domain.ApplyRate(account.AvailableBalance, t.AnnualInterestRate)
		if !interest.IsPositive() {
			return nil, nil
		}
		txn, err = s.engine.factory.Deposit(account.AccountNumber, savingsInterestDescription, interest)
	case domain.CheckingTerms, domain.CurrencyTerms:
		return nil, wrongAccountType(account, kind)
	default:
		return nil, wrongAccountType(account, kind)
	}

	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// eligibleSince reports whether interest was never applied or last applied before periodStart.
func eligibleSince(lastApplied *time.Time, periodStart time.Time) bool {
	return lastApplied == nil || lastApplied.Before(periodStart)
}

func wrongAccountType(account domain.Account, kind string) error {
	return fmt.Errorf("%w: %s interest does not apply to %s account %s",
		domain.ErrInvalidArgument, kind, account.Type(), account.AccountNumber)
}
