package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type InterestService interface {
	ApplyMonthlyCreditInterest(ctx context.Context, accountNumber string) (decimal.Decimal, error)
	ApplyAnnualSavingsInterest(ctx context.Context, accountNumber string) (decimal.Decimal, error)
}

// SweepService runs the batch jobs. Each job is idempotent within its own eligibility rules.
type SweepService interface {
	RunInactivityClosureSweep(ctx context.Context) (domain.SweepReport, error)
	RunLowBalanceSweep(ctx context.Context) (domain.SweepReport, error)
	RunSuspiciousActivityScan(ctx context.Context) (domain.SweepReport, error)
	RunCreditInterestSweep(ctx context.Context) (domain.SweepReport, error)
	RunSavingsInterestSweep(ctx context.Context) (domain.SweepReport, error)
}
