package services

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

// FeePolicy charges a flat fee on checking accounts once the monthly free
// allowance of withdrawals and outgoing transfers is used up.
type FeePolicy struct {
	txnRepo              repo_interfaces.TransactionRepository
	freeTransactionLimit int
	transactionFee       decimal.Decimal
}

func NewFeePolicy(txnRepo repo_interfaces.TransactionRepository, freeTransactionLimit int, transactionFee decimal.Decimal) *FeePolicy {
	return &FeePolicy{
		txnRepo:              txnRepo,
		freeTransactionLimit: freeTransactionLimit,
		transactionFee:       domain.RoundMoney(transactionFee),
	}
}

func (p *FeePolicy) TransactionFee() decimal.Decimal {
	return p.transactionFee
}

// Applies reports whether the account type is subject to the fee policy at all.
func (p *FeePolicy) Applies(account domain.Account) bool {
	switch account.Terms.(type) {
	case domain.CheckingTerms:
		return true
	case domain.SavingsTerms, domain.CreditTerms, domain.CurrencyTerms:
		return false
	default:
		return false
	}
}

// FeeDue reports whether applying txn against source makes a fee due. Chargeable
// transactions dated in at's calendar month are counted, txn included; the fee is
// due once that count exceeds the free allowance.
func (p *FeePolicy) FeeDue(ctx context.Context, source domain.Account, txn domain.Transaction, at time.Time) (bool, error) {
	if !p.Applies(source) || !txn.IsChargeable(source.AccountNumber) {
		return false, nil
	}

	history, err := p.txnRepo.GetByAccount(ctx, source.AccountNumber)
	if err != nil {
		return false, fmt.Errorf("load history for fee policy: %w", err)
	}

	count := 0
	for _, prior := range history {
		if prior.Number() == txn.Number() {
			continue
		}
		if prior.IsChargeable(source.AccountNumber) && domain.InMonth(prior.Date(), at) {
			count++
		}
	}
	if domain.InMonth(txn.Date(), at) {
		count++
	}

	return count > p.freeTransactionLimit, nil
}
