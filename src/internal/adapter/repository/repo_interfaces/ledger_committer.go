package repo_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

// LedgerCommitter stores account changes and the transactions that caused them as one unit.
// Either every account and transaction is written or none is. Each account's Version must
// match the stored version, otherwise the commit fails with domain.ErrConcurrentModification.
type LedgerCommitter interface {
	Commit(ctx context.Context, accounts []domain.Account, txns []domain.Transaction) ([]domain.Account, error)
}
