package repo_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

type TransactionRepository interface {
	Insert(ctx context.Context, txn domain.Transaction) error
	// GetByAccount returns every transaction touching the account, oldest first.
	GetByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error)
	GetAll(ctx context.Context) ([]domain.Transaction, error)
}
