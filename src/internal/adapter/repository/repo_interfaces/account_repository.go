package repo_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/domain"
)

type AccountRepository interface {
	GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	GetAllActive(ctx context.Context) ([]domain.Account, error)
	GetByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error)
	// Upsert inserts a new account (Version 0) or updates one whose stored version matches.
	Upsert(ctx context.Context, account domain.Account) (domain.Account, error)
	Remove(ctx context.Context, accountNumber string) error
}
