package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
)

type AccountService interface {
	OpenAccount(ctx context.Context, req models.OpenAccountRequest) (commons.Response[models.AccountResponse], error)
	ApproveAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountActionResponse], error)
	RejectAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountActionResponse], error)
	CloseAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountActionResponse], error)
	GetAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error)
	ListCustomerAccounts(ctx context.Context, customerID string) (commons.Response[[]models.AccountResponse], error)
	GetStatement(ctx context.Context, accountNumber string) (commons.Response[models.StatementResponse], error)
	ReconcileAccount(ctx context.Context, accountNumber string) (commons.Response[models.ReconcileResponse], error)
}
