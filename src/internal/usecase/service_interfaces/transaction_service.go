package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
)

// TransactionService is the caller-facing execution API.
type TransactionService interface {
	ExecuteTransaction(ctx context.Context, txn domain.Transaction) error
	Execute(ctx context.Context, txn domain.Transaction) (domain.ExecutionResult, error)
	PostTransaction(ctx context.Context, req models.PostTransactionRequest) (commons.Response[models.PostTransactionResponse], error)
}
