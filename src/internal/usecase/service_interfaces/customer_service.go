package service_interfaces

import (
	"context"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/commons"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (commons.Response[models.CreateCustomerResponse], error)
	GetCustomer(ctx context.Context, id string) (commons.Response[models.GetCustomerResponse], error)
	VerifyTransactionPin(ctx context.Context, customerID string, pin string) (commons.Response[models.VerifyPinResponse], error)
}
