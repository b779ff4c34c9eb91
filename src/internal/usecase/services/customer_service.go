package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type CustomerService struct {
	customerRepo repo_interfaces.CustomerRepository
	clock        domain.Clock
	pinCost      int
}

var _ PinVerifier = (*CustomerService)(nil)
var _ service_interfaces.CustomerService = (*CustomerService)(nil)

// NewCustomerService hashes PINs with pinCost; zero selects bcrypt.DefaultCost.
func NewCustomerService(customerRepo repo_interfaces.CustomerRepository, clock domain.Clock, pinCost int) *CustomerService {
	if pinCost == 0 {
		pinCost = bcrypt.DefaultCost
	}
	return &CustomerService{
		customerRepo: customerRepo,
		clock:        clock,
		pinCost:      pinCost,
	}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (commons.Response[models.CreateCustomerResponse], error) {
	logger.Info("customer service create customer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("customer service create customer validation failed", err, nil)
		return commons.ErrorResponse[models.CreateCustomerResponse]("validation failed", err.Error()), err
	}

	dob, _ := time.Parse("2006-01-02", strings.TrimSpace(req.DOB))
	idType, _ := domain.ParseIDType(req.IDType)

	var middleName *string
	if trimmed := strings.TrimSpace(req.MiddleName); trimmed != "" {
		middleName = &trimmed
	}

	hashedPin, err := s.hashTransactionPin(strings.TrimSpace(req.TransactionPin))
	if err != nil {
		logger.Error("customer service create customer hash pin failed", err, nil)
		return commons.ErrorResponse[models.CreateCustomerResponse]("failed to create customer", "failed to hash transaction pin"), err
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:                 uuid.NewString(),
		FirstName:          strings.TrimSpace(req.FirstName),
		MiddleName:         middleName,
		LastName:           strings.TrimSpace(req.LastName),
		DOB:                dob,
		Email:              strings.TrimSpace(req.Email),
		PhoneNumber:        strings.TrimSpace(req.PhoneNumber),
		IDType:             idType,
		IDNumber:           strings.TrimSpace(req.IDNumber),
		TransactionPinHash: hashedPin,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	created, err := s.customerRepo.Create(ctx, customer)
	if err != nil {
		logger.Error("customer service create customer repository failed", err, logger.Fields{
			"customerId": customer.ID,
		})
		return commons.ErrorResponse[models.CreateCustomerResponse]("failed to create customer", "Unable to create customer right now"), err
	}

	response := models.CreateCustomerResponse{
		ID:        created.ID,
		FirstName: created.FirstName,
		LastName:  created.LastName,
	}

	logger.Info("customer service create customer success", logger.Fields{
		"customerId": response.ID,
	})

	return commons.SuccessResponse("customer created successfully", response), nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (commons.Response[models.GetCustomerResponse], error) {
	logger.Info("customer service get customer request", logger.Fields{
		"customerId": id,
	})

	id = strings.TrimSpace(id)
	if id == "" {
		err := fmt.Errorf("%w: id is required", domain.ErrInvalidArgument)
		return commons.ErrorResponse[models.GetCustomerResponse]("validation failed", "id is required"), err
	}

	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		logger.Error("customer service get customer failed", err, logger.Fields{
			"customerId": id,
		})
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.GetCustomerResponse]("Customer not found"), err
		}
		return commons.ErrorResponse[models.GetCustomerResponse]("failed to get customer", "Unable to fetch customer right now"), err
	}

	response := models.GetCustomerResponse{
		ID:          customer.ID,
		FirstName:   customer.FirstName,
		MiddleName:  customer.MiddleName,
		LastName:    customer.LastName,
		DOB:         customer.DOB.Format("2006-01-02"),
		Email:       customer.Email,
		PhoneNumber: customer.PhoneNumber,
		IDType:      string(customer.IDType),
		IDNumber:    customer.IDNumber,
		CreatedAt:   customer.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   customer.UpdatedAt.Format(time.RFC3339),
	}

	return commons.SuccessResponse("customer fetched successfully", response), nil
}

func (s *CustomerService) VerifyTransactionPin(ctx context.Context, customerID string, pin string) (commons.Response[models.VerifyPinResponse], error) {
	logger.Info("customer service verify pin request", logger.Fields{
		"payload": logger.SanitizePayload(map[string]string{
			"customerId": customerID,
			"pin":        pin,
		}),
	})

	customerID = strings.TrimSpace(customerID)
	if customerID == "" || strings.TrimSpace(pin) == "" {
		err := fmt.Errorf("%w: customerId and pin are required", domain.ErrInvalidArgument)
		return commons.ErrorResponse[models.VerifyPinResponse]("validation failed", "customerId and pin are required"), err
	}

	if err := s.CheckTransactionPin(ctx, customerID, pin); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidPin):
			return commons.ErrorResponse[models.VerifyPinResponse]("invalid pin", "provided pin does not match"), err
		case errors.Is(err, domain.ErrRecordNotFound):
			return commons.ErrorResponse[models.VerifyPinResponse]("Customer not found"), err
		default:
			return commons.ErrorResponse[models.VerifyPinResponse]("failed to verify pin", "Unable to verify pin right now"), err
		}
	}

	logger.Info("customer service verify pin success", logger.Fields{
		"customerId": customerID,
	})

	return commons.SuccessResponse("pin verified successfully", models.VerifyPinResponse{
		CustomerID: customerID,
		IsValidPin: true,
	}), nil
}

// CheckTransactionPin compares pin against the stored bcrypt hash.
func (s *CustomerService) CheckTransactionPin(ctx context.Context, customerID string, pin string) error {
	storedPinHash, err := s.customerRepo.GetTransactionPinHash(ctx, strings.TrimSpace(customerID))
	if err != nil {
		logger.Error("customer service pin lookup failed", err, logger.Fields{
			"customerId": customerID,
		})
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedPinHash), []byte(strings.TrimSpace(pin))); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Info("customer service verify pin mismatch", logger.Fields{
				"customerId": customerID,
			})
			return domain.ErrInvalidPin
		}
		return fmt.Errorf("verify transaction pin: %w", err)
	}
	return nil
}

func (s *CustomerService) hashTransactionPin(pin string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin), s.pinCost)
	if err != nil {
		return "", fmt.Errorf("hash transaction pin: %w", err)
	}

	return string(hashed), nil
}
