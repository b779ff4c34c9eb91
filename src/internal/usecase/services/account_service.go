package services

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
	"github.com/google/uuid"
)

const accountNumberAttempts = 5

// AccountService owns the account lifecycle: PENDING on request, ACTIVE on
// approval, CLOSED at zero balance. Money movement goes through TransactionService.
type AccountService struct {
	accountRepo      repo_interfaces.AccountRepository
	txnRepo          repo_interfaces.TransactionRepository
	customerRepo     repo_interfaces.CustomerRepository
	clock            domain.Clock
	locks            *AccountLocks
	newAccountNumber func() string
}

var _ service_interfaces.AccountService = (*AccountService)(nil)

func NewAccountService(
	accountRepo repo_interfaces.AccountRepository,
	txnRepo repo_interfaces.TransactionRepository,
	customerRepo repo_interfaces.CustomerRepository,
	clock domain.Clock,
	locks *AccountLocks,
) *AccountService {
	if locks == nil {
		locks = NewAccountLocks()
	}
	return &AccountService{
		accountRepo:      accountRepo,
		txnRepo:          txnRepo,
		customerRepo:     customerRepo,
		clock:            clock,
		locks:            locks,
		newAccountNumber: generateAccountNumber,
	}
}

// WithAccountNumberGenerator replaces the random account number source.
func (s *AccountService) WithAccountNumberGenerator(newAccountNumber func() string) *AccountService {
	if newAccountNumber != nil {
		s.newAccountNumber = newAccountNumber
	}
	return s
}

func (s *AccountService) OpenAccount(ctx context.Context, req models.OpenAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service open account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("account service open account validation failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	customerID := strings.TrimSpace(req.CustomerID)
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		logger.Error("account service open account customer lookup failed", err, logger.Fields{
			"customerId": customerID,
		})
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Customer not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to open account", "Unable to open account right now"), err
	}

	var (
		created domain.Account
		err     error
	)
	for attempt := 1; attempt <= accountNumberAttempts; attempt++ {
		var account domain.Account
		account, err = domain.NewAccount(s.newAccountNumber(), customerID, req.Terms(), s.clock.Now())
		if err != nil {
			return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
		}

		created, err = s.accountRepo.Upsert(ctx, account)
		if err == nil || !errors.Is(err, domain.ErrDuplicateRecord) {
			break
		}
		logger.Warn("account service open account number collision", logger.Fields{
			"accountNumber": account.AccountNumber,
			"attempt":       attempt,
		})
	}
	if err != nil {
		logger.Error("account service open account repository failed", err, logger.Fields{
			"customerId": customerID,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to open account", "Unable to open account right now"), err
	}

	logger.Info("account service open account success", logger.Fields{
		"accountNumber": created.AccountNumber,
		"customerId":    created.CustomerID,
		"accountType":   string(created.Type()),
	})

	return commons.SuccessResponse("account opened, pending approval", models.NewAccountResponse(created)), nil
}

func (s *AccountService) ApproveAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountActionResponse], error) {
	return s.transition(ctx, "approve", accountNumber, func(account *domain.Account) error {
		return account.Approve()
	})
}

func (s *AccountService) CloseAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountActionResponse], error) {
	return s.transition(ctx, "close", accountNumber, func(account *domain.Account) error {
		return account.Close()
	})
}

// RejectAccount discards a PENDING account request.
func (s *AccountService) RejectAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountActionResponse], error) {
	logger.Info("account service reject account request", logger.Fields{
		"accountNumber": accountNumber,
	})

	accountNumber = strings.TrimSpace(accountNumber)
	if err := validateAccountNumber(accountNumber); err != nil {
		return commons.ErrorResponse[models.AccountActionResponse]("validation failed", err.Error()), err
	}

	unlock := s.locks.Lock(accountNumber)
	defer unlock()

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return accountLookupFailure[models.AccountActionResponse]("reject", accountNumber, err)
	}
	if account.Status != domain.AccountStatusPending {
		err := fmt.Errorf("%w: cannot reject %s account", domain.ErrInvalidStateTransition, account.Status)
		return commons.ErrorResponse[models.AccountActionResponse]("invalid account state", err.Error()), err
	}

	if err := s.accountRepo.Remove(ctx, accountNumber); err != nil {
		logger.Error("account service reject account repository failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return commons.ErrorResponse[models.AccountActionResponse]("failed to reject account", "Unable to update account right now"), err
	}

	logger.Info("account service reject account success", logger.Fields{
		"accountNumber": accountNumber,
	})

	return commons.SuccessResponse("account request rejected", models.AccountActionResponse{
		AccountNumber: accountNumber,
		Status:        "REJECTED",
	}), nil
}

func (s *AccountService) transition(ctx context.Context, action string, accountNumber string, apply func(*domain.Account) error) (commons.Response[models.AccountActionResponse], error) {
	logger.Info("account service "+action+" account request", logger.Fields{
		"accountNumber": accountNumber,
	})

	accountNumber = strings.TrimSpace(accountNumber)
	if err := validateAccountNumber(accountNumber); err != nil {
		return commons.ErrorResponse[models.AccountActionResponse]("validation failed", err.Error()), err
	}

	unlock := s.locks.Lock(accountNumber)
	defer unlock()

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return accountLookupFailure[models.AccountActionResponse](action, accountNumber, err)
	}

	if err := apply(&account); err != nil {
		logger.Error("account service "+action+" account rejected", err, logger.Fields{
			"accountNumber": accountNumber,
			"status":        string(account.Status),
		})
		return commons.ErrorResponse[models.AccountActionResponse]("invalid account state", err.Error()), err
	}
	account.UpdatedAt = s.clock.Now()

	saved, err := s.accountRepo.Upsert(ctx, account)
	if err != nil {
		logger.Error("account service "+action+" account repository failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return commons.ErrorResponse[models.AccountActionResponse]("failed to "+action+" account", "Unable to update account right now"), err
	}

	logger.Info("account service "+action+" account success", logger.Fields{
		"accountNumber": saved.AccountNumber,
		"status":        string(saved.Status),
	})

	return commons.SuccessResponse("account updated successfully", models.AccountActionResponse{
		AccountNumber: saved.AccountNumber,
		Status:        string(saved.Status),
	}), nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountNumber string) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service get account request", logger.Fields{
		"accountNumber": accountNumber,
	})

	accountNumber = strings.TrimSpace(accountNumber)
	if err := validateAccountNumber(accountNumber); err != nil {
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return accountLookupFailure[models.AccountResponse]("get", accountNumber, err)
	}

	return commons.SuccessResponse("account fetched successfully", models.NewAccountResponse(account)), nil
}

// ListCustomerAccounts returns the customer's active accounts.
func (s *AccountService) ListCustomerAccounts(ctx context.Context, customerID string) (commons.Response[[]models.AccountResponse], error) {
	logger.Info("account service list customer accounts request", logger.Fields{
		"customerId": customerID,
	})

	customerID = strings.TrimSpace(customerID)
	if _, err := s.customerRepo.GetByID(ctx, customerID); err != nil {
		logger.Error("account service list customer accounts lookup failed", err, logger.Fields{
			"customerId": customerID,
		})
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[[]models.AccountResponse]("Customer not found"), err
		}
		return commons.ErrorResponse[[]models.AccountResponse]("failed to list accounts", "Unable to fetch accounts right now"), err
	}

	accounts, err := s.accountRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		logger.Error("account service list customer accounts failed", err, logger.Fields{
			"customerId": customerID,
		})
		return commons.ErrorResponse[[]models.AccountResponse]("failed to list accounts", "Unable to fetch accounts right now"), err
	}

	response := make([]models.AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		if account.IsActive() {
			response = append(response, models.NewAccountResponse(account))
		}
	}

	return commons.SuccessResponse("accounts fetched successfully", response), nil
}

func (s *AccountService) GetStatement(ctx context.Context, accountNumber string) (commons.Response[models.StatementResponse], error) {
	logger.Info("account service get statement request", logger.Fields{
		"accountNumber": accountNumber,
	})

	statement, err := s.statement(ctx, accountNumber)
	if err != nil {
		return statementFailure[models.StatementResponse](accountNumber, err)
	}

	return commons.SuccessResponse("statement fetched successfully", models.NewStatementResponse(statement)), nil
}

// ReconcileAccount replays the account's history and compares it with the stored balance.
func (s *AccountService) ReconcileAccount(ctx context.Context, accountNumber string) (commons.Response[models.ReconcileResponse], error) {
	logger.Info("account service reconcile account request", logger.Fields{
		"accountNumber": accountNumber,
	})

	accountNumber = strings.TrimSpace(accountNumber)
	if err := validateAccountNumber(accountNumber); err != nil {
		return commons.ErrorResponse[models.ReconcileResponse]("validation failed", err.Error()), err
	}

	unlock := s.locks.Lock(accountNumber)
	defer unlock()

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return accountLookupFailure[models.ReconcileResponse]("reconcile", accountNumber, err)
	}
	history, err := s.txnRepo.GetByAccount(ctx, accountNumber)
	if err != nil {
		return statementFailure[models.ReconcileResponse](accountNumber, err)
	}

	statement := domain.BuildStatement(account, history)
	response := models.ReconcileResponse{
		AccountNumber:    accountNumber,
		StoredBalance:    domain.FormatMoney(account.AvailableBalance),
		ReplayedBalance:  domain.FormatMoney(statement.ClosingBalance),
		TransactionCount: len(statement.Lines),
		Consistent:       true,
	}

	if err := domain.VerifyLedger(account, history); err != nil {
		response.Consistent = false
		logger.Error("account service reconcile account mismatch", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return commons.SuccessResponse("ledger mismatch detected", response), nil
	}

	return commons.SuccessResponse("ledger is consistent", response), nil
}

func (s *AccountService) statement(ctx context.Context, accountNumber string) (domain.Statement, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	if err := validateAccountNumber(accountNumber); err != nil {
		return domain.Statement{}, err
	}

	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return domain.Statement{}, err
	}
	history, err := s.txnRepo.GetByAccount(ctx, accountNumber)
	if err != nil {
		return domain.Statement{}, err
	}
	return domain.BuildStatement(account, history), nil
}

func accountLookupFailure[T any](action string, accountNumber string, err error) (commons.Response[T], error) {
	logger.Error("account service "+action+" account lookup failed", err, logger.Fields{
		"accountNumber": accountNumber,
	})
	if errors.Is(err, domain.ErrRecordNotFound) {
		return commons.ErrorResponse[T]("Account not found"), err
	}
	return commons.ErrorResponse[T]("failed to "+action+" account", "Unable to fetch account right now"), err
}

func statementFailure[T any](accountNumber string, err error) (commons.Response[T], error) {
	logger.Error("account service statement failed", err, logger.Fields{
		"accountNumber": accountNumber,
	})
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return commons.ErrorResponse[T]("validation failed", err.Error()), err
	case errors.Is(err, domain.ErrRecordNotFound):
		return commons.ErrorResponse[T]("Account not found"), err
	default:
		return commons.ErrorResponse[T]("failed to fetch statement", "Unable to fetch statement right now"), err
	}
}

// generateAccountNumber takes ten digits from a random UUID.
func generateAccountNumber() string {
	id := uuid.New()
	return fmt.Sprintf("%010d", binary.BigEndian.Uint64(id[:8])%10_000_000_000)
}

func validateAccountNumber(accountNumber string) error {
	if accountNumber == "" {
		return fmt.Errorf("%w: accountNumber is required", domain.ErrInvalidArgument)
	}
	if !isTenDigitAccountNumber(accountNumber) {
		return fmt.Errorf("%w: accountNumber must be exactly 10 digits", domain.ErrInvalidArgument)
	}
	return nil
}

func isTenDigitAccountNumber(accountNumber string) bool {
	if len(accountNumber) != 10 {
		return false
	}
	for _, ch := range accountNumber {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
