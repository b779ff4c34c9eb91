package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/commons"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/api-sage/bank-ledger/src/internal/metrics"
	"github.com/api-sage/bank-ledger/src/internal/usecase/service_interfaces"
)

const feeDescription = "Monthly transaction allowance exceeded"

// PinVerifier checks a customer's transaction PIN. It returns domain.ErrInvalidPin on mismatch.
type PinVerifier interface {
	CheckTransactionPin(ctx context.Context, customerID string, pin string) error
}

// TransactionService is the execution engine. Every call validates, applies and
// commits one transaction (plus any fee it triggers) while holding the locks of
// the accounts involved.
type TransactionService struct {
	accountRepo repo_interfaces.AccountRepository
	ledger      repo_interfaces.LedgerCommitter
	fees        *FeePolicy
	factory     *domain.TransactionFactory
	clock       domain.Clock
	locks       *AccountLocks
	metrics     *metrics.Metrics
	pins        PinVerifier
}

var _ service_interfaces.TransactionService = (*TransactionService)(nil)

func NewTransactionService(
	accountRepo repo_interfaces.AccountRepository,
	ledger repo_interfaces.LedgerCommitter,
	fees *FeePolicy,
	factory *domain.TransactionFactory,
	clock domain.Clock,
	locks *AccountLocks,
	metrics *metrics.Metrics,
	pins PinVerifier,
) *TransactionService {
	if locks == nil {
		locks = NewAccountLocks()
	}
	return &TransactionService{
		accountRepo: accountRepo,
		ledger:      ledger,
		fees:        fees,
		factory:     factory,
		clock:       clock,
		locks:       locks,
		metrics:     metrics,
		pins:        pins,
	}
}

type executeOptions struct {
	evaluateFees bool
	// stamp runs on every touched account after the balance change and before commit.
	stamp func(account *domain.Account)
}

// ExecuteTransaction applies txn and returns nil once it is durably recorded.
func (s *TransactionService) ExecuteTransaction(ctx context.Context, txn domain.Transaction) error {
	_, err := s.Execute(ctx, txn)
	return err
}

// Execute applies txn and reports the committed transactions and account states.
func (s *TransactionService) Execute(ctx context.Context, txn domain.Transaction) (domain.ExecutionResult, error) {
	logger.Info("transaction service execute request", transactionFields(txn))

	if err := validateTransaction(txn); err != nil {
		logger.Error("transaction service execute validation failed", err, transactionFields(txn))
		s.metrics.TransactionRejected(string(txn.Type()), rejectionReason(err))
		return domain.ExecutionResult{}, err
	}

	unlock := s.locks.Lock(txn.AccountNumbers()...)
	defer unlock()

	result, err := s.executeLocked(ctx, txn, executeOptions{evaluateFees: true})
	if err != nil {
		logger.Error("transaction service execute failed", err, transactionFields(txn))
		s.metrics.TransactionRejected(string(txn.Type()), rejectionReason(err))
		return domain.ExecutionResult{}, err
	}

	s.metrics.TransactionExecuted(string(txn.Type()))
	fields := transactionFields(txn)
	if result.Fee != nil {
		s.metrics.FeeApplied()
		fields["feeTransactionNumber"] = result.Fee.Number()
		fields["feeAmount"] = domain.FormatMoney(result.Fee.Amount())
	}
	logger.Info("transaction service execute success", fields)

	return result, nil
}

// executeLocked expects the caller to hold the locks for every account txn touches.
func (s *TransactionService) executeLocked(ctx context.Context, txn domain.Transaction, opts executeOptions) (domain.ExecutionResult, error) {
	accounts := make(map[string]domain.Account, 2)
	for _, number := range txn.AccountNumbers() {
		account, err := s.loadActiveAccount(ctx, number)
		if err != nil {
			return domain.ExecutionResult{}, err
		}
		accounts[number] = account
	}

	if err := applyTransaction(accounts, txn); err != nil {
		return domain.ExecutionResult{}, err
	}

	now := s.clock.Now()
	for number, account := range accounts {
		account.Touch(now)
		if opts.stamp != nil {
			opts.stamp(&account)
		}
		account.UpdatedAt = now
		accounts[number] = account
	}

	txns := []domain.Transaction{txn}
	var fee *domain.Transaction
	if opts.evaluateFees && txn.HasSource() {
		charged, err := s.chargeFee(ctx, accounts, txn, now)
		if err != nil {
			return domain.ExecutionResult{}, err
		}
		if charged != nil {
			fee = charged
			txns = append(txns, *charged)
		}
	}

	ordered := make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		ordered = append(ordered, account)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].AccountNumber < ordered[j].AccountNumber
	})

	saved, err := s.ledger.Commit(ctx, ordered, txns)
	if err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			return domain.ExecutionResult{}, err
		}
		return domain.ExecutionResult{}, fmt.Errorf("%w: commit transaction %s: %w", domain.ErrPersistence, txn.Number(), err)
	}

	return domain.ExecutionResult{
		Transaction: txn,
		Fee:         fee,
		Accounts:    saved,
	}, nil
}

// chargeFee debits the monthly fee from the source when it is due and affordable.
// An unaffordable fee is skipped; the originating transaction still goes through.
func (s *TransactionService) chargeFee(ctx context.Context, accounts map[string]domain.Account, txn domain.Transaction, now time.Time) (*domain.Transaction, error) {
	source := accounts[txn.SourceAccount()]

	due, err := s.fees.FeeDue(ctx, source, txn, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	if !due {
		return nil, nil
	}

	fee, err := s.factory.Fee(source.AccountNumber, feeDescription, s.fees.TransactionFee())
	if err != nil {
		return nil, err
	}

	if err := source.CheckDebit(fee.Amount()); err != nil {
		logger.Warn("transaction service fee skipped", logger.Fields{
			"accountNumber":     source.AccountNumber,
			"transactionNumber": txn.Number(),
			"feeAmount":         domain.FormatMoney(fee.Amount()),
			"reason":            err.Error(),
		})
		s.metrics.FeeSkipped()
		return nil, nil
	}

	source.Debit(fee.Amount())
	accounts[source.AccountNumber] = source
	return &fee, nil
}

func (s *TransactionService) loadActiveAccount(ctx context.Context, accountNumber string) (domain.Account, error) {
	account, err := s.accountRepo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Account{}, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, accountNumber)
		}
		return domain.Account{}, fmt.Errorf("%w: load account %s: %w", domain.ErrPersistence, accountNumber, err)
	}
	if !account.IsActive() {
		return domain.Account{}, fmt.Errorf("%w: %s is %s", domain.ErrAccountNotActive, accountNumber, account.Status)
	}
	return account, nil
}

// validateTransaction checks everything that does not need account state.
func validateTransaction(txn domain.Transaction) error {
	if txn.IsZero() {
		return fmt.Errorf("%w: transaction cannot be null", domain.ErrInvalidTransaction)
	}
	if !txn.Amount().IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrInvalidTransaction)
	}
	if !txn.Amount().Equal(domain.RoundMoney(txn.Amount())) {
		return fmt.Errorf("%w: amount supports at most %d decimal places", domain.ErrInvalidTransaction, domain.MoneyScale)
	}

	switch txn.Type() {
	case domain.TransactionTypeDeposit:
		if !txn.HasDestination() {
			return fmt.Errorf("%w: Destination account cannot be null", domain.ErrInvalidTransaction)
		}
	case domain.TransactionTypeWithdrawal, domain.TransactionTypeFee:
		if !txn.HasSource() {
			return fmt.Errorf("%w: Source account cannot be null", domain.ErrInvalidTransaction)
		}
	case domain.TransactionTypeTransfer:
		if !txn.HasSource() {
			return fmt.Errorf("%w: Source account cannot be null", domain.ErrInvalidTransaction)
		}
		if !txn.HasDestination() {
			return fmt.Errorf("%w: Destination account cannot be null", domain.ErrInvalidTransaction)
		}
		if txn.SourceAccount() == txn.DestinationAccount() {
			return fmt.Errorf("%w: source and destination accounts must differ", domain.ErrInvalidTransaction)
		}
	default:
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidTransaction, txn.Type())
	}
	return nil
}

// applyTransaction moves money between the loaded accounts. On error nothing in accounts has changed.
func applyTransaction(accounts map[string]domain.Account, txn domain.Transaction) error {
	amount := txn.Amount()

	switch txn.Type() {
	case domain.TransactionTypeDeposit:
		destination := accounts[txn.DestinationAccount()]
		if err := destination.CheckCredit(amount); err != nil {
			return err
		}
		destination.Credit(amount)
		accounts[destination.AccountNumber] = destination
	case domain.TransactionTypeWithdrawal, domain.TransactionTypeFee:
		source := accounts[txn.SourceAccount()]
		if err := source.CheckDebit(amount); err != nil {
			return fmt.Errorf("account %s: %w", source.AccountNumber, err)
		}
		source.Debit(amount)
		accounts[source.AccountNumber] = source
	case domain.TransactionTypeTransfer:
		source := accounts[txn.SourceAccount()]
		destination := accounts[txn.DestinationAccount()]
		if err := source.CheckDebit(amount); err != nil {
			return fmt.Errorf("account %s: %w", source.AccountNumber, err)
		}
		if err := destination.CheckCredit(amount); err != nil {
			return err
		}
		source.Debit(amount)
		destination.Credit(amount)
		accounts[source.AccountNumber] = source
		accounts[destination.AccountNumber] = destination
	default:
		return fmt.Errorf("%w: unknown transaction type %q", domain.ErrInvalidTransaction, txn.Type())
	}
	return nil
}

// PostTransaction is the PIN-guarded entry point used by the HTTP surface.
func (s *TransactionService) PostTransaction(ctx context.Context, req models.PostTransactionRequest) (commons.Response[models.PostTransactionResponse], error) {
	logger.Info("transaction service post transaction request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("transaction service post transaction validation failed", err, nil)
		return commons.ErrorResponse[models.PostTransactionResponse]("validation failed", err.Error()), err
	}

	txnType, _ := domain.ParseTransactionType(req.Type)
	txn, err := s.factory.Create(
		txnType,
		strings.TrimSpace(req.Description),
		nil,
		req.Amount,
		optionalString(req.SourceAccountNumber),
		optionalString(req.DestinationAccountNumber),
	)
	if err != nil {
		logger.Error("transaction service post transaction build failed", err, nil)
		return commons.ErrorResponse[models.PostTransactionResponse]("validation failed", err.Error()), err
	}

	ownerAccountNumber := txn.SourceAccount()
	if !txn.HasSource() {
		ownerAccountNumber = txn.DestinationAccount()
	}
	owner, err := s.accountRepo.GetByAccountNumber(ctx, ownerAccountNumber)
	if err != nil {
		logger.Error("transaction service post transaction owner lookup failed", err, logger.Fields{
			"accountNumber": ownerAccountNumber,
		})
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.PostTransactionResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.PostTransactionResponse]("failed to post transaction", "Unable to process transaction right now"), err
	}

	if err := s.pins.CheckTransactionPin(ctx, owner.CustomerID, req.TransactionPin); err != nil {
		logger.Error("transaction service post transaction pin check failed", err, logger.Fields{
			"accountNumber": ownerAccountNumber,
		})
		if errors.Is(err, domain.ErrInvalidPin) {
			return commons.ErrorResponse[models.PostTransactionResponse]("invalid transaction pin"), err
		}
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.PostTransactionResponse]("Customer not found"), err
		}
		return commons.ErrorResponse[models.PostTransactionResponse]("failed to post transaction", "Unable to process transaction right now"), err
	}

	result, err := s.Execute(ctx, txn)
	if err != nil {
		return commons.ErrorResponse[models.PostTransactionResponse](executionFailureMessage(err), err.Error()), err
	}

	response := models.PostTransactionResponse{
		Transaction: models.NewTransactionResponse(result.Transaction),
		Balances:    make([]models.AccountBalance, 0, len(result.Accounts)),
	}
	if result.Fee != nil {
		fee := models.NewTransactionResponse(*result.Fee)
		response.Fee = &fee
	}
	for _, account := range result.Accounts {
		response.Balances = append(response.Balances, models.AccountBalance{
			AccountNumber:    account.AccountNumber,
			AvailableBalance: domain.FormatMoney(account.AvailableBalance),
			AvailableFunds:   domain.FormatMoney(account.AvailableFunds()),
		})
	}

	return commons.SuccessResponse("transaction posted successfully", response), nil
}

func executionFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrCreditLimitExceeded):
		return "exceeds credit limit"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "Account not found"
	case errors.Is(err, domain.ErrAccountNotActive):
		return "account is not active"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "validation failed"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "account was modified concurrently, retry"
	default:
		return "failed to post transaction"
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCreditLimitExceeded):
		return "credit_limit"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return "account_not_found"
	case errors.Is(err, domain.ErrAccountNotActive):
		return "account_not_active"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, domain.ErrConcurrentModification):
		return "conflict"
	default:
		return "persistence"
	}
}

func transactionFields(txn domain.Transaction) logger.Fields {
	return logger.Fields{
		"transactionNumber":  txn.Number(),
		"type":               string(txn.Type()),
		"amount":             domain.FormatMoney(txn.Amount()),
		"sourceAccount":      txn.SourceAccount(),
		"destinationAccount": txn.DestinationAccount(),
	}
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
