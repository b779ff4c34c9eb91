package domain

import (
	"errors"
	"fmt"
)

var ErrRecordNotFound = errors.New("Record not found")

var ErrDuplicateRecord = errors.New("record already exists")

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidTransaction     = fmt.Errorf("%w: invalid transaction", ErrInvalidArgument)
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrCreditLimitExceeded    = fmt.Errorf("%w: exceeds credit limit", ErrInsufficientFunds)
	ErrAccountNotFound        = fmt.Errorf("account not found: %w", ErrRecordNotFound)
	ErrCustomerNotFound       = fmt.Errorf("customer not found: %w", ErrRecordNotFound)
	ErrAccountNotActive       = fmt.Errorf("%w: account is not active", ErrInvalidArgument)
	ErrInvalidStateTransition = errors.New("invalid account state transition")
	ErrConcurrentModification = errors.New("account was modified concurrently")
	ErrPersistence            = errors.New("persistence failure")
	ErrLedgerMismatch         = errors.New("ledger balance does not match recorded transactions")
	ErrInvalidPin             = errors.New("invalid transaction pin")
)
