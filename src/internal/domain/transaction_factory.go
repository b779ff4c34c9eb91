package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFactory builds the transaction variant matching a type tag.
// It does not check the amount or the accounts' state.
type TransactionFactory struct {
	clock Clock
	newID func() string
}

func NewTransactionFactory(clock Clock) *TransactionFactory {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TransactionFactory{
		clock: clock,
		newID: uuid.NewString,
	}
}

// WithIDGenerator replaces the transaction number source.
func (f *TransactionFactory) WithIDGenerator(newID func() string) *TransactionFactory {
	if newID != nil {
		f.newID = newID
	}
	return f
}

func (f *TransactionFactory) Create(
	txnType TransactionType,
	description string,
	date *time.Time,
	amount decimal.Decimal,
	sourceAccount *string,
	destinationAccount *string,
) (Transaction, error) {
	when := f.clock.Now()
	if date != nil {
		when = *date
	}
	number := f.newID()
	source := derefTrim(sourceAccount)
	destination := derefTrim(destinationAccount)

	switch txnType {
	case TransactionTypeDeposit:
		return NewDeposit(number, description, when, amount, destination)
	case TransactionTypeWithdrawal:
		return NewWithdrawal(number, description, when, amount, source)
	case TransactionTypeTransfer:
		return NewTransfer(number, description, when, amount, source, destination)
	case TransactionTypeFee:
		return NewFee(number, description, when, amount, source)
	default:
		return Transaction{}, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidArgument, txnType)
	}
}

// Fee builds a FEE charged to accountNumber at the factory clock's current time.
func (f *TransactionFactory) Fee(accountNumber string, description string, amount decimal.Decimal) (Transaction, error) {
	return f.Create(TransactionTypeFee, description, nil, amount, &accountNumber, nil)
}

// Deposit builds a DEPOSIT into accountNumber at the factory clock's current time.
func (f *TransactionFactory) Deposit(accountNumber string, description string, amount decimal.Decimal) (Transaction, error) {
	return f.Create(TransactionTypeDeposit, description, nil, amount, nil, &accountNumber)
}

func derefTrim(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}
