package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
	TransactionTypeFee        TransactionType = "FEE"
)

func ParseTransactionType(raw string) (TransactionType, error) {
	switch t := TransactionType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer, TransactionTypeFee:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown transaction type %q", ErrInvalidArgument, raw)
	}
}

// DisplayName is used as the default description.
func (t TransactionType) DisplayName() string {
	switch t {
	case TransactionTypeDeposit:
		return "Deposit"
	case TransactionTypeWithdrawal:
		return "Withdrawal"
	case TransactionTypeTransfer:
		return "Transfer"
	case TransactionTypeFee:
		return "Fee"
	default:
		return string(t)
	}
}

// Transaction is an immutable record of one monetary movement.
// The amount is always positive; direction comes from the type and the account references.
type Transaction struct {
	number      string
	txnType     TransactionType
	description string
	date        time.Time
	amount      decimal.Decimal
	source      string
	destination string
}

func NewDeposit(number string, description string, date time.Time, amount decimal.Decimal, destination string) (Transaction, error) {
	if strings.TrimSpace(destination) == "" {
		return Transaction{}, fmt.Errorf("%w: destination account is required for DEPOSIT", ErrInvalidArgument)
	}
	return newTransaction(number, TransactionTypeDeposit, description, date, amount, "", destination), nil
}

func NewWithdrawal(number string, description string, date time.Time, amount decimal.Decimal, source string) (Transaction, error) {
	if strings.TrimSpace(source) == "" {
		return Transaction{}, fmt.Errorf("%w: source account is required for WITHDRAWAL", ErrInvalidArgument)
	}
	return newTransaction(number, TransactionTypeWithdrawal, description, date, amount, source, ""), nil
}

func NewTransfer(number string, description string, date time.Time, amount decimal.Decimal, source string, destination string) (Transaction, error) {
	source = strings.TrimSpace(source)
	destination = strings.TrimSpace(destination)
	if source == "" || destination == "" {
		return Transaction{}, fmt.Errorf("%w: source and destination accounts are required for TRANSFER", ErrInvalidArgument)
	}
	if source == destination {
		return Transaction{}, fmt.Errorf("%w: source and destination accounts must differ", ErrInvalidArgument)
	}
	return newTransaction(number, TransactionTypeTransfer, description, date, amount, source, destination), nil
}

func NewFee(number string, description string, date time.Time, amount decimal.Decimal, source string) (Transaction, error) {
	if strings.TrimSpace(source) == "" {
		return Transaction{}, fmt.Errorf("%w: source account is required for FEE", ErrInvalidArgument)
	}
	return newTransaction(number, TransactionTypeFee, description, date, amount, source, ""), nil
}

// RestoreTransaction rebuilds a stored transaction without re-running constructor checks.
func RestoreTransaction(number string, txnType TransactionType, description string, date time.Time, amount decimal.Decimal, source string, destination string) Transaction {
	return newTransaction(number, txnType, description, date, amount, source, destination)
}

func newTransaction(number string, txnType TransactionType, description string, date time.Time, amount decimal.Decimal, source string, destination string) Transaction {
	description = strings.TrimSpace(description)
	if description == "" {
		description = txnType.DisplayName()
	}
	return Transaction{
		number:      strings.TrimSpace(number),
		txnType:     txnType,
		description: description,
		date:        date,
		amount:      amount,
		source:      strings.TrimSpace(source),
		destination: strings.TrimSpace(destination),
	}
}

func (t Transaction) Number() string             { return t.number }
func (t Transaction) Type() TransactionType      { return t.txnType }
func (t Transaction) Description() string        { return t.description }
func (t Transaction) Date() time.Time            { return t.date }
func (t Transaction) Amount() decimal.Decimal    { return t.amount }
func (t Transaction) SourceAccount() string      { return t.source }
func (t Transaction) DestinationAccount() string { return t.destination }
func (t Transaction) IsZero() bool               { return t.txnType == "" && t.number == "" }
func (t Transaction) HasSource() bool            { return t.source != "" }
func (t Transaction) HasDestination() bool       { return t.destination != "" }

// SignedAmountFor is the transaction's effect on accountNumber's balance.
func (t Transaction) SignedAmountFor(accountNumber string) decimal.Decimal {
	switch t.txnType {
	case TransactionTypeDeposit:
		if t.destination == accountNumber {
			return t.amount
		}
		return decimal.Zero
	case TransactionTypeWithdrawal, TransactionTypeFee:
		if t.source == accountNumber {
			return t.amount.Neg()
		}
		return decimal.Zero
	case TransactionTypeTransfer:
		switch accountNumber {
		case t.source:
			return t.amount.Neg()
		case t.destination:
			return t.amount
		default:
			return decimal.Zero
		}
	default:
		return decimal.Zero
	}
}

func (t Transaction) Touches(accountNumber string) bool {
	return accountNumber != "" && (t.source == accountNumber || t.destination == accountNumber)
}

// IsChargeable reports whether the transaction counts against accountNumber's free-transaction allowance.
func (t Transaction) IsChargeable(accountNumber string) bool {
	switch t.txnType {
	case TransactionTypeWithdrawal, TransactionTypeTransfer:
		return t.source == accountNumber
	case TransactionTypeDeposit, TransactionTypeFee:
		return false
	default:
		return false
	}
}

// AccountNumbers lists the distinct accounts the transaction references, source first.
func (t Transaction) AccountNumbers() []string {
	out := make([]string, 0, 2)
	if t.source != "" {
		out = append(out, t.source)
	}
	if t.destination != "" && t.destination != t.source {
		out = append(out, t.destination)
	}
	return out
}
