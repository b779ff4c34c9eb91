package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeChecking AccountType = "CHECKING"
	AccountTypeSavings  AccountType = "SAVINGS"
	AccountTypeCredit   AccountType = "CREDIT"
	AccountTypeCurrency AccountType = "CURRENCY"
)

func ParseAccountType(raw string) (AccountType, error) {
	switch t := AccountType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCredit, AccountTypeCurrency:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown account type %q", ErrInvalidArgument, raw)
	}
}

type AccountStatus string

const (
	AccountStatusPending AccountStatus = "PENDING"
	AccountStatusActive  AccountStatus = "ACTIVE"
	AccountStatusClosed  AccountStatus = "CLOSED"
)

// AccountTerms carries the policy parameters of one account type.
// The set of variants is closed: CheckingTerms, SavingsTerms, CreditTerms, CurrencyTerms.
type AccountTerms interface {
	Type() AccountType
	isAccountTerms()
}

type CheckingTerms struct{}

type SavingsTerms struct {
	AnnualInterestRate  decimal.Decimal
	LastInterestApplied *time.Time
}

type CreditTerms struct {
	CreditLimit         decimal.Decimal
	InterestRate        decimal.Decimal
	LastInterestApplied *time.Time
}

type CurrencyTerms struct {
	CurrencyCode   string
	LastActiveDate *time.Time
}

func (CheckingTerms) Type() AccountType { return AccountTypeChecking }
func (SavingsTerms) Type() AccountType  { return AccountTypeSavings }
func (CreditTerms) Type() AccountType   { return AccountTypeCredit }
func (CurrencyTerms) Type() AccountType { return AccountTypeCurrency }

func (CheckingTerms) isAccountTerms() {}
func (SavingsTerms) isAccountTerms()  {}
func (CreditTerms) isAccountTerms()   {}
func (CurrencyTerms) isAccountTerms() {}

// Account is a customer's ledger position.
//
// AvailableBalance is signed and is the only balance the ledger moves. Deposit-type
// accounts never go below zero; a credit account goes below zero as it is drawn,
// and its drawn amount is bounded by the credit limit.
type Account struct {
	AccountNumber       string
	CustomerID          string
	OpenedDate          time.Time
	OpeningBalance      decimal.Decimal
	AvailableBalance    decimal.Decimal
	Status              AccountStatus
	LowBalanceAlertSent bool
	Terms               AccountTerms
	Version             int64
	UpdatedAt           time.Time
}

func NewAccount(accountNumber string, customerID string, terms AccountTerms, openedAt time.Time) (Account, error) {
	accountNumber = strings.TrimSpace(accountNumber)
	customerID = strings.TrimSpace(customerID)

	if accountNumber == "" {
		return Account{}, fmt.Errorf("%w: accountNumber is required", ErrInvalidArgument)
	}
	if customerID == "" {
		return Account{}, fmt.Errorf("%w: customerId is required", ErrInvalidArgument)
	}
	if err := validateTerms(terms); err != nil {
		return Account{}, err
	}

	return Account{
		AccountNumber:    accountNumber,
		CustomerID:       customerID,
		OpenedDate:       openedAt,
		OpeningBalance:   decimal.Zero,
		AvailableBalance: decimal.Zero,
		Status:           AccountStatusPending,
		Terms:            terms,
		UpdatedAt:        openedAt,
	}, nil
}

func validateTerms(terms AccountTerms) error {
	switch t := terms.(type) {
	case CheckingTerms:
		return nil
	case SavingsTerms:
		return CheckRate("annualInterestRate", t.AnnualInterestRate)
	case CreditTerms:
		if t.CreditLimit.IsNegative() {
			return fmt.Errorf("%w: creditLimit cannot be negative", ErrInvalidArgument)
		}
		if !t.CreditLimit.Equal(RoundMoney(t.CreditLimit)) {
			return fmt.Errorf("%w: creditLimit supports at most %d decimal places", ErrInvalidArgument, MoneyScale)
		}
		return CheckRate("interestRate", t.InterestRate)
	case CurrencyTerms:
		if len(strings.TrimSpace(t.CurrencyCode)) != 3 {
			return fmt.Errorf("%w: currencyCode must be 3 characters", ErrInvalidArgument)
		}
		return nil
	case nil:
		return fmt.Errorf("%w: account terms are required", ErrInvalidArgument)
	default:
		return fmt.Errorf("%w: unsupported account terms %T", ErrInvalidArgument, terms)
	}
}

func (a Account) Type() AccountType {
	if a.Terms == nil {
		return ""
	}
	return a.Terms.Type()
}

func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// AvailableFunds is what the account may still pay out: the balance for
// deposit-type accounts and the remaining headroom for credit accounts.
func (a Account) AvailableFunds() decimal.Decimal {
	switch t := a.Terms.(type) {
	case CreditTerms:
		return a.AvailableBalance.Add(t.CreditLimit)
	case CheckingTerms, SavingsTerms, CurrencyTerms:
		return a.AvailableBalance
	default:
		return decimal.Zero
	}
}

// DrawnAmount is the outstanding amount on a credit account. Zero for other types.
func (a Account) DrawnAmount() decimal.Decimal {
	if _, ok := a.Terms.(CreditTerms); !ok {
		return decimal.Zero
	}
	if a.AvailableBalance.IsNegative() {
		return a.AvailableBalance.Neg()
	}
	return decimal.Zero
}

// CheckDebit reports whether amount can leave the account without breaking its balance invariant.
func (a Account) CheckDebit(amount decimal.Decimal) error {
	switch a.Terms.(type) {
	case CreditTerms:
		if amount.GreaterThan(a.AvailableFunds()) {
			return ErrCreditLimitExceeded
		}
		return nil
	case CheckingTerms, SavingsTerms, CurrencyTerms:
		if a.AvailableBalance.LessThan(amount) {
			return ErrInsufficientFunds
		}
		return nil
	default:
		return fmt.Errorf("%w: account %s has no terms", ErrInvalidArgument, a.AccountNumber)
	}
}

// CheckCredit reports whether amount can be paid into the account. A credit account
// only takes repayments up to its drawn amount and never holds a positive balance.
func (a Account) CheckCredit(amount decimal.Decimal) error {
	switch a.Terms.(type) {
	case CreditTerms:
		if drawn := a.DrawnAmount(); amount.GreaterThan(drawn) {
			return fmt.Errorf("%w: payment of %s exceeds drawn amount %s on credit account %s",
				ErrInvalidTransaction, FormatMoney(amount), FormatMoney(drawn), a.AccountNumber)
		}
		return nil
	case CheckingTerms, SavingsTerms, CurrencyTerms:
		return nil
	default:
		return fmt.Errorf("%w: account %s has no terms", ErrInvalidArgument, a.AccountNumber)
	}
}

func (a *Account) Credit(amount decimal.Decimal) {
	a.AvailableBalance = RoundMoney(a.AvailableBalance.Add(amount))
}

func (a *Account) Debit(amount decimal.Decimal) {
	a.AvailableBalance = RoundMoney(a.AvailableBalance.Sub(amount))
}

// Touch records activity on currency accounts. Other types keep no activity stamp.
func (a *Account) Touch(at time.Time) {
	if t, ok := a.Terms.(CurrencyTerms); ok {
		stamp := at
		t.LastActiveDate = &stamp
		a.Terms = t
	}
}

// StampInterest records when interest was last posted. Only savings and credit accounts accrue interest.
func (a *Account) StampInterest(at time.Time) {
	stamp := at
	switch t := a.Terms.(type) {
	case SavingsTerms:
		t.LastInterestApplied = &stamp
		a.Terms = t
	case CreditTerms:
		t.LastInterestApplied = &stamp
		a.Terms = t
	case CheckingTerms, CurrencyTerms:
	}
}

func (a *Account) Approve() error {
	if a.Status != AccountStatusPending {
		return fmt.Errorf("%w: cannot approve %s account", ErrInvalidStateTransition, a.Status)
	}
	a.Status = AccountStatusActive
	return nil
}

// Close is the voluntary close; it requires an exactly zero balance.
func (a *Account) Close() error {
	if a.Status != AccountStatusActive {
		return fmt.Errorf("%w: cannot close %s account", ErrInvalidStateTransition, a.Status)
	}
	if !a.AvailableBalance.IsZero() {
		return fmt.Errorf("%w: balance must be zero to close", ErrInvalidStateTransition)
	}
	a.Status = AccountStatusClosed
	return nil
}

// CloseForInactivity is only valid for currency accounts.
func (a *Account) CloseForInactivity() error {
	if a.Status != AccountStatusActive {
		return fmt.Errorf("%w: cannot close %s account", ErrInvalidStateTransition, a.Status)
	}
	if a.Type() != AccountTypeCurrency {
		return fmt.Errorf("%w: only currency accounts close for inactivity", ErrInvalidStateTransition)
	}
	a.Status = AccountStatusClosed
	return nil
}

// Clone returns a copy that shares no pointers with a.
func (a Account) Clone() Account {
	out := a
	switch t := a.Terms.(type) {
	case SavingsTerms:
		t.LastInterestApplied = cloneTime(t.LastInterestApplied)
		out.Terms = t
	case CreditTerms:
		t.LastInterestApplied = cloneTime(t.LastInterestApplied)
		out.Terms = t
	case CurrencyTerms:
		t.LastActiveDate = cloneTime(t.LastActiveDate)
		out.Terms = t
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
