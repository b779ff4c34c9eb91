package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

const timeLayout = time.RFC3339

type OpenAccountRequest struct {
	CustomerID         string           `json:"customerId"`
	AccountType        string           `json:"accountType"`
	CreditLimit        *decimal.Decimal `json:"creditLimit,omitempty"`
	InterestRate       *decimal.Decimal `json:"interestRate,omitempty"`
	AnnualInterestRate *decimal.Decimal `json:"annualInterestRate,omitempty"`
	CurrencyCode       string           `json:"currencyCode,omitempty"`
}

func (r OpenAccountRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.CustomerID) == "" {
		errs = append(errs, "customerId is required")
	}

	accountType, err := domain.ParseAccountType(r.AccountType)
	if err != nil {
		errs = append(errs, "accountType must be one of CHECKING, SAVINGS, CREDIT, CURRENCY")
	}

	switch accountType {
	case domain.AccountTypeCredit:
		if r.CreditLimit == nil || r.CreditLimit.IsNegative() {
			errs = append(errs, "creditLimit is required and cannot be negative")
		}
		errs = append(errs, rateErrors("interestRate", r.InterestRate)...)
	case domain.AccountTypeSavings:
		errs = append(errs, rateErrors("annualInterestRate", r.AnnualInterestRate)...)
	case domain.AccountTypeCurrency:
		if len(strings.TrimSpace(r.CurrencyCode)) != 3 {
			errs = append(errs, "currencyCode must be 3 characters")
		}
	case domain.AccountTypeChecking:
	}

	return validationError(errs)
}

func rateErrors(name string, rate *decimal.Decimal) []string {
	if rate == nil || rate.IsNegative() {
		return []string{name + " is required and cannot be negative"}
	}
	if !rate.Equal(rate.Round(domain.RateScale)) {
		return []string{fmt.Sprintf("%s supports at most %d decimal places", name, domain.RateScale)}
	}
	return nil
}

// Terms builds the account terms. Call only after Validate succeeds.
func (r OpenAccountRequest) Terms() domain.AccountTerms {
	accountType, _ := domain.ParseAccountType(r.AccountType)
	switch accountType {
	case domain.AccountTypeSavings:
		return domain.SavingsTerms{AnnualInterestRate: derefDecimal(r.AnnualInterestRate)}
	case domain.AccountTypeCredit:
		return domain.CreditTerms{
			CreditLimit:  domain.RoundMoney(derefDecimal(r.CreditLimit)),
			InterestRate: derefDecimal(r.InterestRate),
		}
	case domain.AccountTypeCurrency:
		return domain.CurrencyTerms{CurrencyCode: strings.ToUpper(strings.TrimSpace(r.CurrencyCode))}
	case domain.AccountTypeChecking:
		return domain.CheckingTerms{}
	default:
		return nil
	}
}

type AccountResponse struct {
	AccountNumber       string  `json:"accountNumber"`
	CustomerID          string  `json:"customerId"`
	AccountType         string  `json:"accountType"`
	Status              string  `json:"status"`
	OpenedDate          string  `json:"openedDate"`
	OpeningBalance      string  `json:"openingBalance"`
	AvailableBalance    string  `json:"availableBalance"`
	AvailableFunds      string  `json:"availableFunds"`
	LowBalanceAlertSent bool    `json:"lowBalanceAlertSent"`
	CreditLimit         *string `json:"creditLimit,omitempty"`
	DrawnAmount         *string `json:"drawnAmount,omitempty"`
	InterestRate        *string `json:"interestRate,omitempty"`
	LastInterestApplied *string `json:"lastInterestApplied,omitempty"`
	CurrencyCode        *string `json:"currencyCode,omitempty"`
	LastActiveDate      *string `json:"lastActiveDate,omitempty"`
	UpdatedAt           string  `json:"updatedAt"`
}

func NewAccountResponse(account domain.Account) AccountResponse {
	response := AccountResponse{
		AccountNumber:       account.AccountNumber,
		CustomerID:          account.CustomerID,
		AccountType:         string(account.Type()),
		Status:              string(account.Status),
		OpenedDate:          account.OpenedDate.Format(timeLayout),
		OpeningBalance:      domain.FormatMoney(account.OpeningBalance),
		AvailableBalance:    domain.FormatMoney(account.AvailableBalance),
		AvailableFunds:      domain.FormatMoney(account.AvailableFunds()),
		LowBalanceAlertSent: account.LowBalanceAlertSent,
		UpdatedAt:           account.UpdatedAt.Format(timeLayout),
	}

	switch t := account.Terms.(type) {
	case domain.CheckingTerms:
	case domain.SavingsTerms:
		response.InterestRate = stringPtr(t.AnnualInterestRate.String())
		response.LastInterestApplied = timePtr(t.LastInterestApplied)
	case domain.CreditTerms:
		response.CreditLimit = stringPtr(domain.FormatMoney(t.CreditLimit))
		response.DrawnAmount = stringPtr(domain.FormatMoney(account.DrawnAmount()))
		response.InterestRate = stringPtr(t.InterestRate.String())
		response.LastInterestApplied = timePtr(t.LastInterestApplied)
	case domain.CurrencyTerms:
		response.CurrencyCode = stringPtr(t.CurrencyCode)
		response.LastActiveDate = timePtr(t.LastActiveDate)
	}

	return response
}

type AccountActionResponse struct {
	AccountNumber string `json:"accountNumber"`
	Status        string `json:"status"`
}

type StatementLineResponse struct {
	TransactionResponse
	SignedAmount   string `json:"signedAmount"`
	RunningBalance string `json:"runningBalance"`
}

type StatementResponse struct {
	AccountNumber  string                  `json:"accountNumber"`
	OpeningBalance string                  `json:"openingBalance"`
	ClosingBalance string                  `json:"closingBalance"`
	Lines          []StatementLineResponse `json:"lines"`
}

func NewStatementResponse(statement domain.Statement) StatementResponse {
	lines := make([]StatementLineResponse, 0, len(statement.Lines))
	for _, line := range statement.Lines {
		lines = append(lines, StatementLineResponse{
			TransactionResponse: NewTransactionResponse(line.Transaction),
			SignedAmount:        domain.FormatMoney(line.SignedAmount),
			RunningBalance:      domain.FormatMoney(line.RunningBalance),
		})
	}
	return StatementResponse{
		AccountNumber:  statement.AccountNumber,
		OpeningBalance: domain.FormatMoney(statement.OpeningBalance),
		ClosingBalance: domain.FormatMoney(statement.ClosingBalance),
		Lines:          lines,
	}
}

type ReconcileResponse struct {
	AccountNumber    string `json:"accountNumber"`
	StoredBalance    string `json:"storedBalance"`
	ReplayedBalance  string `json:"replayedBalance"`
	TransactionCount int    `json:"transactionCount"`
	Consistent       bool   `json:"consistent"`
}

func derefDecimal(value *decimal.Decimal) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return *value
}

func stringPtr(value string) *string {
	return &value
}

func timePtr(value *time.Time) *string {
	if value == nil {
		return nil
	}
	formatted := value.Format(timeLayout)
	return &formatted
}
