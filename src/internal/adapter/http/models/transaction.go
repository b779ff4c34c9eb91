package models

import (
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type PostTransactionRequest struct {
	Type                     string          `json:"type"`
	Description              string          `json:"description,omitempty"`
	Amount                   decimal.Decimal `json:"amount"`
	SourceAccountNumber      string          `json:"sourceAccountNumber,omitempty"`
	DestinationAccountNumber string          `json:"destinationAccountNumber,omitempty"`
	TransactionPin           string          `json:"transactionPin"`
}

func (r PostTransactionRequest) Validate() error {
	var errs []string

	if _, err := domain.ParseTransactionType(r.Type); err != nil {
		errs = append(errs, "type must be one of DEPOSIT, WITHDRAWAL, TRANSFER, FEE")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if src := strings.TrimSpace(r.SourceAccountNumber); src != "" && !isTenDigits(src) {
		errs = append(errs, "sourceAccountNumber must be exactly 10 digits")
	}
	if dst := strings.TrimSpace(r.DestinationAccountNumber); dst != "" && !isTenDigits(dst) {
		errs = append(errs, "destinationAccountNumber must be exactly 10 digits")
	}
	if strings.TrimSpace(r.TransactionPin) == "" {
		errs = append(errs, "transactionPin is required")
	}

	return validationError(errs)
}

type TransactionResponse struct {
	TransactionNumber        string `json:"transactionNumber"`
	Type                     string `json:"type"`
	Description              string `json:"description"`
	TransactionDate          string `json:"transactionDate"`
	Amount                   string `json:"amount"`
	SourceAccountNumber      string `json:"sourceAccountNumber,omitempty"`
	DestinationAccountNumber string `json:"destinationAccountNumber,omitempty"`
}

type PostTransactionResponse struct {
	Transaction TransactionResponse  `json:"transaction"`
	Fee         *TransactionResponse `json:"fee,omitempty"`
	Balances    []AccountBalance     `json:"balances"`
}

type AccountBalance struct {
	AccountNumber    string `json:"accountNumber"`
	AvailableBalance string `json:"availableBalance"`
	AvailableFunds   string `json:"availableFunds"`
}

func NewTransactionResponse(txn domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionNumber:        txn.Number(),
		Type:                     string(txn.Type()),
		Description:              txn.Description(),
		TransactionDate:          txn.Date().Format(timeLayout),
		Amount:                   domain.FormatMoney(txn.Amount()),
		SourceAccountNumber:      txn.SourceAccount(),
		DestinationAccountNumber: txn.DestinationAccount(),
	}
}
