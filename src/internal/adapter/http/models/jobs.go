package models

import (
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
)

type SweepResponse struct {
	Job        string `json:"job"`
	Scanned    int    `json:"scanned"`
	Affected   int    `json:"affected"`
	Failures   int    `json:"failures"`
	StartedAt  string `json:"startedAt"`
	FinishedAt string `json:"finishedAt"`
}

func NewSweepResponse(report domain.SweepReport) SweepResponse {
	return SweepResponse{
		Job:        report.Job,
		Scanned:    report.Scanned,
		Affected:   report.Affected,
		Failures:   report.Failures,
		StartedAt:  report.StartedAt.Format(timeLayout),
		FinishedAt: report.FinishedAt.Format(timeLayout),
	}
}

type InterestResponse struct {
	AccountNumber string          `json:"accountNumber"`
	Kind          string          `json:"kind"`
	Amount        decimal.Decimal `json:"amount"`
	Applied       bool            `json:"applied"`
}

func NewInterestResponse(accountNumber string, kind string, amount decimal.Decimal) InterestResponse {
	return InterestResponse{
		AccountNumber: accountNumber,
		Kind:          kind,
		Amount:        amount,
		Applied:       amount.IsPositive(),
	}
}
