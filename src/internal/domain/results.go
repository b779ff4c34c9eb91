package domain

import "time"

// ExecutionResult is what one committed execution wrote.
type ExecutionResult struct {
	Transaction Transaction
	Fee         *Transaction
	Accounts    []Account
}

func (r ExecutionResult) Account(accountNumber string) (Account, bool) {
	for _, account := range r.Accounts {
		if account.AccountNumber == accountNumber {
			return account, true
		}
	}
	return Account{}, false
}

type SweepReport struct {
	Job        string    `json:"job"`
	Scanned    int       `json:"scanned"`
	Affected   int       `json:"affected"`
	Failures   int       `json:"failures"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}
