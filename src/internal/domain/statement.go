package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type StatementLine struct {
	Transaction    Transaction
	SignedAmount   decimal.Decimal
	RunningBalance decimal.Decimal
}

type Statement struct {
	AccountNumber  string
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	Lines          []StatementLine
}

// SortTransactions orders by date, then by number for equal dates.
func SortTransactions(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].Date().Equal(txns[j].Date()) {
			return txns[i].Number() < txns[j].Number()
		}
		return txns[i].Date().Before(txns[j].Date())
	})
}

// BuildStatement replays history from the opening balance. Transactions that do not
// touch the account are ignored.
func BuildStatement(account Account, history []Transaction) Statement {
	ordered := make([]Transaction, 0, len(history))
	for _, txn := range history {
		if txn.Touches(account.AccountNumber) {
			ordered = append(ordered, txn)
		}
	}
	SortTransactions(ordered)

	running := account.OpeningBalance
	lines := make([]StatementLine, 0, len(ordered))
	for _, txn := range ordered {
		signed := txn.SignedAmountFor(account.AccountNumber)
		running = running.Add(signed)
		lines = append(lines, StatementLine{
			Transaction:    txn,
			SignedAmount:   signed,
			RunningBalance: RoundMoney(running),
		})
	}

	return Statement{
		AccountNumber:  account.AccountNumber,
		OpeningBalance: account.OpeningBalance,
		ClosingBalance: RoundMoney(running),
		Lines:          lines,
	}
}

// VerifyLedger checks that the stored balance equals the replayed history.
func VerifyLedger(account Account, history []Transaction) error {
	statement := BuildStatement(account, history)
	if !statement.ClosingBalance.Equal(account.AvailableBalance) {
		return fmt.Errorf("%w: account %s balance %s, replayed %s",
			ErrLedgerMismatch,
			account.AccountNumber,
			FormatMoney(account.AvailableBalance),
			FormatMoney(statement.ClosingBalance),
		)
	}
	return nil
}
