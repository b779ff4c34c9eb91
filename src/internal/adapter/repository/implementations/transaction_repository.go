package implementations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	db      *sql.DB
	dialect Dialect
}

var _ repo_interfaces.TransactionRepository = (*TransactionRepository)(nil)

func NewTransactionRepository(db *sql.DB, dialect Dialect) *TransactionRepository {
	return &TransactionRepository{db: db, dialect: dialect}
}

const transactionColumns = `transaction_number, transaction_type, description, transaction_date, amount, source_account, destination_account`

func (r *TransactionRepository) Insert(ctx context.Context, txn domain.Transaction) error {
	logger.Info("transaction repository insert", logger.Fields{
		"transactionNumber": txn.Number(),
		"type":              txn.Type(),
	})

	if err := insertTransaction(ctx, r.db, r.dialect, txn); err != nil {
		logger.Error("transaction repository insert failed", err, logger.Fields{
			"transactionNumber": txn.Number(),
		})
		return err
	}
	return nil
}

func (r *TransactionRepository) GetByAccount(ctx context.Context, accountNumber string) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions
WHERE source_account = $1 OR destination_account = $1`

	accountNumber = strings.TrimSpace(accountNumber)
	txns, err := r.query(ctx, query, accountNumber)
	if err != nil {
		logger.Error("transaction repository get by account failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return nil, fmt.Errorf("get transactions by account: %w", err)
	}
	return txns, nil
}

func (r *TransactionRepository) GetAll(ctx context.Context) ([]domain.Transaction, error) {
	query := `
SELECT ` + transactionColumns + `
FROM transactions`

	txns, err := r.query(ctx, query)
	if err != nil {
		logger.Error("transaction repository get all failed", err, nil)
		return nil, fmt.Errorf("get all transactions: %w", err)
	}
	return txns, nil
}

func (r *TransactionRepository) query(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Sorted here rather than in SQL: SQLite compares the stored text, not the instant.
	domain.SortTransactions(txns)
	return txns, nil
}

func insertTransaction(ctx context.Context, q querier, dialect Dialect, txn domain.Transaction) error {
	const insert = `
INSERT INTO transactions (
	transaction_number,
	transaction_type,
	description,
	transaction_date,
	amount,
	source_account,
	destination_account
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := q.ExecContext(ctx, dialect.Rebind(insert),
		txn.Number(),
		string(txn.Type()),
		txn.Description(),
		dialect.TimeArg(txn.Date()),
		txn.Amount(),
		nullString(txn.SourceAccount()),
		nullString(txn.DestinationAccount()),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("transaction %s: %w", txn.Number(), domain.ErrDuplicateRecord)
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		number      string
		txnType     string
		description string
		date        nullTime
		amount      decimal.Decimal
		source      sql.NullString
		destination sql.NullString
	)
	if err := row.Scan(&number, &txnType, &description, &date, &amount, &source, &destination); err != nil {
		return domain.Transaction{}, err
	}
	return domain.RestoreTransaction(
		number,
		domain.TransactionType(txnType),
		description,
		date.Time,
		amount,
		source.String,
		destination.String,
	), nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
