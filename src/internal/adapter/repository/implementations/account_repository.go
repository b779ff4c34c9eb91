package implementations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/shopspring/decimal"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type AccountRepository struct {
	db      *sql.DB
	dialect Dialect
}

var _ repo_interfaces.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *sql.DB, dialect Dialect) *AccountRepository {
	return &AccountRepository{db: db, dialect: dialect}
}

const accountColumns = `account_number, customer_id, account_type, opened_date, opening_balance, available_balance, status, low_balance_alert_sent, credit_limit, interest_rate, last_interest_applied, currency_code, last_active_date, version, updated_at`

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	logger.Info("account repository get by account number", logger.Fields{
		"accountNumber": accountNumber,
	})

	query := `
SELECT ` + accountColumns + `
FROM accounts
WHERE account_number = $1`

	account, err := scanAccount(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), strings.TrimSpace(accountNumber)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("account repository record not found", logger.Fields{
				"accountNumber": accountNumber,
			})
			return domain.Account{}, domain.ErrAccountNotFound
		}
		logger.Error("account repository get failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return domain.Account{}, fmt.Errorf("get account by account number: %w", err)
	}

	return account, nil
}

func (r *AccountRepository) GetAllActive(ctx context.Context) ([]domain.Account, error) {
	query := `
SELECT ` + accountColumns + `
FROM accounts
WHERE status = $1
ORDER BY account_number`

	accounts, err := queryAccounts(ctx, r.db, r.dialect.Rebind(query), string(domain.AccountStatusActive))
	if err != nil {
		logger.Error("account repository get all active failed", err, nil)
		return nil, fmt.Errorf("get active accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) GetByCustomerID(ctx context.Context, customerID string) ([]domain.Account, error) {
	query := `
SELECT ` + accountColumns + `
FROM accounts
WHERE customer_id = $1
ORDER BY account_number`

	accounts, err := queryAccounts(ctx, r.db, r.dialect.Rebind(query), strings.TrimSpace(customerID))
	if err != nil {
		logger.Error("account repository get by customer id failed", err, logger.Fields{
			"customerId": customerID,
		})
		return nil, fmt.Errorf("get accounts by customer id: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Upsert(ctx context.Context, account domain.Account) (domain.Account, error) {
	logger.Info("account repository upsert", logger.Fields{
		"accountNumber": account.AccountNumber,
		"version":       account.Version,
	})

	saved, err := writeAccount(ctx, r.db, r.dialect, account)
	if err != nil {
		logger.Error("account repository upsert failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		return domain.Account{}, err
	}
	return saved, nil
}

func (r *AccountRepository) Remove(ctx context.Context, accountNumber string) error {
	logger.Info("account repository remove", logger.Fields{
		"accountNumber": accountNumber,
	})

	res, err := r.db.ExecContext(ctx, r.dialect.Rebind(`DELETE FROM accounts WHERE account_number = $1`), strings.TrimSpace(accountNumber))
	if err != nil {
		logger.Error("account repository remove failed", err, logger.Fields{
			"accountNumber": accountNumber,
		})
		return fmt.Errorf("remove account: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// writeAccount inserts when Version is zero and otherwise updates the row guarded by its version.
func writeAccount(ctx context.Context, q querier, dialect Dialect, account domain.Account) (domain.Account, error) {
	cols, err := flattenAccount(account, dialect)
	if err != nil {
		return domain.Account{}, err
	}

	if account.Version == 0 {
		const insert = `
INSERT INTO accounts (
	account_number,
	customer_id,
	account_type,
	opened_date,
	opening_balance,
	available_balance,
	status,
	low_balance_alert_sent,
	credit_limit,
	interest_rate,
	last_interest_applied,
	currency_code,
	last_active_date,
	version,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, $14)`

		if _, err := q.ExecContext(ctx, dialect.Rebind(insert),
			account.AccountNumber,
			account.CustomerID,
			string(account.Type()),
			dialect.TimeArg(account.OpenedDate),
			account.OpeningBalance,
			account.AvailableBalance,
			string(account.Status),
			account.LowBalanceAlertSent,
			cols.creditLimit,
			cols.interestRate,
			cols.lastInterestApplied,
			cols.currencyCode,
			cols.lastActiveDate,
			dialect.TimeArg(account.UpdatedAt),
		); err != nil {
			if isUniqueViolation(err) {
				return domain.Account{}, fmt.Errorf("account %s: %w", account.AccountNumber, domain.ErrDuplicateRecord)
			}
			return domain.Account{}, fmt.Errorf("insert account: %w", err)
		}

		saved := account.Clone()
		saved.Version = 1
		return saved, nil
	}

	const update = `
UPDATE accounts SET
	available_balance = $1,
	status = $2,
	low_balance_alert_sent = $3,
	credit_limit = $4,
	interest_rate = $5,
	last_interest_applied = $6,
	currency_code = $7,
	last_active_date = $8,
	updated_at = $9,
	version = version + 1
WHERE account_number = $10 AND version = $11`

	res, err := q.ExecContext(ctx, dialect.Rebind(update),
		account.AvailableBalance,
		string(account.Status),
		account.LowBalanceAlertSent,
		cols.creditLimit,
		cols.interestRate,
		cols.lastInterestApplied,
		cols.currencyCode,
		cols.lastActiveDate,
		dialect.TimeArg(account.UpdatedAt),
		account.AccountNumber,
		account.Version,
	)
	if err != nil {
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Account{}, fmt.Errorf("update account rows affected: %w", err)
	}
	if n == 0 {
		return domain.Account{}, fmt.Errorf("account %s at version %d: %w", account.AccountNumber, account.Version, domain.ErrConcurrentModification)
	}

	saved := account.Clone()
	saved.Version = account.Version + 1
	return saved, nil
}

type accountTermColumns struct {
	creditLimit         decimal.NullDecimal
	interestRate        decimal.NullDecimal
	lastInterestApplied any
	currencyCode        sql.NullString
	lastActiveDate      any
}

func flattenAccount(account domain.Account, dialect Dialect) (accountTermColumns, error) {
	var cols accountTermColumns
	switch t := account.Terms.(type) {
	case domain.CheckingTerms:
	case domain.SavingsTerms:
		cols.interestRate = decimal.NewNullDecimal(t.AnnualInterestRate)
		cols.lastInterestApplied = dialect.NullTimeArg(t.LastInterestApplied)
	case domain.CreditTerms:
		cols.creditLimit = decimal.NewNullDecimal(t.CreditLimit)
		cols.interestRate = decimal.NewNullDecimal(t.InterestRate)
		cols.lastInterestApplied = dialect.NullTimeArg(t.LastInterestApplied)
	case domain.CurrencyTerms:
		cols.currencyCode = sql.NullString{String: t.CurrencyCode, Valid: true}
		cols.lastActiveDate = dialect.NullTimeArg(t.LastActiveDate)
	default:
		return cols, fmt.Errorf("%w: account %s has unsupported terms %T", domain.ErrInvalidArgument, account.AccountNumber, account.Terms)
	}
	return cols, nil
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account             domain.Account
		accountType         string
		status              string
		openedDate          nullTime
		updatedAt           nullTime
		creditLimit         decimal.NullDecimal
		interestRate        decimal.NullDecimal
		lastInterestApplied nullTime
		currencyCode        sql.NullString
		lastActiveDate      nullTime
	)

	if err := row.Scan(
		&account.AccountNumber,
		&account.CustomerID,
		&accountType,
		&openedDate,
		&account.OpeningBalance,
		&account.AvailableBalance,
		&status,
		&account.LowBalanceAlertSent,
		&creditLimit,
		&interestRate,
		&lastInterestApplied,
		&currencyCode,
		&lastActiveDate,
		&account.Version,
		&updatedAt,
	); err != nil {
		return domain.Account{}, err
	}

	account.OpenedDate = openedDate.Time
	account.UpdatedAt = updatedAt.Time
	account.Status = domain.AccountStatus(status)

	switch domain.AccountType(accountType) {
	case domain.AccountTypeChecking:
		account.Terms = domain.CheckingTerms{}
	case domain.AccountTypeSavings:
		account.Terms = domain.SavingsTerms{
			AnnualInterestRate:  interestRate.Decimal,
			LastInterestApplied: lastInterestApplied.Ptr(),
		}
	case domain.AccountTypeCredit:
		account.Terms = domain.CreditTerms{
			CreditLimit:         creditLimit.Decimal,
			InterestRate:        interestRate.Decimal,
			LastInterestApplied: lastInterestApplied.Ptr(),
		}
	case domain.AccountTypeCurrency:
		account.Terms = domain.CurrencyTerms{
			CurrencyCode:   currencyCode.String,
			LastActiveDate: lastActiveDate.Ptr(),
		}
	default:
		return domain.Account{}, fmt.Errorf("account %s has unknown type %q", account.AccountNumber, accountType)
	}

	return account, nil
}

func queryAccounts(ctx context.Context, q querier, query string, args ...any) ([]domain.Account, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}
