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
)

type CustomerRepository struct {
	db      *sql.DB
	dialect Dialect
}

var _ repo_interfaces.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db *sql.DB, dialect Dialect) *CustomerRepository {
	return &CustomerRepository{db: db, dialect: dialect}
}

func (r *CustomerRepository) Create(ctx context.Context, customer domain.Customer) (domain.Customer, error) {
	logger.Info("customer repository create", logger.Fields{
		"customerId": customer.ID,
		"firstName":  customer.FirstName,
		"lastName":   customer.LastName,
	})

	const query = `
INSERT INTO customers (
	id,
	first_name,
	middle_name,
	last_name,
	dob,
	email,
	phone_number,
	id_type,
	id_number,
	transaction_pin_hash,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var middleName sql.NullString
	if customer.MiddleName != nil {
		middleName = sql.NullString{String: *customer.MiddleName, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(query),
		customer.ID,
		customer.FirstName,
		middleName,
		customer.LastName,
		customer.DOB.Format("2006-01-02"),
		customer.Email,
		customer.PhoneNumber,
		string(customer.IDType),
		customer.IDNumber,
		customer.TransactionPinHash,
		r.dialect.TimeArg(customer.CreatedAt),
		r.dialect.TimeArg(customer.UpdatedAt),
	); err != nil {
		logger.Error("customer repository create failed", err, logger.Fields{
			"customerId": customer.ID,
		})
		if isUniqueViolation(err) {
			return domain.Customer{}, fmt.Errorf("customer %s: %w", customer.ID, domain.ErrDuplicateRecord)
		}
		return domain.Customer{}, fmt.Errorf("create customer: %w", err)
	}

	logger.Info("customer repository create success", logger.Fields{
		"customerId":  customer.ID,
		"transaction": "create",
	})

	return customer, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (domain.Customer, error) {
	logger.Info("customer repository get by id", logger.Fields{
		"customerId": id,
	})

	const query = `
SELECT id, first_name, middle_name, last_name, dob, email, phone_number, id_type, id_number, transaction_pin_hash, created_at, updated_at
FROM customers
WHERE id = $1`

	customer, err := scanCustomer(r.db.QueryRowContext(ctx, r.dialect.Rebind(query), strings.TrimSpace(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Info("customer repository record not found", logger.Fields{
				"customerId": id,
			})
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		logger.Error("customer repository get by id failed", err, logger.Fields{
			"customerId": id,
		})
		return domain.Customer{}, fmt.Errorf("get customer by id: %w", err)
	}

	return customer, nil
}

func (r *CustomerRepository) GetTransactionPinHash(ctx context.Context, id string) (string, error) {
	logger.Info("customer repository get pin hash", logger.Fields{
		"customerId": id,
	})

	const query = `
SELECT transaction_pin_hash
FROM customers
WHERE id = $1`

	var transactionPinHash string
	if err := r.db.QueryRowContext(ctx, r.dialect.Rebind(query), strings.TrimSpace(id)).Scan(&transactionPinHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", domain.ErrCustomerNotFound
		}
		logger.Error("customer repository get pin hash failed", err, logger.Fields{
			"customerId": id,
		})
		return "", fmt.Errorf("get transaction pin hash by customer id: %w", err)
	}

	return transactionPinHash, nil
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var (
		customer   domain.Customer
		middleName sql.NullString
		idType     string
		dob        nullTime
		createdAt  nullTime
		updatedAt  nullTime
	)
	if err := row.Scan(
		&customer.ID,
		&customer.FirstName,
		&middleName,
		&customer.LastName,
		&dob,
		&customer.Email,
		&customer.PhoneNumber,
		&idType,
		&customer.IDNumber,
		&customer.TransactionPinHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		return domain.Customer{}, err
	}

	if middleName.Valid {
		value := middleName.String
		customer.MiddleName = &value
	}
	customer.IDType = domain.IDType(idType)
	customer.DOB = dob.Time
	customer.CreatedAt = createdAt.Time
	customer.UpdatedAt = updatedAt.Time
	return customer, nil
}
