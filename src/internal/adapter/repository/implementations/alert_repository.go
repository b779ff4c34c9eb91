package implementations

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/logger"
)

type AlertRepository struct {
	db      *sql.DB
	dialect Dialect
}

var _ repo_interfaces.AlertRepository = (*AlertRepository)(nil)

func NewAlertRepository(db *sql.DB, dialect Dialect) *AlertRepository {
	return &AlertRepository{db: db, dialect: dialect}
}

func (r *AlertRepository) MarkRaised(ctx context.Context, key string, accountNumber string, at time.Time) (bool, error) {
	const insert = `
INSERT INTO suspicious_alerts (alert_key, account_number, raised_at)
VALUES ($1, $2, $3)
ON CONFLICT (alert_key) DO NOTHING`

	result, err := r.db.ExecContext(ctx, r.dialect.Rebind(insert), key, accountNumber, r.dialect.TimeArg(at))
	if err != nil {
		logger.Error("alert repository mark raised failed", err, logger.Fields{
			"alertKey":      key,
			"accountNumber": accountNumber,
		})
		return false, fmt.Errorf("mark alert raised: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark alert raised rows affected: %w", err)
	}
	return affected == 1, nil
}
