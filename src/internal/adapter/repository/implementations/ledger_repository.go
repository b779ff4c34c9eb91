package implementations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/api-sage/bank-ledger/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/api-sage/bank-ledger/src/internal/logger"
)

// LedgerRepository writes account changes and their transactions in one database transaction.
type LedgerRepository struct {
	db      *sql.DB
	dialect Dialect
}

var _ repo_interfaces.LedgerCommitter = (*LedgerRepository)(nil)

func NewLedgerRepository(db *sql.DB, dialect Dialect) *LedgerRepository {
	return &LedgerRepository{db: db, dialect: dialect}
}

func (r *LedgerRepository) Commit(ctx context.Context, accounts []domain.Account, txns []domain.Transaction) (updated []domain.Account, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin ledger commit: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	updated = make([]domain.Account, 0, len(accounts))
	for _, account := range accounts {
		saved, writeErr := writeAccount(ctx, tx, r.dialect, account)
		if writeErr != nil {
			logger.Error("ledger repository account write failed", writeErr, logger.Fields{
				"accountNumber": account.AccountNumber,
			})
			return nil, writeErr
		}
		updated = append(updated, saved)
	}

	for _, txn := range txns {
		if insertErr := insertTransaction(ctx, tx, r.dialect, txn); insertErr != nil {
			logger.Error("ledger repository transaction insert failed", insertErr, logger.Fields{
				"transactionNumber": txn.Number(),
			})
			return nil, insertErr
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ledger: %w", err)
	}

	logger.Info("ledger repository commit success", logger.Fields{
		"accounts":     len(updated),
		"transactions": len(txns),
	})

	return updated, nil
}
