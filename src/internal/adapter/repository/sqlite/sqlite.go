// Package sqlite opens the embedded single-file store used by the sqlite storage mode.
// Queries are shared with the PostgreSQL store through implementations.DialectSQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Schema returns the schema statements. Each string is one statement.
// Amounts are TEXT so decimals round-trip exactly; timestamps are RFC 3339 TEXT in UTC.
func Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS customers (
			id                   TEXT PRIMARY KEY,
			first_name           TEXT NOT NULL,
			middle_name          TEXT,
			last_name            TEXT NOT NULL,
			dob                  TEXT NOT NULL,
			email                TEXT NOT NULL DEFAULT '',
			phone_number         TEXT NOT NULL,
			id_type              TEXT NOT NULL,
			id_number            TEXT NOT NULL,
			transaction_pin_hash TEXT NOT NULL,
			created_at           TEXT NOT NULL,
			updated_at           TEXT NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			account_number         TEXT PRIMARY KEY,
			customer_id            TEXT NOT NULL REFERENCES customers(id),
			account_type           TEXT NOT NULL,
			opened_date            TEXT NOT NULL,
			opening_balance        TEXT NOT NULL DEFAULT '0',
			available_balance      TEXT NOT NULL DEFAULT '0',
			status                 TEXT NOT NULL,
			low_balance_alert_sent INTEGER NOT NULL DEFAULT 0,
			credit_limit           TEXT,
			interest_rate          TEXT,
			last_interest_applied  TEXT,
			currency_code          TEXT,
			last_active_date       TEXT,
			version                INTEGER NOT NULL DEFAULT 1,
			updated_at             TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_customer_id ON accounts(customer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_status ON accounts(status)`,

		`CREATE TABLE IF NOT EXISTS transactions (
			transaction_number  TEXT PRIMARY KEY,
			transaction_type    TEXT NOT NULL,
			description         TEXT NOT NULL,
			transaction_date    TEXT NOT NULL,
			amount              TEXT NOT NULL,
			source_account      TEXT,
			destination_account TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_source ON transactions(source_account)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_destination ON transactions(destination_account)`,

		`CREATE TABLE IF NOT EXISTS suspicious_alerts (
			alert_key      TEXT PRIMARY KEY,
			account_number TEXT NOT NULL,
			raised_at      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_suspicious_alerts_account ON suspicious_alerts(account_number)`,
	}
}

// Open creates the database file if needed and applies Schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single writer keeps BEGIN ... COMMIT from racing on SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, stmt := range Schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply sqlite schema: %w", err)
		}
	}

	return db, nil
}
