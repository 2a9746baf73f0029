package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finpulse/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository owns the raw ledger: transaction records and the user's
// investment-account tags. Derived analytics are never persisted here.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// AppendTransactions stores a batch of validated records and bumps the
// dataset version once for the whole batch. Returns the new version.
func (r *SQLiteRepository) AppendTransactions(ctx context.Context, txs []core.Transaction) (int64, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (tx_date, tx_type, amount, category, subcategory, note, from_account, to_account, account)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		_, err := stmt.ExecContext(ctx,
			core.DayKey(tx.Date), string(tx.Type), tx.Amount,
			tx.Category, tx.Subcategory, tx.Note,
			tx.FromAccount, tx.ToAccount, tx.Account)
		if err != nil {
			return 0, fmt.Errorf("insert transaction: %w", err)
		}
	}

	var version int64
	err = dbTx.QueryRowContext(ctx,
		`UPDATE dataset_meta SET version = version + 1 WHERE id = 1 RETURNING version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("bump dataset version: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch: %w", err)
	}

	slog.InfoContext(ctx, "Transaction batch stored",
		"count", len(txs),
		"dataset_version", version)
	return version, nil
}

// ListTransactions returns the full ledger ordered by date.
func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT tx_date, tx_type, amount, category, subcategory, note, from_account, to_account, account
		FROM transactions
		ORDER BY tx_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		var date string
		var tx core.Transaction
		var txType string
		if err := rows.Scan(&date, &txType, &tx.Amount, &tx.Category, &tx.Subcategory,
			&tx.Note, &tx.FromAccount, &tx.ToAccount, &tx.Account); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		parsed, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", date, err)
		}
		tx.Date = parsed
		tx.Type = core.TxType(txType)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// DatasetVersion returns the current version counter. It changes exactly when
// the transaction set changes, so it doubles as a memoization key upstream.
func (r *SQLiteRepository) DatasetVersion(ctx context.Context) (int64, error) {
	var version int64
	err := r.db.QueryRowContext(ctx, `SELECT version FROM dataset_meta WHERE id = 1`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read dataset version: %w", err)
	}
	return version, nil
}

// TagInvestmentAccount marks an account name as user-tagged investment.
// Tagging changes classification output, so the dataset version is bumped.
func (r *SQLiteRepository) TagInvestmentAccount(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO investment_accounts (name) VALUES (?)`, name)
	if err != nil {
		return fmt.Errorf("tag investment account: %w", err)
	}
	if err := r.bumpVersion(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Investment account tagged", "account", name)
	return nil
}

// UntagInvestmentAccount removes a user tag.
func (r *SQLiteRepository) UntagInvestmentAccount(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM investment_accounts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("untag investment account: %w", err)
	}
	if err := r.bumpVersion(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Investment account untagged", "account", name)
	return nil
}

// ListInvestmentAccounts returns all user-tagged account names.
func (r *SQLiteRepository) ListInvestmentAccounts(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM investment_accounts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list investment accounts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan account name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *SQLiteRepository) bumpVersion(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE dataset_meta SET version = version + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("bump dataset version: %w", err)
	}
	return nil
}
