package ledger

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger persists balances in PostgreSQL. Row locks serialize
// concurrent postings against the same account and asset.
type PostgresLedger struct {
	db *pgxpool.Pool
}

// NewPostgresLedger constructs a Postgres-backed balance book.
func NewPostgresLedger(db *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// Balance returns the stored balance, zero when no row exists.
func (l *PostgresLedger) Balance(ctx context.Context, code, assetID string) (int64, error) {
	var balance int64
	err := l.db.QueryRow(ctx, `SELECT amount FROM balances WHERE account_code = $1 AND asset_id = $2`,
		code, assetID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

// Credit increases the balance, creating the row on first use.
func (l *PostgresLedger) Credit(ctx context.Context, code, assetID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrZeroAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := lockBalance(ctx, tx, code, assetID)
	if err != nil {
		return 0, err
	}
	if balance > math.MaxInt64-amount {
		return 0, ErrOverflow
	}
	balance += amount
	if err := writeBalance(ctx, tx, code, assetID, balance); err != nil {
		return 0, err
	}
	return balance, tx.Commit(ctx)
}

// Debit decreases the balance, rejecting when it would go negative.
func (l *PostgresLedger) Debit(ctx context.Context, code, assetID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrZeroAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	balance, err := lockBalance(ctx, tx, code, assetID)
	if err != nil {
		return 0, err
	}
	if balance < amount {
		return 0, ErrInsufficientBalance
	}
	balance -= amount
	if err := writeBalance(ctx, tx, code, assetID, balance); err != nil {
		return 0, err
	}
	return balance, tx.Commit(ctx)
}

// Transfer moves value between two accounts in a single transaction.
func (l *PostgresLedger) Transfer(ctx context.Context, fromCode, toCode, assetID string, amount int64) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrZeroAmount
	}

	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	// Lock in a fixed order to avoid deadlocks between opposing transfers.
	first, second := fromCode, toCode
	if second < first {
		first, second = second, first
	}
	if _, err := lockBalance(ctx, tx, first, assetID); err != nil {
		return TransferResult{}, err
	}
	if _, err := lockBalance(ctx, tx, second, assetID); err != nil {
		return TransferResult{}, err
	}

	fromBalance, err := lockBalance(ctx, tx, fromCode, assetID)
	if err != nil {
		return TransferResult{}, err
	}
	toBalance, err := lockBalance(ctx, tx, toCode, assetID)
	if err != nil {
		return TransferResult{}, err
	}

	if fromBalance < amount {
		return TransferResult{}, ErrInsufficientBalance
	}
	if toBalance > math.MaxInt64-amount {
		return TransferResult{}, ErrOverflow
	}

	fromBalance -= amount
	toBalance += amount
	if err := writeBalance(ctx, tx, fromCode, assetID, fromBalance); err != nil {
		return TransferResult{}, err
	}
	if err := writeBalance(ctx, tx, toCode, assetID, toBalance); err != nil {
		return TransferResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, err
	}
	return TransferResult{FromBalance: fromBalance, ToBalance: toBalance}, nil
}

func lockBalance(ctx context.Context, tx pgx.Tx, code, assetID string) (int64, error) {
	var balance int64
	err := tx.QueryRow(ctx, `SELECT amount FROM balances WHERE account_code = $1 AND asset_id = $2 FOR UPDATE`,
		code, assetID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return balance, err
}

func writeBalance(ctx context.Context, tx pgx.Tx, code, assetID string, amount int64) error {
	_, err := tx.Exec(ctx, `INSERT INTO balances (account_code, asset_id, amount) VALUES ($1, $2, $3)
        ON CONFLICT (account_code, asset_id) DO UPDATE SET amount = $3`, code, assetID, amount)
	return err
}
