package ledger

import (
	"context"
	"errors"
)

var (
	// ErrInsufficientBalance occurs when a debit would drive a balance below
	// zero. The debit is rejected, never clamped.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrZeroAmount indicates a non-positive amount on a balance operation.
	ErrZeroAmount = errors.New("amount must be positive")

	// ErrOverflow indicates a credit that would exceed the int64 range. The
	// operation fails closed rather than wrapping.
	ErrOverflow = errors.New("balance overflow")
)

// TransferResult captures the outcome of an internal posting.
type TransferResult struct {
	FromBalance int64
	ToBalance   int64
}

// Ledger is the internal balance book tracking per-account, per-asset
// amounts. Accounts are created on first credit. All backends reject debits
// that would go negative and credits that would overflow, leaving state
// unchanged on rejection.
type Ledger interface {
	Balance(ctx context.Context, code, assetID string) (int64, error)
	Credit(ctx context.Context, code, assetID string, amount int64) (int64, error)
	Debit(ctx context.Context, code, assetID string, amount int64) (int64, error)
	Transfer(ctx context.Context, fromCode, toCode, assetID string, amount int64) (TransferResult, error)
}
