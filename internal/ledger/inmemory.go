package ledger

import (
	"context"
	"math"
	"sync"
)

type balanceKey struct {
	code    string
	assetID string
}

type inMemoryLedger struct {
	mu       sync.RWMutex
	balances map[balanceKey]int64
}

// NewInMemory creates a concurrency-safe in-memory balance book used in tests
// and when no database is configured.
func NewInMemory() Ledger {
	return &inMemoryLedger{balances: make(map[balanceKey]int64)}
}

func (l *inMemoryLedger) Balance(_ context.Context, code, assetID string) (int64, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balances[balanceKey{code: code, assetID: assetID}], nil
}

func (l *inMemoryLedger) Credit(_ context.Context, code, assetID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{code: code, assetID: assetID}
	balance := l.balances[key]
	if balance > math.MaxInt64-amount {
		return 0, ErrOverflow
	}
	balance += amount
	l.balances[key] = balance
	return balance, nil
}

func (l *inMemoryLedger) Debit(_ context.Context, code, assetID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := balanceKey{code: code, assetID: assetID}
	balance := l.balances[key]
	if balance < amount {
		return 0, ErrInsufficientBalance
	}
	balance -= amount
	l.balances[key] = balance
	return balance, nil
}

func (l *inMemoryLedger) Transfer(_ context.Context, fromCode, toCode, assetID string, amount int64) (TransferResult, error) {
	if amount <= 0 {
		return TransferResult{}, ErrZeroAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fromKey := balanceKey{code: fromCode, assetID: assetID}
	toKey := balanceKey{code: toCode, assetID: assetID}

	fromBalance := l.balances[fromKey]
	toBalance := l.balances[toKey]

	if fromBalance < amount {
		return TransferResult{}, ErrInsufficientBalance
	}
	if toBalance > math.MaxInt64-amount {
		return TransferResult{}, ErrOverflow
	}

	fromBalance -= amount
	toBalance += amount
	l.balances[fromKey] = fromBalance
	l.balances[toKey] = toBalance

	return TransferResult{FromBalance: fromBalance, ToBalance: toBalance}, nil
}
