package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"
)

func TestInMemoryTransferMaintainsTotal(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	SeedBalance(l, "user:a", "USDC", 10_000)

	res, err := l.Transfer(ctx, "user:a", "user:b", "USDC", 1_500)
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}
	if res.FromBalance != 8_500 {
		t.Fatalf("expected from balance 8500, got %d", res.FromBalance)
	}
	if res.ToBalance != 1_500 {
		t.Fatalf("expected to balance 1500, got %d", res.ToBalance)
	}

	a, _ := l.Balance(ctx, "user:a", "USDC")
	b, _ := l.Balance(ctx, "user:b", "USDC")
	if a+b != 10_000 {
		t.Fatalf("ledger not balanced, total=%d", a+b)
	}
}

func TestInMemoryDebitNeverGoesNegative(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	SeedBalance(l, "user:a", "USDC", 100)

	if _, err := l.Debit(ctx, "user:a", "USDC", 101); err != ErrInsufficientBalance {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	balance, _ := l.Balance(ctx, "user:a", "USDC")
	if balance != 100 {
		t.Fatalf("rejected debit mutated balance: %d", balance)
	}
}

func TestInMemoryCreditOverflowFailsClosed(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	SeedBalance(l, "user:a", "USDC", math.MaxInt64-10)

	if _, err := l.Credit(ctx, "user:a", "USDC", 11); err != ErrOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
	balance, _ := l.Balance(ctx, "user:a", "USDC")
	if balance != math.MaxInt64-10 {
		t.Fatalf("overflowing credit mutated balance: %d", balance)
	}
}

func TestInMemoryRejectsZeroAmounts(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()

	if _, err := l.Credit(ctx, "user:a", "USDC", 0); err != ErrZeroAmount {
		t.Fatalf("expected zero amount on credit, got %v", err)
	}
	if _, err := l.Debit(ctx, "user:a", "USDC", -5); err != ErrZeroAmount {
		t.Fatalf("expected zero amount on debit, got %v", err)
	}
	if _, err := l.Transfer(ctx, "user:a", "user:b", "USDC", 0); err != ErrZeroAmount {
		t.Fatalf("expected zero amount on transfer, got %v", err)
	}
}

func TestInMemoryAssetsAreIndependent(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	SeedBalance(l, "user:a", "USDC", 500)

	if _, err := l.Debit(ctx, "user:a", "USDT", 1); err != ErrInsufficientBalance {
		t.Fatalf("expected empty USDT balance, got %v", err)
	}
}

func TestInMemoryConcurrentTransfers(t *testing.T) {
	l := NewInMemory()
	ctx := context.Background()
	SeedBalance(l, "user:a", "USDC", 100_000)

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := l.Transfer(ctx, "user:a", "user:b", "USDC", 500); err != nil {
				t.Errorf("transfer %s failed: %v", fmt.Sprintf("tx-%d", i), err)
			}
		}(i)
	}
	wg.Wait()

	a, _ := l.Balance(ctx, "user:a", "USDC")
	b, _ := l.Balance(ctx, "user:b", "USDC")
	if a+b != 100_000 {
		t.Fatalf("ledger not balanced after concurrency, total=%d", a+b)
	}
}
