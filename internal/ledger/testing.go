package ledger

// SeedBalance is a test helper that sets a balance directly when using the
// in-memory ledger.
func SeedBalance(l Ledger, code, assetID string, amount int64) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.balances[balanceKey{code: code, assetID: assetID}] = amount
	}
}
