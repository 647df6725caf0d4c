package payment

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]Record
	bySender map[string][]string
}

// NewMemoryRepository constructs an in-memory history store for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{byID: make(map[string]Record), bySender: make(map[string][]string)}
}

func (r *memoryRepository) Append(_ context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[record.ID] = record
	r.bySender[record.SenderID] = append(r.bySender[record.SenderID], record.ID)
	return nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return record, nil
}

func (r *memoryRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func (r *memoryRepository) ListBySender(_ context.Context, senderID string, limit int) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 {
		limit = 50
	}
	ids := r.bySender[senderID]
	out := make([]Record, 0, limit)
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.byID[ids[i]])
	}
	return out, nil
}
