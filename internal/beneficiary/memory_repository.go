package beneficiary

import (
	"context"
	"sort"
	"sync"
)

type memoryKey struct {
	ownerID string
	id      string
}

type memoryRepository struct {
	mu      sync.RWMutex
	storage map[memoryKey]Beneficiary
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{storage: make(map[memoryKey]Beneficiary)}
}

func (r *memoryRepository) Create(_ context.Context, b Beneficiary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storage[memoryKey{ownerID: b.OwnerID, id: b.ID}] = b
	return nil
}

func (r *memoryRepository) Get(_ context.Context, ownerID, id string) (Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.storage[memoryKey{ownerID: ownerID, id: id}]
	if !ok || !b.Active {
		return Beneficiary{}, ErrNotFound
	}
	return b, nil
}

func (r *memoryRepository) Update(_ context.Context, b Beneficiary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memoryKey{ownerID: b.OwnerID, id: b.ID}
	if _, ok := r.storage[key]; !ok {
		return ErrNotFound
	}
	r.storage[key] = b
	return nil
}

func (r *memoryRepository) ListActive(_ context.Context, ownerID string) ([]Beneficiary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Beneficiary
	for key, b := range r.storage {
		if key.ownerID == ownerID && b.Active {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
