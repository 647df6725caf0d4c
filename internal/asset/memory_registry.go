package asset

import (
	"context"
	"sort"
	"sync"
)

type memoryRegistry struct {
	mu        sync.RWMutex
	supported map[string]bool
}

// NewMemoryRegistry builds an in-memory asset registry seeded with the
// provided identifiers.
func NewMemoryRegistry(seed ...string) Registry {
	supported := make(map[string]bool, len(seed))
	for _, id := range seed {
		supported[id] = true
	}
	return &memoryRegistry{supported: supported}
}

func (r *memoryRegistry) IsSupported(_ context.Context, assetID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.supported[assetID], nil
}

func (r *memoryRegistry) Add(_ context.Context, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supported[assetID] = true
	return nil
}

func (r *memoryRegistry) Remove(_ context.Context, assetID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.supported, assetID)
	return nil
}

func (r *memoryRegistry) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.supported))
	for id := range r.supported {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
