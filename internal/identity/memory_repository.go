package identity

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by ID
	phone map[string]string
}

// NewMemoryRepository builds an in-memory user store for testing and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User), phone: make(map[string]string)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.phone[user.Phone]; exists {
		return ErrAlreadyRegistered
	}
	r.users[user.ID] = user
	r.phone[user.Phone] = user.ID
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotRegistered
	}
	return user, nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.phone[phone]
	if !ok {
		return User{}, ErrNotRegistered
	}
	return r.users[id], nil
}

func (r *memoryRepository) ListIDs(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.users))
	for id, u := range r.users {
		if u.Active {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *memoryRepository) AddSent(_ context.Context, id string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotRegistered
	}
	user.TotalSent += amount
	r.users[id] = user
	return nil
}

func (r *memoryRepository) AddReceived(_ context.Context, id string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotRegistered
	}
	user.TotalReceived += amount
	r.users[id] = user
	return nil
}
