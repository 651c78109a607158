package catalog

import (
	"context"
	"sync"
)

// InMemoryRepository keeps items in insertion order, the same shape the
// browser-storage revision of the register used.
type InMemoryRepository struct {
	mu    sync.RWMutex
	items []Item
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) List(_ context.Context, category string) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, 0, len(r.items))
	for _, it := range r.items {
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (r *InMemoryRepository) Get(_ context.Context, id string) (*Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(id); i >= 0 {
		item := r.items[i]
		return &item, nil
	}
	return nil, ErrNotFound
}

func (r *InMemoryRepository) Insert(_ context.Context, item *Item) error {
	r.mu.Lock()
	r.items = append(r.items, *item)
	r.mu.Unlock()
	return nil
}

func (r *InMemoryRepository) Update(_ context.Context, item *Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(item.ID)
	if i < 0 {
		return ErrNotFound
	}
	r.items[i] = *item
	return nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *InMemoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	r.items = nil
	r.mu.Unlock()
	return nil
}

// caller holds the lock
func (r *InMemoryRepository) indexOf(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}
