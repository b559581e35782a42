package cache

import (
	"context"
	"sync"

	"github.com/satorioh/dashop/internal/entity"
)

// MemoryStore is an in-process Store used in tests and local runs without
// Redis. Carts are deep-copied on both paths so callers never share state
// with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[int]entity.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[int]entity.Cart)}
}

func (s *MemoryStore) Get(_ context.Context, userID int) (entity.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCart(s.carts[userID]), nil
}

func (s *MemoryStore) Put(_ context.Context, userID int, cart entity.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[userID] = copyCart(cart)
	return nil
}

func copyCart(cart entity.Cart) entity.Cart {
	out := entity.Cart{}
	for id, entry := range cart {
		out[id] = entry
	}
	return out
}
