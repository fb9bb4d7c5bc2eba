package dao

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps progression for the lifetime of the process only.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]Progression
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]Progression)}
}

func (m *MemoryStore) GetUser(_ context.Context, key string) (Progression, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.users[key]
	if !ok {
		return DefaultProgression(), nil
	}
	return Progression{Coins: p.Coins, Inventory: slices.Clone(p.Inventory)}, nil
}

func (m *MemoryStore) SaveUser(_ context.Context, key string, p Progression) error {
	inv := slices.Clone(p.Inventory)
	if inv == nil {
		inv = []string{}
	}
	m.mu.Lock()
	m.users[key] = Progression{Coins: p.Coins, Inventory: inv}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Close() error { return nil }
