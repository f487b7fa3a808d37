package order

import (
	"context"
	"sort"
	"sync"

	"carebridge/internal/types"
)

// MemoryStore is an in-process Repository for local runs and tests.
// Every read and write copies the order so callers never share state.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[types.ID]*Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[types.ID]*Order)}
}

func (m *MemoryStore) Create(_ context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[o.ID]; exists {
		return ErrConflict
	}
	m.orders[o.ID] = o.clone()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.clone(), nil
}

func (m *MemoryStore) ListVisible(_ context.Context, partnerID types.ID, bucket Category) ([]*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Order, 0, len(m.orders))
	for _, o := range m.orders {
		if (o.Status == StatusPending && o.Bucket() == bucket) || o.AssignedTo(partnerID) {
			out = append(out, o.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) Swap(_ context.Context, from Status, version int, next *Order) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.orders[next.ID]
	if !ok {
		return false, ErrNotFound
	}
	if cur.Status != from || cur.StatusVersion != version {
		return false, nil
	}
	m.orders[next.ID] = next.clone()
	return true, nil
}
