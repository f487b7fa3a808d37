package user

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"carebridge/internal/types"
)

// MemoryStore keeps profiles in process. It backs the memory order backend
// and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[types.ID]User
}

func NewMemoryStore(users ...User) *MemoryStore {
	m := &MemoryStore{users: make(map[types.ID]User, len(users))}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *MemoryStore) Put(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// LoadSeed decodes a JSON array of profiles. Every entry needs an id.
func LoadSeed(r io.Reader) ([]User, error) {
	var users []User
	if err := json.NewDecoder(r).Decode(&users); err != nil {
		return nil, fmt.Errorf("decode user seed: %w", err)
	}
	for i, u := range users {
		if u.ID == "" {
			return nil, fmt.Errorf("user seed entry %d: missing id", i)
		}
	}
	return users, nil
}

// NewMemoryStoreFromFile builds a MemoryStore from a LoadSeed file.
func NewMemoryStoreFromFile(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open user seed: %w", err)
	}
	defer f.Close()
	users, err := LoadSeed(f)
	if err != nil {
		return nil, err
	}
	return NewMemoryStore(users...), nil
}
