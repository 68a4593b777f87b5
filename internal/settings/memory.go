package settings

import (
	"context"
	"sync"
)

// MemoryStore keeps the encoded record in process memory.
// Used for development runs and tests; nothing survives a restart.
type MemoryStore struct {
	mu  sync.RWMutex
	raw string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.raw == "" {
		return nil, nil
	}
	return decode(m.raw)
}

func (m *MemoryStore) Save(ctx context.Context, s Settings) error {
	raw, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = raw
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
