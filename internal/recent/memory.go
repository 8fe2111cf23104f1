package recent

import (
	"context"
	"sync"
)

// MemorySlot keeps payloads in process memory
type MemorySlot struct {
	mu    sync.Mutex
	items map[string][]byte
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{items: make(map[string][]byte)}
}

func (m *MemorySlot) Read(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.items[key]), nil
}

func (m *MemorySlot) Write(_ context.Context, key string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = clone(payload)
	return nil
}

func (m *MemorySlot) Update(_ context.Context, key string, fn func([]byte) ([]byte, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(clone(m.items[key]))
	if err != nil {
		return err
	}
	m.items[key] = clone(next)
	return nil
}

// Len returns the number of stored keys
func (m *MemorySlot) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
