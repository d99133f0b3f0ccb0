package cache

import "sync"

// Memory is an in-memory Store used by tests and by deployments that opt out
// of durable caching. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string][]byte),
	}
}

func (m *Memory) Get(ns Namespace, model, input string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[string(buildKey(ns, model, input))]
	if !ok {
		return nil, false, nil
	}

	copied := make([]byte, len(value))
	copy(copied, value)
	return copied, true, nil
}

func (m *Memory) Put(ns Namespace, model, input string, value []byte) error {
	copied := make([]byte, len(value))
	copy(copied, value)

	m.mu.Lock()
	m.entries[string(buildKey(ns, model, input))] = copied
	m.mu.Unlock()
	return nil
}

func (m *Memory) Contains(ns Namespace, model, input string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[string(buildKey(ns, model, input))]
	return ok, nil
}

// Len returns the number of cached entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *Memory) Close() error {
	return nil
}
