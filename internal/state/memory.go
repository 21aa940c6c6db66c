package state

import (
	"context"
	"sync"
)

// MemoryStore is the in-process Store used by tests and the serve API's
// zero-config mode.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]Streak
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]Streak)}
}

func (ms *MemoryStore) Get(_ context.Context, key string) (Streak, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.m[SafeKey(key)], nil
}

func (ms *MemoryStore) Put(_ context.Context, key string, s Streak) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.m[SafeKey(key)] = s
	return nil
}

func (ms *MemoryStore) Clear(_ context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.m, SafeKey(key))
	return nil
}

func (ms *MemoryStore) Snapshot(_ context.Context) (map[string]Streak, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make(map[string]Streak, len(ms.m))
	for k, v := range ms.m {
		out[k] = v
	}
	return out, nil
}
