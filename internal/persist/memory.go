package persist

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"milsabores/pkg/platform/sentinel"
)

// MemoryBackend keeps records in process. Values are copied on the way in and
// out so callers cannot alias stored bytes.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.records[key]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", key, sentinel.ErrNotFound)
	}
	return slices.Clone(v), nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	if !ValidKey(key) {
		return fmt.Errorf("set %q: invalid key", key)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[key] = slices.Clone(value)
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.records, key)
	return nil
}

// Keys lists stored keys in sorted order.
func (b *MemoryBackend) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.records))
	for k := range b.records {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
