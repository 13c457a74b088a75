// Package persisttest provides backends for exercising storage failures.
package persisttest

import (
	"context"
	"fmt"
	"sync"

	"milsabores/internal/persist"
	"milsabores/pkg/platform/sentinel"
)

// FaultyBackend wraps a backend and fails writes, reads or both on demand.
type FaultyBackend struct {
	persist.Backend

	mu         sync.Mutex
	failWrites bool
	failReads  bool
	writes     int
}

func NewFaultyBackend(inner persist.Backend) *FaultyBackend {
	return &FaultyBackend{Backend: inner}
}

func (f *FaultyBackend) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrites = fail
}

func (f *FaultyBackend) FailReads(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failReads = fail
}

// Writes counts successful Set and Delete calls.
func (f *FaultyBackend) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FaultyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failReads
	f.mu.Unlock()
	if fail {
		return nil, fmt.Errorf("get %q: %w", key, sentinel.ErrUnavailable)
	}
	return f.Backend.Get(ctx, key)
}

func (f *FaultyBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := f.writeAllowed(key); err != nil {
		return err
	}
	return f.Backend.Set(ctx, key, value)
}

func (f *FaultyBackend) Delete(ctx context.Context, key string) error {
	if err := f.writeAllowed(key); err != nil {
		return err
	}
	return f.Backend.Delete(ctx, key)
}

func (f *FaultyBackend) writeAllowed(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return fmt.Errorf("write %q: %w", key, sentinel.ErrUnavailable)
	}
	f.writes++
	return nil
}
