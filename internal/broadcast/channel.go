// Package broadcast carries storage-change notifications between tabs. It is
// the server-side stand-in for the browser's storage event: a tab writes a
// record, and every other tab sharing the backend hears which key changed.
package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	id "milsabores/pkg/domain"
)

// Change announces that the record under Key was written or removed by the
// tab Origin.
type Change struct {
	Key     string    `json:"key"`
	Origin  id.TabID  `json:"origin"`
	Deleted bool      `json:"deleted,omitempty"`
	At      time.Time `json:"at"`
}

// Handler reacts to a change. Handlers must not block for long; channels
// deliver to one handler at a time.
type Handler func(Change)

// Channel fans out changes to every subscriber, including subscribers in the
// publishing tab. Subscribers filter by Origin themselves.
type Channel interface {
	Publish(ctx context.Context, change Change) error
	Subscribe(handler Handler) (unsubscribe func())
}

func encodeChange(c Change) ([]byte, error) {
	return json.Marshal(c)
}

func decodeChange(data []byte) (Change, error) {
	var c Change
	if err := json.Unmarshal(data, &c); err != nil {
		return Change{}, fmt.Errorf("decode change: %w", err)
	}
	if c.Key == "" {
		return Change{}, fmt.Errorf("decode change: missing key")
	}
	return c, nil
}

// fanout is the local subscriber registry shared by every Channel.
type fanout struct {
	mu       sync.RWMutex
	next     int
	handlers map[int]Handler
}

func (f *fanout) Subscribe(handler Handler) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[int]Handler)
	}
	key := f.next
	f.next++
	f.handlers[key] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.handlers, key)
			f.mu.Unlock()
		})
	}
}

// dispatch calls handlers outside the registry lock so a handler may
// subscribe or unsubscribe.
func (f *fanout) dispatch(c Change) {
	f.mu.RLock()
	keys := make([]int, 0, len(f.handlers))
	for k := range f.handlers {
		keys = append(keys, k)
	}
	f.mu.RUnlock()

	slices.Sort(keys)
	for _, k := range keys {
		f.mu.RLock()
		h, ok := f.handlers[k]
		f.mu.RUnlock()
		if ok {
			h(c)
		}
	}
}
