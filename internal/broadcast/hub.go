package broadcast

import (
	"context"
	"sync"

	"milsabores/pkg/platform/sentinel"
)

// Hub is the in-process Channel used when every tab lives in one process.
// Publish only enqueues; a single goroutine delivers changes in publish
// order, so a handler may safely take locks held by a publisher.
type Hub struct {
	fanout

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []Change
	closed  bool
	pending int // published but not yet dispatched
	done    chan struct{}
}

func NewHub() *Hub {
	h := &Hub{done: make(chan struct{})}
	h.cond = sync.NewCond(&h.mu)
	go h.loop()
	return h
}

func (h *Hub) Publish(_ context.Context, change Change) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return sentinel.ErrClosed
	}
	h.pending++
	h.queue = append(h.queue, change)
	h.cond.Broadcast()
	return nil
}

func (h *Hub) loop() {
	defer close(h.done)
	for {
		h.mu.Lock()
		for len(h.queue) == 0 && !h.closed {
			h.cond.Wait()
		}
		if len(h.queue) == 0 {
			h.mu.Unlock()
			return
		}
		change := h.queue[0]
		h.queue = h.queue[1:]
		h.mu.Unlock()

		h.dispatch(change)

		h.mu.Lock()
		h.pending--
		h.cond.Broadcast()
		h.mu.Unlock()
	}
}

// Flush blocks until every change published so far, and every change those
// deliveries published in turn, has been handled.
// It must not be called from a handler.
func (h *Hub) Flush() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for h.pending > 0 {
		h.cond.Wait()
	}
}

// Close delivers what is queued and stops the hub.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		<-h.done
		return
	}
	h.closed = true
	h.cond.Broadcast()
	h.mu.Unlock()
	<-h.done
}
