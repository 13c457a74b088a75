package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	id "milsabores/pkg/domain"
)

// ErrBufferFull is returned by an async publisher that cannot queue an event.
var ErrBufferFull = errors.New("audit buffer full")

// Publisher captures structured audit events. It is append-only. In sync mode
// Emit writes through to the store; with WithAsyncBuffer events are queued
// and persisted by a background Worker that Close drains.
type Publisher struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	bufferSize int
	inbox      chan Event
	closeOnce  sync.Once
	done       chan struct{}
	mu         sync.RWMutex
	closed     bool
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues up to size events and persists them in the background.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan Event, p.bufferSize)
		p.done = make(chan struct{})
		worker := NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = worker.Run(context.Background())
			if n := worker.Dropped(); n > 0 && p.logger != nil {
				p.logger.Warn("audit worker stopped with failed appends", "dropped", n)
			}
		}()
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event dropped", "action", event.Action)
		}
		return ErrBufferFull
	}
}

func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}

// Close stops accepting queued events and waits for the worker to drain.
func (p *Publisher) Close() {
	if p.inbox == nil {
		return
	}
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
		<-p.done
	})
}
