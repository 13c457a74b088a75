package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"milsabores/internal/audit"
	"milsabores/internal/broadcast"
	"milsabores/internal/persist"
	"milsabores/internal/platform/metrics"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/platform/sentinel"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Store owns one tab's cart. Mutations build the next cart, persist it, and
// only then swap it in, so memory and storage never disagree. Subscribers
// run after the lock is released.
type Store struct {
	backend persist.Backend
	tab     id.TabID
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher

	mu   sync.Mutex
	cart Cart

	subsMu  sync.Mutex
	subs    map[int]func(Cart)
	nextSub int
}

type Option func(*Store)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Store) {
		s.audit = publisher
	}
}

// WithTab tags the store's log lines and change filtering with tab.
func WithTab(tab id.TabID) Option {
	return func(s *Store) {
		s.tab = tab
	}
}

func NewStore(backend persist.Backend, opts ...Option) *Store {
	s := &Store{backend: backend, logger: slog.Default(), subs: make(map[int]func(Cart))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory cart with the persisted record. A missing
// record is an empty cart; an unreadable or invalid one is removed and
// treated as empty. Load never fails.
func (s *Store) Load(ctx context.Context) Cart {
	s.mu.Lock()
	loaded := s.read(ctx)
	changed := !loaded.Equal(s.cart)
	s.cart = loaded
	s.mu.Unlock()

	if changed {
		s.notify(loaded)
	}
	return loaded
}

func (s *Store) read(ctx context.Context) Cart {
	raw, err := s.backend.Get(ctx, persist.KeyCart)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Cart{}
	}
	if err != nil {
		s.logger.WarnContext(ctx, "cart storage unavailable, keeping it empty", "tab_id", s.tab.String(), "error", err)
		return Cart{}
	}
	c, err := Decode(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable cart record", "tab_id", s.tab.String(), "error", err)
		if delErr := s.backend.Delete(ctx, persist.KeyCart); delErr != nil {
			s.logger.WarnContext(ctx, "failed to remove unreadable cart record", "error", delErr)
		}
		s.emit(ctx, audit.EventCartRecovered, err.Error())
		return Cart{}
	}
	return c
}

func (s *Store) Add(ctx context.Context, p Product) error {
	return s.mutate(ctx, "add", func(c Cart) (Cart, error) {
		return c.Add(p)
	})
}

// Decrement of an unknown code is a no-op and writes nothing.
func (s *Store) Decrement(ctx context.Context, code id.ProductCode) error {
	return s.mutate(ctx, "decrement", func(c Cart) (Cart, error) {
		return c.Decrement(code), nil
	})
}

func (s *Store) Remove(ctx context.Context, code id.ProductCode) error {
	return s.mutate(ctx, "remove", func(c Cart) (Cart, error) {
		return c.Remove(code), nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, "clear", func(Cart) (Cart, error) {
		return Cart{}, nil
	})
}

// ClearIf removes exactly the lines and units of snapshot, atomically with
// respect to other mutations. Anything added since snapshot was taken stays.
func (s *Store) ClearIf(ctx context.Context, snapshot Cart) error {
	return s.mutate(ctx, "clear", func(c Cart) (Cart, error) {
		return c.Without(snapshot), nil
	})
}

func (s *Store) mutate(ctx context.Context, op string, fn func(Cart) (Cart, error)) error {
	s.mu.Lock()
	next, err := fn(s.cart)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if next.Equal(s.cart) && op != "clear" {
		s.mu.Unlock()
		return nil
	}

	data, err := Encode(next)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.backend.Set(ctx, persist.KeyCart, data); err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "failed to persist cart", "operation", op, "tab_id", s.tab.String(), "error", err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "cart could not be saved")
	}
	s.cart = next
	s.mu.Unlock()

	s.metrics.IncrementCartMutation(op)
	s.notify(next)
	return nil
}

// Snapshot returns the current cart value.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

func (s *Store) Items() []LineItem  { return s.Snapshot().Items() }
func (s *Store) Len() int           { return s.Snapshot().Len() }
func (s *Store) TotalQuantity() int { return s.Snapshot().TotalQuantity() }

func (s *Store) Get(code id.ProductCode) (LineItem, bool) {
	return s.Snapshot().Get(code)
}

// Subscribe registers fn for every committed change, local or cross-tab.
func (s *Store) Subscribe(fn func(Cart)) (unsubscribe func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	key := s.nextSub
	s.nextSub++
	s.subs[key] = fn
	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		delete(s.subs, key)
	}
}

func (s *Store) notify(c Cart) {
	s.subsMu.Lock()
	fns := make([]func(Cart), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}

// Watch reloads the cart whenever another tab changes the cart record.
func (s *Store) Watch(ch broadcast.Channel) (unsubscribe func()) {
	return ch.Subscribe(func(change broadcast.Change) {
		if change.Key != persist.KeyCart || change.Origin == s.tab {
			return
		}
		s.metrics.IncrementCrossTabRefresh("cart")
		s.Load(context.Background())
	})
}

func (s *Store) emit(ctx context.Context, action audit.AuditEvent, reason string) {
	if s.audit == nil {
		return
	}
	event := audit.NewEvent(action)
	event.TabID = s.tab
	event.Subject = persist.KeyCart
	event.Reason = reason
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", string(action), "error", err)
	}
}
