// Package storefront composes the per-tab stores over a shared backend and
// notification channel.
package storefront

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"milsabores/internal/audit"
	"milsabores/internal/broadcast"
	"milsabores/internal/cart"
	"milsabores/internal/checkout"
	"milsabores/internal/persist"
	"milsabores/internal/platform/metrics"
	"milsabores/internal/pricing"
	"milsabores/internal/session"
	id "milsabores/pkg/domain"
)

// Deps is everything the tabs of one storefront share.
type Deps struct {
	Backend     persist.Backend
	Channel     broadcast.Channel
	Auth        session.Authenticator
	Archive     checkout.Archive
	Classifier  session.Classifier
	AuthTimeout time.Duration
	Clock       func() time.Time
	Logger      *slog.Logger
	Metrics     *metrics.Metrics
	Audit       *audit.Publisher
}

// Tab is one session and cart pair plus the checkout that spans them.
type Tab struct {
	ID       id.TabID
	Session  *session.Store
	Cart     *cart.Store
	Checkout *checkout.Service

	unwatch []func()
}

// OpenTab builds a tab, subscribes it to cross-tab changes and loads its
// persisted state.
func OpenTab(ctx context.Context, deps Deps, tabID id.TabID) *Tab {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	classifier := deps.Classifier
	if classifier == (session.Classifier{}) {
		classifier = session.DefaultClassifier()
	}
	backend := broadcast.Notify(deps.Backend, deps.Channel, tabID, logger)
	tabLogger := logger.With("tab_id", tabID.String())

	sessionOpts := []session.Option{
		session.WithTab(tabID),
		session.WithLogger(tabLogger),
		session.WithMetrics(deps.Metrics),
		session.WithClassifier(classifier),
		session.WithClock(clock),
		session.WithTimeout(deps.AuthTimeout),
	}
	cartOpts := []cart.Option{
		cart.WithTab(tabID),
		cart.WithLogger(tabLogger),
		cart.WithMetrics(deps.Metrics),
	}
	checkoutOpts := []checkout.Option{
		checkout.WithClock(clock),
		checkout.WithLogger(tabLogger),
		checkout.WithMetrics(deps.Metrics),
	}
	if deps.Audit != nil {
		sessionOpts = append(sessionOpts, session.WithAuditPublisher(deps.Audit))
		cartOpts = append(cartOpts, cart.WithAuditPublisher(deps.Audit))
		checkoutOpts = append(checkoutOpts, checkout.WithAuditPublisher(deps.Audit))
	}
	if deps.Archive != nil {
		checkoutOpts = append(checkoutOpts, checkout.WithArchive(deps.Archive))
	}

	t := &Tab{
		ID:      tabID,
		Session: session.New(backend, deps.Auth, sessionOpts...),
		Cart:    cart.NewStore(backend, cartOpts...),
	}
	t.Checkout = checkout.NewService(t.Cart, t.Session, checkoutOpts...)
	t.unwatch = []func(){t.Session.Watch(deps.Channel), t.Cart.Watch(deps.Channel)}

	t.Session.Restore(ctx)
	t.Cart.Load(ctx)
	return t
}

// Quote prices the cart for the current session.
func (t *Tab) Quote() pricing.Quote {
	return pricing.Price(t.Cart.Items(), t.Session.State().Class)
}

// Close stops cross-tab refreshes. The persisted state is kept.
func (t *Tab) Close() {
	for _, fn := range t.unwatch {
		fn()
	}
	t.unwatch = nil
}

// Tabs opens tabs on first use. Tabs idle for longer than the idle TTL, and
// the least recently used ones beyond the open limit, are closed.
type Tabs struct {
	deps    Deps
	maxOpen int
	idleTTL time.Duration
	now     func() time.Time

	mu   sync.Mutex
	tabs map[id.TabID]*list.Element
	lru  *list.List // of *openTab, most recently used first
}

type openTab struct {
	tab      *Tab
	lastUsed time.Time
}

type TabsOption func(*Tabs)

// WithMaxOpen caps the open tabs. Zero means no cap.
func WithMaxOpen(n int) TabsOption {
	return func(t *Tabs) {
		if n >= 0 {
			t.maxOpen = n
		}
	}
}

// WithIdleTTL closes tabs not used for d. Zero keeps idle tabs open.
func WithIdleTTL(d time.Duration) TabsOption {
	return func(t *Tabs) {
		if d >= 0 {
			t.idleTTL = d
		}
	}
}

func NewTabs(deps Deps, opts ...TabsOption) *Tabs {
	t := &Tabs{
		deps: deps,
		now:  deps.Clock,
		tabs: make(map[id.TabID]*list.Element),
		lru:  list.New(),
	}
	if t.now == nil {
		t.now = time.Now
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Get returns the tab with tabID, opening it if needed. Opening reads the
// backend, so it runs without holding the lock; when two callers race for the
// same ID the first one stored wins and the other tab is closed.
func (t *Tabs) Get(ctx context.Context, tabID id.TabID) *Tab {
	if tab, ok := t.lookup(tabID); ok {
		return tab
	}

	opened := OpenTab(ctx, t.deps, tabID)

	t.mu.Lock()
	if el, ok := t.tabs[tabID]; ok {
		t.touch(el)
		tab := el.Value.(*openTab).tab
		t.mu.Unlock()
		opened.Close()
		return tab
	}
	t.tabs[tabID] = t.lru.PushFront(&openTab{tab: opened, lastUsed: t.now()})
	evicted := t.evict()
	t.mu.Unlock()

	t.closeAll(evicted)
	return opened
}

func (t *Tabs) lookup(tabID id.TabID) (*Tab, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	el, ok := t.tabs[tabID]
	if !ok {
		return nil, false
	}
	t.touch(el)
	return el.Value.(*openTab).tab, true
}

// touch must be called with t.mu held.
func (t *Tabs) touch(el *list.Element) {
	el.Value.(*openTab).lastUsed = t.now()
	t.lru.MoveToFront(el)
}

// evict unlinks expired and over-limit tabs, never the most recent one. It
// must be called with t.mu held; the caller closes what it returns.
func (t *Tabs) evict() []*Tab {
	var out []*Tab
	now := t.now()
	for el := t.lru.Back(); el != nil && el != t.lru.Front(); el = t.lru.Back() {
		entry := el.Value.(*openTab)
		overLimit := t.maxOpen > 0 && t.lru.Len() > t.maxOpen
		expired := t.idleTTL > 0 && now.Sub(entry.lastUsed) > t.idleTTL
		if !overLimit && !expired {
			break
		}
		t.lru.Remove(el)
		delete(t.tabs, entry.tab.ID)
		out = append(out, entry.tab)
	}
	if len(out) > 0 {
		t.deps.Metrics.IncrementTabsEvicted(len(out))
	}
	return out
}

func (t *Tabs) closeAll(tabs []*Tab) {
	for _, tab := range tabs {
		tab.Close()
	}
}

func (t *Tabs) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tabs)
}

func (t *Tabs) Close() {
	t.mu.Lock()
	all := make([]*Tab, 0, len(t.tabs))
	for el := t.lru.Front(); el != nil; el = el.Next() {
		all = append(all, el.Value.(*openTab).tab)
	}
	t.tabs = make(map[id.TabID]*list.Element)
	t.lru.Init()
	t.mu.Unlock()

	t.closeAll(all)
}
