// Package session keeps track of who is signed in on a tab. The session is
// persisted under the session key of the shared backend so every tab, and a
// reload of the same tab, sees the same identity.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"milsabores/internal/audit"
	"milsabores/internal/auth/models"
	"milsabores/internal/auth/token"
	"milsabores/internal/broadcast"
	"milsabores/internal/persist"
	"milsabores/internal/platform/metrics"
	"milsabores/internal/pricing"
	"milsabores/pkg/attrs"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/platform/sentinel"
)

// Authenticator is the Authentication service as the session sees it.
type Authenticator interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// DefaultTimeout bounds each Authenticator call.
const DefaultTimeout = 10 * time.Second

// ErrSuperseded is returned by a login, register or logout that finished
// after a later one had already committed. Its result is discarded.
var ErrSuperseded = dErrors.New(dErrors.CodeConflict, "superseded by a newer session change")

// Store owns one tab's session. Every Login, Register and Logout draws a
// ticket when it starts; a call commits only if no call that started after
// it has committed first.
type Store struct {
	backend    persist.Backend
	auth       Authenticator
	classifier Classifier
	now        func() time.Time
	timeout    time.Duration
	tab        id.TabID
	logger     *slog.Logger
	metrics    *metrics.Metrics
	audit      AuditPublisher

	mu        sync.Mutex
	identity  *models.Identity
	token     string
	issued    uint64
	committed uint64

	subsMu  sync.Mutex
	subs    map[int]func(State)
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

func WithClassifier(c Classifier) Option {
	return func(s *Store) {
		s.classifier = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithTimeout overrides DefaultTimeout; non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithTab(tab id.TabID) Option {
	return func(s *Store) {
		s.tab = tab
	}
}

func New(backend persist.Backend, auth Authenticator, opts ...Option) *Store {
	s := &Store{
		backend:    backend,
		auth:       auth,
		classifier: DefaultClassifier(),
		now:        time.Now,
		timeout:    DefaultTimeout,
		logger:     slog.Default(),
		subs:       make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current session. The discount class is computed at the
// time of the call.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	if s.identity == nil {
		return unauthenticated()
	}
	identity := s.identity.Clone()
	return State{
		Identity: &identity,
		Token:    s.token,
		Class:    s.classifier.Classify(identity, s.now()),
	}
}

// Restore reloads the session from storage. Missing, corrupt or expired
// records all yield an unauthenticated state; corrupt and expired records
// are removed. Restore never fails.
func (s *Store) Restore(ctx context.Context) State {
	s.mu.Lock()
	identity, credential, result := s.read(ctx)
	changed := !sameIdentity(s.identity, identity) || s.token != credential
	s.identity, s.token = identity, credential
	st := s.stateLocked()
	s.mu.Unlock()

	s.metrics.IncrementSessionRestore(result)
	if changed {
		s.notify(st)
	}
	return st
}

func (s *Store) read(ctx context.Context) (*models.Identity, string, string) {
	raw, err := s.backend.Get(ctx, persist.KeySession)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, "", "unauthenticated"
	}
	if err != nil {
		s.logger.WarnContext(ctx, "session storage unavailable, continuing as guest", "tab_id", s.tab.String(), "error", err)
		return nil, "", "unauthenticated"
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "discarding unreadable session record", "tab_id", s.tab.String(), "error", err)
		s.discard(ctx)
		s.logAudit(ctx, audit.EventSessionRecovered, "reason", dErrors.MessageOf(err))
		return nil, "", "recovered"
	}
	if token.Expired(rec.CredentialToken, s.now()) {
		s.logger.InfoContext(ctx, "session credential expired", "tab_id", s.tab.String(), "user_id", rec.Identity.ID.String())
		s.discard(ctx)
		return nil, "", "expired"
	}
	return rec.Identity, rec.CredentialToken, "authenticated"
}

func (s *Store) discard(ctx context.Context) {
	if err := s.backend.Delete(ctx, persist.KeySession); err != nil {
		s.logger.WarnContext(ctx, "failed to remove session record", "error", err)
	}
}

// Login authenticates and, on success, persists and publishes the session.
// On failure the stored session is unchanged.
func (s *Store) Login(ctx context.Context, emailAddr, password string) (State, error) {
	creds := models.Credentials{Email: strings.TrimSpace(emailAddr), Password: password}
	if creds.Email == "" || creds.Password == "" {
		return s.State(), dErrors.New(dErrors.CodeValidation, "email and password are required")
	}
	return s.authenticate(ctx, "login", creds.Email, func(callCtx context.Context) (*models.AuthResult, error) {
		return s.auth.Login(callCtx, creds)
	})
}

// Register creates an account and signs it in through the same commit path
// as Login.
func (s *Store) Register(ctx context.Context, reg models.Registration) (State, error) {
	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return s.State(), err
	}
	return s.authenticate(ctx, "register", reg.Email, func(callCtx context.Context) (*models.AuthResult, error) {
		return s.auth.Register(callCtx, reg)
	})
}

func (s *Store) authenticate(
	ctx context.Context,
	op string,
	emailAddr string,
	call func(context.Context) (*models.AuthResult, error),
) (State, error) {
	ticket := s.nextTicket()

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	res, err := call(callCtx)
	cancel()
	s.metrics.ObserveAuthLatency(time.Since(start))

	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err == nil && res == nil {
		err = dErrors.New(dErrors.CodeInternal, "authentication service returned no result")
	}
	if err == nil {
		if vErr := res.Identity.Validate(); vErr != nil {
			err = dErrors.Wrap(vErr, dErrors.CodeInternal, "authentication service returned an invalid identity")
		}
	}
	if err != nil {
		err = classifyAuthError(ctx, err)
		s.metrics.IncrementAuthAttempt(op, outcomeOf(err))
		s.logAudit(ctx, audit.EventAuthFailed,
			"email", emailAddr,
			"operation", op,
			"reason", string(dErrors.CodeOf(err)),
		)
		return s.State(), err
	}

	st, err := s.commit(ctx, ticket, res.Identity, res.Token)
	if err != nil {
		s.metrics.IncrementAuthAttempt(op, outcomeOf(err))
		return st, err
	}
	s.metrics.IncrementAuthAttempt(op, "success")

	event := audit.EventSessionStarted
	if op == "register" {
		event = audit.EventUserRegistered
	}
	s.logAudit(ctx, event,
		"user_id", res.Identity.ID,
		"email", res.Identity.Email,
		"discount_class", string(st.Class),
	)
	return st, nil
}

func (s *Store) commit(ctx context.Context, ticket uint64, identity models.Identity, credential string) (State, error) {
	s.mu.Lock()
	if ticket <= s.committed {
		st := s.stateLocked()
		s.mu.Unlock()
		return st, ErrSuperseded
	}

	data, err := encodeRecord(identity, credential)
	if err != nil {
		st := s.stateLocked()
		s.mu.Unlock()
		return st, err
	}
	if err := s.backend.Set(ctx, persist.KeySession, data); err != nil {
		st := s.stateLocked()
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "failed to persist session", "tab_id", s.tab.String(), "error", err)
		return st, dErrors.Wrap(err, dErrors.CodeUnavailable, "session could not be saved")
	}

	clone := identity.Clone()
	s.committed = ticket
	s.identity = &clone
	s.token = credential
	st := s.stateLocked()
	s.mu.Unlock()

	s.notify(st)
	return st, nil
}

// Logout removes the persisted session and signs the tab out.
func (s *Store) Logout(ctx context.Context) error {
	ticket := s.nextTicket()

	s.mu.Lock()
	if ticket <= s.committed {
		s.mu.Unlock()
		return ErrSuperseded
	}
	if err := s.backend.Delete(ctx, persist.KeySession); err != nil {
		s.mu.Unlock()
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "session could not be removed")
	}
	previous := s.identity
	s.committed = ticket
	s.identity = nil
	s.token = ""
	st := s.stateLocked()
	s.mu.Unlock()

	if previous == nil {
		return nil
	}
	s.notify(st)
	s.logAudit(ctx, audit.EventSessionEnded, "user_id", previous.ID, "email", previous.Email)
	return nil
}

func (s *Store) nextTicket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Subscribe registers fn for every session change, local or cross-tab.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
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

func (s *Store) notify(st State) {
	s.subsMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

// Watch restores the session whenever another tab changes the session
// record.
func (s *Store) Watch(ch broadcast.Channel) (unsubscribe func()) {
	return ch.Subscribe(func(change broadcast.Change) {
		if change.Key != persist.KeySession || change.Origin == s.tab {
			return
		}
		s.metrics.IncrementCrossTabRefresh("session")
		s.Restore(context.Background())
	})
}

func (s *Store) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	attributes = append(attributes, "tab_id", s.tab.String())
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.audit == nil {
		return
	}
	e := audit.NewEvent(event)
	e.TabID = s.tab
	e.Email = attrs.ExtractString(attributes, "email")
	e.Reason = attrs.ExtractString(attributes, "reason")
	e.Subject = persist.KeySession
	if userID, ok := attrs.Lookup[id.UserID](attributes, "user_id"); ok {
		e.UserID = userID
	}
	if err := s.audit.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func sameIdentity(a, b *models.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Name != b.Name || a.Email != b.Email || a.Role != b.Role {
		return false
	}
	if a.BirthDate == nil || b.BirthDate == nil {
		return a.BirthDate == b.BirthDate
	}
	return *a.BirthDate == *b.BirthDate
}

// classifyAuthError maps an Authenticator failure onto the session's
// error codes. Caller cancellation wins over anything the call reported.
func classifyAuthError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		if dErrors.HasCode(err, dErrors.CodeCanceled) {
			return err
		}
		return dErrors.Wrap(ctx.Err(), dErrors.CodeCanceled, "authentication abandoned")
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return err
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "authentication service timed out")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "authentication failed")
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	case dErrors.IsRetryable(err):
		return "transient"
	case dErrors.HasCode(err, dErrors.CodeCanceled):
		return "abandoned"
	case dErrors.HasCode(err, dErrors.CodeInternal):
		return "error"
	}
	return "rejected"
}

// Class is shorthand for the current discount class.
func (s *Store) Class() pricing.DiscountClass {
	return s.State().Class
}
