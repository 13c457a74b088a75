package checkout

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"milsabores/internal/audit"
	"milsabores/internal/cart"
	"milsabores/internal/platform/metrics"
	"milsabores/internal/session"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
)

// Archive keeps issued receipts.
type Archive interface {
	Save(ctx context.Context, receipt Receipt) error
	ListByCustomer(ctx context.Context, customer id.UserID) ([]Receipt, error)
}

// Cart is the part of the cart store checkout needs. ClearIf must remove only
// what the snapshot holds so lines added during checkout survive.
type Cart interface {
	Snapshot() cart.Cart
	ClearIf(ctx context.Context, snapshot cart.Cart) error
}

// Session is the part of the session store checkout needs.
type Session interface {
	State() session.State
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs a purchase for one tab: freeze, archive, then clear the cart.
type Service struct {
	cart    Cart
	session Session
	archive Archive
	now     func() time.Time
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   AuditPublisher
}

type Option func(*Service)

// WithArchive stores every receipt before the cart is cleared.
func WithArchive(a Archive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func NewService(c Cart, sess Session, opts ...Option) *Service {
	s := &Service{
		cart:    c,
		session: sess,
		now:     time.Now,
		tracer:  otel.Tracer("milsabores/checkout"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout issues a receipt for the current cart. An empty cart is rejected.
// If the receipt cannot be archived nothing changes. A failure to clear the
// cart afterwards is logged; the receipt stands.
func (s *Service) Checkout(ctx context.Context) (*Receipt, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Checkout")
	defer span.End()

	snapshot := s.cart.Snapshot()
	items := snapshot.Items()
	if len(items) == 0 {
		span.SetStatus(codes.Error, "empty cart")
		return nil, dErrors.New(dErrors.CodeValidation, "cart is empty")
	}

	st := s.session.State()
	receipt := Process(items, st.Identity, st.Class, s.now())
	span.SetAttributes(
		attribute.String("receipt.id", receipt.ID().String()),
		attribute.String("receipt.discount_class", string(receipt.DiscountClass())),
		attribute.Int64("receipt.total", receipt.Total().Int64()),
		attribute.Int("receipt.lines", len(items)),
	)

	if s.archive != nil {
		if err := s.archive.Save(ctx, receipt); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "archive failed")
			s.logger.ErrorContext(ctx, "failed to archive receipt", "receipt_id", receipt.ID().String(), "error", err)
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "receipt could not be saved")
		}
	}

	if err := s.cart.ClearIf(ctx, snapshot); err != nil {
		span.RecordError(err)
		s.logger.WarnContext(ctx, "receipt issued but cart not cleared", "receipt_id", receipt.ID().String(), "error", err)
	}

	s.metrics.ObserveCheckout(receipt.Total().Int64())
	s.logger.InfoContext(ctx, "checkout completed",
		"receipt_id", receipt.ID().String(),
		"discount_class", string(receipt.DiscountClass()),
		"total", receipt.Total().Int64(),
	)
	s.emit(ctx, receipt)
	return &receipt, nil
}

// History lists the signed-in customer's receipts, newest first.
func (s *Service) History(ctx context.Context) ([]Receipt, error) {
	st := s.session.State()
	if !st.Authenticated() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "sign in to see your receipts")
	}
	if s.archive == nil {
		return []Receipt{}, nil
	}
	receipts, err := s.archive.ListByCustomer(ctx, st.Identity.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "receipts could not be loaded")
	}
	return receipts, nil
}

func (s *Service) emit(ctx context.Context, receipt Receipt) {
	if s.audit == nil {
		return
	}
	event := audit.NewEvent(audit.EventCheckoutCompleted)
	event.Subject = receipt.ID().String()
	event.Reason = string(receipt.DiscountClass())
	if customer, ok := receipt.CustomerID(); ok {
		event.UserID = customer
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(audit.EventCheckoutCompleted), "error", err)
	}
}
