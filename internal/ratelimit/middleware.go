package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"milsabores/internal/platform/metrics"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/platform/httputil"
	"milsabores/pkg/requestcontext"
)

// Middleware applies one Rule per client IP to the routes it wraps.
type Middleware struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Middleware)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func New(store Store, opts ...Option) *Middleware {
	m := &Middleware{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Limit returns middleware enforcing rule under scope. Requests pass through
// when the rule is disabled or the store fails.
func (m *Middleware) Limit(scope string, rule Rule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !rule.Enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.store.Allow(ctx, scope+":"+ip, rule.Limit, rule.Window)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed", "scope", scope, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			writeHeaders(w, result)
			if !result.Allowed {
				m.metrics.IncrementRateLimited(scope)
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"scope", scope,
					"client_ip", ip,
					"retry_after", result.RetryAfter,
				)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many attempts, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeHeaders(w http.ResponseWriter, result Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
