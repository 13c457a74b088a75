package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the commerce session core.
// Every method is safe on a nil receiver so components can run unobserved.
type Metrics struct {
	LoginAttempts     *prometheus.CounterVec
	AuthLatency       prometheus.Histogram
	SessionRestores   *prometheus.CounterVec
	CrossTabRefreshes *prometheus.CounterVec
	CartMutations     *prometheus.CounterVec
	Checkouts         prometheus.Counter
	CheckoutTotal     prometheus.Histogram
	MigrationsApplied prometheus.Counter
	RateLimited       *prometheus.CounterVec
	TabsEvicted       prometheus.Counter
}

// New creates and registers all metrics on reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "milsabores_auth_attempts_total",
			Help: "Authentication attempts by operation and outcome",
		}, []string{"operation", "outcome"}), // outcome: success, rejected, transient, superseded

		AuthLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "milsabores_auth_duration_seconds",
			Help:    "Latency of calls to the authentication service",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		SessionRestores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "milsabores_session_restores_total",
			Help: "Session restores by result",
		}, []string{"result"}), // result: authenticated, unauthenticated, recovered

		CrossTabRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "milsabores_cross_tab_refreshes_total",
			Help: "Reloads triggered by another tab's storage change",
		}, []string{"store"}),

		CartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "milsabores_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"operation"}),

		Checkouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "milsabores_checkouts_total",
			Help: "Receipts issued",
		}),

		CheckoutTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "milsabores_checkout_total_amount",
			Help:    "Receipt totals in minor currency units",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 12),
		}),

		MigrationsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "milsabores_migrations_applied_total",
			Help: "Storage migrations applied at load time",
		}),

		RateLimited: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "milsabores_rate_limited_total",
			Help: "Requests rejected by a rate limit rule",
		}, []string{"scope"}),

		TabsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "milsabores_tabs_evicted_total",
			Help: "Open tabs closed for being idle or over the open limit",
		}),
	}
}

func (m *Metrics) IncrementAuthAttempt(operation, outcome string) {
	if m != nil {
		m.LoginAttempts.WithLabelValues(operation, outcome).Inc()
	}
}

func (m *Metrics) ObserveAuthLatency(d time.Duration) {
	if m != nil {
		m.AuthLatency.Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementSessionRestore(result string) {
	if m != nil {
		m.SessionRestores.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) IncrementCrossTabRefresh(store string) {
	if m != nil {
		m.CrossTabRefreshes.WithLabelValues(store).Inc()
	}
}

func (m *Metrics) IncrementCartMutation(operation string) {
	if m != nil {
		m.CartMutations.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) ObserveCheckout(total int64) {
	if m != nil {
		m.Checkouts.Inc()
		m.CheckoutTotal.Observe(float64(total))
	}
}

func (m *Metrics) IncrementMigrationsApplied() {
	if m != nil {
		m.MigrationsApplied.Inc()
	}
}

func (m *Metrics) IncrementRateLimited(scope string) {
	if m != nil {
		m.RateLimited.WithLabelValues(scope).Inc()
	}
}

func (m *Metrics) IncrementTabsEvicted(n int) {
	if m != nil {
		m.TabsEvicted.Add(float64(n))
	}
}
