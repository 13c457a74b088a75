package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementAuthAttempt("login", "success")
	m.IncrementAuthAttempt("login", "success")
	m.IncrementCartMutation("add")
	m.ObserveCheckout(2000)
	m.IncrementTabsEvicted(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoginAttempts.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CartMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkouts))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.TabsEvicted))
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementAuthAttempt("login", "rejected")
		m.IncrementSessionRestore("recovered")
		m.IncrementCrossTabRefresh("session")
		m.IncrementCartMutation("clear")
		m.ObserveCheckout(1)
		m.IncrementMigrationsApplied()
		m.IncrementRateLimited("auth")
		m.IncrementTabsEvicted(1)
	})
}
