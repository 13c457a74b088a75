package session

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"milsabores/internal/auth/local"
	"milsabores/internal/auth/token"
	"milsabores/internal/broadcast"
	"milsabores/internal/persist"
	"milsabores/internal/platform/metrics"
	"milsabores/internal/pricing"
	id "milsabores/pkg/domain"
	"milsabores/pkg/testutil"
)

// Two tabs over one backend, signed in against the demo directory.
func TestSessionPropagatesAcrossTabs(t *testing.T) {
	ctx := context.Background()
	shared := persist.NewMemoryBackend()
	require.NoError(t, local.SeedDemoUsers(bcrypt.MinCost).Up(ctx, shared))

	clock := testutil.NewClock(testutil.Date(2026, time.October, 14))
	directory := local.NewDirectory(shared,
		token.NewService("test-key", "milsabores", time.Hour).WithClock(clock.Now),
		local.WithHashCost(bcrypt.MinCost),
	)
	hub := broadcast.NewHub()
	defer hub.Close()
	m := metrics.New(prometheus.NewRegistry())

	tabA, tabB := id.NewTabID(), id.NewTabID()
	storeA := New(broadcast.Notify(shared, hub, tabA, nil), directory, WithTab(tabA), WithClock(clock.Now))
	storeB := New(broadcast.Notify(shared, hub, tabB, nil), directory, WithTab(tabB), WithClock(clock.Now), WithMetrics(m))
	defer storeA.Watch(hub)()
	defer storeB.Watch(hub)()

	var bSaw []bool
	storeB.Subscribe(func(st State) { bSaw = append(bSaw, st.Authenticated()) })

	st, err := storeA.Login(ctx, local.DemoAccounts[0].Email, local.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, pricing.ClassSenior, st.Class)

	hub.Flush()
	require.True(t, storeB.State().Authenticated())
	assert.Equal(t, st.Identity.ID, storeB.State().Identity.ID)
	assert.Equal(t, pricing.ClassSenior, storeB.State().Class)

	require.NoError(t, storeA.Logout(ctx))
	hub.Flush()
	assert.False(t, storeB.State().Authenticated())

	assert.Equal(t, []bool{true, false}, bSaw)
	assert.Equal(t, float64(2), promtestutil.ToFloat64(m.CrossTabRefreshes.WithLabelValues("session")))

	reloaded := New(shared, directory, WithClock(clock.Now))
	assert.False(t, reloaded.Restore(ctx).Authenticated(), "a fresh tab sees the logout")
}

func TestOwnWritesAreNotReloaded(t *testing.T) {
	ctx := context.Background()
	shared := persist.NewMemoryBackend()
	require.NoError(t, local.SeedDemoUsers(bcrypt.MinCost).Up(ctx, shared))
	directory := local.NewDirectory(shared, token.NewService("test-key", "milsabores", time.Hour), local.WithHashCost(bcrypt.MinCost))
	hub := broadcast.NewHub()
	defer hub.Close()
	m := metrics.New(prometheus.NewRegistry())

	tab := id.NewTabID()
	store := New(broadcast.Notify(shared, hub, tab, nil), directory, WithTab(tab), WithMetrics(m))
	defer store.Watch(hub)()

	_, err := store.Login(ctx, "usuario@gmail.com", local.DemoPassword)
	require.NoError(t, err)
	hub.Flush()

	assert.Zero(t, promtestutil.ToFloat64(m.CrossTabRefreshes.WithLabelValues("session")))
}
