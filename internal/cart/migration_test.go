package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milsabores/internal/persist"
)

func TestLegacyFieldNames(t *testing.T) {
	ctx := context.Background()
	up := LegacyFieldNames().Up

	t.Run("rewrites the legacy shape", func(t *testing.T) {
		backend := persist.NewMemoryBackend()
		legacy := `[{"codigo":"TC001","nombre":"Torta Cuadrada de Chocolate","precio":45000,"imagen":"/img/tc.png","categoria":"Tortas","quantity":2}]`
		require.NoError(t, backend.Set(ctx, persist.KeyCart, []byte(legacy)))

		require.NoError(t, up(ctx, backend))

		raw, err := backend.Get(ctx, persist.KeyCart)
		require.NoError(t, err)
		c, err := Decode(raw)
		require.NoError(t, err)
		line, ok := c.Get("TC001")
		require.True(t, ok)
		assert.Equal(t, LineItem{ProductCode: "TC001", UnitPrice: 45000, Quantity: 2, Name: "Torta Cuadrada de Chocolate", ImageRef: "/img/tc.png"}, line)
	})

	t.Run("current shape is untouched and a rerun is stable", func(t *testing.T) {
		backend := persist.NewMemoryBackend()
		current, err := Encode(mustAdd(t, Cart{}, kuchen))
		require.NoError(t, err)
		require.NoError(t, backend.Set(ctx, persist.KeyCart, current))

		require.NoError(t, up(ctx, backend))
		require.NoError(t, up(ctx, backend))

		raw, err := backend.Get(ctx, persist.KeyCart)
		require.NoError(t, err)
		assert.Equal(t, string(current), string(raw))
	})

	t.Run("missing or unreadable records are left alone", func(t *testing.T) {
		backend := persist.NewMemoryBackend()
		require.NoError(t, up(ctx, backend))
		assert.Empty(t, backend.Keys())

		require.NoError(t, backend.Set(ctx, persist.KeyCart, []byte(`{broken`)))
		require.NoError(t, up(ctx, backend))
		raw, err := backend.Get(ctx, persist.KeyCart)
		require.NoError(t, err)
		assert.Equal(t, `{broken`, string(raw))
	})
}
