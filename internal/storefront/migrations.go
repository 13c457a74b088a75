package storefront

import (
	"context"
	"log/slog"

	"milsabores/internal/auth/local"
	"milsabores/internal/cart"
	"milsabores/internal/migrate"
	"milsabores/internal/persist"
	"milsabores/internal/platform/metrics"
)

// Migrations lists every schema step in version order.
func Migrations(hashCost int) []migrate.Migration {
	return []migrate.Migration{
		local.SeedDemoUsers(hashCost),
		cart.LegacyFieldNames(),
	}
}

// Migrate brings backend up to the latest schema version and returns the
// number of steps applied.
func Migrate(ctx context.Context, backend persist.Backend, hashCost int, logger *slog.Logger, m *metrics.Metrics) (int, error) {
	opts := []migrate.Option{migrate.WithMetrics(m)}
	if logger != nil {
		opts = append(opts, migrate.WithLogger(logger))
	}
	runner, err := migrate.NewRunner(backend, Migrations(hashCost), opts...)
	if err != nil {
		return 0, err
	}
	return runner.Run(ctx)
}
