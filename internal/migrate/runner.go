// Package migrate upgrades persisted records once per load. Each migration
// has a version; the highest applied version is kept under the
// schema_version key, so a migration runs at most once per backend.
// Migrations must still be idempotent: a crash between Up and the version
// write replays the step.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"milsabores/internal/persist"
	"milsabores/internal/platform/metrics"
	"milsabores/pkg/platform/sentinel"
)

// Migration is one versioned upgrade step.
type Migration struct {
	Version int
	Name    string
	Up      func(ctx context.Context, backend persist.Backend) error
}

type Runner struct {
	backend    persist.Backend
	migrations []Migration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// NewRunner validates that versions are positive and unique.
func NewRunner(backend persist.Backend, migrations []Migration, opts ...Option) (*Runner, error) {
	sorted := slices.Clone(migrations)
	slices.SortFunc(sorted, func(a, b Migration) int { return a.Version - b.Version })
	for i, m := range sorted {
		if m.Version <= 0 {
			return nil, fmt.Errorf("migration %q: version must be positive", m.Name)
		}
		if m.Up == nil {
			return nil, fmt.Errorf("migration %q: missing Up", m.Name)
		}
		if i > 0 && sorted[i-1].Version == m.Version {
			return nil, fmt.Errorf("migrations %q and %q share version %d", sorted[i-1].Name, m.Name, m.Version)
		}
	}

	r := &Runner{backend: backend, migrations: sorted, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run applies every migration newer than the stored version, in order, and
// returns how many ran.
func (r *Runner) Run(ctx context.Context) (int, error) {
	current, err := r.Version(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range r.migrations {
		if m.Version <= current {
			continue
		}
		if err := m.Up(ctx, r.backend); err != nil {
			return applied, fmt.Errorf("migration %d %s: %w", m.Version, m.Name, err)
		}
		if err := r.backend.Set(ctx, persist.KeySchemaVersion, []byte(strconv.Itoa(m.Version))); err != nil {
			return applied, fmt.Errorf("record schema version %d: %w", m.Version, err)
		}
		current = m.Version
		applied++
		r.metrics.IncrementMigrationsApplied()
		r.logger.InfoContext(ctx, "migration applied", "version", m.Version, "name", m.Name)
	}
	return applied, nil
}

// Version returns the stored schema version. A missing or unreadable value
// counts as zero so every migration is replayed.
func (r *Runner) Version(ctx context.Context) (int, error) {
	raw, err := r.backend.Get(ctx, persist.KeySchemaVersion)
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || v < 0 {
		r.logger.WarnContext(ctx, "ignoring unreadable schema version", "value", string(raw))
		return 0, nil
	}
	return v, nil
}
