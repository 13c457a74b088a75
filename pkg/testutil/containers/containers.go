//go:build integration

// Package containers starts throwaway dependencies for integration tests.
// Every container is terminated when the test that started it finishes.
package containers

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// abort terminates c and fails the test.
func abort(t *testing.T, c testcontainers.Container, format string, args ...any) {
	t.Helper()
	if c != nil {
		_ = c.Terminate(context.Background())
	}
	t.Fatalf(format, args...)
}

func terminateOnCleanup(t *testing.T, c testcontainers.Container, closers ...func()) {
	t.Cleanup(func() {
		for _, fn := range closers {
			fn()
		}
		_ = c.Terminate(context.Background())
	})
}
