//go:build integration

package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"milsabores/pkg/testutil/containers"
)

func TestRedisBackend(t *testing.T) {
	container := containers.NewRedisContainer(t)
	suite.Run(t, &BackendSuite{newBackend: func(t *testing.T) Backend {
		require.NoError(t, container.FlushAll(context.Background()))
		return NewRedisBackend(container.Client, "test:")
	}})
}
