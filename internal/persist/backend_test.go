package persist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"milsabores/pkg/platform/sentinel"
)

// BackendSuite runs the shared Backend contract against one implementation.
type BackendSuite struct {
	suite.Suite
	newBackend func(t *testing.T) Backend
	backend    Backend
	ctx        context.Context
}

func (s *BackendSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = s.newBackend(s.T())
}

func (s *BackendSuite) TestGetMissingKey() {
	_, err := s.backend.Get(s.ctx, KeyCart)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *BackendSuite) TestSetThenGet() {
	s.Require().NoError(s.backend.Set(s.ctx, KeyCart, []byte(`[]`)))

	got, err := s.backend.Get(s.ctx, KeyCart)
	s.Require().NoError(err)
	s.Equal(`[]`, string(got))
}

func (s *BackendSuite) TestSetOverwrites() {
	s.Require().NoError(s.backend.Set(s.ctx, KeySession, []byte(`{"a":1}`)))
	s.Require().NoError(s.backend.Set(s.ctx, KeySession, []byte(`{"a":2}`)))

	got, err := s.backend.Get(s.ctx, KeySession)
	s.Require().NoError(err)
	s.Equal(`{"a":2}`, string(got))
}

func (s *BackendSuite) TestDelete() {
	s.Run("removes an existing key", func() {
		s.Require().NoError(s.backend.Set(s.ctx, KeyUsers, []byte(`[]`)))
		s.Require().NoError(s.backend.Delete(s.ctx, KeyUsers))

		_, err := s.backend.Get(s.ctx, KeyUsers)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("absent key is not an error", func() {
		s.NoError(s.backend.Delete(s.ctx, "never-written"))
	})
}

func (s *BackendSuite) TestKeysAreIndependent() {
	s.Require().NoError(s.backend.Set(s.ctx, KeyCart, []byte(`cart`)))
	s.Require().NoError(s.backend.Set(s.ctx, KeySession, []byte(`session`)))

	cart, err := s.backend.Get(s.ctx, KeyCart)
	s.Require().NoError(err)
	session, err := s.backend.Get(s.ctx, KeySession)
	s.Require().NoError(err)
	s.Equal("cart", string(cart))
	s.Equal("session", string(session))
}

func (s *BackendSuite) TestRejectsInvalidKey() {
	s.Error(s.backend.Set(s.ctx, "../escape", []byte(`x`)))
}

func TestMemoryBackend(t *testing.T) {
	suite.Run(t, &BackendSuite{newBackend: func(*testing.T) Backend { return NewMemoryBackend() }})
}

func TestFileBackend(t *testing.T) {
	suite.Run(t, &BackendSuite{newBackend: func(t *testing.T) Backend {
		b, err := NewFileBackend(t.TempDir())
		require.NoError(t, err)
		return b
	}})
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	b := NewMemoryBackend()
	value := []byte(`abc`)
	require.NoError(t, b.Set(context.Background(), KeyCart, value))
	value[0] = 'x'

	got, err := b.Get(context.Background(), KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, err := b.Get(context.Background(), KeyCart)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
	assert.Equal(t, []string{KeyCart}, b.Keys())
}

func TestFileBackend_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	first, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(context.Background(), KeyCart, []byte(`[1]`)))

	second, err := NewFileBackend(dir)
	require.NoError(t, err)
	got, err := second.Get(context.Background(), KeyCart)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))
}

func TestValidKey(t *testing.T) {
	assert.True(t, ValidKey("schema_version"))
	assert.True(t, ValidKey("cart"))
	for _, key := range []string{"", ".", "..", "a/b", `a\b`, "a b", "a\nb"} {
		assert.False(t, ValidKey(key), key)
	}
}
