package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milsabores/internal/auth/models"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
)

func TestService_IssueAndValidate(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService("secret", "milsabores", time.Hour).WithClock(func() time.Time { return now })
	identity := models.Identity{ID: id.NewUserID(), Email: "mayor@gmail.com", Role: models.RoleCustomer}

	signed, err := svc.Issue(identity)
	require.NoError(t, err)

	claims, err := svc.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, identity.ID.String(), claims.UserID)
	assert.Equal(t, "mayor@gmail.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)

	exp, ok := ExpiresAt(signed)
	require.True(t, ok)
	assert.True(t, exp.Equal(now.Add(time.Hour)))
	assert.False(t, Expired(signed, now))
	assert.True(t, Expired(signed, now.Add(time.Hour)))
}

func TestService_ValidateRejects(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewService("secret", "milsabores", time.Minute).WithClock(func() time.Time { return now })
	signed, err := svc.Issue(models.Identity{ID: id.NewUserID(), Role: models.RoleCustomer})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := svc.WithClock(func() time.Time { return now.Add(time.Hour) })
		_, err := later.Validate(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.Equal(t, "token has expired", dErrors.MessageOf(err))
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewService("other", "milsabores", time.Minute).WithClock(func() time.Time { return now })
		_, err := other.Validate(signed)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestExpiresAt_OpaqueToken(t *testing.T) {
	_, ok := ExpiresAt("opaque-session-token")
	assert.False(t, ok)
	assert.False(t, Expired("opaque-session-token", time.Now()))
}
