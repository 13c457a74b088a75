package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("MILSABORES_ADDR", "")
	t.Setenv("MILSABORES_AUTH_TIMEOUT", "")
	t.Setenv("MILSABORES_KAFKA_BROKERS", "")
	t.Setenv("MILSABORES_AUTH_RATE_LIMIT", "")
	t.Setenv("MILSABORES_AUTH_RATE_WINDOW", "")
	t.Setenv("MILSABORES_MAX_TABS", "")
	t.Setenv("MILSABORES_TAB_IDLE_TTL", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, ChannelMemory, cfg.Broadcast.Channel)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, DefaultAuthTimeout, cfg.Auth.Timeout)
	assert.Equal(t, "duoc.cl", cfg.Pricing.StudentDomain)
	assert.Equal(t, 60, cfg.Pricing.SeniorAge)
	assert.NotEmpty(t, cfg.Auth.JWTSigningKey)
	assert.Nil(t, cfg.Broadcast.KafkaBrokers)
	assert.Equal(t, 10, cfg.RateLimit.AuthLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.AuthWindow)
	assert.Equal(t, 10000, cfg.Tabs.MaxOpen)
	assert.Equal(t, 30*time.Minute, cfg.Tabs.IdleTTL)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("MILSABORES_STORAGE", "redis")
	t.Setenv("MILSABORES_AUTH_TIMEOUT", "2500ms")
	t.Setenv("MILSABORES_SENIOR_AGE", "65")
	t.Setenv("MILSABORES_KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("MILSABORES_AUTH_RATE_LIMIT", "0")
	t.Setenv("MILSABORES_MAX_TABS", "64")

	cfg := FromEnv()

	assert.Equal(t, BackendRedis, cfg.Storage.Backend)
	assert.Equal(t, 2500*time.Millisecond, cfg.Auth.Timeout)
	assert.Equal(t, 65, cfg.Pricing.SeniorAge)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Broadcast.KafkaBrokers)
	assert.Zero(t, cfg.RateLimit.AuthLimit)
	assert.Equal(t, 64, cfg.Tabs.MaxOpen)
}

func TestInvalidValuesFallBack(t *testing.T) {
	t.Setenv("MILSABORES_AUTH_TIMEOUT", "-1s")
	t.Setenv("MILSABORES_SENIOR_AGE", "sixty")

	cfg := FromEnv()

	assert.Equal(t, DefaultAuthTimeout, cfg.Auth.Timeout)
	assert.Equal(t, 60, cfg.Pricing.SeniorAge)
}
