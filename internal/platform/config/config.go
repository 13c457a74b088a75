package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process level configuration for the storefront.
type Config struct {
	Addr      string
	Server    ServerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Broadcast BroadcastConfig
	Postgres  PostgresConfig
	Auth      AuthConfig
	Pricing   PricingConfig
	RateLimit RateLimitConfig
	Tabs      TabsConfig
	Log       LogConfig
}

// ServerConfig bounds HTTP reads, writes and graceful shutdown.
type ServerConfig struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// StorageConfig selects the persistence backend shared by all tabs.
type StorageConfig struct {
	Backend   string // memory | file | redis
	Dir       string
	KeyPrefix string
}

// RedisConfig mirrors the go-redis options we override.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// BroadcastConfig selects the cross-tab notification channel.
type BroadcastConfig struct {
	Channel      string // memory | redis | kafka
	RedisChannel string
	KafkaBrokers []string
	KafkaTopic   string
}

// PostgresConfig configures the receipt archive. An empty URL keeps receipts in memory.
type PostgresConfig struct {
	URL string
}

// AuthConfig configures the Authentication collaborator.
type AuthConfig struct {
	Mode          string // local | remote
	BaseURL       string
	Timeout       time.Duration
	JWTSigningKey string
	TokenTTL      time.Duration
	Issuer        string
}

// PricingConfig carries the discount classification inputs.
type PricingConfig struct {
	StudentDomain string
	SeniorAge     int
	Currency      string
	Locale        string
}

// RateLimitConfig caps login and register attempts per client IP. A zero
// AuthLimit disables throttling.
type RateLimitConfig struct {
	AuthLimit  int
	AuthWindow time.Duration
	KeyPrefix  string
}

// TabsConfig bounds the open tabs kept in memory. Zero disables a bound.
type TabsConfig struct {
	MaxOpen int
	IdleTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string // json | text
}

// Storage backends and channels.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"

	ChannelMemory = "memory"
	ChannelRedis  = "redis"
	ChannelKafka  = "kafka"

	AuthModeLocal  = "local"
	AuthModeRemote = "remote"
)

// DefaultAuthTimeout bounds every call to the Authentication service.
const DefaultAuthTimeout = 10 * time.Second

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("MILSABORES_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Addr: getEnv("MILSABORES_ADDR", ":8080"),
		Server: ServerConfig{
			ReadTimeout:     getDuration("MILSABORES_HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDuration("MILSABORES_HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     getDuration("MILSABORES_HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getDuration("MILSABORES_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend:   getEnv("MILSABORES_STORAGE", BackendMemory),
			Dir:       getEnv("MILSABORES_STORAGE_DIR", "./data"),
			KeyPrefix: getEnv("MILSABORES_KEY_PREFIX", "milsabores:"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("MILSABORES_REDIS_URL"),
			PoolSize:     getInt("MILSABORES_REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("MILSABORES_REDIS_MIN_IDLE", 2),
			DialTimeout:  getDuration("MILSABORES_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("MILSABORES_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("MILSABORES_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Broadcast: BroadcastConfig{
			Channel:      getEnv("MILSABORES_BROADCAST", ChannelMemory),
			RedisChannel: getEnv("MILSABORES_REDIS_CHANNEL", "milsabores:storage"),
			KafkaBrokers: getList("MILSABORES_KAFKA_BROKERS"),
			KafkaTopic:   getEnv("MILSABORES_KAFKA_TOPIC", "milsabores.storage"),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("MILSABORES_DATABASE_URL"),
		},
		Auth: AuthConfig{
			Mode:          getEnv("MILSABORES_AUTH_MODE", AuthModeLocal),
			BaseURL:       getEnv("MILSABORES_AUTH_URL", "http://localhost:3000/api/v1"),
			Timeout:       getDuration("MILSABORES_AUTH_TIMEOUT", DefaultAuthTimeout),
			JWTSigningKey: jwtSigningKey,
			TokenTTL:      getDuration("MILSABORES_TOKEN_TTL", 24*time.Hour),
			Issuer:        getEnv("MILSABORES_TOKEN_ISSUER", "milsabores"),
		},
		Pricing: PricingConfig{
			StudentDomain: getEnv("MILSABORES_STUDENT_DOMAIN", "duoc.cl"),
			SeniorAge:     getInt("MILSABORES_SENIOR_AGE", 60),
			Currency:      getEnv("MILSABORES_CURRENCY", "CLP"),
			Locale:        getEnv("MILSABORES_LOCALE", "es-CL"),
		},
		RateLimit: RateLimitConfig{
			AuthLimit:  getInt("MILSABORES_AUTH_RATE_LIMIT", 10),
			AuthWindow: getDuration("MILSABORES_AUTH_RATE_WINDOW", time.Minute),
			KeyPrefix:  getEnv("MILSABORES_RATE_LIMIT_PREFIX", "milsabores:ratelimit:"),
		},
		Tabs: TabsConfig{
			MaxOpen: getInt("MILSABORES_MAX_TABS", 10000),
			IdleTTL: getDuration("MILSABORES_TAB_IDLE_TTL", 30*time.Minute),
		},
		Log: LogConfig{
			Level:  getEnv("MILSABORES_LOG_LEVEL", "info"),
			Format: getEnv("MILSABORES_LOG_FORMAT", "json"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
