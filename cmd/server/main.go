package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"milsabores/internal/audit"
	"milsabores/internal/auth/local"
	"milsabores/internal/auth/remote"
	"milsabores/internal/auth/token"
	"milsabores/internal/broadcast"
	"milsabores/internal/checkout"
	"milsabores/internal/checkout/archive"
	"milsabores/internal/persist"
	"milsabores/internal/platform/config"
	"milsabores/internal/platform/httpserver"
	"milsabores/internal/platform/kafka"
	"milsabores/internal/platform/logger"
	"milsabores/internal/platform/metrics"
	"milsabores/internal/platform/postgres"
	platformredis "milsabores/internal/platform/redis"
	"milsabores/internal/pricing"
	"milsabores/internal/ratelimit"
	"milsabores/internal/session"
	"milsabores/internal/storefront"
	httptransport "milsabores/internal/transport/http"
)

// main wires config, storage, the notification channel and the
// authenticator into the storefront API, then runs until signalled.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

// closers run in reverse order on shutdown.
type closers []func()

func (c *closers) add(fn func()) { *c = append(*c, fn) }

func (c closers) run() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cleanup closers
	defer cleanup.run()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	redisClient, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var checks []httptransport.Check
	if redisClient != nil {
		cleanup.add(func() { _ = redisClient.Close() })
		checks = append(checks, httptransport.Check{Name: "redis", Probe: redisClient.Health})
	}

	backend, err := openBackend(cfg, redisClient)
	if err != nil {
		return err
	}

	applied, err := storefront.Migrate(ctx, backend, bcrypt.DefaultCost, log, m)
	if err != nil {
		return fmt.Errorf("migrate storage: %w", err)
	}
	log.InfoContext(ctx, "storage ready", "backend", cfg.Storage.Backend, "migrations_applied", applied)

	g, gctx := errgroup.WithContext(ctx)

	channel, err := openChannel(gctx, g, cfg, redisClient, log, &cleanup)
	if err != nil {
		return err
	}

	receipts, err := openArchive(ctx, cfg.Postgres, &cleanup, &checks)
	if err != nil {
		return err
	}

	formatter, err := pricing.NewFormatter(cfg.Pricing.Currency, cfg.Pricing.Locale)
	if err != nil {
		return fmt.Errorf("money formatter: %w", err)
	}

	auditPublisher := audit.NewPublisher(audit.NewInMemoryStore(),
		audit.WithAsyncBuffer(1024),
		audit.WithPublisherLogger(log),
	)
	cleanup.add(auditPublisher.Close)

	deps := storefront.Deps{
		Backend: backend,
		Channel: channel,
		Auth:    newAuthenticator(cfg.Auth, backend, log),
		Archive: receipts,
		Classifier: session.Classifier{
			StudentDomain: cfg.Pricing.StudentDomain,
			SeniorAge:     cfg.Pricing.SeniorAge,
		},
		AuthTimeout: cfg.Auth.Timeout,
		Logger:      log,
		Metrics:     m,
		Audit:       auditPublisher,
	}
	tabs := storefront.NewTabs(deps,
		storefront.WithMaxOpen(cfg.Tabs.MaxOpen),
		storefront.WithIdleTTL(cfg.Tabs.IdleTTL),
	)
	cleanup.add(tabs.Close)

	limiter := ratelimit.New(newRateLimitStore(cfg.RateLimit, redisClient),
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(m),
	)
	authRule := ratelimit.Rule{Limit: cfg.RateLimit.AuthLimit, Window: cfg.RateLimit.AuthWindow}

	handler := httptransport.New(tabs, formatter, log,
		httptransport.WithAuthLimit(limiter.Limit("auth", authRule)),
	)
	router := httptransport.NewRouter(handler, log, reg, checks...)
	srv := httpserver.New(cfg.Addr, cfg.Server, router)

	g.Go(func() error {
		log.InfoContext(gctx, "starting storefront", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openBackend(cfg config.Config, redisClient *platformredis.Client) (persist.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return persist.NewMemoryBackend(), nil
	case config.BackendFile:
		return persist.NewFileBackend(cfg.Storage.Dir)
	case config.BackendRedis:
		if redisClient == nil {
			return nil, errors.New("redis storage selected but MILSABORES_REDIS_URL is empty")
		}
		return persist.NewRedisBackend(redisClient.Client, cfg.Storage.KeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// openChannel starts the listener of networked channels on g.
func openChannel(
	ctx context.Context,
	g *errgroup.Group,
	cfg config.Config,
	redisClient *platformredis.Client,
	log *slog.Logger,
	cleanup *closers,
) (broadcast.Channel, error) {
	switch cfg.Broadcast.Channel {
	case config.ChannelMemory:
		hub := broadcast.NewHub()
		cleanup.add(hub.Close)
		return hub, nil
	case config.ChannelRedis:
		if redisClient == nil {
			return nil, errors.New("redis broadcast selected but MILSABORES_REDIS_URL is empty")
		}
		ch := broadcast.NewRedisChannel(redisClient.Client, cfg.Broadcast.RedisChannel, log)
		g.Go(func() error { return ignoreCanceled(ch.Run(ctx)) })
		return ch, nil
	case config.ChannelKafka:
		topic := cfg.Broadcast.KafkaTopic
		client, err := kafka.NewClient(cfg.Broadcast.KafkaBrokers, broadcast.ConsumerOpts(topic)...)
		if err != nil {
			return nil, err
		}
		cleanup.add(client.Close)
		if err := kafka.EnsureTopic(ctx, client, topic); err != nil {
			return nil, err
		}
		ch := broadcast.NewKafkaChannel(client, topic, log)
		g.Go(func() error { return ignoreCanceled(ch.Run(ctx)) })
		return ch, nil
	}
	return nil, fmt.Errorf("unknown broadcast channel %q", cfg.Broadcast.Channel)
}

func openArchive(
	ctx context.Context,
	cfg config.PostgresConfig,
	cleanup *closers,
	checks *[]httptransport.Check,
) (checkout.Archive, error) {
	pool, err := postgres.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return archive.NewInMemoryArchive(), nil
	}
	cleanup.add(pool.Close)
	*checks = append(*checks, httptransport.Check{Name: "postgres", Probe: pool.Ping})
	return newPostgresArchive(ctx, pool)
}

func newPostgresArchive(ctx context.Context, pool *pgxpool.Pool) (checkout.Archive, error) {
	a := archive.NewPostgres(pool)
	if err := a.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func newAuthenticator(cfg config.AuthConfig, backend persist.Backend, log *slog.Logger) session.Authenticator {
	if cfg.Mode == config.AuthModeRemote {
		return remote.New(cfg.BaseURL, remote.WithLogger(log))
	}
	tokens := token.NewService(cfg.JWTSigningKey, cfg.Issuer, cfg.TokenTTL)
	return local.NewDirectory(backend, tokens, local.WithLogger(log))
}

// newRateLimitStore shares windows through Redis whenever one is configured.
func newRateLimitStore(cfg config.RateLimitConfig, redisClient *platformredis.Client) ratelimit.Store {
	if redisClient != nil {
		return ratelimit.NewRedisStore(redisClient.Client, cfg.KeyPrefix)
	}
	return ratelimit.NewInMemoryStore()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
