package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/vitalpoint-assistant/internal/api"
	"github.com/hackgods/vitalpoint-assistant/internal/appointment"
	"github.com/hackgods/vitalpoint-assistant/internal/assistant"
	"github.com/hackgods/vitalpoint-assistant/internal/config"
	"github.com/hackgods/vitalpoint-assistant/internal/db"
	"github.com/hackgods/vitalpoint-assistant/internal/directory"
	"github.com/hackgods/vitalpoint-assistant/internal/llm"
	"github.com/hackgods/vitalpoint-assistant/internal/metrics"
	"github.com/hackgods/vitalpoint-assistant/internal/notify"
	redisclient "github.com/hackgods/vitalpoint-assistant/internal/redis"
	"github.com/hackgods/vitalpoint-assistant/internal/session"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("api-server starting up", "env", cfg.Env, "http_port", cfg.HTTPPort, "version", version)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(rootCtx, cfg, logger); err != nil {
		logger.Error("api-server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("api-server shut down")
}

func run(ctx context.Context, cfg config.Config, logger *logging.Logger) error {
	var (
		pgPool *pgxpool.Pool
		ledger appointment.Ledger = appointment.NewMemoryLedger()
		doctors                   = directory.Defaults()
	)

	if cfg.PostgresDSN != "" {
		pgCtx, cancelPg := context.WithTimeout(ctx, 10*time.Second)
		pool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			return err
		}
		defer pool.Close()
		pgPool = pool
		logger.Info("connected to Postgres")

		loaded, seeded, err := directory.LoadOrSeed(ctx, pool, directory.Defaults())
		if err != nil {
			return err
		}
		if seeded {
			logger.Warn("doctors table was empty, stored the built-in directory")
		}
		doctors = loaded
		ledger = appointment.NewPgLedger(pool, logger)
	} else {
		logger.Warn("POSTGRES_DSN not set, appointments are kept in memory")
	}

	dir, err := directory.New(doctors)
	if err != nil {
		return err
	}
	logger.Info("directory loaded", "doctors", dir.Len())

	var (
		rdb    *redis.Client
		store  session.Store  = session.NewMemoryStore(cfg.SessionTTL)
		locker session.Locker = session.NewLocalLocker()
	)
	if cfg.RedisAddr != "" {
		client, err := redisclient.NewRedisClient(ctx, redisclient.Options{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
		})
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("error closing redis", "error", err)
			}
		}()
		rdb = client
		store = session.NewRedisStore(client, cfg.SessionTTL)
		locker = redisclient.NewSessionLocker(client, cfg.LockTTL, cfg.LockWait)
		logger.Info("connected to Redis")
	} else {
		logger.Warn("redis not configured, sessions are local to this process")
	}

	completer, closeCompleter, err := llm.New(ctx, llm.Options{
		Provider:      cfg.LLMProvider,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIModel:   cfg.OpenAIModel,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = closeCompleter() }()

	persona := llm.DefaultPersona()

	var sender notify.EmailSender = notify.NewStubEmailSender(logger)
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		sender = sg
	}
	notifier := notify.NewService(sender, persona.Organization, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	assistantMetrics := metrics.NewAssistantMetrics(registry)

	engine := assistant.NewEngine(dir, ledger, persona, logger)
	svc := assistant.NewService(engine, store, locker, completer,
		assistant.WithNotifier(notifier),
		assistant.WithMetrics(assistantMetrics),
		assistant.WithLogger(logger),
		assistant.WithFallbackTimeout(cfg.FallbackTimeout),
	)

	router := api.NewRouter(api.RouterConfig{
		Chat:        svc,
		Directory:   dir,
		Sessions:    api.NewSessionCookies(cfg.SessionSecret, cfg.SessionTTL, cfg.IsProd()),
		PgPool:      pgPool,
		Redis:       rdb,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger,
		Env:         cfg.Env,
		Version:     version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.FallbackTimeout + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down api-server", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
