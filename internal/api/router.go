package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hackgods/vitalpoint-assistant/internal/assistant"
	"github.com/hackgods/vitalpoint-assistant/internal/directory"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

// ChatService runs one conversation turn.
type ChatService interface {
	ProcessTurn(ctx context.Context, sessionID, utterance string) (assistant.Reply, error)
}

type RouterConfig struct {
	Chat        ChatService
	Directory   *directory.Directory
	Sessions    *SessionCookies
	PgPool      *pgxpool.Pool // nil when the ledger is in memory
	Redis       *redis.Client // nil when sessions are in memory
	Metrics     http.Handler  // nil disables /metrics
	CORSOrigins []string
	Logger      *logging.Logger
	Env         string
	Version     string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigins))

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	r.Post("/chat", chatHandler(cfg.Chat, cfg.Sessions, logger))
	r.Get("/doctors", doctorsHandler(cfg.Directory))

	return r
}
