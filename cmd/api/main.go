package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/visage-chat/visage/internal/ai"
	"github.com/visage-chat/visage/internal/api"
	"github.com/visage-chat/visage/internal/avatar"
	"github.com/visage-chat/visage/internal/chat"
	"github.com/visage-chat/visage/internal/config"
	"github.com/visage-chat/visage/internal/database"
	"github.com/visage-chat/visage/internal/emotion"
	"github.com/visage-chat/visage/internal/history"
	"github.com/visage-chat/visage/internal/middleware"
	vnats "github.com/visage-chat/visage/internal/nats"
	"github.com/visage-chat/visage/internal/notify"
	"github.com/visage-chat/visage/internal/redis"
	"github.com/visage-chat/visage/internal/server"
	"github.com/visage-chat/visage/internal/transcript"
	"github.com/visage-chat/visage/internal/vectorstore"
)

const migrationsPath = "./migrations"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLogger(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgPool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pgPool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), migrationsPath); err != nil {
		return err
	}

	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Vector-backed stores share one table, partitioned by collection.
	embedder := ai.NewEmbedder(cfg.LLM.APIKey, cfg.LLM.EmbeddingModel)
	emotionStore := vectorstore.NewPgStore(pgPool, embedder, "avatar_emotions")
	historyStore := vectorstore.NewPgStore(pgPool, embedder, "chat_history")

	cache := emotion.NewCache(emotionStore, cfg.Avatar.MatchThreshold)
	if err := cache.Seed(ctx); err != nil {
		return fmt.Errorf("seeding avatar assets: %w", err)
	}

	hist := history.NewIndex(historyStore)
	repo := transcript.NewRepository(pgPool)
	llm := ai.NewClient(cfg.LLM.APIKey, cfg.LLM.Model)

	hub := notify.NewHub()
	synthesizer := avatar.NewSynthesizer(avatar.NewPlaceholderRenderer(), cfg.Avatar.StaticDir)
	runner := avatar.NewRunner(synthesizer, cache, hub, cfg.Server.PublicBaseURL)
	workerPool := avatar.NewPool(runner, cfg.Avatar.Workers, cfg.Avatar.QueueSize)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	var scheduler chat.Scheduler
	var natsClient *vnats.Client
	if cfg.Avatar.Queue == "nats" {
		natsClient, err = vnats.NewClient(ctx, cfg.NATS)
		if err != nil {
			return err
		}
		defer natsClient.Close()

		scheduler = vnats.NewPublisher(natsClient)

		dispatcher := avatar.NewDispatcher(natsClient, workerPool)
		if err := dispatcher.Start(ctx); err != nil {
			return err
		}
	} else {
		// Local mode: jobs go straight to the in-process pool.
		scheduler = workerPool
	}

	orchestrator := chat.NewOrchestrator(repo, hist, llm, cache, scheduler, cfg.Server.PublicBaseURL)
	chatHandler := chat.NewHandler(orchestrator)
	sessionHandler := transcript.NewHandler(repo, hist)

	chatLimiter := middleware.NewRateLimiter(redisClient, "chat", 30, 60)

	ready := api.ReadinessChecks{
		DB: func(ctx context.Context) error {
			return database.HealthCheck(ctx, pgPool)
		},
		Redis: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}
	if natsClient != nil {
		ready.NATS = natsClient.Healthy
	}

	router := api.NewRouter(api.RouterDeps{
		Chat:          chatHandler.HandleTurn,
		CreateSession: sessionHandler.CreateSession,
		ListSessions:  sessionHandler.ListSessions,
		ListMessages:  sessionHandler.ListMessages,
		DeleteSession: sessionHandler.DeleteSession,
		ServeWS:       notify.ServeWS(hub, cfg.CORS.AllowedOrigins),
		ChatLimiter:   chatLimiter.Middleware,
		CORS:          middleware.CORS(cfg.CORS.AllowedOrigins),
		StaticDir:     cfg.Avatar.StaticDir,
		Ready:         ready,
	})

	return server.New(cfg.Server, router).Run(ctx)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
