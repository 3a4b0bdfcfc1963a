package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/localmind/memoriad/internal/api"
	"github.com/localmind/memoriad/internal/audit"
	"github.com/localmind/memoriad/internal/config"
	"github.com/localmind/memoriad/internal/database"
	"github.com/localmind/memoriad/internal/events"
	"github.com/localmind/memoriad/internal/extract"
	"github.com/localmind/memoriad/internal/images"
	"github.com/localmind/memoriad/internal/memory"
	"github.com/localmind/memoriad/internal/middleware"
	"github.com/localmind/memoriad/internal/rag"
	iredis "github.com/localmind/memoriad/internal/redis"
	"github.com/localmind/memoriad/internal/server"
)

// The detect endpoint fans out to the LLM gateway, so it gets a tighter
// per-IP budget than the rest of the API.
const (
	detectMaxReqs   = 30
	detectWindowSec = 60
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), "migrations"); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS is optional: without it mutations still apply, they just leave
	// no audit trail.
	auditRepo := audit.NewRepository(pool)

	var natsClient *events.Client
	var publisher *events.Publisher
	if cfg.NATS.URL != "" {
		natsClient, err = events.NewClient(ctx, cfg.NATS)
		if err != nil {
			slog.Error("connecting to NATS", "error", err)
			os.Exit(1)
		}
		defer natsClient.Close()

		publisher = events.NewPublisher(natsClient.JetStream())

		auditConsumer := audit.NewConsumer(auditRepo, events.NewConsumerManager(natsClient.JetStream()))
		go func() {
			if err := auditConsumer.Start(ctx); err != nil {
				slog.Error("audit consumer stopped", "error", err)
			}
		}()
	} else {
		slog.Warn("NATS not configured, memory audit trail disabled")
	}

	// Memory store
	memoryRepo := memory.NewPostgresRepository(pool)
	memorySvc := memory.NewService(memoryRepo)
	memoryHandler := memory.NewHandler(memorySvc)

	// Extraction engine
	gateway := extract.NewChatClient(cfg.LLM)
	extractSvc := extract.NewService(gateway, memoryRepo, publisher)
	extractHandler := extract.NewHandler(extractSvc)

	// RAG pass-through
	ragClient, err := rag.NewClient(cfg.RAG)
	if err != nil {
		slog.Error("creating rag client", "error", err)
		os.Exit(1)
	}
	ragHandler := rag.NewHandler(ragClient)

	// Image generation pass-through
	imageHandler := images.NewHandler(images.NewClient(cfg.Image))

	detectLimiter := middleware.NewRateLimiter(redisClient, detectMaxReqs, detectWindowSec)

	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: []string{"*"},
		DetectRateLimiter:  detectLimiter.Middleware,
	}, api.HandlerSet{
		GetMemories:   memoryHandler.Get,
		SaveMemory:    memoryHandler.Save,
		DeleteMemory:  memoryHandler.Delete,
		SearchMemory:  memoryHandler.Search,
		MemoryProfile: memoryHandler.Profile,

		DetectMemory: extractHandler.Detect,

		ListAuditLogs: audit.NewHandler(auditRepo).List,

		RAGQuery:   ragHandler.Query,
		RAGContext: ragHandler.Context,

		GenerateImage: imageHandler.Generate,
		ImageHealth:   imageHandler.Health,
	})

	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
