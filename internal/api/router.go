package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/localmind/memoriad/internal/database"
	"github.com/localmind/memoriad/internal/events"
	mw "github.com/localmind/memoriad/internal/middleware"
)

// HandlerSet holds handler functions injected from main.go to avoid import cycles.
type HandlerSet struct {
	// Memory CRUD + search
	GetMemories   http.HandlerFunc
	SaveMemory    http.HandlerFunc
	DeleteMemory  http.HandlerFunc
	SearchMemory  http.HandlerFunc
	MemoryProfile http.HandlerFunc

	// Extraction engine
	DetectMemory http.HandlerFunc

	// Audit trail (nil when NATS is not configured)
	ListAuditLogs http.HandlerFunc

	// RAG pass-through
	RAGQuery   http.HandlerFunc
	RAGContext http.HandlerFunc

	// Image generation pass-through
	GenerateImage http.HandlerFunc
	ImageHealth   http.HandlerFunc
}

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	CORSAllowedOrigins []string
	DetectRateLimiter  func(http.Handler) http.Handler
}

func NewRouter(pool *pgxpool.Pool, natsClient *events.Client, cfg RouterConfig, h HandlerSet) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.SecurityHeaders)
	r.Use(mw.Logging)
	r.Use(mw.Recovery)
	r.Use(mw.Metrics)
	r.Use(cors.Handler(mw.CORS(cfg.CORSAllowedOrigins)))

	// Liveness probe: always 200, no dependency checks
	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		JSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})

	// Readiness probe checks DB and NATS
	readinessHandler := func(w http.ResponseWriter, r *http.Request) {
		health := map[string]string{
			"status":   "healthy",
			"service":  "memoriad",
			"database": "healthy",
			"nats":     "healthy",
		}

		status := http.StatusOK

		if err := database.HealthCheck(r.Context(), pool); err != nil {
			health["database"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		}

		if natsClient != nil && !natsClient.Healthy() {
			health["nats"] = "unhealthy"
			health["status"] = "degraded"
			status = http.StatusServiceUnavailable
		} else if natsClient == nil {
			health["nats"] = "not configured"
		}

		JSON(w, status, health)
	}

	r.Get("/health/ready", readinessHandler)
	r.Get("/health", readinessHandler)

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/memory", func(r chi.Router) {
			r.Get("/", h.GetMemories)
			r.Post("/", h.SaveMemory)
			r.Delete("/", h.DeleteMemory)
			r.Post("/search", h.SearchMemory)
			r.Get("/profile/{userID}", h.MemoryProfile)

			if h.ListAuditLogs != nil {
				r.Get("/audit", h.ListAuditLogs)
			}

			// Detect fans out to the LLM gateway, so it is rate-limited per IP
			r.Group(func(r chi.Router) {
				if cfg.DetectRateLimiter != nil {
					r.Use(cfg.DetectRateLimiter)
				}
				r.Post("/detect", h.DetectMemory)
			})
		})

		r.Route("/rag", func(r chi.Router) {
			r.Post("/query", h.RAGQuery)
			r.Post("/context", h.RAGContext)
		})

		r.Route("/images", func(r chi.Router) {
			r.Post("/generate", h.GenerateImage)
			r.Get("/health", h.ImageHealth)
		})
	})

	return r
}
