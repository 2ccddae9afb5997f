package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextmove-ai/nextmove/internal/api/handlers"
	mw "github.com/nextmove-ai/nextmove/internal/api/middleware"
	"github.com/nextmove-ai/nextmove/internal/config"
	"github.com/nextmove-ai/nextmove/internal/domain"
	"github.com/nextmove-ai/nextmove/internal/service"
	"github.com/nextmove-ai/nextmove/internal/store"
	"go.uber.org/zap"
)

// App holds the router plus process-level metrics for lifecycle management.
type App struct {
	Router       *chi.Mux
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

func NewApp(db *pgxpool.Pool, rewards *domain.RewardTable, logger *zap.Logger) *App {
	// Stores
	leadStore := store.NewLeadStore(db)
	interactionStore := store.NewInteractionStore(db)
	contextStore := store.NewSignalContextStore(db)
	qStore := store.NewQValueStore(db)
	decisionStore := store.NewDecisionStore(db)
	transitionStore := store.NewTransitionStore(db)
	eventStore := store.NewEventStore(db)

	// Services
	leadSvc := service.NewLeadService(leadStore, interactionStore, eventStore, logger)
	signalSvc := service.NewSignalService(contextStore, logger)
	qtableSvc := service.NewQTableService(qStore, rewards, logger, config.Alpha(), config.Gamma(), config.UCBCoefficient())
	decisionSvc := service.NewDecisionService(decisionStore, logger)
	engineSvc := service.NewEngineService(
		leadStore, interactionStore, transitionStore, eventStore,
		signalSvc, qtableSvc, decisionSvc, service.NewBriefComposer(),
		logger,
	)

	// Handlers
	leadHandler := handlers.NewLeadHandler(leadSvc, signalSvc)
	interactionHandler := handlers.NewInteractionHandler(engineSvc)
	decisionHandler := handlers.NewDecisionHandler(decisionSvc)
	qtableHandler := handlers.NewQTableHandler(qtableSvc)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Route("/leads", func(r chi.Router) {
			r.Post("/", leadHandler.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", leadHandler.GetByID)
				r.Get("/context", leadHandler.GetContext)
				r.Get("/events", leadHandler.ListEvents)
				r.Route("/interactions", func(r chi.Router) {
					r.Post("/", interactionHandler.Submit)
					r.Get("/", leadHandler.ListInteractions)
				})
				r.Get("/decision", decisionHandler.GetCurrent)
				r.Get("/decisions", decisionHandler.List)
			})
		})

		r.Route("/qtable", func(r chi.Router) {
			r.Get("/", qtableHandler.Inspect)
			r.Post("/seed", qtableHandler.Seed)
		})
	})

	return app
}

// NewRouter returns just the chi.Mux.
func NewRouter(db *pgxpool.Pool, rewards *domain.RewardTable, logger *zap.Logger) *chi.Mux {
	return NewApp(db, rewards, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores satisfy the domain interfaces at compile time.
var (
	_ domain.LeadStore          = (*store.LeadStore)(nil)
	_ domain.InteractionStore   = (*store.InteractionStore)(nil)
	_ domain.SignalContextStore = (*store.SignalContextStore)(nil)
	_ domain.QValueStore        = (*store.QValueStore)(nil)
	_ domain.DecisionStore      = (*store.DecisionStore)(nil)
	_ domain.TransitionStore    = (*store.TransitionStore)(nil)
	_ domain.EventStore         = (*store.EventStore)(nil)
)
