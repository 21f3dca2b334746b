package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/printflow/backoffice/internal/handlers"
	"github.com/printflow/backoffice/internal/httpx"
	"github.com/printflow/backoffice/internal/jobs"
	"github.com/printflow/backoffice/internal/logger"
	"github.com/printflow/backoffice/internal/services"
	"github.com/printflow/backoffice/internal/storage"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, runner *jobs.Runner) http.Handler {
	store := storage.NewGormStore(db)
	notifier := services.NewNotifier(store)
	planner := services.NewPlanner(store)
	recalc := services.NewRecalculator(store)
	recurring := services.NewRecurring(store, notifier, runner)
	prop := services.NewPropagator(store)

	ph := handlers.NewPayableHandler(store, planner, recalc, recurring, prop)
	nh := handlers.NewNotificationHandler(store)

	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/payables", func(r chi.Router) {
			r.Get("/", ph.List)
			r.Post("/", ph.Create)
			r.Get("/summary", ph.Summary)
			r.Get("/{id}", ph.Get)
			r.Patch("/{id}", ph.Update)
			r.Delete("/{id}", ph.Delete)
			r.Post("/{id}/pay", ph.Pay)
		})
		r.Get("/notifications", nh.List)
	})
	return r
}

func requestLogger(next http.Handler) http.Handler {
	log := logger.WithComponent("http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
