package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/beespeak/honeypot/internal/http/middleware"
	"github.com/beespeak/honeypot/internal/pipeline"
	"github.com/beespeak/honeypot/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger          *logging.Logger
	PipelineHandler *pipeline.Handler
	APIKey          string
	MetricsHandler  http.Handler
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// API-key protected endpoints
	r.Group(func(protected chi.Router) {
		protected.Use(httpmiddleware.APIKey(cfg.APIKey))
		protected.Post("/api/v1/honeypot/process", cfg.PipelineHandler.Process)
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
