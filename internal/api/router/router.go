package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rabbitt-learning/certgen/internal/export"
	"github.com/rabbitt-learning/certgen/internal/generate"
	httpmiddleware "github.com/rabbitt-learning/certgen/internal/http/middleware"
	"github.com/rabbitt-learning/certgen/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	GenerateHandler    *generate.Handler
	ExportHandler      *export.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/generate", cfg.GenerateHandler.Generate)
		api.Post("/generate-email", cfg.GenerateHandler.GenerateEmail)
		api.Post("/generate-bulk", cfg.GenerateHandler.GenerateBulk)

		if cfg.ExportHandler != nil {
			api.Route("/export", func(exp chi.Router) {
				exp.Post("/csv", cfg.ExportHandler.CSV)
				exp.Post("/archive", cfg.ExportHandler.Archive)
			})
		}
	})

	return r
}
