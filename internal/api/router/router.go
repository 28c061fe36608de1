// Package router wires HTTP handlers, middleware, and route groups
// into the service's public surface.
package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oakpoint-health/clinic-core/internal/alerts"
	"github.com/oakpoint-health/clinic-core/internal/authorizations"
	httpmiddleware "github.com/oakpoint-health/clinic-core/internal/http/middleware"
	"github.com/oakpoint-health/clinic-core/internal/medications"
	"github.com/oakpoint-health/clinic-core/internal/rules"
	"github.com/oakpoint-health/clinic-core/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger                *logging.Logger
	EvaluateHandler       *rules.Handler
	AlertsHandler         *alerts.Handler
	MedicationsHandler    *medications.Handler
	AuthorizationsHandler *authorizations.Handler
	MetricsHandler        http.Handler
	AdminAuthSecret       string
	CORSAllowedOrigins    []string
	CORSAllowedHeaders    []string

	// Requests per second per client IP; 0 disables rate limiting.
	RateLimitPerSecond    float64
	RateLimitBurst        int
	RateLimitIdleEviction time.Duration
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
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowedHeaders))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst, cfg.RateLimitIdleEviction))
	}

	// Public endpoints (health checks, metrics)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Tenant API (requires X-Org-Id)
	r.Group(func(api chi.Router) {
		api.Use(requireOrgID)

		if cfg.EvaluateHandler != nil {
			api.Post("/patients/{patientID}/evaluate", cfg.EvaluateHandler.Evaluate)
		}
		if cfg.AlertsHandler != nil {
			api.Route("/alerts", func(r chi.Router) {
				r.Get("/", cfg.AlertsHandler.ListByPatient)
				r.Post("/{alertID}/acknowledge", cfg.AlertsHandler.Acknowledge)
				r.Post("/{alertID}/dismiss", cfg.AlertsHandler.Dismiss)
				r.Post("/{alertID}/resolve", cfg.AlertsHandler.Resolve)
			})
		}
		if cfg.MedicationsHandler != nil {
			api.Route("/medications", func(r chi.Router) {
				r.Get("/search", cfg.MedicationsHandler.Search)
				r.Post("/interactions", cfg.MedicationsHandler.CheckInteractions)
			})
		}
		if cfg.AuthorizationsHandler != nil {
			api.Get("/patients/{patientID}/authorizations", cfg.AuthorizationsHandler.ListByPatient)
			api.Get("/authorizations/{authID}/summary", cfg.AuthorizationsHandler.Summary)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Use(requireAdminOrg)
			if cfg.AuthorizationsHandler != nil {
				admin.Post("/authorizations", cfg.AuthorizationsHandler.Create)
				admin.Post("/authorizations/{authID}/deny", cfg.AuthorizationsHandler.Deny)
			}
			if cfg.MedicationsHandler != nil {
				admin.Post("/medications/formulary", cfg.MedicationsHandler.MergeFormulary)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
