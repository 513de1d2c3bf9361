package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/solviatours/extranet-wizard/internal/auth"
	"github.com/solviatours/extranet-wizard/internal/company"
	appconfig "github.com/solviatours/extranet-wizard/internal/config"
	httpmiddleware "github.com/solviatours/extranet-wizard/internal/http/middleware"
	"github.com/solviatours/extranet-wizard/internal/wizard"
	"github.com/solviatours/extranet-wizard/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	Branding       appconfig.Branding
	Sessions       *auth.Sessions
	AuthHandler    *auth.Handler
	CompanyHandler *company.Handler
	WizardHandler  *wizard.Handler
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	LoginRateLimit     int
	LoginRateBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

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

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		public.Get("/branding", brandingHandler(cfg.Branding))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			rate := cfg.LoginRateLimit
			burst := cfg.LoginRateBurst
			if rate <= 0 {
				rate = 5
			}
			if burst <= 0 {
				burst = 10
			}
			public.With(httpmiddleware.RateLimit(float64(rate), burst)).
				Mount("/auth", cfg.AuthHandler.Routes())
		}
	})

	// Session-scoped endpoints.
	if cfg.Sessions != nil {
		r.Group(func(private chi.Router) {
			private.Use(cfg.Sessions.Middleware())
			if cfg.CompanyHandler != nil {
				private.Mount("/companies", cfg.CompanyHandler.Routes())
			}
			if cfg.WizardHandler != nil {
				private.Mount("/wizard", cfg.WizardHandler.Routes())
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func brandingHandler(b appconfig.Branding) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(b)
	}
}
