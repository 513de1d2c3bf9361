package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/solviatours/extranet-wizard/internal/api/router"
	"github.com/solviatours/extranet-wizard/internal/app/bootstrap"
	"github.com/solviatours/extranet-wizard/internal/auth"
	"github.com/solviatours/extranet-wizard/internal/company"
	appconfig "github.com/solviatours/extranet-wizard/internal/config"
	"github.com/solviatours/extranet-wizard/internal/observability/metrics"
	"github.com/solviatours/extranet-wizard/internal/wizard"
	"github.com/solviatours/extranet-wizard/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting extranet-wizard API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()
	branding := appconfig.LoadBranding(ctx, cfg, logger)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Error("redis is required for drafts and sessions")
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	wizardMetrics := metrics.NewWizardMetrics(registry)

	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL, redisClient)
	authClient := auth.NewClient(cfg.AuthAPIBaseURL, logger.WithComponent("auth"))
	authHandler := auth.NewHandler(authClient, sessions, logger.WithComponent("auth"))

	companyLookup := bootstrap.BuildCompanyLookup(cfg, redisClient, logger.WithComponent("company"))
	companyHandler := company.NewHandler(companyLookup, logger.WithComponent("company"))

	bookingClient := wizard.NewClient(cfg.BookingAPIBaseURL, cfg.UpstreamTimeout, logger.WithComponent("booking-api"))
	drafts := bootstrap.BuildDraftStore(redisClient)
	navigator := wizard.Navigator{BasePath: cfg.WizardBasePath}
	wizardService := wizard.NewService(bookingClient, drafts, navigator,
		cfg.CommissionPercent, branding.DefaultCurrency, wizardMetrics, logger.WithComponent("wizard"))
	wizardHandler := wizard.NewHandler(wizardService, navigator, logger.WithComponent("wizard"))

	routerCfg := &router.Config{
		Logger:             logger,
		Branding:           branding,
		Sessions:           sessions,
		AuthHandler:        authHandler,
		CompanyHandler:     companyHandler,
		WizardHandler:      wizardHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		LoginRateLimit:     cfg.LoginRateLimit,
		LoginRateBurst:     cfg.LoginRateBurst,
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
