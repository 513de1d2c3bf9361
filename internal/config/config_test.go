package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solviatours/extranet-wizard/pkg/logging"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("COMMISSION_PERCENT", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.CommissionPercent != 10 {
		t.Fatalf("expected default commission percent, got %v", cfg.CommissionPercent)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.DefaultCurrency != "USD" {
		t.Fatalf("expected default currency, got %s", cfg.DefaultCurrency)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("BOOKING_API_BASE_URL", "https://api.example.com/booking")
	t.Setenv("COMMISSION_PERCENT", "12.5")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.BookingAPIBaseURL != "https://api.example.com/booking" {
		t.Fatalf("expected booking base url override, got %s", cfg.BookingAPIBaseURL)
	}
	if cfg.CommissionPercent != 12.5 {
		t.Fatalf("expected commission override, got %v", cfg.CommissionPercent)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected session ttl override, got %s", cfg.SessionTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("expected parsed origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadBrandingRemoteOverride(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"business_id":"biz-77","display_name":"Sol Via Tours","primary_color":"#003355"}`))
	}))
	defer srv.Close()

	cfg := &Config{DefaultLanguage: "es", DefaultCurrency: "USD", BrandingURL: srv.URL}
	b := LoadBranding(context.Background(), cfg, logging.Default())

	if b.BusinessID != "biz-77" {
		t.Fatalf("expected remote business id, got %s", b.BusinessID)
	}
	if b.DisplayName != "Sol Via Tours" {
		t.Fatalf("expected remote display name, got %s", b.DisplayName)
	}
	// Fields absent from the remote document keep their defaults.
	if b.SecondaryColor == "" {
		t.Fatal("expected default secondary color to survive merge")
	}
	if b.DefaultCurrency != "USD" {
		t.Fatalf("expected default currency to survive merge, got %s", b.DefaultCurrency)
	}
}

func TestLoadBrandingFetchFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := &Config{DefaultLanguage: "es", DefaultCurrency: "EUR", BrandingURL: srv.URL}
	b := LoadBranding(context.Background(), cfg, logging.Default())

	if b.DisplayName != "Extranet" {
		t.Fatalf("expected default branding on fetch failure, got %s", b.DisplayName)
	}
	if b.DefaultCurrency != "EUR" {
		t.Fatalf("expected configured currency, got %s", b.DefaultCurrency)
	}
}
