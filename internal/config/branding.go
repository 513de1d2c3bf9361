package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/solviatours/extranet-wizard/pkg/logging"
)

const brandingFetchTimeout = 10 * time.Second

// Branding holds business identity and theme settings shown across the
// extranet. Defaults are compiled in; a remote JSON document named by
// BRANDING_URL may override them at startup.
type Branding struct {
	BusinessID      string `json:"business_id"`
	DisplayName     string `json:"display_name"`
	PrimaryColor    string `json:"primary_color"`
	SecondaryColor  string `json:"secondary_color"`
	DefaultLanguage string `json:"default_language"`
	DefaultCurrency string `json:"default_currency"`
	SupportEmail    string `json:"support_email,omitempty"`
}

// DefaultBranding returns the compiled-in branding values.
func DefaultBranding(cfg *Config) Branding {
	return Branding{
		DisplayName:     "Extranet",
		PrimaryColor:    "#1b6d85",
		SecondaryColor:  "#f2a33c",
		DefaultLanguage: cfg.DefaultLanguage,
		DefaultCurrency: cfg.DefaultCurrency,
	}
}

// LoadBranding fetches the remote branding document and merges it over the
// defaults. Any failure falls back to defaults; startup is never blocked.
func LoadBranding(ctx context.Context, cfg *Config, logger *logging.Logger) Branding {
	branding := DefaultBranding(cfg)
	if cfg.BrandingURL == "" {
		return branding
	}

	ctx, cancel := context.WithTimeout(ctx, brandingFetchTimeout)
	defer cancel()

	remote, err := fetchBranding(ctx, cfg.BrandingURL)
	if err != nil {
		logger.Warn("branding fetch failed, using defaults", "url", cfg.BrandingURL, "error", err)
		return branding
	}
	branding.merge(remote)
	logger.Info("branding loaded", "display_name", branding.DisplayName)
	return branding
}

func fetchBranding(ctx context.Context, url string) (*Branding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("branding: create request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("branding: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("branding: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("branding: read response: %w", err)
	}
	var b Branding
	if err := json.Unmarshal(body, &b); err != nil {
		return nil, fmt.Errorf("branding: unmarshal: %w", err)
	}
	return &b, nil
}

func (b *Branding) merge(remote *Branding) {
	if remote.BusinessID != "" {
		b.BusinessID = remote.BusinessID
	}
	if remote.DisplayName != "" {
		b.DisplayName = remote.DisplayName
	}
	if remote.PrimaryColor != "" {
		b.PrimaryColor = remote.PrimaryColor
	}
	if remote.SecondaryColor != "" {
		b.SecondaryColor = remote.SecondaryColor
	}
	if remote.DefaultLanguage != "" {
		b.DefaultLanguage = remote.DefaultLanguage
	}
	if remote.DefaultCurrency != "" {
		b.DefaultCurrency = remote.DefaultCurrency
	}
	if remote.SupportEmail != "" {
		b.SupportEmail = remote.SupportEmail
	}
}
