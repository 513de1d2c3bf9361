package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Upstream extranet backend APIs.
	BookingAPIBaseURL string
	CompanyAPIBaseURL string
	AuthAPIBaseURL    string
	UpstreamTimeout   time.Duration

	// Session tokens issued after login.
	SessionSecret string
	SessionTTL    time.Duration

	// Redis backs the wizard draft store, company cache and session denylist.
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Branding overrides fetched at startup; empty means built-in defaults.
	BrandingURL string

	// Business defaults threaded into the wizard.
	CommissionPercent float64
	DefaultLanguage   string
	DefaultCurrency   string
	WizardBasePath    string

	CORSAllowedOrigins []string

	LoginRateLimit int
	LoginRateBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		BookingAPIBaseURL: getEnv("BOOKING_API_BASE_URL", ""),
		CompanyAPIBaseURL: getEnv("COMPANY_API_BASE_URL", ""),
		AuthAPIBaseURL:    getEnv("AUTH_API_BASE_URL", ""),
		UpstreamTimeout:   getEnvAsDuration("UPSTREAM_TIMEOUT", 20*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SessionTTL:    getEnvAsDuration("SESSION_TTL", 12*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		BrandingURL: getEnv("BRANDING_URL", ""),

		CommissionPercent: getEnvAsFloat("COMMISSION_PERCENT", 10),
		DefaultLanguage:   getEnv("DEFAULT_LANGUAGE", "es"),
		DefaultCurrency:   getEnv("DEFAULT_CURRENCY", "USD"),
		WizardBasePath:    getEnv("WIZARD_BASE_PATH", "/extranet"),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),

		LoginRateLimit: getEnvAsInt("LOGIN_RATE_LIMIT", 5),
		LoginRateBurst: getEnvAsInt("LOGIN_RATE_BURST", 10),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
