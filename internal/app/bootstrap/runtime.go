package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/solviatours/extranet-wizard/internal/company"
	appconfig "github.com/solviatours/extranet-wizard/internal/config"
	"github.com/solviatours/extranet-wizard/internal/wizard"
	"github.com/solviatours/extranet-wizard/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildDraftStore returns the wizard draft store when Redis is available.
func BuildDraftStore(redisClient *redis.Client) *wizard.DraftStore {
	if redisClient == nil {
		return nil
	}
	return wizard.NewDraftStore(redisClient)
}

// BuildCompanyLookup wires the company profile client with its cache.
func BuildCompanyLookup(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) *company.Lookup {
	return company.NewLookup(cfg.CompanyAPIBaseURL, redisClient, logger)
}
