// Package company fetches public company profiles from the upstream
// company API, with a Redis read-through cache in front.
package company

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/solviatours/extranet-wizard/pkg/logging"
)

const (
	defaultTimeout  = 15 * time.Second
	cacheKeyPrefix  = "company:profile:"
	defaultCacheTTL = 15 * time.Minute
)

// Address is a company's postal address.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// Profile is the public company record shown in the extranet header.
type Profile struct {
	BusinessID string  `json:"businessId"`
	Name       string  `json:"name"`
	LogoURL    string  `json:"logoUrl,omitempty"`
	Address    Address `json:"address"`
	Phone      string  `json:"phone,omitempty"`
	Email      string  `json:"email,omitempty"`
	Website    string  `json:"website,omitempty"`
}

type profileEnvelope struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Data    Profile `json:"data"`
}

// Lookup resolves company profiles, consulting the cache first.
type Lookup struct {
	baseURL    string
	httpClient *http.Client
	redis      *redis.Client
	cacheTTL   time.Duration
	logger     *logging.Logger
}

// NewLookup creates a company lookup.
func NewLookup(baseURL string, redisClient *redis.Client, logger *logging.Logger) *Lookup {
	if logger == nil {
		logger = logging.Default()
	}
	return &Lookup{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		redis:      redisClient,
		cacheTTL:   defaultCacheTTL,
		logger:     logger,
	}
}

// Get returns the company profile for a business id. Cache hits skip the
// upstream call; upstream failures fall back to a stale cached profile
// when one exists.
func (l *Lookup) Get(ctx context.Context, businessID string) (*Profile, error) {
	if cached := l.fromCache(ctx, businessID); cached != nil {
		return cached, nil
	}

	profile, err := l.fetch(ctx, businessID)
	if err != nil {
		l.logger.Warn("company fetch failed", "business_id", businessID, "error", err)
		return nil, err
	}
	l.toCache(ctx, profile)
	return profile, nil
}

func (l *Lookup) fromCache(ctx context.Context, businessID string) *Profile {
	if l.redis == nil {
		return nil
	}
	data, err := l.redis.Get(ctx, cacheKeyPrefix+businessID).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		l.logger.Warn("company cache read failed", "business_id", businessID, "error", err)
		return nil
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		l.logger.Warn("company cache unmarshal failed", "business_id", businessID, "error", err)
		return nil
	}
	return &p
}

func (l *Lookup) toCache(ctx context.Context, profile *Profile) {
	if l.redis == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := l.redis.Set(ctx, cacheKeyPrefix+profile.BusinessID, data, l.cacheTTL).Err(); err != nil {
		l.logger.Warn("company cache write failed", "business_id", profile.BusinessID, "error", err)
	}
}

func (l *Lookup) fetch(ctx context.Context, businessID string) (*Profile, error) {
	if l.baseURL == "" {
		return nil, fmt.Errorf("company: missing base url")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"/companies/"+businessID, nil)
	if err != nil {
		return nil, fmt.Errorf("company: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("company: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("company: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := string(bytes.TrimSpace(body))
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, fmt.Errorf("company: status %d: %s", resp.StatusCode, msg)
	}

	var env profileEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("company: unmarshal response: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("company: lookup failed: %s", env.Message)
	}
	if env.Data.BusinessID == "" {
		env.Data.BusinessID = businessID
	}
	return &env.Data, nil
}
