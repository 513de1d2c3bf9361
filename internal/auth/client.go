package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/solviatours/extranet-wizard/pkg/logging"
)

const defaultAuthTimeout = 15 * time.Second

// Credentials are forwarded verbatim to the upstream auth API.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Identity is the upstream auth API's view of a logged-in operator.
type Identity struct {
	BusinessID string `json:"businessId"`
	Email      string `json:"email"`
	Name       string `json:"name"`
}

// ErrInvalidCredentials is returned when the upstream rejects the login.
var ErrInvalidCredentials = fmt.Errorf("auth: invalid credentials")

// Client is a thin REST client for the upstream auth API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates an auth API client.
func NewClient(baseURL string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultAuthTimeout},
		logger:     logger,
	}
}

type loginEnvelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    Identity `json:"data"`
}

// Login authenticates the operator against the upstream auth API.
func (c *Client) Login(ctx context.Context, creds Credentials) (*Identity, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("auth: missing base url")
	}
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("auth: marshal credentials: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("auth: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("auth: read response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: status %d", resp.StatusCode)
	}

	var env loginEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, fmt.Errorf("auth: unmarshal response: %w", err)
	}
	if !env.Success {
		if env.Message != "" {
			return nil, fmt.Errorf("auth: login failed: %s", env.Message)
		}
		return nil, ErrInvalidCredentials
	}
	if env.Data.BusinessID == "" {
		return nil, fmt.Errorf("auth: login response missing business id")
	}
	return &env.Data, nil
}
