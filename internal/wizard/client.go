package wizard

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

const defaultClientTimeout = 20 * time.Second

// BookingOption is the upstream record the wizard configures.
type BookingOption struct {
	ID           string      `json:"id"`
	ActivityID   string      `json:"activityId"`
	Title        string      `json:"title"`
	MinGroupSize int         `json:"minGroupSize"`
	MaxGroupSize PeopleBound `json:"maxGroupSize"`
	Currency     string      `json:"currency"`
}

// CapacityRequest is the step-3 submission payload.
type CapacityRequest struct {
	BusinessID   string `json:"businessId"`
	OptionID     string `json:"optionId"`
	GroupMinSize int    `json:"groupMinSize"`
}

// PriceTierWire is the step-4 wire form of one tier. MaxParticipants is
// null when the tier is unlimited.
type PriceTierWire struct {
	MinParticipants     int     `json:"minParticipants"`
	MaxParticipants     *int    `json:"maxParticipants"`
	TotalPrice          float64 `json:"totalPrice"`
	CommissionPercent   float64 `json:"commissionPercent"`
	PricePerParticipant float64 `json:"pricePerParticipant"`
	Currency            string  `json:"currency"`
}

// PriceTiersRequest is the step-4 submission payload.
type PriceTiersRequest struct {
	BusinessID string          `json:"businessId"`
	OptionID   string          `json:"optionId"`
	Tiers      []PriceTierWire `json:"tiers"`
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client is a thin REST client for the booking-option backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a booking-option API client.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) optionPath(businessID, optionID, suffix string) string {
	p := fmt.Sprintf("/businesses/%s/options/%s", businessID, optionID)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// GetBookingOption fetches the option being configured.
func (c *Client) GetBookingOption(ctx context.Context, businessID, optionID string) (*BookingOption, error) {
	var opt BookingOption
	if err := c.do(ctx, http.MethodGet, c.optionPath(businessID, optionID, ""), nil, &opt); err != nil {
		return nil, err
	}
	return &opt, nil
}

// GetMode fetches the availability/pricing mode for the option.
func (c *Client) GetMode(ctx context.Context, businessID, optionID string) (*Mode, error) {
	var mode Mode
	if err := c.do(ctx, http.MethodGet, c.optionPath(businessID, optionID, "availability-pricing-mode"), nil, &mode); err != nil {
		return nil, err
	}
	return &mode, nil
}

// CreateMode stores the availability/pricing mode for the option.
func (c *Client) CreateMode(ctx context.Context, businessID, optionID string, mode Mode) error {
	return c.do(ctx, http.MethodPost, c.optionPath(businessID, optionID, "availability-pricing-mode"), mode, nil)
}

// GetCapacity fetches the option's configured capacity.
func (c *Client) GetCapacity(ctx context.Context, businessID, optionID string) (*Capacity, error) {
	var capacity Capacity
	if err := c.do(ctx, http.MethodGet, c.optionPath(businessID, optionID, "capacity"), nil, &capacity); err != nil {
		return nil, err
	}
	return &capacity, nil
}

// CreateCapacity submits the step-3 payload.
func (c *Client) CreateCapacity(ctx context.Context, req CapacityRequest) error {
	return c.do(ctx, http.MethodPost, c.optionPath(req.BusinessID, req.OptionID, "capacity"), req, nil)
}

// GetDepartureTime fetches the stored weekly schedule and exceptions.
func (c *Client) GetDepartureTime(ctx context.Context, businessID, optionID string) (*DepartureTimeRequest, error) {
	var dt DepartureTimeRequest
	if err := c.do(ctx, http.MethodGet, c.optionPath(businessID, optionID, "departure-time"), nil, &dt); err != nil {
		return nil, err
	}
	return &dt, nil
}

// CreateDepartureTime submits the step-1 payload.
func (c *Client) CreateDepartureTime(ctx context.Context, req *DepartureTimeRequest) error {
	return c.do(ctx, http.MethodPost, c.optionPath(req.BusinessID, req.OptionID, "departure-time"), req, nil)
}

// GetPriceTiers fetches the stored per-person price tiers.
func (c *Client) GetPriceTiers(ctx context.Context, businessID, optionID string) ([]PriceTierWire, error) {
	var tiers []PriceTierWire
	if err := c.do(ctx, http.MethodGet, c.optionPath(businessID, optionID, "price-tiers"), nil, &tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

// CreatePriceTiers submits the step-4 payload.
func (c *Client) CreatePriceTiers(ctx context.Context, req PriceTiersRequest) error {
	return c.do(ctx, http.MethodPost, c.optionPath(req.BusinessID, req.OptionID, "price-tiers"), req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("booking api: missing base url")
	}
	op := method + " " + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("booking api: marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("booking api: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("booking api: %s: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("booking api: read response: %w", err)
	}

	var env apiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		if resp.StatusCode >= 400 {
			msg := string(respBody)
			if len(msg) > 300 {
				msg = msg[:300]
			}
			return &UpstreamError{Op: op, Status: resp.StatusCode, Message: msg}
		}
		return fmt.Errorf("booking api: unmarshal envelope: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return &UpstreamError{Op: op, Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("booking api: unmarshal data: %w", err)
		}
	}
	return nil
}
