package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wintercup/portal/internal/domain"
)

// maxBodyBytes bounds a single response body.
const maxBodyBytes = 4 << 20

// Endpoints holds the absolute URL of every backend function.
type Endpoints struct {
	RobloxAuth   string
	TelegramAuth string
	Tournaments  string
	VipServers   string
	Reports      string
}

// Client performs single JSON-over-HTTP calls against the portal backend.
type Client struct {
	endpoints Endpoints
	logger    *slog.Logger
	client    *http.Client
}

// NewClient creates a gateway client. A zero timeout keeps the transport default.
func NewClient(endpoints Endpoints, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		endpoints: endpoints,
		logger:    logger,
		client:    &http.Client{Timeout: timeout},
	}
}

// Endpoints returns the configured endpoint set.
func (c *Client) Endpoints() Endpoints { return c.endpoints }

// Call performs exactly one request. body, when non-nil, is sent as JSON.
// Any transport or decoding failure is returned as a NETWORK_ERROR AppError;
// a non-2xx status is not an error by itself.
func (c *Client) Call(ctx context.Context, endpoint, method string, body any) (*Envelope, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, domain.ErrNetwork("encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, domain.ErrNetwork("create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("gateway call failed",
			"method", method,
			"endpoint", endpoint,
			"request_id", requestID,
			"error", err,
		)
		return nil, domain.ErrNetwork(fmt.Sprintf("%s %s", method, endpoint), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, domain.ErrNetwork("read response", err)
	}

	c.logger.Debug("gateway call",
		"method", method,
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)

	env, err := NewEnvelope(resp.StatusCode, raw)
	if err != nil {
		return nil, domain.ErrNetwork("decode response", err)
	}
	return env, nil
}

// Post is Call with method POST.
func (c *Client) Post(ctx context.Context, endpoint string, body any) (*Envelope, error) {
	return c.Call(ctx, endpoint, http.MethodPost, body)
}
