// Package api is the HTTP JSON transport to the group-savings backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/service"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Ensure Client implements service.Transport.
var _ service.Transport = (*Client)(nil)

// Config configures the transport.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Client implements service.Transport over net/http. Bearer tokens come from
// a service.TokenStore, read with each request's context.
type Client struct {
	httpClient *http.Client
	tokens     service.TokenStore
	logger     *slog.Logger
	baseURL    string
	userAgent  string
}

// NewClient creates a transport for cfg. A nil tokens store produces an
// anonymous client, which is what registration-class calls use.
func NewClient(cfg Config, tokens service.TokenStore, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: api base URL is required", common.ErrMissingConfig)
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("%w: api base URL must be http(s): %s", common.ErrInvalidConfig, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "kitty"
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: userAgent,
		tokens:    tokens,
		logger:    logger,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Do sends one request and returns the response for any received status.
func (c *Client) Do(ctx context.Context, method, path string, body any) (*service.Response, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, &common.NetworkError{Method: method, Path: path, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load session token: %w", err)
		}
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			"method", method,
			"path", path,
			"request_id", requestID,
			"error", err)
		return nil, &common.NetworkError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &common.NetworkError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("api request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds())

	return &service.Response{
		Status: resp.StatusCode,
		Header: resp.Header,
		Body:   data,
	}, nil
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}
