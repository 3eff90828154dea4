// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Configuration constants for the backend API.
const (
	// DefaultTimeout bounds non-streaming API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond paces outbound API calls.
	DefaultRequestsPerSecond = 5

	// MaxErrorBodySize caps how much of an error response body is read.
	MaxErrorBodySize = 64 * 1024
)

var (
	// PERFORMANCE: Connection pooling reduces TCP handshake overhead.
	// Shared HTTP client for short request/response calls.
	sharedHTTPClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		Timeout: DefaultTimeout,
	}

	// sharedStreamingClient is used for streaming requests. No client
	// timeout: the stream lives until the transport closes or the
	// context cancels it.
	sharedStreamingClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
)

// =============================================================================
// ERRORS
// =============================================================================

// BackendError represents a non-success response from the backend.
type BackendError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d)", e.Status)
}

// ErrSessionRejected indicates the backend answered a session creation
// request with a non-success status payload.
var ErrSessionRejected = errors.New("backend rejected session creation")

// IsSessionError reports whether an error from the chat endpoint points
// at a session problem, meaning the session should be re-established
// before retrying.
func IsSessionError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "session")
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the mcpchat backend.
type Client struct {
	baseURL string
	limiter *rate.Limiter
	logger  zerolog.Logger

	// Overridable for tests.
	httpClient      *http.Client
	streamingClient *http.Client
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:         strings.TrimRight(baseURL, "/"),
		limiter:         rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultRequestsPerSecond),
		logger:          logger.With().Str("component", "backend").Logger(),
		httpClient:      sharedHTTPClient,
		streamingClient: sharedStreamingClient,
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// SESSION CREATION
// =============================================================================

// sessionResponse mirrors the create_session payload.
type sessionResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Error     string `json:"error,omitempty"`
}

// CreateSession asks the backend for a new session id. Any non-2xx
// status or non-success payload is a hard failure.
func (c *Client) CreateSession(ctx context.Context) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/create_session", nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", c.handleErrorResponse(resp)
	}

	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}
	if sr.Status != "success" || sr.SessionID == "" {
		if sr.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrSessionRejected, sr.Error)
		}
		return "", ErrSessionRejected
	}

	c.logger.Debug().Str("session_id", sr.SessionID).Msg("session created")
	return sr.SessionID, nil
}

// =============================================================================
// MCP SERVER REGISTRY
// =============================================================================

// ServerStatus is the backend's live view of one MCP server.
type ServerStatus struct {
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Connected bool           `json:"connected"`
	Config    map[string]any `json:"config"`
}

// ListServers fetches the backend's MCP server registry.
func (c *Client) ListServers(ctx context.Context) ([]ServerStatus, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/servers", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("server list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleErrorResponse(resp)
	}

	var payload struct {
		Servers []ServerStatus `json:"servers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode server list: %w", err)
	}
	return payload.Servers, nil
}

// AddServerResult is the backend's answer to a server registration.
type AddServerResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Exists  bool   `json:"exists"`
}

// AddServer registers an MCP server config with the backend. A server
// that already exists is reported via Exists, not as an error.
func (c *Client) AddServer(ctx context.Context, name string, config map[string]any) (*AddServerResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]any{"name": name, "config": config})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/add_server", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("add server request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.handleErrorResponse(resp)
	}

	var result AddServerResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode add server response: %w", err)
	}
	if result.Status == "error" {
		return nil, fmt.Errorf("add server failed: %s", result.Message)
	}
	return &result, nil
}

// =============================================================================
// ERROR RESPONSE HANDLING
// =============================================================================

// handleErrorResponse converts a non-2xx response into a BackendError,
// pulling a message out of the JSON body when one is present.
func (c *Client) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodySize))

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			msg = payload.Error
		} else {
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	c.logger.Warn().Int("status", resp.StatusCode).Str("message", msg).Msg("backend returned error")
	return &BackendError{Status: resp.StatusCode, Message: msg}
}
