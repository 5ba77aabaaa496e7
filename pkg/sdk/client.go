// Package sdk provides a typed Go client for the session-manager HTTP
// API, for services that delegate session and access decisions instead
// of embedding the library.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
)

// Client provides a high-level interface to the session-manager API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// ClientOptions configures SDK client construction.
type ClientOptions struct {
	HTTPClient *http.Client
}

// ClientOption mutates ClientOptions.
type ClientOption func(*ClientOptions)

// WithHTTPClient overrides the HTTP client used for API calls.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(opts *ClientOptions) {
		opts.HTTPClient = client
	}
}

// NewClient creates a new SDK client that communicates with the API server at baseURL.
// An http.Client is created automatically when one is not supplied.
func NewClient(baseURL string, optFns ...ClientOption) *Client {
	opts := ClientOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Client{
		httpClient: opts.HTTPClient,
		baseURL:    baseURL,
	}
}

// APIError is returned for non-2xx responses, carrying the server's
// error message when one was provided.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// CreateSession creates a session for the party, or returns the
// existing one when input.SessionID is still valid server-side.
func (c *Client) CreateSession(ctx context.Context, input CreateSessionInput) (*Session, error) {
	if input.PartyID == uuid.Nil {
		return nil, fmt.Errorf("party ID is required")
	}

	body := map[string]any{"party_id": input.PartyID}
	if input.SessionID != "" {
		body["session_id"] = input.SessionID
	}

	var out Session
	if err := c.call(ctx, http.MethodPost, &out, body, "api", "v1", "sessions"); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession retrieves a live session by id.
func (c *Client) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	var out Session
	if err := c.call(ctx, http.MethodGet, &out, nil, "api", "v1", "sessions", sessionID); err != nil {
		return nil, err
	}
	return &out, nil
}

// InvalidateSession terminates a session. Unknown ids succeed too.
func (c *Client) InvalidateSession(ctx context.Context, sessionID string) error {
	return c.call(ctx, http.MethodDelete, nil, nil, "api", "v1", "sessions", sessionID)
}

// RefreshSession re-aggregates the session's profile from upstream.
func (c *Client) RefreshSession(ctx context.Context, sessionID string) (*Session, error) {
	var out Session
	if err := c.call(ctx, http.MethodPost, &out, nil, "api", "v1", "sessions", sessionID, "refresh"); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsSessionValid reports whether the session is live.
func (c *Client) IsSessionValid(ctx context.Context, sessionID string) (bool, error) {
	var out struct {
		Valid bool `json:"valid"`
	}
	if err := c.call(ctx, http.MethodGet, &out, nil, "api", "v1", "sessions", sessionID, "valid"); err != nil {
		return false, err
	}
	return out.Valid, nil
}

// CheckAccess runs an access decision.
func (c *Client) CheckAccess(ctx context.Context, input AccessCheckInput) (bool, error) {
	var out struct {
		Allowed bool `json:"allowed"`
	}
	if err := c.call(ctx, http.MethodPost, &out, input, "api", "v1", "access", "check"); err != nil {
		return false, err
	}
	return out.Allowed, nil
}

// ListRoles returns the full role namespace.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := c.call(ctx, http.MethodGet, &out, nil, "api", "v1", "roles"); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRole returns one role by code.
func (c *Client) GetRole(ctx context.Context, code string) (*Role, error) {
	var out Role
	if err := c.call(ctx, http.MethodGet, &out, nil, "api", "v1", "roles", code); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshRoleCache drops the server's custom-role cache.
func (c *Client) RefreshRoleCache(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, nil, nil, "admin", "roles", "cache", "refresh")
}

func (c *Client) call(ctx context.Context, method string, out any, body any, elem ...string) error {
	target, err := url.JoinPath(c.baseURL, elem...)
	if err != nil {
		return fmt.Errorf("invalid API URL: %w", err)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
