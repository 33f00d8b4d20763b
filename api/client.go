package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 15 * time.Second

// Client is the marketplace backend API client. It speaks plain JSON over
// HTTP and performs no token handling of its own; credential injection and
// 401 retries belong to the session transport wrapping it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTransport sets the round tripper on the client's own http.Client.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// New creates a backend API client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token-bearing user payload.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	req := LoginRequest{Email: email, Password: password}
	if err := c.doRequest(ctx, http.MethodPost, "/users/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("api.Login: %w", err)
	}
	return &resp, nil
}

// Register creates a new account. It never issues tokens; the caller must
// log in afterwards.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.doRequest(ctx, http.MethodPost, "/users/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("api.Register: %w", err)
	}
	return &resp, nil
}

// Profile fetches the identity of the bearer token's owner.
func (c *Client) Profile(ctx context.Context, accessToken string) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.doRequest(ctx, http.MethodGet, "/users/profile", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("api.Profile: %w", err)
	}
	return &resp, nil
}

// RefreshToken exchanges a refresh token for a rotated token pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	var resp RefreshResponse
	req := RefreshRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/users/refresh-token", "", req, &resp); err != nil {
		return nil, fmt.Errorf("api.RefreshToken: %w", err)
	}
	return &resp, nil
}

// HTTPError is a non-2xx backend response.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether the backend answered 401.
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (c *Client) doRequest(ctx context.Context, method, path, bearer string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
