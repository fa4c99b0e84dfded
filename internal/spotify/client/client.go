// Package client implements the Spotify Web API surface verse depends on.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tessro/verse/internal/spotify/auth"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client is a Spotify Web API client. It refreshes its access token lazily
// and retries transient failures with exponential backoff.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	storage    *auth.TokenStorage
	token      *auth.Token
	mu         sync.RWMutex
	log        zerolog.Logger
}

// New creates a Spotify client.
func New(clientID string, storage *auth.TokenStorage, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		clientID:   clientID,
		storage:    storage,
		log:        log.With().Str("component", "spotify").Logger(),
	}
}

// SetBaseURL overrides the API root. Tests point this at a local server.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// LoadToken loads the persisted token into the client.
func (c *Client) LoadToken() error {
	token, err := c.storage.Load()
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

// SetToken sets and persists the current token.
func (c *Client) SetToken(token *auth.Token) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return c.storage.Save(token)
}

// HasToken returns true if any token is loaded, even an expired one.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil
}

// refreshToken refreshes the access token if it has expired.
func (c *Client) refreshToken(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == nil {
		return fmt.Errorf("no token to refresh")
	}
	if !c.token.IsExpired() {
		return nil
	}

	newToken, err := auth.Refresh(ctx, c.clientID, c.token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to refresh token: %w", err)
	}
	// Spotify may omit the refresh token on renewal.
	if newToken.RefreshToken == "" {
		newToken.RefreshToken = c.token.RefreshToken
	}

	c.token = newToken
	return c.storage.Save(newToken)
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if err := c.refreshToken(ctx); err != nil {
		return "", err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return "", fmt.Errorf("not authenticated")
	}
	return c.token.AccessToken, nil
}

// Get performs a GET request against the API.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	return c.request(ctx, "GET", path, nil, result)
}

// Post performs a POST request against the API.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	return c.request(ctx, "POST", path, body, result)
}

// Put performs a PUT request against the API.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	return c.request(ctx, "PUT", path, body, result)
}

func (c *Client) request(ctx context.Context, method, path string, body, result interface{}) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	var jsonBody []byte
	if body != nil {
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	fullURL := c.baseURL + path
	c.log.Debug().Str("method", method).Str("url", fullURL).Msg("api request")

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			wait := baseRetryWait * time.Duration(1<<(attempt-1))
			c.log.Debug().Int("attempt", attempt).Dur("wait", wait).Err(lastErr).Msg("retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = strings.NewReader(string(jsonBody))
		}

		req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusNoContent {
			return nil
		}

		// 5xx responses are retried; 4xx are not.
		if resp.StatusCode >= 500 {
			lastErr = apiErrorFrom(resp.StatusCode, respBody)
			continue
		}
		if resp.StatusCode >= 400 {
			return apiErrorFrom(resp.StatusCode, respBody)
		}

		if result != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// APIError is a structured Spotify API error response.
type APIError struct {
	ErrorInfo struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify api error %d: %s", e.ErrorInfo.Status, e.ErrorInfo.Message)
}

func apiErrorFrom(status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorInfo.Message != "" {
		return &apiErr
	}
	return fmt.Errorf("spotify api error: status %d, body: %s", status, string(body))
}

// IsNoActiveDeviceError reports whether err is the 404 Spotify returns when
// no device is active for the session.
func IsNoActiveDeviceError(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.ErrorInfo.Status == 404
}

// BuildURL appends query parameters to a path.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	u, _ := url.Parse(path)
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
