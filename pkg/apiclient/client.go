// Package apiclient is an authenticated JSON client for the storefront API.
// It attaches the stored bearer token to every request and, on a 401,
// refreshes the token once and retries the request once.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// RefreshPath is the token refresh endpoint relative to the base URL.
const RefreshPath = "/auth/refresh_token"

// ErrUnauthorized is returned when a request stays unauthorized after the
// refresh attempt.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// Unwrap lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

// Client is a bearer-token HTTP client with a single refresh-and-retry.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	storage       TokenStorage
	onAuthFailure func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithStorage replaces the default in-memory token storage.
func WithStorage(s TokenStorage) Option {
	return func(c *Client) { c.storage = s }
}

// OnAuthFailure registers fn to run after a failed refresh has cleared the
// stored tokens, typically sending the user back to the login page.
func OnAuthFailure(fn func()) Option {
	return func(c *Client) { c.onAuthFailure = fn }
}

// New constructs a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		storage:    NewMemoryStorage(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Storage returns the token storage in use.
func (c *Client) Storage() TokenStorage {
	return c.storage
}

// Get issues a GET and decodes the response data into result.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodGet, path, nil, result)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPost, path, body, result)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.Do(ctx, http.MethodPut, path, body, result)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, result)
}

// Do sends the request with the stored access token. A 401 triggers one
// refresh; on success the request is retried once with the new token, on
// failure the tokens are cleared, the auth failure hook runs and the
// original 401 is returned. result may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, result any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	status, respBody, err := c.send(ctx, method, path, payload, c.storage.AccessToken())
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized {
		access, refreshErr := c.refresh(ctx)
		if refreshErr != nil {
			log.Debug().Err(refreshErr).Str("path", path).Msg("Token refresh failed")
			c.storage.Clear()
			if c.onAuthFailure != nil {
				c.onAuthFailure()
			}
			return decodeError(status, respBody)
		}
		if status, respBody, err = c.send(ctx, method, path, payload, access); err != nil {
			return err
		}
	}

	if status < 200 || status > 299 {
		return decodeError(status, respBody)
	}
	return decodeData(respBody, result)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// refresh exchanges the stored refresh token for a new access token and
// stores it.
func (c *Client) refresh(ctx context.Context) (string, error) {
	rt := c.storage.RefreshToken()
	if rt == "" {
		return "", errors.New("no refresh token stored")
	}
	payload, err := json.Marshal(map[string]string{"refresh_token": rt})
	if err != nil {
		return "", err
	}

	status, respBody, err := c.send(ctx, http.MethodPost, RefreshPath, payload, "")
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", decodeError(status, respBody)
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := decodeData(respBody, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("refresh response has no access_token")
	}
	c.storage.SetAccessToken(out.AccessToken)
	return out.AccessToken, nil
}

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeData unwraps the standard response envelope when present.
func decodeData(body []byte, result any) error {
	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if len(env.Data) == 0 || string(env.Data) == "null" {
			return nil
		}
		body = env.Data
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
	}
	return apiErr
}
