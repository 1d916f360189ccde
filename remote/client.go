// Package remote talks to the Cardose REST API. Every response is a
// {success, data, error} envelope; transport failures and server
// rejections are both surfaced as errors so callers can route them into
// the offline fallback path.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Envelope is the wire response shape of the remote API.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Client is the remote API abstraction consumed by entity services.
type Client interface {
	Request(ctx context.Context, method, path string, body any) (*Envelope, error)
}

// Error is a remote rejection carrying enough context to classify it.
// Transport-level failures (timeouts, refused connections) are returned
// as plain wrapped errors and are always transient.
type Error struct {
	Status   int
	Message  string
	Rejected bool // envelope-level success=false
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api rejected: %s", e.Message)
}

// Permanent reports whether the failure will never succeed on retry:
// a 4xx response or an explicit envelope rejection. Network errors,
// timeouts and 5xx are transient.
func (e *Error) Permanent() bool {
	if e.Status >= 400 && e.Status < 500 {
		return true
	}
	return e.Rejected && e.Status < 500
}

// IsPermanent reports whether err is a permanent remote rejection.
func IsPermanent(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Permanent()
}

// HTTPClient is the production Client over net/http.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Request performs one API call. A nil error implies the envelope has
// Success=true.
func (c *HTTPClient) Request(ctx context.Context, method, path string, body any) (*Envelope, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("api request %s %s: %w", method, path, err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api read body: %w", err)
	}

	env := &Envelope{}
	if len(data) > 0 {
		// Non-envelope bodies (proxies, gateways) fall through to the
		// status-code checks below.
		json.Unmarshal(data, env)
	}

	if resp.StatusCode >= 400 {
		msg := env.Error
		if msg == "" {
			msg = string(data)
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}
	if !env.Success {
		return nil, &Error{Status: resp.StatusCode, Message: env.Error, Rejected: true}
	}
	return env, nil
}

// BaseURL returns the client's base URL.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// Reconfigure updates the base URL and timeout for hot-reload.
func (c *HTTPClient) Reconfigure(baseURL string, timeout time.Duration) {
	c.baseURL = baseURL
	c.httpClient.Timeout = timeout
}
