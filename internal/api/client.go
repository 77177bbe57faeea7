package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/arubanetworks/central-cli/internal/debug"
	"github.com/arubanetworks/central-cli/internal/validation"
)

const DefaultTimeout = 30 * time.Second

// Client talks to the Aruba Central configuration API.
//
// The client owns transport-level policy: TLS settings, timeouts, retry
// on 429/5xx, and a circuit breaker that tracks server failures across
// requests. Use ResetCircuitBreaker() when reusing a client between test
// runs or logical sessions.
type Client struct {
	BaseURL           string
	AccessToken       string
	HTTP              *http.Client
	UserAgent         string
	RetryConfig       RetryConfig
	skipURLValidation bool // internal flag for testing only
	circuitBreaker    *circuitBreaker
	validatedBaseURL  bool
	validateMu        sync.Mutex
}

// Compile-time interface implementation checks
var (
	_ Requester    = (*Client)(nil)
	_ PathResolver = (*Client)(nil)
	_ HTTPExecutor = (*Client)(nil)
)

var validateCentralURL = validation.ValidateCentralURL

// New creates a Central API client for the given API gateway URL and
// access token.
func New(baseURL, token string) *Client {
	baseTransport, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		baseTransport = &http.Transport{}
	}
	transport := baseTransport.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	transport.TLSClientConfig.InsecureSkipVerify = false

	// Allow localhost URLs when CENTRAL_TESTING=1 is set (for integration tests)
	skipValidation := os.Getenv("CENTRAL_TESTING") == "1"

	retryCfg := DefaultRetryConfig()
	return &Client{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		AccessToken:       token,
		RetryConfig:       retryCfg,
		skipURLValidation: skipValidation,
		HTTP: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: transport,
		},
		circuitBreaker: &circuitBreaker{
			threshold: retryCfg.CircuitBreakerThreshold,
			resetTime: retryCfg.CircuitBreakerResetTime,
		},
	}
}

// newTestClient creates a client with URL validation disabled for testing
func newTestClient(baseURL, token string) *Client {
	c := New(baseURL, token)
	c.skipURLValidation = true
	return c
}

// ResetCircuitBreaker clears the circuit breaker state, resetting failure
// counts and closing the circuit.
func (c *Client) ResetCircuitBreaker() {
	if c.circuitBreaker != nil {
		c.circuitBreaker.reset()
	}
}

// SetRetryConfig updates the retry configuration and aligns circuit breaker settings.
func (c *Client) SetRetryConfig(cfg RetryConfig) {
	c.RetryConfig = cfg
	if c.circuitBreaker != nil {
		c.circuitBreaker.threshold = cfg.CircuitBreakerThreshold
		c.circuitBreaker.resetTime = cfg.CircuitBreakerResetTime
	}
}

func (c *Client) ensureBaseURLValidated() error {
	if c.skipURLValidation {
		return nil
	}

	c.validateMu.Lock()
	defer c.validateMu.Unlock()

	if c.validatedBaseURL {
		return nil
	}

	if err := validateCentralURL(c.BaseURL); err != nil {
		return fmt.Errorf("URL validation failed: %w", err)
	}

	c.validatedBaseURL = true
	return nil
}

// configPath returns the full URL for a configuration API endpoint.
// Each endpoint pins its own API version; the upstream surface evolved
// unevenly and the groups operations span v1 through v3.
func (c *Client) configPath(version, path string) string {
	if path != "" && path[0] != '/' {
		path = "/" + path
	}
	return fmt.Sprintf("%s/configuration/%s%s", c.BaseURL, version, path)
}

// withQuery appends an encoded query string to a URL.
func withQuery(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	return rawURL + "?" + params.Encode()
}

// JoinNames joins group names into the comma-separated form the
// template_info endpoint expects in its groups query parameter.
func JoinNames(names []string) string {
	return strings.Join(names, ",")
}

// Response is the raw outcome of one API exchange. Status classification
// is deliberately left to the caller: 304/400/404 are meaningful no-op
// responses for group operations, not transport failures.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

// JSON returns the body parsed as JSON when possible, otherwise the raw
// body as a string. A body that fails to parse is never an error.
func (r *Response) JSON() any {
	if len(r.Body) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return string(r.Body)
	}
	return v
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
	}
	return nil
}

// Err converts a non-2xx response into an *APIError, or returns nil.
func (r *Response) Err() error {
	if r.StatusCode >= 200 && r.StatusCode < 300 {
		return nil
	}
	return &APIError{
		StatusCode: r.StatusCode,
		Body:       sanitizeErrorBody(string(r.Body)),
		RequestID:  requestIDFromHeader(r.Header),
	}
}

// exchange performs an HTTP request with retry and circuit breaker logic
// and returns the raw response. Only transport-level problems (connection
// failures, context cancellation, exhausted rate-limit retries) surface as
// errors; HTTP error statuses come back as data in the Response.
func (c *Client) exchange(ctx context.Context, method, rawURL string, body any) (*Response, error) {
	// Marshal the body to JSON once; the bytes are reused across retries.
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	if c.circuitBreaker != nil && c.circuitBreaker.isOpen() {
		return nil, &CircuitBreakerError{}
	}

	// Validate BaseURL at request time to prevent DNS rebinding attacks.
	// Skipped in tests to allow httptest.Server localhost URLs.
	if err := c.ensureBaseURLValidated(); err != nil {
		return nil, err
	}

	isIdempotent := method == http.MethodGet || method == http.MethodHead || method == http.MethodDelete

	var retries429, retries5xx int
	attempt := 0

	for {
		attempt++
		start := time.Now()
		var bodyReader io.Reader
		if jsonBody != nil {
			bodyReader = bytes.NewReader(jsonBody)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		if c.AccessToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.AccessToken)
		}
		if c.UserAgent != "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}
		if jsonBody != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			if debug.IsEnabled(ctx) {
				slog.Debug("request failed", "method", method, "url", rawURL, "attempt", attempt, "error", err)
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if debug.IsEnabled(ctx) {
			slog.Debug("request complete", "method", method, "url", rawURL, "status", resp.StatusCode, "attempt", attempt, "duration", time.Since(start))
		}

		// 429 rate limiting with exponential backoff (idempotent methods only)
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter, hasRetryAfter := retryAfterDuration(resp.Header)
			baseDelay := c.RetryConfig.RateLimitBaseDelay
			if !isIdempotent || retries429 >= c.RetryConfig.MaxRateLimitRetries {
				if hasRetryAfter {
					return nil, &RateLimitError{RetryAfter: retryAfter}
				}
				return nil, &RateLimitError{RetryAfter: baseDelay}
			}
			delay := retryAfter
			if !hasRetryAfter {
				delay = baseDelay * time.Duration(1<<retries429)
			}
			slog.Info("rate limited, retrying", "delay", delay, "attempt", retries429+1)
			if err := sleepWithContext(ctx, delay); err != nil {
				return nil, err
			}
			retries429++
			continue
		}

		if resp.StatusCode >= 500 {
			if c.circuitBreaker != nil {
				c.circuitBreaker.recordFailure()
			}
			if isIdempotent && retries5xx < c.RetryConfig.Max5xxRetries {
				slog.Info("server error, retrying", "status", resp.StatusCode)
				if err := sleepWithContext(ctx, c.RetryConfig.ServerErrorRetryDelay); err != nil {
					return nil, err
				}
				retries5xx++
				continue
			}
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 && c.circuitBreaker != nil {
			c.circuitBreaker.recordSuccess()
		}

		return &Response{
			StatusCode: resp.StatusCode,
			Body:       respBody,
			Header:     resp.Header,
		}, nil
	}
}

// do performs a request and decodes a successful JSON response into result.
// Non-2xx statuses become *APIError.
func (c *Client) do(ctx context.Context, method, rawURL string, body any, result any) error {
	resp, err := c.exchange(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	if result != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return fmt.Errorf("unexpected API response format (JSON decode failed): %w", err)
		}
	}
	return nil
}

func requestIDFromHeader(header http.Header) string {
	if header == nil {
		return ""
	}
	if id := header.Get("X-Request-Id"); id != "" {
		return id
	}
	if id := header.Get("X-Request-ID"); id != "" {
		return id
	}
	return ""
}

// sanitizeErrorBody extracts a safe error message from an API response
// without exposing potentially sensitive data.
func sanitizeErrorBody(body string) string {
	var errResp struct {
		Error       string `json:"error"`
		Message     string `json:"message"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal([]byte(body), &errResp); err != nil {
		return "API request failed (response body redacted for security)"
	}

	switch {
	case errResp.Description != "":
		return errResp.Description
	case errResp.Error != "":
		return errResp.Error
	case errResp.Message != "":
		return errResp.Message
	}
	return "API request failed (response body redacted for security)"
}

// APIError represents an error response from the API
type APIError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Reachable reports whether the configured gateway answers a minimal
// groups listing with valid credentials.
func (c *Client) Reachable(ctx context.Context) (bool, error) {
	resp, err := c.Groups().List(ctx, 1, 0)
	if err != nil {
		return false, err
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return false, &AuthError{Reason: sanitizeErrorBody(string(resp.Body))}
	}
	return resp.StatusCode == http.StatusOK, nil
}
