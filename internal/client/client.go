// Package client implements the Pachca HTTP transport.
//
// The client handles every round trip with the Pachca API:
//   - Resolves operation paths against the API base URL
//   - Attaches the Bearer token
//   - Encodes GET payloads as query parameters, everything else as JSON
//   - Classifies the response status into an error kind
//   - Unwraps the {"data": ...} envelope from successful responses
//
// It also uploads raw file bytes to pre-signed storage URLs.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/k1nky/pachca-client/internal/apierr"
)

// DefaultBaseURL is the Pachca shared API root. Operation paths are relative to it.
const DefaultBaseURL = "https://api.pachca.com/api/shared/v1/"

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// maxResponseSize limits response body reads to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Doer sends a prepared request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the Pachca HTTP client.
type Client struct {
	baseURL      *url.URL
	httpClient   Doer
	accessToken  string
	raiseOnError bool
	logger       *zap.Logger

	// settings consumed while building the default http.Client
	timeout time.Duration
	proxy   *ProxyConfig
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides the API root. It must be an absolute URL.
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		u, err := parseBaseURL(raw)
		if err != nil {
			return err
		}
		c.baseURL = u
		return nil
	}
}

// WithHTTPClient replaces the transport. Timeout and proxy options are
// ignored when a custom Doer is supplied.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) error {
		if d == nil {
			return fmt.Errorf("http client is nil: %w", apierr.ErrInvalidConfiguration)
		}
		c.httpClient = d
		return nil
	}
}

// WithTimeout sets the request-level timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout should be greater than 0, got %s: %w", d, apierr.ErrInvalidConfiguration)
		}
		c.timeout = d
		return nil
	}
}

// WithProxy routes requests of the default transport through the given proxies.
func WithProxy(p ProxyConfig) Option {
	return func(c *Client) error {
		c.proxy = &p
		return nil
	}
}

// WithRaiseOnError controls whether classified response errors are returned
// (true, the default) or only logged while the decoded body is still returned.
func WithRaiseOnError(raise bool) Option {
	return func(c *Client) error {
		c.raiseOnError = raise
		return nil
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// New creates a new Pachca client authenticated with accessToken.
func New(accessToken string, opts ...Option) (*Client, error) {
	base, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		baseURL:      base,
		accessToken:  accessToken,
		raiseOnError: true,
		logger:       zap.NewNop(),
		timeout:      DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout:   c.timeout,
			Transport: newTransport(c.proxy),
		}
	}
	return c, nil
}

// RaiseOnError reports whether classified response errors are returned to callers.
func (c *Client) RaiseOnError() bool {
	return c.raiseOnError
}

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger {
	return c.logger
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %v: %w", raw, err, apierr.ErrInvalidConfiguration)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute: %w", raw, apierr.ErrInvalidConfiguration)
	}
	// A trailing slash keeps relative paths below the API root.
	if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}
	return u, nil
}

// RequestURL resolves path against the base URL. Absolute URLs are returned unchanged.
func (c *Client) RequestURL(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parsing path %q: %w", path, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// Get sends a GET request with query parameters.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Body, error) {
	return c.Do(ctx, http.MethodGet, path, query, nil)
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, reqBody any) (*Body, error) {
	return c.Do(ctx, http.MethodPost, path, nil, reqBody)
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, reqBody any) (*Body, error) {
	return c.Do(ctx, http.MethodPut, path, nil, reqBody)
}

// Delete sends a DELETE request. The reactions endpoint expects a JSON body on DELETE.
func (c *Client) Delete(ctx context.Context, path string, reqBody any) (*Body, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, reqBody)
}

// PostChecked is Post that returns the classification error even when
// raise-on-error is disabled. Upload pre-signing goes through it.
func (c *Client) PostChecked(ctx context.Context, path string, reqBody any) (*Body, error) {
	return c.do(ctx, http.MethodPost, path, nil, reqBody, true)
}

// Do sends a request and returns the decoded body. For GET the query is
// attached to the URL and reqBody is ignored; for other methods a non-nil
// reqBody is sent as JSON.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, reqBody any) (*Body, error) {
	return c.do(ctx, method, path, query, reqBody, c.raiseOnError)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, reqBody any, raise bool) (*Body, error) {
	endpoint, err := c.RequestURL(path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if method != http.MethodGet && reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if method == http.MethodGet && len(query) > 0 {
		q := req.URL.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		req.URL.RawQuery = q.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, raise)
}

// send authorizes req, performs the round trip and handles the response.
// When raise is false a classification error is logged instead of returned.
func (c *Client) send(req *http.Request, raise bool) (*Body, error) {
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Read maxResponseSize+1 to detect oversized responses while still accepting
	// responses exactly at the limit.
	respBodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(respBodyBytes)) > maxResponseSize {
		return nil, fmt.Errorf("response exceeds maximum size of %d bytes", maxResponseSize)
	}

	c.logger.Debug("pachca request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode))

	return c.handleResponse(resp.StatusCode, respBodyBytes, raise)
}

// handleResponse classifies the status and decodes the body. Without raise
// a classification error is logged and decoding proceeds anyway.
func (c *Client) handleResponse(status int, raw []byte, raise bool) (*Body, error) {
	if err := Classify(status, raw); err != nil {
		c.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
		if raise {
			return nil, err
		}
	}
	body := DecodeBody(raw)
	return &body, nil
}
