// Package redfish implements the transport layer for talking to a Redfish
// service: authenticated JSON reads and writes over TLS. Targets are lab BMCs
// with self-signed certificates, so peer verification is intentionally off.
package redfish

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher is the read capability consumed by the scanner.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (map[string]any, error)
}

// Error is a transport failure: a connection error or a non-2xx response.
type Error struct {
	Method string
	URI    string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URI, e.Err)
	}
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.URI, e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// Client issues authenticated requests against a single Redfish host.
type Client struct {
	hostname   string
	username   string
	password   string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger attaches a structured logger to the client. Requests are logged
// at debug level with a per-request correlation id.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHTTPClient replaces the underlying HTTP client. Used by tests to point
// the client at an httptest server.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client for the given host using basic credentials.
func NewClient(hostname, username, password string, opts ...Option) *Client {
	c := &Client{
		hostname: hostname,
		username: username,
		password: password,
		httpClient: &http.Client{
			Transport: &http.Transport{
				// BMC targets ship self-signed certificates.
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Re-apply basic auth on redirects.
				if len(via) > 0 {
					req.SetBasicAuth(username, password)
				}
				return nil
			},
		},
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs an authenticated GET against uri and returns the decoded
// JSON object. Any connection error or non-2xx status is returned as *Error.
func (c *Client) Fetch(ctx context.Context, uri string) (map[string]any, error) {
	body, _, err := c.do(ctx, http.MethodGet, uri, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeObject(body, http.MethodGet, uri)
}

// WriteOptions controls Write behavior.
type WriteOptions struct {
	// PassEtag fetches the resource first and forwards its ETag as If-Match.
	// Only meaningful for PATCH.
	PassEtag bool
}

// Write performs an authenticated PATCH or POST with a JSON payload and
// returns the decoded response object.
func (c *Client) Write(ctx context.Context, uri string, payload map[string]any, method string, opts WriteOptions) (map[string]any, error) {
	if payload == nil {
		payload = map[string]any{}
	}

	headers := http.Header{}
	if method == http.MethodPatch && opts.PassEtag {
		_, resp, err := c.do(ctx, http.MethodGet, uri, nil, nil)
		if err != nil {
			return nil, err
		}
		if etag := resp.Get("Etag"); etag != "" {
			headers.Set("If-Match", etag)
		}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	body, _, err := c.do(ctx, method, uri, bytes.NewReader(data), headers)
	if err != nil {
		return nil, err
	}
	return decodeObject(body, method, uri)
}

func (c *Client) do(ctx context.Context, method, uri string, body io.Reader, headers http.Header) ([]byte, http.Header, error) {
	url := fmt.Sprintf("https://%s%s", c.hostname, uri)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, nil, &Error{Method: method, URI: uri, Err: err}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/json")
	for k, vals := range headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	requestID := uuid.NewString()
	c.log.Debug("redfish request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("uri", uri))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &Error{Method: method, URI: uri, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &Error{Method: method, URI: uri, Err: err}
	}

	c.log.Debug("redfish response",
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &Error{Method: method, URI: uri, Status: resp.StatusCode, Body: truncate(string(data), 200)}
	}
	return data, resp.Header, nil
}

// decodeObject parses body as a JSON object. Numbers are kept as json.Number
// so downstream schema inference can tell integers from floats.
func decodeObject(body []byte, method, uri string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, &Error{Method: method, URI: uri, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return out, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
